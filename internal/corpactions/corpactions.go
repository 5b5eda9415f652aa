// Package corpactions persists dividend and split events per symbol as
// flat tabular files, deduplicated by date.
package corpactions

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/splits"
	"github.com/portfoliokit/pricesync/internal/storage"
)

// On-disk column layouts. Split files have two accepted schemas: the
// fractional form written today and a legacy free-text ratio form still
// found in older files, told apart by the header row.
const (
	DividendHeader = "ex_date,amount,currency,updated_at"
	SplitHeader    = "date,numerator,denominator,ratio,updated_at"
)

// DividendFileName returns the logical store name of a symbol's dividend file.
func DividendFileName(symbol string) string {
	return "dividends_" + storage.FileSafe(symbol) + ".csv"
}

// SplitFileName returns the logical store name of a symbol's split file.
func SplitFileName(symbol string) string {
	return "splits_" + storage.FileSafe(symbol) + ".csv"
}

// Store persists corporate action events as whole-file CSV snapshots.
type Store struct {
	files *storage.Store
}

// NewStore returns a corporate action store backed by the given file store.
func NewStore(files *storage.Store) *Store {
	return &Store{files: files}
}

// SaveDividends replaces a symbol's dividend file. Events are deduplicated
// by ex-date before writing, keeping the first occurrence after a
// newest-first sort.
func (s *Store) SaveDividends(symbol string, events []model.DividendEvent) error {
	deduped := DedupeDividends(events)

	var b strings.Builder
	b.WriteString(DividendHeader + "\n")
	w := csv.NewWriter(&b)
	for _, ev := range deduped {
		w.Write([]string{
			ev.ExDate.String(),
			ev.Amount.String(),
			ev.Currency,
			ev.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode dividend file for %s: %w", symbol, err)
	}
	return s.files.Write(DividendFileName(symbol), b.String())
}

// LoadDividends reads a symbol's dividend events, newest first. A missing
// or empty file yields an empty slice.
func (s *Store) LoadDividends(symbol string) ([]model.DividendEvent, error) {
	content, err := s.files.Read(DividendFileName(symbol))
	if err != nil {
		return nil, err
	}
	rows := dataRows(content)
	events := make([]model.DividendEvent, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		exDate, err := model.ParseDate(row[0])
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		ev := model.DividendEvent{ExDate: exDate, Amount: amount}
		if len(row) > 2 {
			ev.Currency = row[2]
		}
		if len(row) > 3 {
			if ts, err := time.Parse(time.RFC3339, row[3]); err == nil {
				ev.UpdatedAt = ts
			}
		}
		events = append(events, ev)
	}
	SortDividendsDescending(events)
	return events, nil
}

// SaveSplits replaces a symbol's split file in the fractional schema.
// Events are deduplicated by date, newest first on disk.
func (s *Store) SaveSplits(symbol string, events []model.SplitEvent) error {
	deduped := DedupeSplits(events)
	sort.Slice(deduped, func(i, j int) bool { return deduped[j].Date.Before(deduped[i].Date) })

	now := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString(SplitHeader + "\n")
	w := csv.NewWriter(&b)
	for _, ev := range deduped {
		w.Write([]string{
			ev.Date.String(),
			strconv.FormatInt(ev.Numerator, 10),
			strconv.FormatInt(ev.Denominator, 10),
			ev.Ratio(),
			now,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode split file for %s: %w", symbol, err)
	}
	return s.files.Write(SplitFileName(symbol), b.String())
}

// LoadSplits reads a symbol's split events sorted oldest-first, accepting
// both the fractional and the legacy free-text ratio schemas. Malformed
// ratio values degrade to 1:1 rather than failing the file.
func (s *Store) LoadSplits(symbol string) ([]model.SplitEvent, error) {
	content, err := s.files.Read(SplitFileName(symbol))
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) <= 1 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}
	legacy := isLegacySplitHeader(lines[0])

	rows := dataRows(content)
	events := make([]model.SplitEvent, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		date, err := model.ParseDate(row[0])
		if err != nil {
			continue
		}
		var num, den int64
		if legacy {
			num, den = splits.ParseRatio(row[1])
		} else {
			num, den = parseFraction(row)
		}
		events = append(events, model.SplitEvent{Date: date, Numerator: num, Denominator: den})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// SplitStats returns the number of splits and the most recent split date
// for a symbol.
func (s *Store) SplitStats(symbol string) (count int, last *model.Date, err error) {
	events, err := s.LoadSplits(symbol)
	if err != nil {
		return 0, nil, err
	}
	if len(events) == 0 {
		return 0, nil, nil
	}
	latest := events[len(events)-1].Date
	return len(events), &latest, nil
}

// DedupeDividends keeps one event per ex-date, preferring the entry that
// sorts first after a newest-first ordering.
func DedupeDividends(events []model.DividendEvent) []model.DividendEvent {
	sorted := make([]model.DividendEvent, len(events))
	copy(sorted, events)
	SortDividendsDescending(sorted)
	seen := make(map[model.Date]bool, len(sorted))
	out := sorted[:0]
	for _, ev := range sorted {
		if seen[ev.ExDate] {
			continue
		}
		seen[ev.ExDate] = true
		out = append(out, ev)
	}
	return out
}

// DedupeSplits keeps one event per date.
func DedupeSplits(events []model.SplitEvent) []model.SplitEvent {
	seen := make(map[model.Date]bool, len(events))
	out := make([]model.SplitEvent, 0, len(events))
	for _, ev := range events {
		if seen[ev.Date] {
			continue
		}
		seen[ev.Date] = true
		out = append(out, ev)
	}
	return out
}

// SortDividendsDescending orders dividend events newest-first.
func SortDividendsDescending(events []model.DividendEvent) {
	sort.Slice(events, func(i, j int) bool { return events[j].ExDate.Before(events[i].ExDate) })
}

// isLegacySplitHeader detects the old free-text schema: a header carrying
// a "ratio" column but no "numerator" column.
func isLegacySplitHeader(header string) bool {
	h := strings.ToLower(header)
	return strings.Contains(h, "ratio") && !strings.Contains(h, "numerator")
}

// parseFraction reads the fractional schema's numerator and denominator,
// clamping non-positive or unparseable values to the 1:1 no-op.
func parseFraction(row []string) (int64, int64) {
	if len(row) < 3 {
		return 1, 1
	}
	num, errN := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
	den, errD := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if errN != nil || errD != nil || num <= 0 || den <= 0 {
		return 1, 1
	}
	return num, den
}

func dataRows(content string) [][]string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}
