// Package prices owns the per-symbol daily price series: the merge
// semantics for incrementally fetched data and the flat-file persistence
// consumed by external collaborators.
package prices

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/storage"
)

// Header is the on-disk column layout of a per-symbol price file.
// Series are stored newest-first so head-of-file reads serve recent data.
const Header = "date,close,open,high,low,volume,adjusted_close,split_unadjusted_close,source,updated_at"

// FileName returns the logical store name of a symbol's price file.
func FileName(symbol string) string {
	return "prices_" + storage.FileSafe(symbol) + ".csv"
}

// Merge folds incoming records into an existing series keyed by date.
// A record sharing a date with an existing one replaces it wholesale
// (last-write-wins); new dates append. The result is sorted descending by
// date, so the merged size always equals the union of dates.
func Merge(existing, incoming []model.PriceRecord) []model.PriceRecord {
	byDate := make(map[model.Date]model.PriceRecord, len(existing)+len(incoming))
	for _, rec := range existing {
		byDate[rec.Date] = rec
	}
	for _, rec := range incoming {
		byDate[rec.Date] = rec
	}
	merged := make([]model.PriceRecord, 0, len(byDate))
	for _, rec := range byDate {
		merged = append(merged, rec)
	}
	SortDescending(merged)
	return merged
}

// SortDescending orders a series newest-first, the storage and display
// convention.
func SortDescending(series []model.PriceRecord) {
	sort.Slice(series, func(i, j int) bool { return series[j].Date.Before(series[i].Date) })
}

// SortAscending orders a series oldest-first, the replay convention.
func SortAscending(series []model.PriceRecord) {
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
}

// EarliestDate returns the minimum date in the series. The orchestrator
// uses it as its fetch guard: when the stored minimum is already at or
// before the needed date no network call is made.
func EarliestDate(series []model.PriceRecord) (model.Date, bool) {
	if len(series) == 0 {
		return model.Date{}, false
	}
	earliest := series[0].Date
	for _, rec := range series[1:] {
		if rec.Date.Before(earliest) {
			earliest = rec.Date
		}
	}
	return earliest, true
}

// LatestDate returns the maximum date in the series.
func LatestDate(series []model.PriceRecord) (model.Date, bool) {
	if len(series) == 0 {
		return model.Date{}, false
	}
	latest := series[0].Date
	for _, rec := range series[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	return latest, true
}

// Store persists per-symbol price series as whole-file CSV snapshots.
type Store struct {
	files *storage.Store
}

// NewStore returns a price store backed by the given file store.
func NewStore(files *storage.Store) *Store {
	return &Store{files: files}
}

// Load reads a symbol's stored series. It tolerates rows with missing
// optional columns and skips rows whose date or close cannot be parsed.
// A missing file or one yielding zero usable rows is ErrNoPriceHistory.
func (s *Store) Load(symbol string) ([]model.PriceRecord, error) {
	content, err := s.files.Read(FileName(symbol))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, symbol)
	}
	rows, err := readRows(content)
	if err != nil {
		return nil, fmt.Errorf("parse price file for %s: %w", symbol, err)
	}
	series := make([]model.PriceRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := parseRow(symbol, row)
		if !ok {
			continue
		}
		series = append(series, rec)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, symbol)
	}
	return series, nil
}

// Save replaces a symbol's price file with the series, newest-first.
func (s *Store) Save(symbol string, series []model.PriceRecord) error {
	sorted := make([]model.PriceRecord, len(series))
	copy(sorted, series)
	SortDescending(sorted)

	var b strings.Builder
	b.WriteString(Header + "\n")
	w := csv.NewWriter(&b)
	for _, rec := range sorted {
		w.Write([]string{
			rec.Date.String(),
			formatFloat(rec.Close),
			formatOptFloat(rec.Open),
			formatOptFloat(rec.High),
			formatOptFloat(rec.Low),
			formatOptInt(rec.Volume),
			formatOptFloat(rec.AdjustedClose),
			formatOptFloat(rec.SplitUnadjustedClose),
			rec.Source,
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode price file for %s: %w", symbol, err)
	}
	return s.files.Write(FileName(symbol), b.String())
}

// Symbols lists every symbol with a stored price file.
func (s *Store) Symbols() ([]string, error) {
	names, err := s.files.List("prices_")
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(names))
	for _, name := range names {
		sym := strings.TrimSuffix(strings.TrimPrefix(name, "prices_"), ".csv")
		if sym != "" {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// LoadAll reads every stored series into memory, keyed by symbol.
// Unreadable individual files are skipped rather than failing the whole
// snapshot.
func (s *Store) LoadAll() (map[string][]model.PriceRecord, error) {
	symbols, err := s.Symbols()
	if err != nil {
		return nil, err
	}
	all := make(map[string][]model.PriceRecord, len(symbols))
	for _, sym := range symbols {
		series, err := s.Load(sym)
		if err != nil {
			continue
		}
		all[sym] = series
	}
	return all, nil
}

func readRows(content string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// parseRow decodes one CSV row. Columns beyond date and close are
// optional; absent or blank values map to nil.
func parseRow(symbol string, row []string) (model.PriceRecord, bool) {
	if len(row) < 2 {
		return model.PriceRecord{}, false
	}
	date, err := model.ParseDate(row[0])
	if err != nil {
		return model.PriceRecord{}, false
	}
	close, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return model.PriceRecord{}, false
	}
	rec := model.PriceRecord{Symbol: symbol, Date: date, Close: close}
	rec.Open = parseOptFloat(row, 2)
	rec.High = parseOptFloat(row, 3)
	rec.Low = parseOptFloat(row, 4)
	rec.Volume = parseOptInt(row, 5)
	rec.AdjustedClose = parseOptFloat(row, 6)
	rec.SplitUnadjustedClose = parseOptFloat(row, 7)
	if len(row) > 8 {
		rec.Source = row[8]
	}
	if len(row) > 9 {
		if ts, err := time.Parse(time.RFC3339, row[9]); err == nil {
			rec.UpdatedAt = ts
		}
	}
	return rec, true
}

func parseOptFloat(row []string, idx int) *float64 {
	if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptInt(row []string, idx int) *int64 {
	if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(row[idx]), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
