// Package splits reconciles stock split events against price series.
//
// Market-data providers return closes that are adjusted backward through
// every split that occurred after the data was fetched. Forward adjustment
// reverses that: multiplying each record's prices by the product of the
// ratios of all splits dated strictly after the record reconstructs the
// price as it was actually quoted on that date.
package splits

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/portfoliokit/pricesync/internal/model"
)

// ParseRatio parses a split ratio string into (numerator, denominator).
//
// The canonical form is "numerator:denominator". A bare numeric value is
// interpreted heuristically: values above 1 mean "round(v):1", values in
// (0,1) mean "1:round(1/v)". Anything malformed or non-positive clamps to
// the 1:1 no-op so one bad row cannot poison a whole file.
func ParseRatio(s string) (num, den int64) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, 1
	}
	if left, right, ok := strings.Cut(s, ":"); ok {
		n, errN := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
		d, errD := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
		if errN != nil || errD != nil || n <= 0 || d <= 0 {
			return 1, 1
		}
		return n, d
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1, 1
	}
	switch {
	case v > 1:
		return int64(math.Round(v)), 1
	case v > 0 && v < 1:
		return 1, int64(math.Round(1 / v))
	default:
		return 1, 1
	}
}

// factorAfter returns the product of the ratios of every split dated
// strictly after d. Splits must be sorted ascending by date.
func factorAfter(d model.Date, events []model.SplitEvent) float64 {
	factor := 1.0
	for _, ev := range events {
		if ev.Date.After(d) {
			factor *= ev.Factor()
		}
	}
	return factor
}

// ForwardAdjust multiplies every OHLC field of records dated before a
// split by the cumulative factor of all splits dated strictly after the
// record, returning a new slice. An empty split list is a no-op copy.
//
// The operation assumes the input prices are fully backward-adjusted
// (the provider convention); applying it twice to the same data double
// counts the splits, so callers own series provenance.
func ForwardAdjust(records []model.PriceRecord, events []model.SplitEvent) []model.PriceRecord {
	sorted := sortedAscending(events)
	out := make([]model.PriceRecord, len(records))
	for i, rec := range records {
		factor := factorAfter(rec.Date, sorted)
		rec.Close *= factor
		rec.Open = scale(rec.Open, factor)
		rec.High = scale(rec.High, factor)
		rec.Low = scale(rec.Low, factor)
		out[i] = rec
	}
	return out
}

// UnadjustedClose reconstructs the close as quoted on its date from a
// provider-adjusted close, given every known split for the symbol.
func UnadjustedClose(close float64, d model.Date, events []model.SplitEvent) float64 {
	return close * factorAfter(d, sortedAscending(events))
}

// Refresh recomputes the SplitUnadjustedClose field of every record in
// place from its untouched Close. Unlike ForwardAdjust it is idempotent:
// the orchestrator runs it on every sync pass after persisting split
// events, so a stale column self-heals.
func Refresh(records []model.PriceRecord, events []model.SplitEvent) {
	sorted := sortedAscending(events)
	for i := range records {
		v := records[i].Close * factorAfter(records[i].Date, sorted)
		records[i].SplitUnadjustedClose = &v
	}
}

func sortedAscending(events []model.SplitEvent) []model.SplitEvent {
	out := make([]model.SplitEvent, len(events))
	copy(out, events)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
