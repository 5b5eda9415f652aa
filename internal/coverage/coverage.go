// Package coverage computes how complete the stored price history is for
// every symbol the portfolio has transacted in, and aggregates that into
// portfolio-wide readiness statistics.
package coverage

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/symbol"
)

// Status thresholds: a symbol's history is complete at 95% weekday
// coverage and partial at 50%.
const (
	completeThreshold = 95.0
	partialThreshold  = 50.0
)

// symbols are independent, so the report fans out with a small bound
const reportConcurrency = 4

// Analyzer derives coverage metrics from the price and corporate action
// stores. All results are computed per request; nothing is cached.
type Analyzer struct {
	prices        *prices.Store
	corpactions   *corpactions.Store
	lookbackYears int
}

// NewAnalyzer returns an Analyzer with the given lookback window in years.
func NewAnalyzer(priceStore *prices.Store, corpStore *corpactions.Store, lookbackYears int) *Analyzer {
	if lookbackYears <= 0 {
		lookbackYears = 15
	}
	return &Analyzer{prices: priceStore, corpactions: corpStore, lookbackYears: lookbackYears}
}

// Report computes one CoverageRecord per symbol appearing in the
// transaction list within the lookback window.
//
// When completeness is false the weekday analysis is skipped: any symbol
// with at least one stored price is marked 100% complete, the rest keep
// the missing/0 default.
func (a *Analyzer) Report(ctx context.Context, txs []model.Transaction, completeness bool) ([]model.CoverageRecord, error) {
	today := model.Today()
	floor := today.AddYears(-a.lookbackYears)

	earliest := make(map[string]model.Date)
	currency := make(map[string]string)
	for _, tx := range txs {
		if cur, ok := earliest[tx.Symbol]; !ok || tx.Date.Before(cur) {
			earliest[tx.Symbol] = tx.Date
		}
		if _, ok := currency[tx.Symbol]; !ok {
			currency[tx.Symbol] = tx.Currency
		}
	}

	tickers := make([]string, 0, len(earliest))
	for t := range earliest {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	records := make([]model.CoverageRecord, len(tickers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = a.analyzeSymbol(ticker, earliest[ticker], currency[ticker], floor, today, completeness)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// analyzeSymbol builds the coverage record for one ticker.
func (a *Analyzer) analyzeSymbol(ticker string, earliestTx model.Date, currency string, floor, today model.Date, completeness bool) model.CoverageRecord {
	exchange, base := symbol.Resolve(ticker)
	rec := model.CoverageRecord{
		Ticker:              ticker,
		Exchange:            exchange,
		Currency:            currency,
		EarliestTransaction: earliestTx,
		Status:              model.CoverageMissing,
	}

	series, err := a.prices.Load(base)
	if err != nil {
		series = nil
	}
	if first, ok := prices.EarliestDate(series); ok {
		rec.EarliestPrice = &first
	}
	if last, ok := prices.LatestDate(series); ok {
		rec.LatestPrice = &last
	}

	if count, lastSplit, err := a.corpactions.SplitStats(base); err == nil {
		rec.SplitCount = count
		rec.LastSplitDate = lastSplit
	}

	if !completeness {
		if len(series) > 0 {
			rec.CoveragePercent = 100
			rec.Status = model.CoverageComplete
		}
		return rec
	}

	// Window starts at the first transaction, clamped to the lookback
	// floor: weekdays before the portfolio held the security are not
	// expected to be covered.
	windowStart := earliestTx
	if windowStart.Before(floor) {
		windowStart = floor
	}

	have := make(map[model.Date]bool, len(series))
	for _, p := range series {
		have[p.Date] = true
	}

	total, missing := 0, 0
	for d := windowStart; !d.After(today); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		total++
		if !have[d] {
			missing++
		}
	}

	rec.TotalTradingDays = total
	rec.MissingDays = missing
	if total > 0 {
		rec.CoveragePercent = float64(total-missing) / float64(total) * 100
	}
	switch {
	case rec.CoveragePercent >= completeThreshold:
		rec.Status = model.CoverageComplete
	case rec.CoveragePercent >= partialThreshold:
		rec.Status = model.CoveragePartial
	}
	return rec
}

// Stats aggregates a coverage report with store-wide totals: per-status
// symbol counts, total stored price rows, and the global oldest and newest
// price dates.
func (a *Analyzer) Stats(ctx context.Context, txs []model.Transaction) (model.ReadinessStats, error) {
	report, err := a.Report(ctx, txs, true)
	if err != nil {
		return model.ReadinessStats{}, err
	}

	stats := model.ReadinessStats{Symbols: len(report)}
	for _, rec := range report {
		switch rec.Status {
		case model.CoverageComplete:
			stats.Complete++
		case model.CoveragePartial:
			stats.Partial++
		default:
			stats.Missing++
		}
	}

	all, err := a.prices.LoadAll()
	if err != nil {
		return model.ReadinessStats{}, err
	}
	for _, series := range all {
		stats.TotalPriceRows += len(series)
		if first, ok := prices.EarliestDate(series); ok {
			if stats.OldestPrice == nil || first.Before(*stats.OldestPrice) {
				d := first
				stats.OldestPrice = &d
			}
		}
		if last, ok := prices.LatestDate(series); ok {
			if stats.NewestPrice == nil || last.After(*stats.NewestPrice) {
				d := last
				stats.NewestPrice = &d
			}
		}
	}
	return stats, nil
}
