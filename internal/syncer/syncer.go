// Package syncer drives the full synchronization pass: for every symbol
// in the portfolio it fetches missing history from the provider, merges it
// into the price store, and persists corporate actions, isolating
// per-symbol failures so one bad symbol never aborts the run.
package syncer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/splits"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/symbol"
	"github.com/portfoliokit/pricesync/internal/transactions"
	"github.com/portfoliokit/pricesync/internal/yahoo"
)

// Fetcher is the upstream history source. Satisfied by
// *yahoo.FinanceClient; tests substitute fakes.
type Fetcher interface {
	FetchHistory(ctx context.Context, querySymbol, symbol string, from, to model.Date) (yahoo.History, error)
}

// Orchestrator coordinates one synchronization pass across the portfolio.
type Orchestrator struct {
	files       *storage.Store
	prices      *prices.Store
	corpactions *corpactions.Store
	fetcher     Fetcher
	log         *logrus.Logger
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(files *storage.Store, priceStore *prices.Store, corpStore *corpactions.Store, fetcher Fetcher, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		files:       files,
		prices:      priceStore,
		corpactions: corpStore,
		fetcher:     fetcher,
		log:         log,
	}
}

// WithLogger returns a copy of the orchestrator that logs through l. The
// background worker uses this to tee progress into its log file.
func (o *Orchestrator) WithLogger(l *logrus.Logger) *Orchestrator {
	clone := *o
	clone.log = l
	return &clone
}

// SyncAll runs one full pass: load transactions, determine the earliest
// needed date per symbol, fetch and merge each symbol independently, then
// flush every in-memory series to storage in one final pass.
//
// A symbol whose fetch fails is recorded in the summary and skipped;
// provider coverage gaps (ErrExchangeRestricted) count as skipped rather
// than failed. Network fetches run strictly sequentially. An empty
// transaction list yields an empty summary, not an error.
func (o *Orchestrator) SyncAll(ctx context.Context) (model.SyncSummary, error) {
	summary := model.SyncSummary{StartedAt: time.Now().UTC()}

	txs, err := transactions.Load(o.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		o.log.Info("sync: no transactions, nothing to do")
		summary.FinishedAt = time.Now().UTC()
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	earliest := transactions.EarliestBySymbol(txs)
	today := model.Today()

	// the whole store lives in memory for the duration of the pass
	inMemory := make(map[string][]model.PriceRecord, len(earliest))
	for ticker := range earliest {
		_, base := symbol.Resolve(ticker)
		if _, ok := inMemory[base]; ok {
			continue
		}
		series, err := o.prices.Load(base)
		if err != nil {
			continue
		}
		inMemory[base] = series
	}

	tickers := sortedKeys(earliest)
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Add(o.syncSymbol(ctx, ticker, earliest[ticker], today, inMemory))
	}

	for base, series := range inMemory {
		if err := o.prices.Save(base, series); err != nil {
			return summary, err
		}
	}

	summary.FinishedAt = time.Now().UTC()
	o.log.WithFields(logrus.Fields{
		"synced":  summary.Synced,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("sync: pass complete")
	return summary, nil
}

// syncSymbol fetches and merges one symbol, returning its tagged outcome.
func (o *Orchestrator) syncSymbol(ctx context.Context, ticker string, needed, today model.Date, inMemory map[string][]model.PriceRecord) model.SymbolOutcome {
	exchange, base := symbol.Resolve(ticker)
	query := symbol.ProviderSymbol(exchange, base)
	log := o.log.WithField("symbol", ticker)

	series := inMemory[base]
	if stored, ok := prices.EarliestDate(series); ok && !stored.After(needed) {
		log.Debug("sync: history already covers earliest transaction, no fetch needed")
		return model.SymbolOutcome{Symbol: ticker, Status: model.StatusSynced}
	}

	hist, err := o.fetcher.FetchHistory(ctx, query, base, needed, today)
	if err != nil {
		if errors.Is(err, apperrors.ErrExchangeRestricted) {
			log.WithError(err).Warn("sync: provider does not cover market, skipped")
			return model.SymbolOutcome{Symbol: ticker, Status: model.StatusSkipped, Error: err.Error()}
		}
		log.WithError(err).Error("sync: fetch failed")
		return model.SymbolOutcome{Symbol: ticker, Status: model.StatusFailed, Error: err.Error()}
	}

	merged := prices.Merge(series, hist.Records)
	added := len(merged) - len(series)

	allSplits, err := o.persistCorporateActions(base, hist)
	if err != nil {
		log.WithError(err).Error("sync: persisting corporate actions failed")
		return model.SymbolOutcome{Symbol: ticker, Status: model.StatusFailed, Error: err.Error()}
	}

	// recomputed from the untouched close each pass, so it stays correct
	// even when a new split postdates previously stored rows
	splits.Refresh(merged, allSplits)
	inMemory[base] = merged

	log.WithField("added", added).Info("sync: merged provider history")
	return model.SymbolOutcome{Symbol: ticker, Status: model.StatusSynced, RecordsAdded: added}
}

// persistCorporateActions folds freshly fetched events into the stored
// files and returns the full split list for the symbol.
func (o *Orchestrator) persistCorporateActions(base string, hist yahoo.History) ([]model.SplitEvent, error) {
	if len(hist.Dividends) > 0 {
		existing, err := o.corpactions.LoadDividends(base)
		if err != nil {
			return nil, err
		}
		if err := o.corpactions.SaveDividends(base, append(hist.Dividends, existing...)); err != nil {
			return nil, err
		}
	}

	existing, err := o.corpactions.LoadSplits(base)
	if err != nil {
		return nil, err
	}
	if len(hist.Splits) == 0 {
		return existing, nil
	}
	all := corpactions.DedupeSplits(append(hist.Splits, existing...))
	if err := o.corpactions.SaveSplits(base, all); err != nil {
		return nil, err
	}
	return all, nil
}

func sortedKeys(m map[string]model.Date) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// deterministic symbol order keeps runs and their logs comparable
	sort.Strings(keys)
	return keys
}
