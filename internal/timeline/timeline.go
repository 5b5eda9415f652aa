// Package timeline replays transactions against a price series to produce
// a running shares and market-value series per symbol, and assembles the
// persisted NAV snapshot artifact.
package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/splits"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/symbol"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// SnapshotFileName is the logical store name of the NAV snapshot artifact.
const SnapshotFileName = "nav_snapshot.json"

// Build walks a symbol's price series and transaction list in lockstep,
// both ascending by date, emitting one point per price date after applying
// every transaction dated on or before it.
//
// Buys add quantity, sells subtract (floored at zero), and any
// transaction type containing "split" multiplies the running share count
// by its ratio (non-positive ratios degrade to 1). Output is
// oldest-first; use Reverse before persistence.
func Build(series []model.PriceRecord, txs []model.Transaction) []model.TimelinePoint {
	asc := make([]model.PriceRecord, len(series))
	copy(asc, series)
	prices.SortAscending(asc)

	ordered := make([]model.Transaction, len(txs))
	copy(ordered, txs)
	transactions.SortAscending(ordered)

	points := make([]model.TimelinePoint, 0, len(asc))
	shares := decimal.Zero
	next := 0
	for _, price := range asc {
		for next < len(ordered) && !ordered[next].Date.After(price.Date) {
			shares = apply(shares, ordered[next])
			next++
		}
		closeDec := decimal.NewFromFloat(price.Close)
		points = append(points, model.TimelinePoint{
			Date:        price.Date,
			Close:       price.Close,
			Shares:      shares,
			MarketValue: shares.Mul(closeDec),
		})
	}
	return points
}

// apply folds one transaction into the running share count.
func apply(shares decimal.Decimal, tx model.Transaction) decimal.Decimal {
	switch {
	case tx.IsBuy():
		return shares.Add(tx.Quantity)
	case tx.IsSell():
		shares = shares.Sub(tx.Quantity)
		if shares.IsNegative() {
			return decimal.Zero
		}
		return shares
	case tx.IsSplit():
		num, den := splits.ParseRatio(tx.SplitRatio)
		factor := decimal.NewFromInt(num).Div(decimal.NewFromInt(den))
		if !factor.IsPositive() {
			return shares
		}
		return shares.Mul(factor)
	default:
		return shares
	}
}

// Reverse flips a timeline to newest-first, the persistence convention
// (head-of-file reads serve recent data faster).
func Reverse(points []model.TimelinePoint) []model.TimelinePoint {
	out := make([]model.TimelinePoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// Builder assembles per-symbol timelines and the NAV snapshot from the
// stores.
type Builder struct {
	prices *prices.Store
	files  *storage.Store
}

// NewBuilder returns a Builder reading series from priceStore and writing
// snapshot artifacts to files.
func NewBuilder(priceStore *prices.Store, files *storage.Store) *Builder {
	return &Builder{prices: priceStore, files: files}
}

// ForSymbol builds the newest-first timeline for one ticker from its
// stored series and the full transaction list. Price dates before the
// symbol's first transaction are excluded. A symbol with no stored prices
// or no transactions yields an empty timeline.
func (b *Builder) ForSymbol(ticker string, txs []model.Transaction) ([]model.TimelinePoint, error) {
	_, base := symbol.Resolve(ticker)
	series, err := b.prices.Load(base)
	if err != nil {
		return nil, nil
	}

	var own []model.Transaction
	for _, tx := range txs {
		if tx.Symbol == ticker || tx.Symbol == base {
			own = append(own, tx)
		}
	}
	if len(own) == 0 {
		return nil, nil
	}
	transactions.SortAscending(own)
	first := own[0].Date

	inRange := make([]model.PriceRecord, 0, len(series))
	for _, rec := range series {
		if !rec.Date.Before(first) {
			inRange = append(inRange, rec)
		}
	}
	return Reverse(Build(inRange, own)), nil
}

// Snapshot builds timelines for every symbol in the transaction list,
// persists the artifact, and returns it.
func (b *Builder) Snapshot(txs []model.Transaction) (model.NAVSnapshot, error) {
	snap := model.NAVSnapshot{
		GeneratedAt: time.Now().UTC(),
		Symbols:     make(map[string][]model.TimelinePoint),
	}
	for ticker := range transactions.BySymbol(txs) {
		points, err := b.ForSymbol(ticker, txs)
		if err != nil {
			return model.NAVSnapshot{}, err
		}
		if len(points) > 0 {
			snap.Symbols[ticker] = points
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return model.NAVSnapshot{}, fmt.Errorf("encode nav snapshot: %w", err)
	}
	if err := b.files.Write(SnapshotFileName, string(data)); err != nil {
		return model.NAVSnapshot{}, err
	}
	return snap, nil
}
