// Package transactions loads the externally-parsed transaction list.
// Import from brokerage exports happens in a collaborator; this service
// only consumes the resulting JSON document.
package transactions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/storage"
)

// FileName is the logical store name of the transaction list.
const FileName = "transactions.json"

// Load reads the transaction list from the store, sorted ascending by
// date. A missing or empty document is ErrNoTransactions.
func Load(files *storage.Store) ([]model.Transaction, error) {
	content, err := files.Read(FileName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrNoTransactions
	}
	var txs []model.Transaction
	if err := json.Unmarshal([]byte(content), &txs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	if len(txs) == 0 {
		return nil, apperrors.ErrNoTransactions
	}
	SortAscending(txs)
	return txs, nil
}

// SortAscending orders transactions oldest-first, the replay convention.
func SortAscending(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
}

// BySymbol groups transactions by symbol, each group ascending by date.
func BySymbol(txs []model.Transaction) map[string][]model.Transaction {
	grouped := make(map[string][]model.Transaction)
	for _, tx := range txs {
		grouped[tx.Symbol] = append(grouped[tx.Symbol], tx)
	}
	for _, group := range grouped {
		SortAscending(group)
	}
	return grouped
}

// EarliestBySymbol returns the earliest transaction date per symbol.
func EarliestBySymbol(txs []model.Transaction) map[string]model.Date {
	earliest := make(map[string]model.Date)
	for _, tx := range txs {
		if cur, ok := earliest[tx.Symbol]; !ok || tx.Date.Before(cur) {
			earliest[tx.Symbol] = tx.Date
		}
	}
	return earliest
}
