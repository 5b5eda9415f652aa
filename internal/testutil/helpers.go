package testutil

import (
	"encoding/json"
	"testing"

	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// SetupTestStore creates a file store rooted in a per-test temp directory.
func SetupTestStore(t *testing.T) *storage.Store {
	t.Helper()

	files, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return files
}

// NewTestPriceStore creates a price store over a fresh temp-dir file store.
func NewTestPriceStore(t *testing.T) (*prices.Store, *storage.Store) {
	t.Helper()

	files := SetupTestStore(t)
	return prices.NewStore(files), files
}

// NewTestCorpActionStore creates a corporate action store over a fresh
// temp-dir file store.
func NewTestCorpActionStore(t *testing.T) (*corpactions.Store, *storage.Store) {
	t.Helper()

	files := SetupTestStore(t)
	return corpactions.NewStore(files), files
}

// WriteTransactions marshals a transaction list into the store where
// transactions.Load expects it.
func WriteTransactions(t *testing.T, files *storage.Store, txs []model.Transaction) {
	t.Helper()

	data, err := json.Marshal(txs)
	if err != nil {
		t.Fatalf("failed to marshal transactions: %v", err)
	}
	if err := files.Write(transactions.FileName, string(data)); err != nil {
		t.Fatalf("failed to write transactions: %v", err)
	}
}
