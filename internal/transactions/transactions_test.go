package transactions_test

import (
	"errors"
	"testing"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/testutil"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// TestLoad tests reading the externally-parsed transaction list.
//
// WHY: Every downstream computation replays transactions ascending by
// date; the loader owns that ordering and the distinction between "no
// document" and a parse failure.
func TestLoad(t *testing.T) {
	t.Run("missing document is ErrNoTransactions", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		if _, err := transactions.Load(files); !errors.Is(err, apperrors.ErrNoTransactions) {
			t.Errorf("Load() error = %v, want ErrNoTransactions", err)
		}
	})

	t.Run("empty list is ErrNoTransactions", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		testutil.WriteTransactions(t, files, []model.Transaction{})
		if _, err := transactions.Load(files); !errors.Is(err, apperrors.ErrNoTransactions) {
			t.Errorf("Load() error = %v, want ErrNoTransactions", err)
		}
	})

	t.Run("malformed JSON is a parse error, not NotFound", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		if err := files.Write(transactions.FileName, "{broken"); err != nil {
			t.Fatalf("seed write failed: %v", err)
		}
		_, err := transactions.Load(files)
		if err == nil || errors.Is(err, apperrors.ErrNoTransactions) {
			t.Errorf("Load() error = %v, want a parse error", err)
		}
	})

	t.Run("result is sorted ascending by date", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		testutil.WriteTransactions(t, files, []model.Transaction{
			testutil.Transaction("2021-05-03", "AAPL", "buy", 5),
			testutil.Transaction("2020-01-02", "AAPL", "buy", 10),
		})

		txs, err := transactions.Load(files)
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if txs[0].Date.String() != "2020-01-02" {
			t.Errorf("first transaction = %s, want the oldest", txs[0].Date)
		}
	})
}

// TestEarliestBySymbol tests the per-symbol earliest date derivation used
// by the sync orchestrator.
func TestEarliestBySymbol(t *testing.T) {
	txs := []model.Transaction{
		testutil.Transaction("2021-05-03", "AAPL", "buy", 5),
		testutil.Transaction("2020-01-02", "AAPL", "buy", 10),
		testutil.Transaction("2022-07-01", "MSFT", "buy", 3),
	}

	earliest := transactions.EarliestBySymbol(txs)
	if earliest["AAPL"].String() != "2020-01-02" {
		t.Errorf("AAPL earliest = %s, want 2020-01-02", earliest["AAPL"])
	}
	if earliest["MSFT"].String() != "2022-07-01" {
		t.Errorf("MSFT earliest = %s, want 2022-07-01", earliest["MSFT"])
	}
}

// TestTransactionTypePredicates tests the type classification helpers.
//
// WHY: The position timeline dispatches on these; "Buy", "PURCHASE", and
// "stock split" all appear in real exports.
func TestTransactionTypePredicates(t *testing.T) {
	if !(model.Transaction{Type: "Buy"}).IsBuy() || !(model.Transaction{Type: "PURCHASE"}).IsBuy() {
		t.Error("buy variants not recognized")
	}
	if !(model.Transaction{Type: "sell"}).IsSell() || !(model.Transaction{Type: "Sale"}).IsSell() {
		t.Error("sell variants not recognized")
	}
	if !(model.Transaction{Type: "Stock Split"}).IsSplit() || !(model.Transaction{Type: "split"}).IsSplit() {
		t.Error("split variants not recognized")
	}
	if (model.Transaction{Type: "dividend"}).IsBuy() {
		t.Error("dividend misclassified as buy")
	}
}
