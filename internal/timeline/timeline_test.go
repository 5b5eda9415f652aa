package timeline_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/testutil"
	"github.com/portfoliokit/pricesync/internal/timeline"
)

func point(points []model.TimelinePoint, date string) (model.TimelinePoint, bool) {
	d := model.MustParseDate(date)
	for _, p := range points {
		if p.Date.Equal(d) {
			return p, true
		}
	}
	return model.TimelinePoint{}, false
}

// TestBuild tests the lockstep replay of transactions against a price
// series.
//
// WHY: This series feeds portfolio valuation; a transaction applied one
// price date late (or early) silently misvalues every day after it.
func TestBuild(t *testing.T) {
	t.Run("buy then sell tracks the running position", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
			testutil.NewPriceRecord("AAPL", "2020-06-01").WithClose(120).Build(),
		}
		txs := []model.Transaction{
			testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
			testutil.Transaction("2020-06-01", "AAPL", "sell", 4),
		}

		points := timeline.Build(series, txs)

		if len(points) != 2 {
			t.Fatalf("Build() produced %d points, want 2", len(points))
		}
		first := points[0]
		if first.Date.String() != "2020-01-01" || first.Close != 100 {
			t.Errorf("first point = %+v, want 2020-01-01 @ 100", first)
		}
		if !first.Shares.Equal(decimal.NewFromInt(10)) {
			t.Errorf("shares after buy = %s, want 10", first.Shares)
		}
		if !first.MarketValue.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("market value = %s, want 1000", first.MarketValue)
		}
		second := points[1]
		if !second.Shares.Equal(decimal.NewFromInt(6)) {
			t.Errorf("shares after sell = %s, want 6", second.Shares)
		}
		if !second.MarketValue.Equal(decimal.NewFromInt(720)) {
			t.Errorf("market value = %s, want 720", second.MarketValue)
		}
	})

	t.Run("a same-date transaction applies to that day's point", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
		}
		txs := []model.Transaction{testutil.Transaction("2020-01-01", "AAPL", "buy", 10)}

		points := timeline.Build(series, txs)
		if !points[0].Shares.Equal(decimal.NewFromInt(10)) {
			t.Errorf("shares = %s, want 10 on the transaction's own date", points[0].Shares)
		}
	})

	t.Run("overselling floors the position at zero", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
			testutil.NewPriceRecord("AAPL", "2020-06-01").WithClose(120).Build(),
		}
		txs := []model.Transaction{
			testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
			testutil.Transaction("2020-06-01", "AAPL", "sell", 25),
		}

		points := timeline.Build(series, txs)
		if !points[1].Shares.IsZero() {
			t.Errorf("shares after oversell = %s, want 0", points[1].Shares)
		}
	})

	t.Run("a split transaction multiplies the share count", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(400).Build(),
			testutil.NewPriceRecord("AAPL", "2020-08-31").WithClose(125).Build(),
		}
		txs := []model.Transaction{
			testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
			testutil.SplitTransaction("2020-08-31", "AAPL", "4:1"),
		}

		points := timeline.Build(series, txs)
		if !points[1].Shares.Equal(decimal.NewFromInt(40)) {
			t.Errorf("shares after 4:1 split = %s, want 40", points[1].Shares)
		}
	})

	t.Run("a malformed split ratio leaves the position unchanged", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
			testutil.NewPriceRecord("AAPL", "2020-08-31").WithClose(100).Build(),
		}
		txs := []model.Transaction{
			testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
			testutil.SplitTransaction("2020-08-31", "AAPL", "garbage"),
		}

		points := timeline.Build(series, txs)
		if !points[1].Shares.Equal(decimal.NewFromInt(10)) {
			t.Errorf("shares after malformed split = %s, want 10", points[1].Shares)
		}
	})

	t.Run("unrelated transaction types are ignored", func(t *testing.T) {
		series := []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
		}
		txs := []model.Transaction{
			testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
			testutil.Transaction("2020-01-01", "AAPL", "dividend", 3),
		}

		points := timeline.Build(series, txs)
		if !points[0].Shares.Equal(decimal.NewFromInt(10)) {
			t.Errorf("shares = %s, want the dividend ignored", points[0].Shares)
		}
	})
}

// TestReverse tests the persistence-order flip.
func TestReverse(t *testing.T) {
	points := []model.TimelinePoint{
		{Date: model.MustParseDate("2020-01-01")},
		{Date: model.MustParseDate("2020-06-01")},
	}
	out := timeline.Reverse(points)
	if out[0].Date.String() != "2020-06-01" || out[1].Date.String() != "2020-01-01" {
		t.Errorf("Reverse() = %+v, want newest-first", out)
	}
	if points[0].Date.String() != "2020-01-01" {
		t.Error("Reverse() mutated its input")
	}
}

// TestForSymbol tests the builder's per-ticker assembly from the stores.
//
// WHY: The ticker may carry an exchange prefix while prices are filed
// under the base symbol, and price dates before the first transaction
// are noise for position history.
func TestForSymbol(t *testing.T) {
	t.Run("prefixed ticker resolves and pre-position prices are dropped", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		priceStore := prices.NewStore(files)
		builder := timeline.NewBuilder(priceStore, files)

		err := priceStore.Save("AAPL", []model.PriceRecord{
			testutil.NewPriceRecord("AAPL", "2019-12-01").WithClose(90).Build(),
			testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
			testutil.NewPriceRecord("AAPL", "2020-06-01").WithClose(120).Build(),
		})
		if err != nil {
			t.Fatalf("Save() returned unexpected error: %v", err)
		}
		txs := []model.Transaction{testutil.Transaction("2020-01-01", "NASDAQ:AAPL", "buy", 10)}

		points, err := builder.ForSymbol("NASDAQ:AAPL", txs)
		if err != nil {
			t.Fatalf("ForSymbol() returned unexpected error: %v", err)
		}
		if len(points) != 2 {
			t.Fatalf("ForSymbol() produced %d points, want 2 (pre-position date dropped)", len(points))
		}
		if points[0].Date.String() != "2020-06-01" {
			t.Errorf("first point = %s, want newest-first output", points[0].Date)
		}
		if _, ok := point(points, "2019-12-01"); ok {
			t.Error("price date before the first transaction leaked into the timeline")
		}
	})

	t.Run("no stored prices yields an empty timeline", func(t *testing.T) {
		files := testutil.SetupTestStore(t)
		builder := timeline.NewBuilder(prices.NewStore(files), files)
		txs := []model.Transaction{testutil.Transaction("2020-01-01", "AAPL", "buy", 10)}

		points, err := builder.ForSymbol("AAPL", txs)
		if err != nil {
			t.Fatalf("ForSymbol() returned unexpected error: %v", err)
		}
		if len(points) != 0 {
			t.Errorf("ForSymbol() = %d points, want 0", len(points))
		}
	})
}

// TestSnapshot tests assembly and persistence of the NAV artifact.
func TestSnapshot(t *testing.T) {
	files := testutil.SetupTestStore(t)
	priceStore := prices.NewStore(files)
	builder := timeline.NewBuilder(priceStore, files)

	err := priceStore.Save("AAPL", []model.PriceRecord{
		testutil.NewPriceRecord("AAPL", "2020-01-01").WithClose(100).Build(),
	})
	if err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	txs := []model.Transaction{
		testutil.Transaction("2020-01-01", "AAPL", "buy", 10),
		testutil.Transaction("2020-01-01", "NOPRICES", "buy", 1),
	}

	snap, err := builder.Snapshot(txs)
	if err != nil {
		t.Fatalf("Snapshot() returned unexpected error: %v", err)
	}
	if len(snap.Symbols["AAPL"]) != 1 {
		t.Errorf("AAPL timeline has %d points, want 1", len(snap.Symbols["AAPL"]))
	}
	if _, ok := snap.Symbols["NOPRICES"]; ok {
		t.Error("symbol without prices should be absent from the snapshot")
	}
	if snap.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not stamped")
	}

	content, err := files.Read(timeline.SnapshotFileName)
	if err != nil {
		t.Fatalf("Read() returned unexpected error: %v", err)
	}
	var persisted model.NAVSnapshot
	if err := json.Unmarshal([]byte(content), &persisted); err != nil {
		t.Fatalf("persisted snapshot is not valid JSON: %v", err)
	}
	if len(persisted.Symbols["AAPL"]) != 1 {
		t.Errorf("persisted AAPL timeline has %d points, want 1", len(persisted.Symbols["AAPL"]))
	}
}
