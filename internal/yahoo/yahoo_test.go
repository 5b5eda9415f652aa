package yahoo_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/testutil"
	"github.com/portfoliokit/pricesync/internal/yahoo"
)

// Midday UTC timestamps so the derived calendar date is stable.
const (
	ts20240102 = int64(1704196800) // 2024-01-02 12:00 UTC
	ts20240103 = int64(1704283200) // 2024-01-03 12:00 UTC
	ts20240104 = int64(1704369600) // 2024-01-04 12:00 UTC
	ts20200831 = int64(1598875200) // 2020-08-31 12:00 UTC
)

func newClient(t *testing.T, server *testutil.ChartServer) *yahoo.FinanceClient {
	t.Helper()
	client := yahoo.NewFinanceClient(5*time.Second, testutil.SetupTestStore(t))
	client.SetBaseURL(server.URL)
	return client
}

func fetch(t *testing.T, client *yahoo.FinanceClient, querySymbol, symbol, from, to string) yahoo.History {
	t.Helper()
	history, err := client.FetchHistory(context.Background(), querySymbol, symbol,
		model.MustParseDate(from), model.MustParseDate(to))
	if err != nil {
		t.Fatalf("FetchHistory() returned unexpected error: %v", err)
	}
	return history
}

// TestFetchHistory tests decoding a chart payload into price records.
//
// WHY: The provider's arrays carry JSON nulls for unreported days and
// timestamps outside the requested range; both must be dropped, not
// turned into zero-priced records.
func TestFetchHistory(t *testing.T) {
	t.Run("decodes records with provenance and adjusted close", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102, ts20240103}, "[185.5,186.25]"))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-02", "2024-01-03")

		if len(history.Records) != 2 {
			t.Fatalf("got %d records, want 2", len(history.Records))
		}
		rec := history.Records[0]
		if rec.Symbol != "AAPL" || rec.Date.String() != "2024-01-02" || rec.Close != 185.5 {
			t.Errorf("record = %+v, want AAPL 2024-01-02 @ 185.5", rec)
		}
		if rec.Source != yahoo.Source {
			t.Errorf("source = %q, want %q", rec.Source, yahoo.Source)
		}
		if rec.AdjustedClose == nil || *rec.AdjustedClose != 185.5 {
			t.Errorf("adjusted close = %v, want 185.5", rec.AdjustedClose)
		}
	})

	t.Run("null closes are skipped", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102, ts20240103, ts20240104}, "[185.5,null,187.0]"))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-02", "2024-01-04")

		if len(history.Records) != 2 {
			t.Fatalf("got %d records, want the null close dropped", len(history.Records))
		}
		for _, rec := range history.Records {
			if rec.Date.String() == "2024-01-03" {
				t.Error("null-close date leaked into the result")
			}
		}
	})

	t.Run("timestamps outside the range are dropped", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102, ts20240103, ts20240104}, "[185.5,186.25,187.0]"))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-03", "2024-01-03")

		if len(history.Records) != 1 || history.Records[0].Date.String() != "2024-01-03" {
			t.Errorf("records = %+v, want only 2024-01-03", history.Records)
		}
	})

	t.Run("query symbol and canonical symbol may differ", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("2330.TW", testutil.ChartBody("2330.TW",
			[]int64{ts20240102}, "[593.0]"))
		client := newClient(t, server)

		history := fetch(t, client, "2330.TW", "2330", "2024-01-02", "2024-01-02")

		if len(history.Records) != 1 || history.Records[0].Symbol != "2330" {
			t.Errorf("records = %+v, want labeled with the canonical symbol 2330", history.Records)
		}
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		client := newClient(t, server)

		_, err := client.FetchHistory(context.Background(), "AAPL", "AAPL",
			model.MustParseDate("2024-01-04"), model.MustParseDate("2024-01-02"))
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("error = %v, want ErrInvalidDateRange", err)
		}
	})
}

// TestFetchHistoryEvents tests dividend and split extraction.
func TestFetchHistoryEvents(t *testing.T) {
	t.Run("dividends collapse by ex-date and carry the meta currency", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		dividends := `"dividends":{` +
			`"1704196800":{"amount":0.24,"date":1704196800},` +
			`"1704198600":{"amount":0.24,"date":1704198600},` + // same calendar day
			`"1704283200":{"amount":0.25,"date":1704283200}}`
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102, ts20240103}, "[185.5,186.25]", dividends))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-02", "2024-01-03")

		if len(history.Dividends) != 2 {
			t.Fatalf("got %d dividends, want 2 after collapsing the duplicate ex-date", len(history.Dividends))
		}
		if history.Dividends[0].ExDate.String() != "2024-01-03" {
			t.Errorf("first dividend = %s, want newest ex-date first", history.Dividends[0].ExDate)
		}
		if history.Dividends[0].Currency != "USD" {
			t.Errorf("currency = %q, want USD from the metadata", history.Dividends[0].Currency)
		}
	})

	t.Run("splits come back oldest-first with malformed ratios clamped", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		splitEvents := `"splits":{` +
			`"1598875200":{"date":1598875200,"numerator":4,"denominator":1,"splitRatio":"4:1"},` +
			`"1704196800":{"date":1704196800,"numerator":0,"denominator":0,"splitRatio":"garbage"}}`
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102}, "[185.5]", splitEvents))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-02", "2024-01-02")

		if len(history.Splits) != 2 {
			t.Fatalf("got %d splits, want 2", len(history.Splits))
		}
		if history.Splits[0].Date.String() != "2020-08-31" || history.Splits[0].Ratio() != "4:1" {
			t.Errorf("first split = %+v, want the 2020 4:1 event first", history.Splits[0])
		}
		if history.Splits[1].Ratio() != "1:1" {
			t.Errorf("malformed split ratio = %s, want clamped to 1:1", history.Splits[1].Ratio())
		}
	})

	t.Run("split-unadjusted close reconstructs the as-quoted price", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		splitEvents := `"splits":{"1704283200":{"date":1704283200,"numerator":4,"denominator":1,"splitRatio":"4:1"}}`
		server.Respond("AAPL", testutil.ChartBody("AAPL",
			[]int64{ts20240102, ts20240103}, "[100.0,25.0]", splitEvents))
		client := newClient(t, server)

		history := fetch(t, client, "AAPL", "AAPL", "2024-01-02", "2024-01-03")

		pre, post := history.Records[0], history.Records[1]
		if pre.SplitUnadjustedClose == nil || *pre.SplitUnadjustedClose != 400 {
			t.Errorf("pre-split unadjusted = %v, want 400 (close scaled by the later 4:1)", pre.SplitUnadjustedClose)
		}
		if post.SplitUnadjustedClose == nil || *post.SplitUnadjustedClose != 25 {
			t.Errorf("on-date unadjusted = %v, want the close unchanged", post.SplitUnadjustedClose)
		}
	})
}

// TestFetchHistoryErrors tests the upstream failure taxonomy.
//
// WHY: The orchestrator routes on these sentinels: exchange restrictions
// skip the symbol while everything else fails it, so each shape of bad
// response must land on the right sentinel wrapped in a FetchError.
func TestFetchHistoryErrors(t *testing.T) {
	from, to := model.MustParseDate("2024-01-02"), model.MustParseDate("2024-01-03")

	t.Run("provider Not Found payload is an exchange restriction", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		client := newClient(t, server)

		_, err := client.FetchHistory(context.Background(), "UNKNOWN", "UNKNOWN", from, to)
		if !errors.Is(err, apperrors.ErrExchangeRestricted) {
			t.Errorf("error = %v, want ErrExchangeRestricted", err)
		}
		var fe *apperrors.FetchError
		if !errors.As(err, &fe) || fe.Symbol != "UNKNOWN" {
			t.Errorf("error = %v, want a FetchError tagged with the symbol", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", "")
		client := newClient(t, server)

		if _, err := client.FetchHistory(context.Background(), "AAPL", "AAPL", from, to); !errors.Is(err, apperrors.ErrEmptyBody) {
			t.Errorf("error = %v, want ErrEmptyBody", err)
		}
	})

	t.Run("non-success status without an error payload", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.RespondStatus("AAPL", 500, "internal server error")
		client := newClient(t, server)

		if _, err := client.FetchHistory(context.Background(), "AAPL", "AAPL", from, to); !errors.Is(err, apperrors.ErrBadStatus) {
			t.Errorf("error = %v, want ErrBadStatus", err)
		}
	})

	t.Run("unparseable success body", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", "<html>rate limited</html>")
		client := newClient(t, server)

		if _, err := client.FetchHistory(context.Background(), "AAPL", "AAPL", from, to); !errors.Is(err, apperrors.ErrBadSchema) {
			t.Errorf("error = %v, want ErrBadSchema", err)
		}
	})

	t.Run("payload with no result", func(t *testing.T) {
		server := testutil.NewChartServer(t)
		server.Respond("AAPL", `{"chart":{"result":[],"error":null}}`)
		client := newClient(t, server)

		if _, err := client.FetchHistory(context.Background(), "AAPL", "AAPL", from, to); !errors.Is(err, apperrors.ErrBadSchema) {
			t.Errorf("error = %v, want ErrBadSchema", err)
		}
	})
}

// TestMetaPersistence tests the metadata side effect.
func TestMetaPersistence(t *testing.T) {
	server := testutil.NewChartServer(t)
	server.Respond("AAPL", testutil.ChartBody("AAPL", []int64{ts20240102}, "[185.5]"))
	files := testutil.SetupTestStore(t)
	client := yahoo.NewFinanceClient(5*time.Second, files)
	client.SetBaseURL(server.URL)

	fetchHistory := func() {
		t.Helper()
		if _, err := client.FetchHistory(context.Background(), "AAPL", "AAPL",
			model.MustParseDate("2024-01-02"), model.MustParseDate("2024-01-02")); err != nil {
			t.Fatalf("FetchHistory() returned unexpected error: %v", err)
		}
	}
	fetchHistory()

	content, err := files.Read(yahoo.MetaFileName("AAPL"))
	if err != nil {
		t.Fatalf("Read() returned unexpected error: %v", err)
	}
	if !strings.Contains(content, `"currency":"USD"`) {
		t.Errorf("meta blob = %q, want the provider metadata persisted verbatim", content)
	}
}
