// Package yahoo fetches daily price history and corporate actions from
// the Yahoo Finance chart API. It is the system's only upstream data
// source; one fetch covers one symbol and one closed date range.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/splits"
	"github.com/portfoliokit/pricesync/internal/storage"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Source is the provenance tag stamped on every record this client
// produces.
const Source = "yahoo"

// History is the decoded result of one chart fetch: in-range price
// records, dividends newest-first, and splits oldest-first.
type History struct {
	Records   []model.PriceRecord
	Dividends []model.DividendEvent
	Splits    []model.SplitEvent
}

// FinanceClient fetches financial data from the Yahoo Finance chart API.
// It wraps an HTTP client with a fixed per-request timeout and persists
// each symbol's metadata blob for diagnostic reuse.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	files      *storage.Store
}

// NewFinanceClient creates a Yahoo Finance client. The timeout applies to
// every request; files receives the per-symbol metadata blobs and may be
// nil to disable that side effect.
func NewFinanceClient(timeout time.Duration, files *storage.Store) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		files:      files,
	}
}

// SetBaseURL points the client at a different chart endpoint. Used by
// tests to target a local server.
func (c *FinanceClient) SetBaseURL(url string) { c.baseURL = url }

// MetaFileName returns the logical store name of a symbol's provider
// metadata blob.
func MetaFileName(symbol string) string {
	return "meta_" + storage.FileSafe(symbol) + ".json"
}

// FetchHistory issues one chart request for querySymbol covering the
// closed range [from, to] at daily interval, with dividend and split
// events and adjusted closes included. Records are labeled with the
// canonical symbol, restricted to dates whose derived calendar day falls
// inside the range, and carry a split-unadjusted close reconstructed from
// the payload's own split events.
//
// Failures are FetchErrors wrapping the upstream taxonomy: empty body,
// non-success status, schema mismatch, or an exchange-restriction error
// when the provider reports it has no data for the market.
func (c *FinanceClient) FetchHistory(ctx context.Context, querySymbol, symbol string, from, to model.Date) (History, error) {
	if to.Before(from) {
		return History{}, apperrors.NewFetchError(symbol, apperrors.ErrInvalidDateRange)
	}

	period1 := from.StartOfDayUnix()
	period2 := to.EndOfDayUnix()
	// inclusive bounds; the provider rejects period2 <= period1
	if period2 < period1+1 {
		period2 = period1 + 1
	}

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&events=div%%7Csplit&includeAdjClose=true",
		c.baseURL,
		querySymbol,
		period1,
		period2,
	)

	result, err := c.queryChart(ctx, url)
	if err != nil {
		return History{}, apperrors.NewFetchError(symbol, err)
	}

	if c.files != nil && len(result.Meta) > 0 {
		if err := c.files.Write(MetaFileName(symbol), string(result.Meta)); err != nil {
			return History{}, err
		}
	}

	currency := metaCurrency(result.Meta)
	splitEvents := extractSplits(result.Events)

	return History{
		Records:   extractRecords(result, symbol, from, to, splitEvents),
		Dividends: extractDividends(result.Events, currency, from, to),
		Splits:    splitEvents,
	}, nil
}

// queryChart executes the HTTP request and validates the response down to
// a single usable chart result.
func (c *FinanceClient) queryChart(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, apperrors.ErrEmptyBody
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the provider wraps symbol-level errors in a JSON body even on
		// non-2xx; classify those before the generic status error
		if err := chartPayloadError(data); err != nil {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %d", apperrors.ErrBadStatus, resp.StatusCode)
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperrors.ErrBadSchema, err)
	}
	if response.Chart.Error != nil {
		return Result{}, classifyChartError(response.Chart.Error)
	}
	if len(response.Chart.Result) == 0 {
		return Result{}, fmt.Errorf("%w: missing result", apperrors.ErrBadSchema)
	}
	result := response.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return Result{}, fmt.Errorf("%w: missing quote indicators", apperrors.ErrBadSchema)
	}
	return result, nil
}

// chartPayloadError decodes a chart error out of an error-status body,
// returning nil when the body carries none.
func chartPayloadError(data []byte) error {
	var response Response
	if json.Unmarshal(data, &response) != nil || response.Chart.Error == nil {
		return nil
	}
	return classifyChartError(response.Chart.Error)
}

// classifyChartError maps the provider's error codes onto the upstream
// taxonomy. "Not Found" and "Unsupported" mean the provider does not
// carry the market; everything else is a schema-level upstream failure.
func classifyChartError(ce *ChartError) error {
	switch ce.Code {
	case "Not Found", "Unsupported":
		return fmt.Errorf("%w: %s", apperrors.ErrExchangeRestricted, ce.Description)
	default:
		return fmt.Errorf("%w: %s: %s", apperrors.ErrBadSchema, ce.Code, ce.Description)
	}
}

// extractRecords converts the indicator arrays into price records, one per
// timestamp whose calendar date falls inside [from, to] and has a non-null
// close. Optional fields attach when present at the same index.
func extractRecords(result Result, symbol string, from, to model.Date, splitEvents []model.SplitEvent) []model.PriceRecord {
	quote := result.Indicators.Quote[0]
	var adjclose []*float64
	if len(result.Indicators.Adjclose) > 0 {
		adjclose = result.Indicators.Adjclose[0].Adjclose
	}

	now := time.Now().UTC()
	records := make([]model.PriceRecord, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		date := model.DateOf(time.Unix(ts, 0))
		if date.Before(from) || date.After(to) {
			continue
		}
		closePtr := at(quote.Close, i)
		if closePtr == nil {
			continue
		}
		rec := model.PriceRecord{
			Symbol:    symbol,
			Date:      date,
			Close:     *closePtr,
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Volume:    at(quote.Volume, i),
			Source:    Source,
			UpdatedAt: now,
		}
		rec.AdjustedClose = at(adjclose, i)
		unadj := splits.UnadjustedClose(rec.Close, date, splitEvents)
		rec.SplitUnadjustedClose = &unadj
		records = append(records, rec)
	}
	return records
}

// extractDividends restricts raw dividend events to the requested range
// and collapses provider duplicates (keyed by timestamp) down to one entry
// per ex-date, newest first.
func extractDividends(events *Events, currency string, from, to model.Date) []model.DividendEvent {
	if events == nil || len(events.Dividends) == 0 {
		return nil
	}
	now := time.Now().UTC()
	byDate := make(map[model.Date]model.DividendEvent, len(events.Dividends))
	for _, raw := range events.Dividends {
		exDate := model.DateOf(time.Unix(raw.Date, 0))
		if exDate.Before(from) || exDate.After(to) {
			continue
		}
		byDate[exDate] = model.DividendEvent{
			ExDate:    exDate,
			Amount:    decimal.NewFromFloat(raw.Amount),
			Currency:  currency,
			UpdatedAt: now,
		}
	}
	out := make([]model.DividendEvent, 0, len(byDate))
	for _, ev := range byDate {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].ExDate.Before(out[i].ExDate) })
	return out
}

// extractSplits converts raw split events, clamping malformed ratios to
// 1:1 and sorting oldest-first for forward adjustment.
func extractSplits(events *Events) []model.SplitEvent {
	if events == nil || len(events.Splits) == 0 {
		return nil
	}
	out := make([]model.SplitEvent, 0, len(events.Splits))
	for _, raw := range events.Splits {
		num, den := raw.Numerator, raw.Denominator
		if num <= 0 || den <= 0 {
			num, den = splits.ParseRatio(raw.SplitRatio)
		}
		out = append(out, model.SplitEvent{
			Date:        model.DateOf(time.Unix(raw.Date, 0)),
			Numerator:   num,
			Denominator: den,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// metaCurrency pulls the currency code out of the raw metadata blob.
func metaCurrency(meta json.RawMessage) string {
	var m struct {
		Currency string `json:"currency"`
	}
	if len(meta) == 0 || json.Unmarshal(meta, &m) != nil {
		return ""
	}
	return m.Currency
}

// at returns the i-th element of a pointer slice, nil when the slice is
// short or the entry is a JSON null.
func at[T any](s []*T, i int) *T {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
