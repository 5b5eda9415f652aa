package yahoo

import "encoding/json"

// Response represents the raw JSON response structure from the Yahoo
// Finance chart API.
//
// Price arrays are decoded into pointer slices because the provider emits
// JSON nulls for days with no data; a nil entry means "not reported" and
// must not be confused with zero. Meta is kept as a raw blob so it can be
// persisted verbatim for diagnostics.
type Response struct {
	Chart struct {
		Result []Result    `json:"result"`
		Error  *ChartError `json:"error"`
	} `json:"chart"`
}

// ChartError is the provider's structured error payload.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is one chart result: metadata, timestamps, indicator arrays, and
// corporate action events.
type Result struct {
	Meta       json.RawMessage `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators Indicators      `json:"indicators"`
	Events     *Events         `json:"events"`
}

// Indicators holds the per-timestamp price arrays. Quote is always
// requested; Adjclose is present when includeAdjClose is set.
type Indicators struct {
	Quote    []Quote    `json:"quote"`
	Adjclose []Adjclose `json:"adjclose"`
}

// Quote holds OHLCV arrays indexed in lockstep with Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Volume []*int64   `json:"volume"`
}

// Adjclose holds the adjusted close array.
type Adjclose struct {
	Adjclose []*float64 `json:"adjclose"`
}

// Events holds corporate actions keyed by the provider's event timestamp.
type Events struct {
	Dividends map[string]DividendEvent `json:"dividends"`
	Splits    map[string]SplitEvent    `json:"splits"`
}

// DividendEvent is one raw dividend entry.
type DividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// SplitEvent is one raw split entry.
type SplitEvent struct {
	Date        int64  `json:"date"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
	SplitRatio  string `json:"splitRatio"`
}
