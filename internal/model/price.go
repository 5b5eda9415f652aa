package model

import "time"

// PriceRecord represents one day's closing data for a security.
// Close is the only required price field; the remaining OHLCV fields are
// attached when the provider reported them. A stored series holds at most
// one record per (symbol, date) and is displayed newest-first.
type PriceRecord struct {
	Symbol               string    `json:"symbol"`
	Date                 Date      `json:"date"`
	Close                float64   `json:"close"`
	Open                 *float64  `json:"open,omitempty"`
	High                 *float64  `json:"high,omitempty"`
	Low                  *float64  `json:"low,omitempty"`
	Volume               *int64    `json:"volume,omitempty"`
	AdjustedClose        *float64  `json:"adjustedClose,omitempty"`
	SplitUnadjustedClose *float64  `json:"splitUnadjustedClose,omitempty"`
	Source               string    `json:"source"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
