package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimelinePoint is one entry in a position timeline: the closing price on
// a trading day together with the shares held after applying every
// transaction dated on or before that day.
type TimelinePoint struct {
	Date        Date            `json:"date"`
	Close       float64         `json:"close"`
	Shares      decimal.Decimal `json:"shares"`
	MarketValue decimal.Decimal `json:"marketValue"`
}

// NAVSnapshot is the persisted net-asset-value artifact: per-symbol
// position timelines, newest-first, keyed by symbol, stamped with the
// generation time.
type NAVSnapshot struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Symbols     map[string][]TimelinePoint `json:"symbols"`
}
