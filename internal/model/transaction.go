package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is one portfolio transaction as delivered by the external
// import collaborator. The list is read-only to this service.
type Transaction struct {
	Date       Date            `json:"date"`
	Symbol     string          `json:"symbol"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Fees       decimal.Decimal `json:"fees"`
	SplitRatio string          `json:"splitRatio,omitempty"`
	Currency   string          `json:"currency"`
}

// IsBuy reports whether the transaction adds shares.
func (t Transaction) IsBuy() bool {
	typ := strings.ToLower(t.Type)
	return typ == "buy" || typ == "purchase"
}

// IsSell reports whether the transaction removes shares.
func (t Transaction) IsSell() bool {
	typ := strings.ToLower(t.Type)
	return typ == "sell" || typ == "sale"
}

// IsSplit reports whether the transaction adjusts the share count by a
// split ratio. Any type containing "split" qualifies.
func (t Transaction) IsSplit() bool {
	return strings.Contains(strings.ToLower(t.Type), "split")
}
