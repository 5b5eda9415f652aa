package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfoliokit/pricesync/internal/model"
)

// PriceRecordBuilder provides a fluent interface for creating test price
// records.
//
// Example usage:
//
//	rec := testutil.NewPriceRecord("AAPL", "2024-01-02").WithClose(185.5).Build()
type PriceRecordBuilder struct {
	rec model.PriceRecord
}

// NewPriceRecord creates a builder with sensible defaults.
func NewPriceRecord(symbol, date string) *PriceRecordBuilder {
	return &PriceRecordBuilder{rec: model.PriceRecord{
		Symbol:    symbol,
		Date:      model.MustParseDate(date),
		Close:     100,
		Source:    "test",
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

// WithClose sets the closing price.
func (b *PriceRecordBuilder) WithClose(close float64) *PriceRecordBuilder {
	b.rec.Close = close
	return b
}

// WithOHLC sets the open, high, and low prices.
func (b *PriceRecordBuilder) WithOHLC(open, high, low float64) *PriceRecordBuilder {
	b.rec.Open = &open
	b.rec.High = &high
	b.rec.Low = &low
	return b
}

// WithVolume sets the traded volume.
func (b *PriceRecordBuilder) WithVolume(v int64) *PriceRecordBuilder {
	b.rec.Volume = &v
	return b
}

// WithAdjustedClose sets the provider-adjusted close.
func (b *PriceRecordBuilder) WithAdjustedClose(v float64) *PriceRecordBuilder {
	b.rec.AdjustedClose = &v
	return b
}

// WithSource sets the provenance tag.
func (b *PriceRecordBuilder) WithSource(source string) *PriceRecordBuilder {
	b.rec.Source = source
	return b
}

// Build returns the record.
func (b *PriceRecordBuilder) Build() model.PriceRecord {
	return b.rec
}

// Split creates a split event.
func Split(date string, num, den int64) model.SplitEvent {
	return model.SplitEvent{
		Date:        model.MustParseDate(date),
		Numerator:   num,
		Denominator: den,
	}
}

// Dividend creates a dividend event.
func Dividend(exDate string, amount float64, currency string) model.DividendEvent {
	return model.DividendEvent{
		ExDate:    model.MustParseDate(exDate),
		Amount:    decimal.NewFromFloat(amount),
		Currency:  currency,
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Transaction creates a transaction of the given type.
func Transaction(date, symbol, typ string, quantity float64) model.Transaction {
	return model.Transaction{
		Date:     model.MustParseDate(date),
		Symbol:   symbol,
		Type:     typ,
		Quantity: decimal.NewFromFloat(quantity),
		Currency: "USD",
	}
}

// SplitTransaction creates a split-type transaction with a ratio string.
func SplitTransaction(date, symbol, ratio string) model.Transaction {
	return model.Transaction{
		Date:       model.MustParseDate(date),
		Symbol:     symbol,
		Type:       "stock split",
		SplitRatio: ratio,
		Currency:   "USD",
	}
}
