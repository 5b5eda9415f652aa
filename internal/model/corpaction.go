package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SplitEvent represents a stock split effective on Date. The ratio
// numerator/denominator is the factor applied to share counts and the
// divisor applied to pre-split prices. Both sides are at least 1; malformed
// inputs are clamped to a 1:1 no-op by the parsers rather than rejected.
type SplitEvent struct {
	Date        Date  `json:"date"`
	Numerator   int64 `json:"numerator"`
	Denominator int64 `json:"denominator"`
}

// Ratio returns the canonical "numerator:denominator" form.
func (s SplitEvent) Ratio() string {
	return fmt.Sprintf("%d:%d", s.Numerator, s.Denominator)
}

// Factor returns the multiplicative split factor numerator/denominator.
// Events with a non-positive side degrade to 1.
func (s SplitEvent) Factor() float64 {
	if s.Numerator <= 0 || s.Denominator <= 0 {
		return 1
	}
	return float64(s.Numerator) / float64(s.Denominator)
}

// DividendEvent represents a cash dividend with its ex-dividend date.
// Stored series are deduplicated by ex-date, newest first.
type DividendEvent struct {
	ExDate    Date            `json:"exDate"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
