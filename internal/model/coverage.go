package model

// Coverage status values for a symbol's price history.
const (
	CoverageComplete = "complete"
	CoveragePartial  = "partial"
	CoverageMissing  = "missing"
)

// CoverageRecord summarizes how complete the stored price history is for
// one symbol appearing in the transaction list.
type CoverageRecord struct {
	Ticker              string `json:"ticker"`
	Exchange            string `json:"exchange,omitempty"`
	Currency            string `json:"currency,omitempty"`
	EarliestTransaction Date   `json:"earliestTransaction"`
	EarliestPrice       *Date  `json:"earliestPrice,omitempty"`
	LatestPrice         *Date  `json:"latestPrice,omitempty"`
	TotalTradingDays    int    `json:"totalTradingDays"`
	MissingDays         int    `json:"missingDays"`
	CoveragePercent     float64 `json:"coveragePercent"`
	SplitCount          int    `json:"splitCount"`
	LastSplitDate       *Date  `json:"lastSplitDate,omitempty"`
	Status              string `json:"status"`
}

// ReadinessStats aggregates coverage across the whole store.
type ReadinessStats struct {
	Symbols        int   `json:"symbols"`
	Complete       int   `json:"complete"`
	Partial        int   `json:"partial"`
	Missing        int   `json:"missing"`
	TotalPriceRows int   `json:"totalPriceRows"`
	OldestPrice    *Date `json:"oldestPrice,omitempty"`
	NewestPrice    *Date `json:"newestPrice,omitempty"`
}
