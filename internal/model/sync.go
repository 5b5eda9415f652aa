package model

import "time"

// Per-symbol sync outcome statuses. A skipped symbol is one the provider
// does not cover; a failed one hit a transient or schema error.
const (
	StatusSynced  = "synced"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// SymbolOutcome is the tagged result of syncing one symbol. Failures carry
// the error message; successes carry the number of price rows merged in.
type SymbolOutcome struct {
	Symbol       string `json:"symbol"`
	Status       string `json:"status"`
	RecordsAdded int    `json:"recordsAdded"`
	Error        string `json:"error,omitempty"`
}

// SyncSummary aggregates one full orchestrator pass over the portfolio.
type SyncSummary struct {
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Outcomes   []SymbolOutcome `json:"outcomes"`
	Synced     int             `json:"synced"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
}

// Add records one outcome and bumps the matching counter.
func (s *SyncSummary) Add(o SymbolOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusSynced:
		s.Synced++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
