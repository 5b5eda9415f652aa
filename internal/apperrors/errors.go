package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing data in the system.
// Read-only query paths translate these into empty results rather than
// failing the caller.
var (
	// ErrNoTransactions indicates that no transaction list is available.
	ErrNoTransactions = errors.New("no transactions found")

	// ErrNoPriceHistory indicates that a symbol has no stored price series,
	// or that its backing file yielded zero usable rows.
	ErrNoPriceHistory = errors.New("no price history for symbol")

	// ErrNoDividends indicates that a symbol has no stored dividend events.
	ErrNoDividends = errors.New("no dividends for symbol")

	// ErrNoSplits indicates that a symbol has no stored split events.
	ErrNoSplits = errors.New("no splits for symbol")
)

// Configuration errors are fatal and surface immediately at startup.
var (
	// ErrNoWritableStorage indicates that the configured storage root does
	// not exist, cannot be created, or is not writable.
	ErrNoWritableStorage = errors.New("no writable storage location")
)

// Upstream errors classify provider fetch failures. They are localized to
// the symbol being fetched; the orchestrator logs them and continues.
var (
	// ErrEmptyBody indicates the provider returned an empty response body.
	ErrEmptyBody = errors.New("empty response body")

	// ErrBadStatus indicates a non-success HTTP status from the provider.
	ErrBadStatus = errors.New("non-success response status")

	// ErrBadSchema indicates the provider payload did not match the expected
	// chart schema (missing result, indicators, or quote).
	ErrBadSchema = errors.New("unexpected response schema")

	// ErrExchangeRestricted indicates the provider does not carry data for
	// the symbol's market. The orchestrator records these as skipped rather
	// than failed.
	ErrExchangeRestricted = errors.New("exchange not covered by provider")
)

// Business logic errors.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrSyncInProgress indicates a background sync job is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// FetchError wraps a provider failure with the symbol being fetched.
// The underlying cause is one of the upstream sentinels above (or a raw
// transport error), reachable through errors.Is / errors.As.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err as a FetchError for the given symbol.
func NewFetchError(symbol string, err error) *FetchError {
	return &FetchError{Symbol: symbol, Err: err}
}
