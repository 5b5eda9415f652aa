package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// syncCmd runs one synchronous sync pass.
type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "fetch and merge price history for every portfolio symbol" }
func (*syncCmd) Usage() string {
	return `pricesync sync

  Runs one synchronization pass: loads the transaction list, fetches the
  missing history per symbol, merges it into the price store, and prints
  the per-symbol outcome summary.
`
}
func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	summary, err := a.orchestrator.SyncAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(summary)
}

// coverageCmd prints the coverage report.
type coverageCmd struct {
	completeness bool
}

func (*coverageCmd) Name() string     { return "coverage" }
func (*coverageCmd) Synopsis() string { return "report price-history coverage per symbol" }
func (*coverageCmd) Usage() string {
	return `pricesync coverage [-completeness=false]

  Prints one coverage record per symbol in the transaction list.
`
}

func (c *coverageCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.completeness, "completeness", true, "compute weekday completeness (false marks any symbol with prices as complete)")
}

func (c *coverageCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	txs, err := loadTransactions(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := a.analyzer.Report(ctx, txs, c.completeness)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(report)
}

// statsCmd prints the aggregate readiness statistics.
type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "report aggregate price-store readiness statistics" }
func (*statsCmd) Usage() string {
	return `pricesync stats

  Prints symbol counts per coverage status plus store-wide totals.
`
}
func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	txs, err := loadTransactions(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	stats, err := a.analyzer.Stats(ctx, txs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(stats)
}

// navCmd builds and persists the NAV snapshot.
type navCmd struct{}

func (*navCmd) Name() string     { return "nav" }
func (*navCmd) Synopsis() string { return "build and persist the position/NAV snapshot" }
func (*navCmd) Usage() string {
	return `pricesync nav

  Replays transactions against stored prices for every symbol, writes the
  NAV snapshot artifact, and prints it.
`
}
func (*navCmd) SetFlags(*flag.FlagSet) {}

func (c *navCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	txs, err := loadTransactions(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	snap, err := a.timeline.Snapshot(txs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(snap)
}

// loadTransactions reads the transaction list, treating an absent list as
// empty rather than fatal.
func loadTransactions(a *app) ([]model.Transaction, error) {
	txs, err := transactions.Load(a.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		return nil, nil
	}
	return txs, err
}

func printJSON(v interface{}) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
