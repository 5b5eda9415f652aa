// Command pricesync runs the price-history synchronization core from the
// command line: one-shot sync passes and the derived coverage, readiness,
// and NAV reports, against the same storage root the server uses.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/portfoliokit/pricesync/internal/config"
	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/coverage"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/syncer"
	"github.com/portfoliokit/pricesync/internal/timeline"
	"github.com/portfoliokit/pricesync/internal/yahoo"
)

// app bundles the wired collaborators shared by every subcommand.
type app struct {
	files        *storage.Store
	prices       *prices.Store
	corpactions  *corpactions.Store
	analyzer     *coverage.Analyzer
	timeline     *timeline.Builder
	orchestrator *syncer.Orchestrator
	log          *logrus.Logger
}

// buildApp loads configuration and wires the core, validating the storage
// root once.
func buildApp() (*app, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	files, err := storage.New(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	priceStore := prices.NewStore(files)
	corpStore := corpactions.NewStore(files)
	fetcher := yahoo.NewFinanceClient(cfg.Sync.FetchTimeout, files)

	return &app{
		files:        files,
		prices:       priceStore,
		corpactions:  corpStore,
		analyzer:     coverage.NewAnalyzer(priceStore, corpStore, cfg.Sync.LookbackYears),
		timeline:     timeline.NewBuilder(priceStore, files),
		orchestrator: syncer.NewOrchestrator(files, priceStore, corpStore, fetcher, log),
		log:          log,
	}, nil
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&syncCmd{}, "sync")
	subcommands.Register(&coverageCmd{}, "reports")
	subcommands.Register(&statsCmd{}, "reports")
	subcommands.Register(&navCmd{}, "reports")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
