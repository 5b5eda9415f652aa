package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/portfoliokit/pricesync/internal/api"
	"github.com/portfoliokit/pricesync/internal/config"
	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/coverage"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/syncer"
	"github.com/portfoliokit/pricesync/internal/timeline"
	"github.com/portfoliokit/pricesync/internal/yahoo"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Resolve and validate the storage root once
	files, err := storage.New(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to prepare storage: %v", err)
	}
	log.Infof("Using storage root: %s", files.Root())

	// Create stores and services
	priceStore := prices.NewStore(files)
	corpStore := corpactions.NewStore(files)
	analyzer := coverage.NewAnalyzer(priceStore, corpStore, cfg.Sync.LookbackYears)
	timelineBuilder := timeline.NewBuilder(priceStore, files)
	fetcher := yahoo.NewFinanceClient(cfg.Sync.FetchTimeout, files)
	orchestrator := syncer.NewOrchestrator(files, priceStore, corpStore, fetcher, log)
	worker := syncer.NewWorker(orchestrator, cfg.Storage.LogDir)

	// Create router
	router := api.NewRouter(api.Deps{
		Files:        files,
		Prices:       priceStore,
		CorpActions:  corpStore,
		Analyzer:     analyzer,
		Timeline:     timelineBuilder,
		Orchestrator: orchestrator,
		Worker:       worker,
		Log:          log,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
