package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/portfoliokit/pricesync/internal/api/handlers"
	custommiddleware "github.com/portfoliokit/pricesync/internal/api/middleware"
	"github.com/portfoliokit/pricesync/internal/config"
	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/coverage"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/syncer"
	"github.com/portfoliokit/pricesync/internal/timeline"
)

// Deps bundles the collaborators the router needs.
type Deps struct {
	Files        *storage.Store
	Prices       *prices.Store
	CorpActions  *corpactions.Store
	Analyzer     *coverage.Analyzer
	Timeline     *timeline.Builder
	Orchestrator *syncer.Orchestrator
	Worker       *syncer.Worker
	Log          *logrus.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Deps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(deps.Log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.Files)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/sync", func(r chi.Router) {
			syncHandler := handlers.NewSyncHandler(deps.Orchestrator, deps.Worker)
			r.Post("/", syncHandler.SyncOnce)
			r.Post("/worker", syncHandler.StartWorker)
			r.Get("/worker", syncHandler.WorkerStatus)
			r.Get("/log", syncHandler.WorkerLog)
		})

		r.Route("/coverage", func(r chi.Router) {
			coverageHandler := handlers.NewCoverageHandler(deps.Analyzer, deps.Files)
			r.Get("/", coverageHandler.Report)
			r.Get("/stats", coverageHandler.Stats)
		})

		pricesHandler := handlers.NewPricesHandler(deps.Prices, deps.CorpActions)
		r.Get("/prices/{symbol}", pricesHandler.Series)
		r.Get("/dividends/{symbol}", pricesHandler.Dividends)
		r.Get("/splits/{symbol}", pricesHandler.Splits)

		timelineHandler := handlers.NewTimelineHandler(deps.Timeline, deps.Files)
		r.Get("/timeline/{symbol}", timelineHandler.ForSymbol)
		r.Post("/nav/snapshot", timelineHandler.Snapshot)
	})

	return r
}
