package handlers

import (
	"errors"
	"net/http"

	"github.com/portfoliokit/pricesync/internal/api/response"
	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/coverage"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// CoverageHandler serves the coverage report and readiness statistics.
type CoverageHandler struct {
	analyzer *coverage.Analyzer
	files    *storage.Store
}

// NewCoverageHandler creates a new CoverageHandler
func NewCoverageHandler(analyzer *coverage.Analyzer, files *storage.Store) *CoverageHandler {
	return &CoverageHandler{analyzer: analyzer, files: files}
}

// Report serves the per-symbol coverage report. The completeness query
// parameter defaults to true; "false" skips the weekday analysis and
// marks any symbol with stored prices as fully covered.
func (h *CoverageHandler) Report(w http.ResponseWriter, r *http.Request) {
	txs, err := transactions.Load(h.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		response.RespondJSON(w, http.StatusOK, []model.CoverageRecord{})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load transactions", err.Error())
		return
	}

	completeness := r.URL.Query().Get("completeness") != "false"
	report, err := h.analyzer.Report(r.Context(), txs, completeness)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute coverage", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, report)
}

// Stats serves the aggregate readiness statistics.
func (h *CoverageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	txs, err := transactions.Load(h.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		response.RespondJSON(w, http.StatusOK, model.ReadinessStats{})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load transactions", err.Error())
		return
	}

	stats, err := h.analyzer.Stats(r.Context(), txs)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to compute readiness stats", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, stats)
}
