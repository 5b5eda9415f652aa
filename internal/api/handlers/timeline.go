package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliokit/pricesync/internal/api/response"
	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/storage"
	"github.com/portfoliokit/pricesync/internal/timeline"
	"github.com/portfoliokit/pricesync/internal/transactions"
)

// TimelineHandler serves position timelines and the NAV snapshot.
type TimelineHandler struct {
	builder *timeline.Builder
	files   *storage.Store
}

// NewTimelineHandler creates a new TimelineHandler
func NewTimelineHandler(builder *timeline.Builder, files *storage.Store) *TimelineHandler {
	return &TimelineHandler{builder: builder, files: files}
}

// ForSymbol serves a symbol's position timeline, newest-first. Symbols
// with no transactions or no stored prices yield an empty array.
func (h *TimelineHandler) ForSymbol(w http.ResponseWriter, r *http.Request) {
	txs, err := transactions.Load(h.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		response.RespondJSON(w, http.StatusOK, []model.TimelinePoint{})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load transactions", err.Error())
		return
	}

	points, err := h.builder.ForSymbol(chi.URLParam(r, "symbol"), txs)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to build timeline", err.Error())
		return
	}
	if points == nil {
		points = []model.TimelinePoint{}
	}
	response.RespondJSON(w, http.StatusOK, points)
}

// Snapshot builds and persists the NAV snapshot artifact and returns it.
func (h *TimelineHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	txs, err := transactions.Load(h.files)
	if errors.Is(err, apperrors.ErrNoTransactions) {
		response.RespondJSON(w, http.StatusOK, model.NAVSnapshot{Symbols: map[string][]model.TimelinePoint{}})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load transactions", err.Error())
		return
	}

	snap, err := h.builder.Snapshot(txs)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to build nav snapshot", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, snap)
}
