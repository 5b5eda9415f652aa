package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliokit/pricesync/internal/api/response"
	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/corpactions"
	"github.com/portfoliokit/pricesync/internal/model"
	"github.com/portfoliokit/pricesync/internal/prices"
	"github.com/portfoliokit/pricesync/internal/symbol"
)

// PricesHandler serves stored price series and corporate actions.
type PricesHandler struct {
	prices      *prices.Store
	corpactions *corpactions.Store
}

// NewPricesHandler creates a new PricesHandler
func NewPricesHandler(priceStore *prices.Store, corpStore *corpactions.Store) *PricesHandler {
	return &PricesHandler{prices: priceStore, corpactions: corpStore}
}

// Series serves a symbol's stored price series, newest-first. A symbol
// with no history yields an empty array, not an error.
func (h *PricesHandler) Series(w http.ResponseWriter, r *http.Request) {
	_, base := symbol.Resolve(chi.URLParam(r, "symbol"))
	series, err := h.prices.Load(base)
	if errors.Is(err, apperrors.ErrNoPriceHistory) {
		response.RespondJSON(w, http.StatusOK, []model.PriceRecord{})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load price series", err.Error())
		return
	}
	prices.SortDescending(series)
	response.RespondJSON(w, http.StatusOK, series)
}

// Dividends serves a symbol's dividend events, newest-first.
func (h *PricesHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	_, base := symbol.Resolve(chi.URLParam(r, "symbol"))
	events, err := h.corpactions.LoadDividends(base)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load dividends", err.Error())
		return
	}
	if events == nil {
		events = []model.DividendEvent{}
	}
	response.RespondJSON(w, http.StatusOK, events)
}

// Splits serves a symbol's split events, newest-first for display.
func (h *PricesHandler) Splits(w http.ResponseWriter, r *http.Request) {
	_, base := symbol.Resolve(chi.URLParam(r, "symbol"))
	events, err := h.corpactions.LoadSplits(base)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load splits", err.Error())
		return
	}
	// LoadSplits returns oldest-first for adjustment; display wants newest-first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if events == nil {
		events = []model.SplitEvent{}
	}
	response.RespondJSON(w, http.StatusOK, events)
}
