package handlers

import (
	"errors"
	"net/http"

	"github.com/portfoliokit/pricesync/internal/api/response"
	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/syncer"
)

// SyncHandler exposes the synchronous sync pass and the background
// worker.
type SyncHandler struct {
	orchestrator *syncer.Orchestrator
	worker       *syncer.Worker
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(orchestrator *syncer.Orchestrator, worker *syncer.Worker) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator, worker: worker}
}

// SyncOnce runs a full sync pass synchronously and returns its summary.
func (h *SyncHandler) SyncOnce(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orchestrator.SyncAll(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "sync failed", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, summary)
}

// StartWorker launches a background sync job and returns its status
// without blocking. A job already in flight responds 409 with that job's
// status.
func (h *SyncHandler) StartWorker(w http.ResponseWriter, r *http.Request) {
	status, err := h.worker.Start()
	if errors.Is(err, apperrors.ErrSyncInProgress) {
		response.RespondJSON(w, http.StatusConflict, status)
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to start sync worker", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusAccepted, status)
}

// WorkerStatus returns the current or most recent background job status.
func (h *SyncHandler) WorkerStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := h.worker.Status()
	if !ok {
		response.RespondError(w, http.StatusNotFound, "no sync job has been started", nil)
		return
	}
	response.RespondJSON(w, http.StatusOK, status)
}

// WorkerLog serves the append-only worker log as plain text.
func (h *SyncHandler) WorkerLog(w http.ResponseWriter, r *http.Request) {
	content, err := h.worker.ReadLog()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read worker log", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}
