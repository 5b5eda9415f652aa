package handlers

import (
	"net/http"

	"github.com/portfoliokit/pricesync/internal/api/response"
	"github.com/portfoliokit/pricesync/internal/storage"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	files *storage.Store
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(files *storage.Store) *SystemHandler {
	return &SystemHandler{files: files}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Health reports service health and the resolved storage root.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Storage: h.files.Root(),
	})
}
