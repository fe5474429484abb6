package handler

import (
	"net/http"

	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/httputil"
)

// SystemHandler serves health and per-user stats
type SystemHandler struct {
	docService  docsysSvc.DocumentService
	version     string
	environment string
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(docService docsysSvc.DocumentService, version, environment string) *SystemHandler {
	return &SystemHandler{
		docService:  docService,
		version:     version,
		environment: environment,
	}
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// Health is a liveness check
// GET /health and /api/v1/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		Environment: h.environment,
	})
}

// Stats summarizes the caller's vault
// GET /api/v1/stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.docService.Stats(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
