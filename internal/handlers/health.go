package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"inventory-dashboard-api/internal/models"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
	Driver() string
}

type HealthHandler struct {
	checker HealthChecker
	version string
}

func NewHealthHandler(checker HealthChecker, version string) *HealthHandler {
	return &HealthHandler{checker: checker, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "healthy",
		Storage: h.checker.Driver(),
		Version: h.version,
	}

	if err := h.checker.Ping(r.Context()); err != nil {
		slog.Error("Health check failed", "storage", resp.Storage, "error", err)
		resp.Status = "unhealthy"
		writeJSONResponse(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}
