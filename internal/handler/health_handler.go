package handler

import (
	"net/http"
	"time"

	"stayauth/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
	Store     string    `json:"store"`
	Relay     bool      `json:"relay"`
}

// Check handles GET /health. An unreachable store reports 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "stayauth",
		Store:     string(h.container.Backend),
		Relay:     h.container.Bridge.Attached(),
	}

	status := http.StatusOK
	if err := h.container.Store.Health(r.Context()); err != nil {
		logger.WithError(err).Warn("Session store health check failed")
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response, logger)
}
