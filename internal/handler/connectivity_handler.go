package handler

import (
	"encoding/json"
	"net/http"

	"stayauth/internal/container"
	"stayauth/internal/middleware"
	"stayauth/internal/service/connectivity"
	"stayauth/pkg/errors"
)

// ConnectivityHandler exposes the connectivity advisory
type ConnectivityHandler struct {
	container *container.Container
}

// NewConnectivityHandler creates a new connectivity handler
func NewConnectivityHandler(container *container.Container) *ConnectivityHandler {
	return &ConnectivityHandler{
		container: container,
	}
}

// EventRequest is the body of POST /api/connectivity/events
type EventRequest struct {
	Type string `json:"type"`
}

// ReachabilityRequest is the body of POST /api/connectivity/reachability.
// Omitted subsystems keep their last reported value.
type ReachabilityRequest struct {
	API       *bool `json:"api"`
	WebSocket *bool `json:"websocket"`
	Auth      *bool `json:"auth"`
}

// Status handles GET /api/connectivity
func (h *ConnectivityHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.container.GetConnectivityService().Status(), h.container.GetLogger())
}

// Event handles POST /api/connectivity/events
func (h *ConnectivityHandler) Event(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("Invalid request body", nil), logger)
		return
	}

	event, err := connectivity.ParseEvent(req.Type)
	if err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("Unknown event type",
			map[string]interface{}{"type": req.Type}), logger)
		return
	}

	svc := h.container.GetConnectivityService()
	if err := svc.Publish(event); err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to publish event", err), logger)
		return
	}

	writeJSON(w, http.StatusOK, svc.Status(), logger)
}

// Reachability handles POST /api/connectivity/reachability
func (h *ConnectivityHandler) Reachability(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req ReachabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("Invalid request body", nil), logger)
		return
	}

	reach := h.container.Connectivity.Reachability()
	if req.API != nil {
		reach.API = *req.API
	}
	if req.WebSocket != nil {
		reach.WebSocket = *req.WebSocket
	}
	if req.Auth != nil {
		reach.Auth = *req.Auth
	}

	svc := h.container.GetConnectivityService()
	svc.ReportReachability(reach)

	writeJSON(w, http.StatusOK, svc.Status(), logger)
}

// Dismiss handles POST /api/connectivity/dismiss
func (h *ConnectivityHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	svc := h.container.GetConnectivityService()
	svc.Dismiss()

	writeJSON(w, http.StatusOK, svc.Status(), h.container.GetLogger())
}
