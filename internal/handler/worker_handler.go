package handler

import (
	"net/http"

	"stayauth/internal/container"
	"stayauth/internal/relay"
)

// WorkerHandler serves background workers that read the session through the relay
type WorkerHandler struct {
	container *container.Container
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(container *container.Container) *WorkerHandler {
	return &WorkerHandler{
		container: container,
	}
}

// AuthData handles GET /api/worker/auth-data. The worker has no store access,
// so the offline session is read through the relay. The body is always the
// relay reply, {user, token, offline} or {error}.
func (h *WorkerHandler) AuthData(w http.ResponseWriter, r *http.Request) {
	session, err := h.container.RelayReader.LoadOffline(r.Context())
	if err != nil {
		h.container.GetLogger().WithError(err).Debug("Relayed auth data unavailable")
	}
	writeJSON(w, http.StatusOK, relay.ReplyFor(session, err), h.container.GetLogger())
}
