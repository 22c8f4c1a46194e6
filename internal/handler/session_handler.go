package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"stayauth/internal/container"
	"stayauth/internal/domain"
	"stayauth/internal/middleware"
	"stayauth/pkg/errors"
)

// SessionHandler handles login, logout and session lookup
type SessionHandler struct {
	container *container.Container
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(container *container.Container) *SessionHandler {
	return &SessionHandler{
		container: container,
	}
}

// LoginRequest is the body of POST /api/session/login
type LoginRequest struct {
	Credential string `json:"credential"`
}

// UserProfileResponse represents the user profile response
type UserProfileResponse struct {
	User    domain.User `json:"user"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
}

// Login handles POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("Invalid request body", nil), logger)
		return
	}

	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		middleware.WriteError(w, r, errors.NewValidationError("Credential is required",
			map[string]interface{}{"field": "credential"}), logger)
		return
	}

	session, err := h.container.GetAuthService().Authenticate(r.Context(), credential)
	if err != nil {
		middleware.WriteError(w, r, errors.FromAuthFailure(err), logger)
		return
	}

	writeJSON(w, http.StatusOK, session, logger)
}

// Current handles GET /api/session
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	session, err := h.container.GetAuthService().Current(r.Context())
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to load session", err), logger)
		return
	}
	if session == nil {
		middleware.WriteError(w, r, errors.NewNotFoundError("No active session"), logger)
		return
	}

	writeJSON(w, http.StatusOK, session, logger)
}

// Logout handles DELETE /api/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	if err := h.container.GetAuthService().Logout(r.Context()); err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to clear session", err), logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/user/profile behind middleware.VerifiedOnly
func (h *SessionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		logger.Error("Session not found in context")
		middleware.WriteError(w, r, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	logger.WithField("user_id", session.User.ID).Debug("Getting user profile")

	writeJSON(w, http.StatusOK, UserProfileResponse{
		User:    session.User,
		Success: true,
		Message: "User profile retrieved successfully",
	}, logger)
}
