package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Sentinel errors of the authentication fallback. Match them with errors.Is.
var (
	// ErrMalformedCredential means the credential could not be structurally parsed.
	ErrMalformedCredential = stderrors.New("malformed credential")

	// ErrVerificationUnreachable covers network failures, non-2xx statuses and
	// responses without a token from the remote verifier.
	ErrVerificationUnreachable = stderrors.New("verification unreachable")

	// ErrNoCachedSession means the offline cache was empty at the last-resort read.
	ErrNoCachedSession = stderrors.New("no cached session")

	// ErrRelayTimeout means the foreground did not reply in time.
	ErrRelayTimeout = stderrors.New("relay timed out")

	// ErrRelayUnavailable means no foreground is attached to the relay.
	ErrRelayUnavailable = stderrors.New("foreground unavailable")

	// ErrOfflineToken means a locally synthesized token reached a path that
	// requires a server-issued one.
	ErrOfflineToken = stderrors.New("offline token not accepted")
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation              ErrorType = "validation"
	ErrorTypeAuthentication          ErrorType = "authentication"
	ErrorTypeNotFound                ErrorType = "not_found"
	ErrorTypeInternal                ErrorType = "internal"
	ErrorTypeExternal                ErrorType = "external"
	ErrorTypeMalformedCredential     ErrorType = "malformed_credential"
	ErrorTypeVerificationUnreachable ErrorType = "verification_unreachable"
	ErrorTypeNoCachedSession         ErrorType = "no_cached_session"
	ErrorTypeRelay                   ErrorType = "relay"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewVerificationError wraps a remote verifier failure
func NewVerificationError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeVerificationUnreachable,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   fmt.Errorf("%w: %w", ErrVerificationUnreachable, internal),
	}
}

// NewMalformedCredentialError reports a credential that cannot be parsed
func NewMalformedCredentialError(message string, internal error) *AppError {
	if internal == nil {
		internal = ErrMalformedCredential
	} else {
		internal = fmt.Errorf("%w: %w", ErrMalformedCredential, internal)
	}
	return &AppError{
		Type:       ErrorTypeMalformedCredential,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Internal:   internal,
	}
}

// FromAuthFailure maps a terminal authentication error to the login-failed
// notice. The original failure decides the type, even when no cached session
// was found either.
func FromAuthFailure(err error) *AppError {
	switch {
	case stderrors.Is(err, ErrMalformedCredential):
		return &AppError{
			Type:       ErrorTypeMalformedCredential,
			Message:    "Login failed",
			StatusCode: http.StatusUnauthorized,
			Internal:   err,
		}
	case stderrors.Is(err, ErrNoCachedSession):
		return &AppError{
			Type:       ErrorTypeNoCachedSession,
			Message:    "Login failed",
			StatusCode: http.StatusUnauthorized,
			Internal:   err,
		}
	default:
		return NewInternalError("Login failed", err)
	}
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Type      ErrorType              `json:"type"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
