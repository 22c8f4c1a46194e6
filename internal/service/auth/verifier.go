package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stayauth/internal/domain"
	"stayauth/pkg/errors"
	"stayauth/pkg/logger"
)

// maxErrorBody bounds how much of a failed verifier response is logged
const maxErrorBody = 1024

// HTTPVerifier posts credentials to the backend's verification endpoint
type HTTPVerifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHTTPVerifier creates a verifier for baseURL+path
func NewHTTPVerifier(baseURL, path string, timeout time.Duration, logger *logger.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Endpoint returns the verification URL
func (v *HTTPVerifier) Endpoint() string {
	return v.endpoint
}

// Verify sends {credential} and expects {token, user} back. Any 2xx answer
// carrying a token is a success, whatever shape the user record has. Every
// failure is reported as a verification error wrapping ErrVerificationUnreachable.
func (v *HTTPVerifier) Verify(ctx context.Context, credential string) (*domain.VerifiedSession, error) {
	body, err := json.Marshal(map[string]string{"credential": credential})
	if err != nil {
		return nil, errors.NewInternalError("Failed to encode verification request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		v.logger.WithError(err).Error("Failed to create verification request")
		return nil, errors.NewVerificationError("Failed to create verification request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.WithError(err).Warn("Verification endpoint unreachable")
		return nil, errors.NewVerificationError("Verification endpoint unreachable", err)
	}
	defer resp.Body.Close()

	v.logger.WithField("status_code", resp.StatusCode).Debug("Received verification response")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			v.logger.WithError(readErr).WithField("status_code", resp.StatusCode).Warn("Failed to read verifier error response")
		} else {
			v.logger.WithFields(map[string]interface{}{
				"status_code":   resp.StatusCode,
				"response_body": string(errBody),
			}).Warn("Verifier rejected credential")
		}
		return nil, errors.NewVerificationError("Verification failed",
			fmt.Errorf("verifier returned status %d", resp.StatusCode))
	}

	var verified domain.VerifiedSession
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil {
		v.logger.WithError(err).Warn("Failed to decode verification response")
		return nil, errors.NewVerificationError("Invalid verification response", err)
	}

	if verified.Token == "" {
		v.logger.Warn("Verification response carries no token")
		return nil, errors.NewVerificationError("Invalid verification response",
			fmt.Errorf("response missing token"))
	}

	user, err := domain.ParseUser(verified.User)
	if err != nil {
		v.logger.WithError(err).Warn("Verification response carries no usable user record")
	}

	v.logger.WithField("user_id", user.ID).Debug("Credential verified")
	return &verified, nil
}
