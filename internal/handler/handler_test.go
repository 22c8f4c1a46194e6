package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stayauth/internal/config"
	"stayauth/internal/container"
	"stayauth/internal/domain"
	"stayauth/internal/relay"
	"stayauth/internal/service/connectivity"
	"stayauth/pkg/errors"
	"stayauth/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCredential = "header.eyJzdWIiOiJ1MSIsImVtYWlsIjoiYUBiLmNvbSJ9.sig"

type testServer struct {
	container *container.Container
	router    *chi.Mux
}

// newTestServer builds the full router over an in-memory store. verifierURL
// empty means the verifier is unreachable.
func newTestServer(t *testing.T, verifierURL string) *testServer {
	t.Helper()

	if verifierURL == "" {
		srv := httptest.NewServer(http.NotFoundHandler())
		verifierURL = srv.URL
		srv.Close()
	}

	cfg := &config.Config{
		Environment:     "test",
		VerifierURL:     verifierURL,
		VerifierPath:    "/api/auth/google",
		VerifierTimeout: time.Second,
		RelayTimeout:    time.Second,
	}
	c, err := container.New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &testServer{container: c, router: NewRouter(c)}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) attachForeground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.container.Bridge.Serve(ctx, s.container.SessionCache)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, s.container.Bridge.Attached, time.Second, time.Millisecond)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func verifierStub(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"srv-1","name":"Jane","email":"jane@example.com","role":"admin"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "memory", body.Store)
	assert.False(t, body.Relay)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLogin_Verified(t *testing.T) {
	s := newTestServer(t, verifierStub(t).URL)

	rec := s.do(t, http.MethodPost, "/api/session/login", `{"credential":"`+testCredential+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	session := decode[domain.Session](t, rec)
	assert.Equal(t, "abc", session.Token)
	assert.False(t, session.Offline)
	assert.Equal(t, "srv-1", session.User.ID)

	// the verified token opens the profile endpoint
	rec = s.do(t, http.MethodGet, "/api/user/profile", "", "Authorization", "Bearer abc")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[UserProfileResponse](t, rec)
	assert.True(t, profile.Success)
	assert.Equal(t, "srv-1", profile.User.ID)
}

func TestLogin_OfflineFallback(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodPost, "/api/session/login", `{"credential":"`+testCredential+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	session := decode[domain.Session](t, rec)
	assert.True(t, session.Offline)
	assert.True(t, domain.IsOfflineToken(session.Token))
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "Offline User", session.User.Name)
	assert.Equal(t, "a@b.com", session.User.Email)

	// offline tokens never reach server-only endpoints
	rec = s.do(t, http.MethodGet, "/api/user/profile", "", "Authorization", "Bearer "+session.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the failed verifier shows up as the auth advisory
	rec = s.do(t, http.MethodGet, "/api/connectivity", "")
	status := decode[connectivity.Status](t, rec)
	assert.Equal(t, connectivity.AdvisoryAuth, status.Advisory)
	assert.True(t, status.Visible)
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   errors.ErrorType
		wantMsg    string
	}{
		{"invalid json", `{`, http.StatusBadRequest, errors.ErrorTypeValidation, "Invalid request body"},
		{"empty credential", `{"credential":"  "}`, http.StatusBadRequest, errors.ErrorTypeValidation, "Credential is required"},
		{"malformed credential", `{"credential":"header.payload"}`, http.StatusUnauthorized, errors.ErrorTypeMalformedCredential, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/session/login", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decode[errors.ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantType, body.Error.Type)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestSession_CurrentAndLogout(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/session/login", `{"credential":"`+testCredential+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[domain.Session](t, rec)

	rec = s.do(t, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[domain.Session](t, rec)
	assert.Equal(t, created.Token, current.Token)

	rec = s.do(t, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkerAuthData(t *testing.T) {
	s := newTestServer(t, "")

	// no foreground attached
	rec := s.do(t, http.MethodGet, "/api/worker/auth-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"Foreground unavailable"}`, rec.Body.String())

	s.attachForeground(t)

	rec = s.do(t, http.MethodGet, "/api/worker/auth-data", "")
	assert.JSONEq(t, `{"error":"No auth data available"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/session/login", `{"credential":"`+testCredential+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[domain.Session](t, rec)

	rec = s.do(t, http.MethodGet, "/api/worker/auth-data", "")
	reply := decode[relay.Reply](t, rec)
	assert.Empty(t, reply.Error)
	assert.True(t, reply.Offline)
	assert.Equal(t, created.Token, reply.Token)
	require.NotNil(t, reply.User)
	assert.Equal(t, "u1", reply.User.ID)
}

func TestConnectivityEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/connectivity", "")
	status := decode[connectivity.Status](t, rec)
	assert.Equal(t, domain.Online, status.State)
	assert.Equal(t, connectivity.AdvisoryNone, status.Advisory)
	assert.False(t, status.Visible)

	rec = s.do(t, http.MethodPost, "/api/connectivity/reachability", `{"api":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	status = decode[connectivity.Status](t, rec)
	assert.Equal(t, connectivity.AdvisoryAPI, status.Advisory)
	assert.True(t, status.Visible)

	rec = s.do(t, http.MethodPost, "/api/connectivity/events", `{"type":"offline"}`)
	status = decode[connectivity.Status](t, rec)
	assert.Equal(t, domain.Offline, status.State)
	assert.Equal(t, connectivity.AdvisoryBoth, status.Advisory)

	rec = s.do(t, http.MethodPost, "/api/connectivity/dismiss", "")
	status = decode[connectivity.Status](t, rec)
	assert.False(t, status.Visible)

	rec = s.do(t, http.MethodPost, "/api/connectivity/events", `{"type":"online"}`)
	status = decode[connectivity.Status](t, rec)
	assert.Equal(t, domain.Online, status.State)
	assert.Equal(t, connectivity.AdvisoryNone, status.Advisory)
	assert.Empty(t, status.Message)

	rec = s.do(t, http.MethodPost, "/api/connectivity/events", `{"type":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[errors.ErrorResponse](t, rec)
	assert.Equal(t, "Endpoint not found", body.Error.Message)
}
