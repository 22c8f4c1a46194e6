package auth

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stayauth/internal/domain"
	"stayauth/internal/repository"
	"stayauth/internal/service/cache"
	"stayauth/internal/service/session"
	"stayauth/pkg/errors"
	"stayauth/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioBCredential = "header.eyJzdWIiOiJ1MSIsImVtYWlsIjoiYUBiLmNvbSJ9.sig"

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type recordingReporter struct {
	mu      sync.Mutex
	reports []bool
}

func (r *recordingReporter) ReportAuth(reachable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, reachable)
}

func (r *recordingReporter) last() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.reports...)
}

// failingCache rejects writes and reads
type failingCache struct{}

func (failingCache) Store(ctx context.Context, s *domain.Session) error { return assert.AnError }
func (failingCache) LoadOnline(ctx context.Context) (*domain.Session, error) {
	return nil, assert.AnError
}
func (failingCache) LoadOffline(ctx context.Context) (*domain.Session, error) {
	return nil, assert.AnError
}
func (failingCache) Current(ctx context.Context) (*domain.Session, error) { return nil, assert.AnError }
func (failingCache) Clear(ctx context.Context) error                     { return assert.AnError }

type fixture struct {
	orchestrator *Orchestrator
	store        repository.SessionStore
	cache        *cache.SessionCache
	reporter     *recordingReporter
	logs         *bytes.Buffer
}

func newFixture(t *testing.T, verifierURL string) *fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	log, err := logger.NewWithWriter("debug", logs)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	sessionCache := cache.NewSessionCache(store, log.Logger)
	reporter := &recordingReporter{}

	o := NewOrchestrator(
		NewHTTPVerifier(verifierURL, "/api/auth/google", time.Second, log),
		sessionCache,
		session.NewSynthesizer(func() time.Time { return fixedNow }),
		log,
		WithReachabilityReporter(reporter),
	)

	return &fixture{orchestrator: o, store: store, cache: sessionCache, reporter: reporter, logs: logs}
}

// transitions returns the "to" states logged for attempt transitions
func (f *fixture) transitions(t *testing.T) []string {
	t.Helper()
	var states []string
	scanner := bufio.NewScanner(strings.NewReader(f.logs.String()))
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == "Auth attempt transition" {
			states = append(states, entry["to"].(string))
		}
	}
	return states
}

func verifierServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func unreachableURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestAuthenticate_VerifiedSession(t *testing.T) {
	srv := verifierServer(t, http.StatusOK,
		`{"token":"abc","user":{"id":"srv-1","name":"Jane","email":"jane@example.com","role":"admin","createdAt":"2025-01-02T03:04:05Z"}}`)
	f := newFixture(t, srv.URL)
	ctx := context.Background()

	got, err := f.orchestrator.Authenticate(ctx, scenarioBCredential)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Token)
	assert.False(t, got.Offline)
	assert.True(t, got.IsVerified())
	assert.Equal(t, "srv-1", got.User.ID)

	token, err := f.store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	rawUser, err := f.store.Get(ctx, "user")
	require.NoError(t, err)
	var user domain.User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &user))
	assert.Equal(t, got.User, user)

	// the offline keyspace is untouched
	_, err = f.store.Get(ctx, "offline_token")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	online, err := f.cache.LoadOnline(ctx)
	require.NoError(t, err)
	require.NotNil(t, online)
	assert.Equal(t, got.Token, online.Token)
	assert.Equal(t, got.User, online.User)

	assert.Equal(t, []string{"verifying", "verified", "idle"}, f.transitions(t))
	assert.Equal(t, []bool{true}, f.reporter.last())
}

func TestAuthenticate_VerifiedWhateverTheUserShape(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expectID string
	}{
		{"numeric phone", `{"id":"u1","phone":5551234}`, "u1"},
		{"underscore id and date-only createdAt", `{"_id":"u1","createdAt":"2024-01-01"}`, "u1"},
		{"numeric id", `{"id":42,"email":"a@b.com"}`, "42"},
		{"extra fields", `{"id":"u1","email":"a@b.com","isVerified":true}`, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := verifierServer(t, http.StatusOK, `{"token":"abc","user":`+tt.user+`}`)
			f := newFixture(t, srv.URL)
			ctx := context.Background()

			got, err := f.orchestrator.Authenticate(ctx, scenarioBCredential)
			require.NoError(t, err)
			assert.Equal(t, "abc", got.Token)
			assert.False(t, got.Offline)
			assert.True(t, got.IsVerified())
			assert.Equal(t, tt.expectID, got.User.ID)

			// the user entry holds the verifier's JSON as sent
			rawUser, err := f.store.Get(ctx, "user")
			require.NoError(t, err)
			assert.JSONEq(t, tt.user, rawUser)

			_, err = f.store.Get(ctx, "offline_token")
			assert.ErrorIs(t, err, repository.ErrKeyNotFound)
			assert.Equal(t, []string{"verifying", "verified", "idle"}, f.transitions(t))
		})
	}
}

func TestAuthenticate_NetworkFailureSynthesizes(t *testing.T) {
	f := newFixture(t, unreachableURL())
	ctx := context.Background()

	got, err := f.orchestrator.Authenticate(ctx, scenarioBCredential)
	require.NoError(t, err)
	assert.True(t, got.Offline)
	assert.Equal(t, "offline_1792143000000", got.Token)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "Offline User", got.User.Name)
	assert.Equal(t, "a@b.com", got.User.Email)
	assert.Equal(t, domain.RoleUser, got.User.Role)

	cached, err := f.cache.LoadOffline(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, cached)

	online, err := f.cache.LoadOnline(ctx)
	require.NoError(t, err)
	assert.Nil(t, online)

	assert.Equal(t, []string{"verifying", "synthesizing", "synthesized", "idle"}, f.transitions(t))
	assert.Equal(t, []bool{false}, f.reporter.last())
}

func TestAuthenticate_RejectedOrInvalidResponseSynthesizes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid credential"}`},
		{"server error", http.StatusInternalServerError, `{}`},
		{"ok without token", http.StatusOK, `{"user":{"id":"x"}}`},
		{"ok with garbage", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := verifierServer(t, tt.status, tt.body)
			f := newFixture(t, srv.URL)

			got, err := f.orchestrator.Authenticate(context.Background(), scenarioBCredential)
			require.NoError(t, err)
			assert.True(t, got.Offline)
			assert.Equal(t, "u1", got.User.ID)

			// the verifier answered, so it is reachable
			assert.Equal(t, []bool{true}, f.reporter.last())
		})
	}
}

func TestAuthenticate_MalformedCredential(t *testing.T) {
	f := newFixture(t, unreachableURL())
	ctx := context.Background()

	got, err := f.orchestrator.Authenticate(ctx, "header.payload")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedCredential)
	assert.ErrorIs(t, err, errors.ErrNoCachedSession)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeMalformedCredential, appErr.Type)

	// no cache write
	for _, key := range []string{"token", "user", "offline_token", "offline_user"} {
		_, err := f.store.Get(ctx, key)
		assert.ErrorIs(t, err, repository.ErrKeyNotFound, key)
	}

	assert.Equal(t, []string{"verifying", "synthesizing", "failed", "idle"}, f.transitions(t))
}

func TestAuthenticate_LastResortReturnsCachedOfflineSession(t *testing.T) {
	f := newFixture(t, unreachableURL())
	ctx := context.Background()

	first, err := f.orchestrator.Authenticate(ctx, scenarioBCredential)
	require.NoError(t, err)

	got, err := f.orchestrator.Authenticate(ctx, "not-a-credential")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestAuthenticate_StoreFailureIsNotFatal(t *testing.T) {
	o := NewOrchestrator(
		NewHTTPVerifier(unreachableURL(), "/verify", time.Second, logger.NewNop()),
		failingCache{},
		session.NewSynthesizer(nil),
		logger.NewNop(),
	)

	got, err := o.Authenticate(context.Background(), scenarioBCredential)
	require.NoError(t, err)
	assert.True(t, got.Offline)

	// the cache read failing at the last resort still ends in the login failure
	_, err = o.Authenticate(context.Background(), "x")
	assert.ErrorIs(t, err, errors.ErrMalformedCredential)
	assert.ErrorIs(t, err, errors.ErrNoCachedSession)
}

func TestAuthenticate_ConcurrentAttemptsAreIndependent(t *testing.T) {
	o := NewOrchestrator(
		NewHTTPVerifier(unreachableURL(), "/verify", time.Second, logger.NewNop()),
		cache.NewSessionCache(repository.NewMemoryStore(), logger.NewNop().Logger),
		session.NewSynthesizer(func() time.Time { return fixedNow }),
		logger.NewNop(),
	)

	const n = 20
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := o.Authenticate(context.Background(), scenarioBCredential)
			if assert.NoError(t, err) {
				tokens[i] = s.Token
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, token := range tokens {
		assert.True(t, domain.IsOfflineToken(token))
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}

func TestOrchestrator_CurrentAndLogout(t *testing.T) {
	f := newFixture(t, unreachableURL())
	ctx := context.Background()

	current, err := f.orchestrator.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	created, err := f.orchestrator.Authenticate(ctx, scenarioBCredential)
	require.NoError(t, err)

	current, err = f.orchestrator.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, current)

	require.NoError(t, f.orchestrator.Logout(ctx))
	require.NoError(t, f.orchestrator.Logout(ctx))

	current, err = f.orchestrator.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
