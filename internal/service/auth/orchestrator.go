package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"

	"stayauth/internal/domain"
	"stayauth/internal/service"
	"stayauth/internal/service/credential"
	"stayauth/internal/service/session"
	"stayauth/pkg/errors"
	"stayauth/pkg/logger"

	"github.com/google/uuid"
)

// State is a step of one authentication attempt
type State string

const (
	StateIdle         State = "idle"
	StateVerifying    State = "verifying"
	StateVerified     State = "verified"
	StateSynthesizing State = "synthesizing"
	StateSynthesized  State = "synthesized"
	StateFailed       State = "failed"
)

// Orchestrator implements service.AuthService. It makes one remote attempt
// per call and falls back to a locally synthesized session.
type Orchestrator struct {
	verifier    service.Verifier
	cache       service.SessionCache
	synthesizer *session.Synthesizer
	reporter    service.ReachabilityReporter
	logger      *logger.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithReachabilityReporter forwards verifier reachability after each attempt
func WithReachabilityReporter(r service.ReachabilityReporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// NewOrchestrator creates a new auth orchestrator
func NewOrchestrator(verifier service.Verifier, cache service.SessionCache, synthesizer *session.Synthesizer, logger *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		verifier:    verifier,
		cache:       cache,
		synthesizer: synthesizer,
		logger:      logger.Named("auth"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// attempt is the state machine of a single Authenticate call
type attempt struct {
	state  State
	logger *logger.Logger
}

func (a *attempt) transition(to State) {
	a.logger.WithFields(map[string]interface{}{
		"from": string(a.state),
		"to":   string(to),
	}).Debug("Auth attempt transition")
	a.state = to
}

// Authenticate returns a verified session when the verifier accepts the
// credential, otherwise an offline session built from the decoded claims.
// When the credential cannot be decoded either, a previously cached offline
// session is returned; failing that the error matches both
// ErrMalformedCredential and ErrNoCachedSession.
func (o *Orchestrator) Authenticate(ctx context.Context, rawCredential string) (*domain.Session, error) {
	a := &attempt{
		state:  StateIdle,
		logger: o.logger.WithField("attempt_id", uuid.NewString()),
	}
	defer a.transition(StateIdle)

	a.transition(StateVerifying)
	verified, err := o.verifier.Verify(ctx, rawCredential)
	if err == nil {
		o.reportAuth(true)
		a.transition(StateVerified)

		s := domain.NewVerifiedSession(verified)
		o.store(ctx, a, s)
		a.logger.WithField("user_id", s.User.ID).Info("Authenticated with verified session")
		return s, nil
	}

	o.reportAuth(!isTransportError(err))
	a.logger.WithError(err).Warn("Verification failed, falling back to offline session")
	a.transition(StateSynthesizing)

	claim, decodeErr := credential.Decode(rawCredential)
	if decodeErr != nil {
		return o.lastResort(ctx, a, decodeErr)
	}

	s := o.synthesizer.Synthesize(claim)
	o.store(ctx, a, s)
	a.transition(StateSynthesized)
	a.logger.WithField("user_id", s.User.ID).Info("Authenticated with offline session")
	return s, nil
}

// lastResort returns a cached offline session for a credential that could
// not be decoded
func (o *Orchestrator) lastResort(ctx context.Context, a *attempt, decodeErr error) (*domain.Session, error) {
	cached, err := o.cache.LoadOffline(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to read cached offline session")
	}
	if err == nil && cached != nil {
		a.transition(StateSynthesized)
		a.logger.WithField("user_id", cached.User.ID).Info("Authenticated with cached offline session")
		return cached, nil
	}

	a.transition(StateFailed)
	a.logger.WithError(decodeErr).Warn("Authentication failed")
	return nil, fmt.Errorf("%w: %w", decodeErr, errors.ErrNoCachedSession)
}

// store persists a session. Failures are logged and do not fail the attempt.
func (o *Orchestrator) store(ctx context.Context, a *attempt, s *domain.Session) {
	if err := o.cache.Store(ctx, s); err != nil {
		a.logger.WithError(err).WithField("offline", s.Offline).Error("Failed to cache session")
	}
}

func (o *Orchestrator) reportAuth(reachable bool) {
	if o.reporter != nil {
		o.reporter.ReportAuth(reachable)
	}
}

// Current returns the active session, verified first, or nil
func (o *Orchestrator) Current(ctx context.Context) (*domain.Session, error) {
	return o.cache.Current(ctx)
}

// Logout clears every stored session
func (o *Orchestrator) Logout(ctx context.Context) error {
	if err := o.cache.Clear(ctx); err != nil {
		return errors.NewInternalError("Failed to clear session", err)
	}
	o.logger.Info("Sessions cleared")
	return nil
}

// isTransportError reports whether the verifier could not be reached at all,
// as opposed to answering with an error
func isTransportError(err error) bool {
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}
