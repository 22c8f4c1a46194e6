package service

import (
	"context"

	"stayauth/internal/domain"
	"stayauth/internal/service/connectivity"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Authenticate verifies a credential remotely and falls back to an
	// offline session when the verifier cannot be used
	Authenticate(ctx context.Context, credential string) (*domain.Session, error)

	// Current returns the active session, verified first, or nil
	Current(ctx context.Context) (*domain.Session, error)

	// Logout clears every stored session
	Logout(ctx context.Context) error
}

// Verifier exchanges a credential for a server-issued session
type Verifier interface {
	Verify(ctx context.Context, credential string) (*domain.VerifiedSession, error)
}

// SessionCache persists sessions across restarts
type SessionCache interface {
	Store(ctx context.Context, session *domain.Session) error
	LoadOnline(ctx context.Context) (*domain.Session, error)
	LoadOffline(ctx context.Context) (*domain.Session, error)
	Current(ctx context.Context) (*domain.Session, error)
	Clear(ctx context.Context) error
}

// ReachabilityReporter receives the verifier's reachability after each remote attempt
type ReachabilityReporter interface {
	ReportAuth(reachable bool)
}

// ConnectivityService defines the interface for the connectivity advisory
type ConnectivityService interface {
	// State returns the process-wide online/offline flag
	State() domain.ConnectivityState

	// Publish records a platform online/offline event
	Publish(event connectivity.Event) error

	// Status returns the banner currently shown, if any
	Status() connectivity.Status

	// ReportReachability records subsystem reachability reported by clients
	ReportReachability(r connectivity.Reachability)

	// Dismiss hides the current advisory until it changes
	Dismiss()
}

// Services aggregates all service interfaces
type Services struct {
	Auth         AuthService
	Cache        SessionCache
	Connectivity ConnectivityService
}
