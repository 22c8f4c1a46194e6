// Package session builds degraded, locally trusted sessions from unverified
// credential claims.
package session

import (
	"strconv"
	"sync"
	"time"

	"stayauth/internal/domain"
)

// Clock returns the current time. Tests inject a fixed or stepping clock.
type Clock func() time.Time

// Synthesizer turns an UnverifiedClaim into an offline session
type Synthesizer struct {
	clock Clock

	mu       sync.Mutex
	lastTick int64
}

// NewSynthesizer creates a synthesizer. A nil clock falls back to time.Now.
func NewSynthesizer(clock Clock) *Synthesizer {
	if clock == nil {
		clock = time.Now
	}
	return &Synthesizer{clock: clock}
}

// Synthesize builds an offline session. Tokens are "offline_<millis>" and are
// strictly increasing per synthesizer: two calls inside the same clock tick
// (or a clock that steps backwards) get the last tick plus one.
func (s *Synthesizer) Synthesize(claim *domain.UnverifiedClaim) *domain.Session {
	now := s.clock()
	tick := s.nextTick(now.UnixMilli())

	return &domain.Session{
		User: domain.User{
			ID:        claim.Subject,
			Name:      claim.Name,
			Email:     claim.Email,
			Role:      domain.RoleUser,
			Picture:   claim.Picture,
			CreatedAt: now.UTC().Round(0),
		},
		Token:      domain.OfflineTokenPrefix + strconv.FormatInt(tick, 10),
		Offline:    true,
		Provenance: domain.ProvenanceOffline,
	}
}

func (s *Synthesizer) nextTick(millis int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if millis <= s.lastTick {
		millis = s.lastTick + 1
	}
	s.lastTick = millis
	return millis
}
