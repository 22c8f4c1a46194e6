package domain

import (
	"encoding/json"
	"strings"
)

// OfflineTokenPrefix marks tokens synthesized locally. Server-issued tokens
// never carry it.
const OfflineTokenPrefix = "offline_"

// Provenance tags where a session came from
type Provenance string

const (
	ProvenanceVerified Provenance = "verified"
	ProvenanceOffline  Provenance = "offline"
)

// Session is the authenticated state handed to the rest of the application
type Session struct {
	User       User       `json:"user"`
	Token      string     `json:"token"`
	Offline    bool       `json:"offline"`
	Provenance Provenance `json:"-"`

	// RawUser is the user record exactly as the verifier sent it. When set
	// it is persisted instead of re-encoding User.
	RawUser json.RawMessage `json:"-"`
}

// NewVerifiedSession builds a session from a server-issued response
func NewVerifiedSession(resp *VerifiedSession) *Session {
	s := &Session{
		Token:      resp.Token,
		Provenance: ProvenanceVerified,
	}
	if user, err := ParseUser(resp.User); err == nil {
		s.User = user
		s.RawUser = resp.User
	}
	return s
}

// IsVerified reports whether the session was issued by the remote verifier
func (s *Session) IsVerified() bool {
	return s.Provenance == ProvenanceVerified && !s.Offline
}

// IsOfflineToken reports whether a bearer token was synthesized locally
func IsOfflineToken(token string) bool {
	return strings.HasPrefix(token, OfflineTokenPrefix)
}
