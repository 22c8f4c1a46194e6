package domain

import (
	"encoding/json"
	"time"
)

// Defaults applied to claims missing from a decoded credential
const (
	DefaultClaimSubject = "offline-user"
	DefaultClaimName    = "Offline User"
	DefaultClaimEmail   = "offline@example.com"
)

// UnverifiedClaim is an identity decoded from a credential payload WITHOUT any
// signature check. It must never be treated as a trust assertion: the only
// consumer is the offline session synthesizer. Verified identities arrive as
// a VerifiedSession from the remote verifier instead.
type UnverifiedClaim struct {
	Subject  string
	Name     string
	Email    string
	Picture  string
	IssuedAt time.Time // zero when the credential carries no iat
}

// VerifiedSession is the `{token, user}` body returned by the remote verifier.
// User is kept as sent so it can be persisted unchanged.
type VerifiedSession struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty"`
}
