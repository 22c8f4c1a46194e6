package cache

import (
	"context"
	"errors"

	"stayauth/internal/domain"
	"stayauth/internal/relay"
	apperrors "stayauth/pkg/errors"
)

// RelayReader reads the offline session from a context without store access
// by asking the foreground through the relay bridge.
type RelayReader struct {
	bridge *relay.Bridge
}

// NewRelayReader creates a reader bound to a bridge
func NewRelayReader(bridge *relay.Bridge) *RelayReader {
	return &RelayReader{bridge: bridge}
}

// LoadOffline returns the relayed offline session. "No auth data" reads as
// nil with no error. A missing foreground or a timeout return the matching
// relay sentinel.
func (r *RelayReader) LoadOffline(ctx context.Context) (*domain.Session, error) {
	reply := r.bridge.RequestAuthData(ctx)

	err := reply.Err()
	if errors.Is(err, apperrors.ErrNoCachedSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reply.Session(), nil
}
