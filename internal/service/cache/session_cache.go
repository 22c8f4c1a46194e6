// Package cache persists sessions in the four-key layout shared with the web
// front-end and exposes them as whole Session values.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stayauth/internal/domain"
	"stayauth/internal/repository"
	"stayauth/pkg/redis"

	"go.uber.org/zap"
)

// keyspace names the token/user pair of one provenance
type keyspace struct {
	token string
	user  string
}

var (
	onlineKeys  = keyspace{token: redis.KeyToken, user: redis.KeyUser}
	offlineKeys = keyspace{token: redis.KeyOfflineToken, user: redis.KeyOfflineUser}
)

// SessionCache splits sessions into separate token and user entries on
// write and joins them on read. Online and offline sessions live in
// different keys and never overwrite each other.
type SessionCache struct {
	store  repository.SessionStore
	logger *zap.Logger
}

// NewSessionCache creates a session cache on top of a durable store
func NewSessionCache(store repository.SessionStore, logger *zap.Logger) *SessionCache {
	return &SessionCache{
		store:  store,
		logger: logger,
	}
}

// Store writes the session into the keyspace matching its provenance. A user
// record received from the verifier is written exactly as sent.
func (c *SessionCache) Store(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return fmt.Errorf("cannot store nil session")
	}

	keys := onlineKeys
	if session.Offline {
		keys = offlineKeys
	}

	userData := []byte(session.RawUser)
	if len(userData) == 0 {
		var err error
		userData, err = json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("failed to marshal session user: %w", err)
		}
	}

	err := c.store.SetMany(ctx, map[string]string{
		keys.token: session.Token,
		keys.user:  string(userData),
	})
	if err != nil {
		c.logger.Error("Failed to store session",
			zap.String("user_id", session.User.ID),
			zap.Bool("offline", session.Offline),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Session stored",
		zap.String("user_id", session.User.ID),
		zap.Bool("offline", session.Offline))
	return nil
}

// LoadOnline returns the stored verified session, or nil when there is none
func (c *SessionCache) LoadOnline(ctx context.Context) (*domain.Session, error) {
	return c.load(ctx, onlineKeys, false)
}

// LoadOffline returns the stored offline session, or nil when there is none
func (c *SessionCache) LoadOffline(ctx context.Context) (*domain.Session, error) {
	return c.load(ctx, offlineKeys, true)
}

// Current returns the verified session if present, else the offline one
func (c *SessionCache) Current(ctx context.Context) (*domain.Session, error) {
	session, err := c.LoadOnline(ctx)
	if err != nil || session != nil {
		return session, err
	}
	return c.LoadOffline(ctx)
}

// Clear removes both keyspaces. Clearing an empty cache is a no-op.
func (c *SessionCache) Clear(ctx context.Context) error {
	err := c.store.Delete(ctx,
		onlineKeys.token, onlineKeys.user,
		offlineKeys.token, offlineKeys.user,
	)
	if err != nil {
		c.logger.Error("Failed to clear sessions", zap.Error(err))
		return err
	}

	c.logger.Debug("Sessions cleared")
	return nil
}

func (c *SessionCache) load(ctx context.Context, keys keyspace, offline bool) (*domain.Session, error) {
	token, err := c.store.Get(ctx, keys.token)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	userData, err := c.store.Get(ctx, keys.user)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			c.logger.Warn("Session token without user entry, treating as absent",
				zap.String("key", keys.user))
			return nil, nil
		}
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		// Corrupted entries read as absent, like a cache miss
		c.logger.Warn("Session user entry corrupted, treating as absent",
			zap.String("key", keys.user),
			zap.Error(err))
		return nil, nil
	}

	provenance := domain.ProvenanceVerified
	if offline {
		provenance = domain.ProvenanceOffline
	}

	return &domain.Session{
		User:       user,
		Token:      token,
		Offline:    offline,
		Provenance: provenance,
	}, nil
}
