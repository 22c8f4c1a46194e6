package repository

import (
	"context"
	"errors"
	"fmt"

	"stayauth/pkg/redis"
)

// redisStore keeps session entries in Redis under environment-prefixed keys
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client) SessionStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.client.KeyBuilder.BuildKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get session entry %s: %w", key, err)
	}
	return value, nil
}

func (s *redisStore) SetMany(ctx context.Context, entries map[string]string) error {
	kvPairs := make(map[string]interface{}, len(entries))
	for key, value := range entries {
		kvPairs[s.client.KeyBuilder.BuildKey(key)] = value
	}

	if err := s.client.SetMultiple(ctx, kvPairs, redis.TTLSession); err != nil {
		return fmt.Errorf("failed to set session entries: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, s.client.KeyBuilder.BuildKey(key))
	}

	if err := s.client.Delete(ctx, prefixed...); err != nil {
		return fmt.Errorf("failed to delete session entries: %w", err)
	}
	return nil
}

func (s *redisStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
