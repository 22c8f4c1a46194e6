package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when a key has no value
var ErrKeyNotFound = errors.New("key not found")

// SessionStore is the durable key/value store behind the session cache. It
// plays the role of the browser's localStorage: flat string keys and values.
type SessionStore interface {
	// Get returns the value stored under key or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// SetMany writes all entries atomically
	SetMany(ctx context.Context, entries map[string]string) error

	// Delete removes keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error

	// Health reports whether the backend is reachable
	Health(ctx context.Context) error

	// Close releases the backend
	Close() error
}
