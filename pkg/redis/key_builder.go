package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Online session keys
func (kb *KeyBuilder) KeyToken() string {
	return kb.BuildKey(KeyToken)
}

func (kb *KeyBuilder) KeyUser() string {
	return kb.BuildKey(KeyUser)
}

// Offline session keys
func (kb *KeyBuilder) KeyOfflineToken() string {
	return kb.BuildKey(KeyOfflineToken)
}

func (kb *KeyBuilder) KeyOfflineUser() string {
	return kb.BuildKey(KeyOfflineUser)
}

// SessionKeys returns every session key, online first
func (kb *KeyBuilder) SessionKeys() []string {
	return []string{kb.KeyToken(), kb.KeyUser(), kb.KeyOfflineToken(), kb.KeyOfflineUser()}
}
