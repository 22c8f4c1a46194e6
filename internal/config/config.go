package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port            string
	AllowedOrigins  []string
	LogLevel        string
	Environment     string
	VerifierURL     string
	VerifierPath    string
	VerifierTimeout time.Duration
	RedisURL        string
	SQLitePath      string // empty disables the SQLite store
	RelayTimeout    time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		VerifierURL:     getEnv("VERIFIER_URL", "http://localhost:5000"),
		VerifierPath:    getEnv("VERIFIER_PATH", "/api/auth/google"),
		VerifierTimeout: getDurationEnv("VERIFIER_TIMEOUT", 10*time.Second),
		RedisURL:        getEnv("REDIS_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "stayauth.db"),
		RelayTimeout:    getDurationEnv("RELAY_TIMEOUT", 5*time.Second),
	}, nil
}

// IsDevelopment reports whether the agent runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
