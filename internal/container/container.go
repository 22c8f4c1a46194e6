package container

import (
	"context"

	"stayauth/internal/config"
	"stayauth/internal/relay"
	"stayauth/internal/repository"
	"stayauth/internal/service"
	"stayauth/internal/service/auth"
	"stayauth/internal/service/cache"
	"stayauth/internal/service/connectivity"
	"stayauth/internal/service/session"
	"stayauth/pkg/database"
	"stayauth/pkg/logger"
	"stayauth/pkg/redis"
)

// Backend names the durable store in use
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Store        repository.SessionStore
	Backend      Backend
	SessionCache *cache.SessionCache
	Connectivity *connectivity.Service
	Bridge       *relay.Bridge
	RelayReader  *cache.RelayReader
	Services     *service.Services
}

// New creates a new dependency injection container. Redis is used when
// configured and reachable, then SQLite, then process memory.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	store, backend := openStore(ctx, cfg, logger)

	sessionCache := cache.NewSessionCache(store, logger.Named("cache").Logger)
	connectivityService := connectivity.NewService(logger.Named("connectivity").Logger)

	relayTimeout := cfg.RelayTimeout
	if relayTimeout <= 0 {
		relayTimeout = relay.DefaultTimeout
	}
	bridge := relay.NewBridge(relayTimeout, logger.Named("relay").Logger)

	verifier := auth.NewHTTPVerifier(cfg.VerifierURL, cfg.VerifierPath, cfg.VerifierTimeout, logger.Named("verifier"))
	orchestrator := auth.NewOrchestrator(
		verifier,
		sessionCache,
		session.NewSynthesizer(nil),
		logger,
		auth.WithReachabilityReporter(connectivityService),
	)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Backend:      backend,
		SessionCache: sessionCache,
		Connectivity: connectivityService,
		Bridge:       bridge,
		RelayReader:  cache.NewRelayReader(bridge),
		Services: &service.Services{
			Auth:         orchestrator,
			Cache:        sessionCache,
			Connectivity: connectivityService,
		},
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (repository.SessionStore, Backend) {
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, falling back to local store")
		} else {
			logger.WithField("prefix", client.KeyBuilder.GetPrefix()).Info("Redis session store initialized successfully")
			return repository.NewRedisStore(client), BackendRedis
		}
	} else {
		logger.Info("Redis URL not configured, using local store")
	}

	if cfg.SQLitePath != "" {
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			logger.WithError(err).WithField("path", cfg.SQLitePath).Warn("Failed to open SQLite store, falling back to memory")
		} else {
			logger.WithField("path", cfg.SQLitePath).Info("SQLite session store initialized successfully")
			return repository.NewSQLiteStore(db), BackendSQLite
		}
	}

	logger.Warn("Using in-memory session store, sessions will not survive a restart")
	return repository.NewMemoryStore(), BackendMemory
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetConnectivityService returns the connectivity service
func (c *Container) GetConnectivityService() service.ConnectivityService {
	return c.Services.Connectivity
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// Close releases the session store
func (c *Container) Close() error {
	return c.Store.Close()
}
