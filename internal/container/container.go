package container

import (
	"context"
	"time"

	"ga-bridge/internal/config"
	"ga-bridge/internal/domain"
	"ga-bridge/internal/service/analytics"
	"ga-bridge/internal/service/auth"
	"ga-bridge/internal/store"
	"ga-bridge/pkg/logger"
	"ga-bridge/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	RedisClient  *redis.Client
	Settings     *store.Settings
	StateIssuer  *auth.StateIssuer
	TokenManager *auth.TokenManager
	Lister       *analytics.Lister
	Fetcher      *analytics.Fetcher
	ReportCache  *analytics.ReportCache
}

// New creates a new dependency injection container. The settings
// backing is chosen once here: Redis when configured and reachable,
// otherwise an in-process store that loses state on restart.
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	keys := redis.NewKeyBuilder(cfg.Environment)
	var settingsStore store.SettingsStore
	if redisClient != nil {
		settingsStore = store.NewRedisStore(redisClient)
	} else {
		log.Warn("Using in-memory settings store, tokens will not survive a restart")
		settingsStore = store.NewMemoryStore()
	}
	settings := store.NewSettings(settingsStore, keys)

	if cfg.GAPropertyID != "" {
		seedConnection(settings, cfg.GAPropertyID, log)
	}

	creds := domain.Credentials{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.RedirectURL,
	}
	tokenManager := auth.NewTokenManager(creds, log)
	stateIssuer := auth.NewStateIssuer(cfg.StateSigningSecret)

	var reportCache *analytics.ReportCache
	if redisClient != nil {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		reportCache = analytics.NewReportCache(redisClient, ttl, log.Logger)
	}

	lister := analytics.NewLister(log.Logger)
	fetcher := analytics.NewFetcher(tokenManager, reportCache, log.Logger)

	return &Container{
		Config:       cfg,
		Logger:       log,
		RedisClient:  redisClient,
		Settings:     settings,
		StateIssuer:  stateIssuer,
		TokenManager: tokenManager,
		Lister:       lister,
		Fetcher:      fetcher,
		ReportCache:  reportCache,
	}, nil
}

// seedConnection pins the configured property for the global scope
// unless a connection was already selected through the API.
func seedConnection(settings *store.Settings, propertyID string, log *logger.Logger) {
	ctx := context.Background()
	if _, found, err := settings.LoadConnection(ctx, store.DefaultScope); err != nil || found {
		return
	}

	conn := domain.Connection{
		PropertyID: propertyID,
		Generation: domain.DetectGeneration(propertyID),
		Scope:      store.DefaultScope,
	}
	if err := settings.SaveConnection(ctx, conn); err != nil {
		log.WithError(err).Warn("Failed to seed connection from GA_PROPERTY_ID")
		return
	}
	log.WithField("property_id", propertyID).Info("Seeded connection from GA_PROPERTY_ID")
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
