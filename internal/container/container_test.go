package container

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga-bridge/internal/config"
	"ga-bridge/internal/domain"
	"ga-bridge/internal/store"
	"ga-bridge/pkg/logger"
)

func TestNew_WithoutRedis(t *testing.T) {
	cfg := &config.Config{
		Environment:     "test",
		RedisURL:        "",
		GoogleClientID:  "test-client-id",
		CacheTTLSeconds: config.DefaultCacheTTLSeconds,
	}

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, cfg, c.Config)
	assert.Nil(t, c.RedisClient)
	assert.False(t, c.HasRedis())
	// Settings still work, backed by the in-memory store.
	assert.NotNil(t, c.Settings)
	assert.NotNil(t, c.TokenManager)
	assert.NotNil(t, c.StateIssuer)
	assert.NotNil(t, c.Lister)
	assert.NotNil(t, c.Fetcher)
	// No Redis means no report cache.
	assert.Nil(t, c.ReportCache)
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Environment:     "test",
		RedisURL:        "redis://" + mr.Addr(),
		GoogleClientID:  "test-client-id",
		CacheTTLSeconds: config.DefaultCacheTTLSeconds,
	}

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.True(t, c.HasRedis())
	assert.NotNil(t, c.GetRedisClient())
	assert.NotNil(t, c.ReportCache)
	assert.Equal(t, "staging", c.RedisClient.KeyBuilder.GetPrefix())

	require.NoError(t, c.RedisClient.Close())
}

func TestNew_UnreachableRedisDegrades(t *testing.T) {
	cfg := &config.Config{
		Environment:    "test",
		RedisURL:       "redis://127.0.0.1:1", // nothing listens here
		GoogleClientID: "test-client-id",
	}

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err, "an unreachable Redis must not prevent startup")
	require.NotNil(t, c)

	assert.False(t, c.HasRedis())
	assert.Nil(t, c.ReportCache)
	assert.NotNil(t, c.Settings)
}

func TestNew_SeedsConfiguredProperty(t *testing.T) {
	cfg := &config.Config{
		Environment:    "test",
		GoogleClientID: "test-client-id",
		GAPropertyID:   "123456789",
	}

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err)

	conn, found, err := c.Settings.LoadConnection(context.Background(), store.DefaultScope)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "123456789", conn.PropertyID)
	// Purely numeric ids classify as Universal Analytics.
	assert.Equal(t, domain.GenerationUA, conn.Generation)
}

func TestContainer_Getters(t *testing.T) {
	cfg := &config.Config{
		Environment:    "test",
		GoogleClientID: "test-client-id",
		Port:           "8080",
	}
	log := logger.NewNop()

	c, err := New(cfg, log)
	require.NoError(t, err)

	assert.Equal(t, cfg, c.GetConfig())
	assert.Equal(t, log, c.GetLogger())
	assert.Nil(t, c.GetRedisClient())
}
