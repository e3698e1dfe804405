package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	// Create a miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Create client with test redis
	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		environment string
		expectError bool
	}{
		{
			name:        "Invalid URL",
			url:         "invalid://url",
			environment: "test",
			expectError: true,
		},
		{
			name:        "Empty URL",
			url:         "",
			environment: "test",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, tt.environment, zap.NewNop())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestNewClient_ValidURL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.KeyBuilder)
	assert.NoError(t, client.Close())
}

func TestClient_Get(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	tests := []struct {
		name          string
		key           string
		setValue      string
		expectedValue string
		expectError   bool
	}{
		{
			name:          "Get existing key",
			key:           "test:key1",
			setValue:      "value1",
			expectedValue: "value1",
			expectError:   false,
		},
		{
			name:          "Get non-existing key",
			key:           "test:nonexistent",
			setValue:      "",
			expectedValue: "",
			expectError:   true, // Returns redis.Nil for non-existent key
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setValue != "" {
				mr.Set(tt.key, tt.setValue)
			}

			value, err := client.Get(ctx, tt.key)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, Nil, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedValue, value)
			}
		})
	}
}

func TestClient_Set(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	tests := []struct {
		name        string
		key         string
		value       interface{}
		ttl         time.Duration
		expectError bool
	}{
		{
			name:        "Set string value",
			key:         "test:key1",
			value:       "value1",
			ttl:         time.Minute,
			expectError: false,
		},
		{
			name:        "Set with no expiration",
			key:         "test:key3",
			value:       "permanent",
			ttl:         0,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Set(ctx, tt.key, tt.value, tt.ttl)
			assert.NoError(t, err)

			// Verify the value was set
			val, _ := mr.Get(tt.key)
			assert.NotEmpty(t, val)

			// Check TTL if set
			if tt.ttl > 0 {
				ttl := mr.TTL(tt.key)
				assert.Greater(t, ttl, time.Duration(0))
			}
		})
	}
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	// Set some test keys
	mr.Set("test:key1", "value1")
	mr.Set("test:key2", "value2")
	mr.Set("test:key3", "value3")

	tests := []struct {
		name string
		keys []string
	}{
		{
			name: "Delete single key",
			keys: []string{"test:key1"},
		},
		{
			name: "Delete multiple keys",
			keys: []string{"test:key2", "test:key3"},
		},
		{
			name: "Delete non-existent key",
			keys: []string{"test:nonexistent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Delete(ctx, tt.keys...)
			assert.NoError(t, err)

			// Verify keys were deleted
			for _, key := range tt.keys {
				val, _ := mr.Get(key)
				assert.Empty(t, val)
			}
		})
	}
}

func TestClient_Exists(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	mr.Set("test:exists1", "value1")
	mr.Set("test:exists2", "value2")

	tests := []struct {
		name          string
		keys          []string
		expectedCount int64
	}{
		{
			name:          "Single existing key",
			keys:          []string{"test:exists1"},
			expectedCount: 1,
		},
		{
			name:          "Multiple existing keys",
			keys:          []string{"test:exists1", "test:exists2"},
			expectedCount: 2,
		},
		{
			name:          "Non-existent key",
			keys:          []string{"test:nonexistent"},
			expectedCount: 0,
		},
		{
			name:          "Mixed existing and non-existent",
			keys:          []string{"test:exists1", "test:nonexistent"},
			expectedCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := client.Exists(ctx, tt.keys...)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCount, count)
		})
	}
}

func TestClient_InvalidatePattern(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	// Set test keys
	mr.Set("staging:gabridge:report:aaa", "value1")
	mr.Set("staging:gabridge:report:bbb", "value2")
	mr.Set("staging:gabridge:tokens:global", "keep")

	removed, err := client.InvalidatePattern(ctx, "staging:gabridge:report:*")
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Non-matching keys survive
	val, err := mr.Get("staging:gabridge:tokens:global")
	require.NoError(t, err)
	assert.Equal(t, "keep", val)

	// Nothing left to remove
	removed, err = client.InvalidatePattern(ctx, "staging:gabridge:report:*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	// Test healthy Redis
	err := client.Health(ctx)
	assert.NoError(t, err)

	// Test unhealthy Redis (close the miniredis)
	mr.Close()
	err = client.Health(ctx)
	assert.Error(t, err)
}

func TestClient_Close(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	// Close should not error
	err := client.Close()
	assert.NoError(t, err)

	// After close, operations should fail
	ctx := context.Background()
	_, err = client.Get(ctx, "test:key")
	assert.Error(t, err)
}

func TestClient_KeyBuilderIntegration(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	assert.NotNil(t, client.KeyBuilder)

	key := client.KeyBuilder.KeyTokens("global")

	err := client.Set(ctx, key, `{"access_token":"at"}`, time.Hour)
	assert.NoError(t, err)

	value, err := client.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, `{"access_token":"at"}`, value)

	val, _ := mr.Get(key)
	assert.Equal(t, `{"access_token":"at"}`, val)
}
