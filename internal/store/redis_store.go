package store

import (
	"context"

	"ga-bridge/pkg/redis"
)

// RedisStore backs the SettingsStore interface with Redis. Settings
// are stored without expiry; they live until explicitly deleted.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed settings store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key)
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Delete(ctx, key)
}
