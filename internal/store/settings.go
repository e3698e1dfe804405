package store

import (
	"context"
	"encoding/json"
	"fmt"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/redis"
)

// SettingsStore is the key-value persistence the bridge depends on for
// tokens, the connection record and free-form settings. The concrete
// backing is chosen once at startup; the core never asks again.
type SettingsStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Settings is the typed layer over a SettingsStore. It owns the JSON
// encoding and the key namespace; callers only see domain types.
type Settings struct {
	store SettingsStore
	keys  *redis.KeyBuilder
}

// NewSettings creates the typed settings layer.
func NewSettings(store SettingsStore, keys *redis.KeyBuilder) *Settings {
	return &Settings{store: store, keys: keys}
}

// DefaultScope is the site-wide connection namespace. Per-user
// connections pass their own scope; the core treats it as opaque.
const DefaultScope = "global"

// SaveTokens persists a scope's OAuth token set.
func (s *Settings) SaveTokens(ctx context.Context, scope string, ts domain.TokenSet) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("failed to marshal token set: %w", err)
	}
	return s.store.Set(ctx, s.keys.KeyTokens(scope), string(data))
}

// LoadTokens returns the stored token set for a scope, if any.
func (s *Settings) LoadTokens(ctx context.Context, scope string) (domain.TokenSet, bool, error) {
	var ts domain.TokenSet
	raw, found, err := s.store.Get(ctx, s.keys.KeyTokens(scope))
	if err != nil || !found {
		return ts, false, err
	}
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		return ts, false, fmt.Errorf("failed to unmarshal token set: %w", err)
	}
	return ts, true, nil
}

// DeleteTokens removes a scope's token set.
func (s *Settings) DeleteTokens(ctx context.Context, scope string) error {
	return s.store.Delete(ctx, s.keys.KeyTokens(scope))
}

// SaveConnection persists the connection record under its scope.
func (s *Settings) SaveConnection(ctx context.Context, conn domain.Connection) error {
	if conn.Scope == "" {
		conn.Scope = DefaultScope
	}
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}
	return s.store.Set(ctx, s.keys.KeyConnection(conn.Scope), string(data))
}

// LoadConnection returns the stored connection record for a scope.
func (s *Settings) LoadConnection(ctx context.Context, scope string) (domain.Connection, bool, error) {
	var conn domain.Connection
	raw, found, err := s.store.Get(ctx, s.keys.KeyConnection(scope))
	if err != nil || !found {
		return conn, false, err
	}
	if err := json.Unmarshal([]byte(raw), &conn); err != nil {
		return conn, false, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return conn, true, nil
}

// DeleteConnection removes a scope's connection record.
func (s *Settings) DeleteConnection(ctx context.Context, scope string) error {
	return s.store.Delete(ctx, s.keys.KeyConnection(scope))
}
