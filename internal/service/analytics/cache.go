package analytics

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/redis"
)

// MinCacheTTL is the floor for report caching. The upstream quota is
// unforgiving; anything shorter than this would let a busy dashboard
// burn through it.
const MinCacheTTL = 5 * time.Minute

// DefaultCacheTTL matches the upstream plugin's one-hour transient.
const DefaultCacheTTL = time.Hour

// ReportCache stores normalized report results in Redis keyed by the
// query hash. A nil cache (no Redis configured) is a valid no-op cache.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewReportCache creates a report cache. TTLs below the floor are
// raised to it; a zero TTL selects the default.
func NewReportCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *ReportCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	return &ReportCache{client: client, ttl: ttl, log: log}
}

// TTL returns the effective cache lifetime.
func (c *ReportCache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// Get returns the cached result for a query, or (nil, false) on a miss.
// Cache errors degrade to a miss; the fetch path must not fail because
// Redis hiccuped.
func (c *ReportCache) Get(ctx context.Context, query domain.ReportQuery) (*domain.ReportResult, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	key := c.client.KeyBuilder.KeyReport(query.CacheKey())
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("report cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var result domain.ReportResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.log.Warn("report cache entry corrupt, discarding", zap.Error(err))
		_ = c.client.Delete(ctx, key)
		return nil, false
	}
	return &result, true
}

// Set stores a result under the query's hash. Write failures are
// logged and swallowed.
func (c *ReportCache) Set(ctx context.Context, query domain.ReportQuery, result *domain.ReportResult) {
	if c == nil || c.client == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("failed to marshal report for cache", zap.Error(err))
		return
	}
	key := c.client.KeyBuilder.KeyReport(query.CacheKey())
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("report cache write failed", zap.Error(err))
	}
}

// ClearAll drops every cached report in this environment's namespace
// and returns how many entries were removed. Nothing outside the
// report prefix is touched.
func (c *ReportCache) ClearAll(ctx context.Context) (int, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	return c.client.InvalidatePattern(ctx, c.client.KeyBuilder.PatternReports())
}
