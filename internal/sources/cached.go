// internal/sources/cached.go
package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"omnisearch/internal/common/cache"
	"omnisearch/internal/common/logger"
	"omnisearch/internal/common/metrics"
)

// CachedClient wraps a Client with a Redis cache-aside layer. Cache
// faults never fail a fetch; they degrade to the underlying source.
type CachedClient struct {
	inner Client
	redis *cache.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedClient(inner Client, rc *cache.RedisClient, ttl time.Duration, log logger.Logger) *CachedClient {
	return &CachedClient{inner: inner, redis: rc, ttl: ttl, log: log}
}

func (c *CachedClient) ID() SourceID { return c.inner.ID() }

func (c *CachedClient) Fetch(ctx context.Context, q Query) ([]SourceItem, error) {
	key := c.cacheKey(q)
	source := string(c.inner.ID())

	cached, err := c.redis.Get(ctx, key)
	if err == nil {
		var items []SourceItem
		if jsonErr := json.Unmarshal([]byte(cached), &items); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues(source, "hit").Inc()
			return items, nil
		}
		// Unreadable entries are evicted and refetched.
		_ = c.redis.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.WithError(err).Warn("cache read failed, falling through to source",
			map[string]interface{}{"source": source})
	}
	metrics.CacheLookups.WithLabelValues(source, "miss").Inc()

	items, err := c.inner.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(items); jsonErr == nil {
		if setErr := c.redis.Set(ctx, key, payload, c.ttl); setErr != nil {
			c.log.WithError(setErr).Warn("cache write failed",
				map[string]interface{}{"source": source})
		}
	}
	return items, nil
}

func (c *CachedClient) cacheKey(q Query) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(q.Text))))
	return "source:" + string(c.inner.ID()) + ":" + hex.EncodeToString(h[:8])
}
