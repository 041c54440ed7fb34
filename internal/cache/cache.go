// Package cache provides an optional Redis-backed cache for ranked query
// results. The index is immutable for the process lifetime, so cached
// rankings stay valid until explicitly invalidated or expired by TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/vectorspace/docsearch/internal/ranker"
	"github.com/vectorspace/docsearch/pkg/config"
	"github.com/vectorspace/docsearch/pkg/logger"
	"github.com/vectorspace/docsearch/pkg/metrics"
	pkgredis "github.com/vectorspace/docsearch/pkg/redis"
)

const keyPrefix = "docsearch:"

// QueryCache caches ranked result lists keyed by normalized query text
// and limit.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps an established Redis client. A nil Metrics disables the
// Prometheus counters but not the internal stats.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		logger:  logger.WithComponent("query-cache"),
		metrics: m,
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Get returns the cached ranking for query, if present.
func (c *QueryCache) Get(ctx context.Context, query string, limit int) ([]ranker.Result, bool) {
	key := c.buildKey(query, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var results []ranker.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return results, true
}

// Set stores a ranking with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, limit int, results []ranker.Result) {
	key := c.buildKey(query, limit)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking or computes and stores it,
// collapsing concurrent identical queries into one computation. The
// second return reports whether the value came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	computeFn func() ([]ranker.Result, error),
) ([]ranker.Result, bool, error) {
	if results, ok := c.Get(ctx, query, limit); ok {
		return results, true, nil
	}
	key := c.buildKey(query, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, limit); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, limit, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]ranker.Result), false, nil
}

// Invalidate removes every cached ranking.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", normalizeQuery(query), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery makes the key insensitive to word order and casing; the
// ranking of a bag-of-words query is the same either way.
func normalizeQuery(query string) string {
	words := strings.Fields(strings.ToLower(query))
	sort.Strings(words)
	return strings.Join(words, ",")
}
