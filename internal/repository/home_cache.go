// internal/repository/home_cache.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"placement-workers/internal/common/metrics"
	"placement-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// HomeLister is the source behind CachedHomes.
type HomeLister interface {
	ListAll(ctx context.Context) ([]models.Home, error)
}

// CachedHomes is a Redis read-through cache over the full home pool. Cache
// failures fall through to the source; they never fail a read.
type CachedHomes struct {
	source HomeLister
	redis  *redis.Client
	key    string
	ttl    time.Duration
}

// NewCachedHomes returns a cache; a nil client or zero ttl disables caching.
func NewCachedHomes(source HomeLister, rdb *redis.Client, key string, ttl time.Duration) *CachedHomes {
	return &CachedHomes{source: source, redis: rdb, key: key, ttl: ttl}
}

func (c *CachedHomes) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

func (c *CachedHomes) ListAll(ctx context.Context) ([]models.Home, error) {
	if !c.enabled() {
		return c.source.ListAll(ctx)
	}

	val, err := c.redis.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var homes []models.Home
		if jsonErr := json.Unmarshal(val, &homes); jsonErr == nil {
			metrics.HomesCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
			return homes, nil
		}
		metrics.HomesCacheLookups.WithLabelValues(metrics.CacheError).Inc()
	case errors.Is(err, redis.Nil):
		metrics.HomesCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		metrics.HomesCacheLookups.WithLabelValues(metrics.CacheError).Inc()
	}

	homes, err := c.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(homes)
	if err == nil {
		err = c.redis.Set(ctx, c.key, data, c.ttl).Err()
	}
	if err != nil {
		metrics.HomesCacheLookups.WithLabelValues(metrics.CacheError).Inc()
	}

	return homes, nil
}

// Invalidate drops the cached pool so the next read goes to the source.
func (c *CachedHomes) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, c.key).Err()
}
