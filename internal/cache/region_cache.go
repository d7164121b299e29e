package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/epicast-dev/epicast-go/internal/models"
)

const lastFetchedKey = "region_cache:last_fetched"

// RegionCacheEntry represents a cached region snapshot with metadata
type RegionCacheEntry struct {
	Region    models.RegionState `json:"region"`
	CachedAt  time.Time          `json:"cached_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// RegionCacheStats tracks cache performance metrics
type RegionCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// RedisRegionCache caches per-region outbreak statistics in Redis so the
// projection endpoints do not hit Postgres on every request. It also tracks
// when the collector last refreshed the dataset, which the API surfaces to
// users as data staleness.
type RedisRegionCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string

	statsMu sync.RWMutex
	stats   RegionCacheStats
}

// NewRedisRegionCache creates a new Redis-based region cache
func NewRedisRegionCache(redisClient *redis.Client, ttl time.Duration) *RedisRegionCache {
	return &RedisRegionCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "region_cache:",
	}
}

// Get retrieves a region snapshot from Redis cache
func (c *RedisRegionCache) Get(ctx context.Context, name string) (*models.RegionState, bool) {
	cacheKey := c.prefix + name

	data, err := c.redis.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).WithField("region", name).Warn("Redis error getting cached region")
		c.miss()
		return nil, false
	}

	var entry RegionCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		logrus.WithError(err).WithField("region", name).Warn("Error deserializing cached region")
		c.miss()
		return nil, false
	}

	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()

	return &entry.Region, true
}

// Set stores a region snapshot in Redis cache
func (c *RedisRegionCache) Set(ctx context.Context, region models.RegionState) error {
	now := time.Now()
	entry := RegionCacheEntry{
		Region:    region,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.prefix+region.Name, data, c.ttl).Err(); err != nil {
		return err
	}

	c.statsMu.Lock()
	c.stats.Sets++
	c.statsMu.Unlock()

	return nil
}

// SetLastFetched records when the collector last refreshed the dataset. The
// stamp carries no TTL: stale is still more informative than missing.
func (c *RedisRegionCache) SetLastFetched(ctx context.Context, fetchedAt time.Time) error {
	return c.redis.Set(ctx, lastFetchedKey, fetchedAt.UTC().Format(time.RFC3339), 0).Err()
}

// LastFetched returns the last dataset refresh time, or ok=false if the
// collector has not completed a fetch yet.
func (c *RedisRegionCache) LastFetched(ctx context.Context) (time.Time, bool) {
	data, err := c.redis.Get(ctx, lastFetchedKey).Result()
	if err == redis.Nil {
		return time.Time{}, false
	}
	if err != nil {
		logrus.WithError(err).Warn("Redis error getting last-fetched stamp")
		return time.Time{}, false
	}

	fetchedAt, err := time.Parse(time.RFC3339, data)
	if err != nil {
		logrus.WithError(err).Warn("Malformed last-fetched stamp in cache")
		return time.Time{}, false
	}
	return fetchedAt, true
}

// GetStats returns a copy of current cache statistics
func (c *RedisRegionCache) GetStats() RegionCacheStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

func (c *RedisRegionCache) miss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}
