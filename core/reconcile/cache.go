package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cachedName is one resolved location name.
type cachedName struct {
	name  string
	built time.Time
}

// NameCache is a LocationNamer that memoizes another one.
// Lookups for the same location are collapsed with singleflight; names are kept in
// process for ttl and, when a Redis client is given, shared with other workers.
type NameCache struct {
	source LocationNamer
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]cachedName
	sf      singleflight.Group
	now     func() time.Time
}

// NewNameCache wraps source. rdb may be nil.
func NewNameCache(source LocationNamer, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *NameCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NameCache{
		source:  source,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]cachedName),
		now:     time.Now,
	}
}

// LocationName returns the cached name or resolves it through the source.
func (c *NameCache) LocationName(ctx context.Context, shop, locationID string) (string, error) {
	key := nameCacheKey(shop, locationID)

	// Fast path
	if name, ok := c.lookup(key); ok {
		return name, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if name, ok := c.lookup(key); ok {
			return name, nil
		}

		if name, ok := c.fromRedis(ctx, key); ok {
			c.store(key, name)
			return name, nil
		}

		name, err := c.source.LocationName(ctx, shop, locationID)
		if err != nil {
			return "", err
		}

		c.store(key, name)
		c.toRedis(ctx, key, name)
		return name, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Invalidate drops a location from the process cache and Redis.
func (c *NameCache) Invalidate(ctx context.Context, shop, locationID string) {
	key := nameCacheKey(shop, locationID)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			c.logger.Warn("Failed to drop cached location name", zap.String("key", key), zap.Error(err))
		}
	}
}

func (c *NameCache) lookup(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(entry) {
		return "", false
	}
	return entry.name, true
}

func (c *NameCache) expired(entry cachedName) bool {
	if c.ttl == 0 {
		return true // No caching
	}
	return c.now().Sub(entry.built) > c.ttl
}

func (c *NameCache) store(key, name string) {
	c.mu.Lock()
	c.entries[key] = cachedName{name: name, built: c.now()}
	c.mu.Unlock()
}

// fromRedis is best effort: a Redis failure is logged and treated as a miss.
func (c *NameCache) fromRedis(ctx context.Context, key string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	name, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("Shared location name cache unavailable", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return name, true
}

func (c *NameCache) toRedis(ctx context.Context, key, name string) {
	if c.rdb == nil || c.ttl == 0 {
		return
	}
	if err := c.rdb.Set(ctx, key, name, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to share location name", zap.String("key", key), zap.Error(err))
	}
}

func nameCacheKey(shop, locationID string) string {
	return "location_name:" + shop + ":" + NumericID(locationID)
}
