package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/panekit/internal/log"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// NoExpiration keeps an entry until it is deleted or flushed.
const NoExpiration = gocache.NoExpiration

// NewInMemoryCacheManager creates a go-cache backed manager. useCase labels
// log lines so several caches can be told apart.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager implements CacheManager on top of go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// Get retrieves an item from the cache by its key.
func (c *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(string(key))
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// GetWithRefresh retrieves an item and, when found, pushes its expiry out by ttl.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	value, found := c.Get(ctx, key)
	if !found {
		return value, false
	}
	c.Set(ctx, key, value, ttl)
	return value, true
}

// Set stores value under key for ttl.
func (c *InMemoryCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes the given keys.
func (c *InMemoryCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	if len(keys) > 0 {
		log.Debug(log.CatCache, "cache delete", "cache", c.useCase, "keys", len(keys))
	}
	return nil
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush(ctx context.Context) error {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "cache", c.useCase)
	return nil
}

// Len returns the number of entries, including expired ones not yet cleaned up.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}

// OnEvicted registers fn to run when an entry expires or is deleted.
func (c *InMemoryCacheManager[K, V]) OnEvicted(fn func(key K, value V)) {
	c.cache.OnEvicted(func(key string, value any) {
		v, ok := value.(V)
		if !ok {
			return
		}
		fn(K(key), v)
	})
}
