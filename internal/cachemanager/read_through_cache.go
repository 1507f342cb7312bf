package cachemanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// ReadThroughCache fills cache misses by calling fn. Concurrent misses for
// the same key share a single fn call and receive the same value.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
	group           singleflight.Group
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for key or loads it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// GetWithRefresh is Get, but a hit also extends the entry's expiry.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// Forget drops key from the cache so the next Get reloads it.
func (r *ReadThroughCache[K, V, I]) Forget(ctx context.Context, key K) {
	r.group.Forget(string(key))
	_ = r.cache.Delete(ctx, key)
}

func (r *ReadThroughCache[K, V, I]) load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	// The shared load outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(string(key), func() (any, error) {
		// A second check catches a fill that landed between the miss and here.
		if value, ok := r.cache.Get(loadCtx, key); ok {
			return value, nil
		}
		value, err := r.fn(loadCtx, input)
		if err != nil {
			return value, err
		}
		r.cache.Set(loadCtx, key, value, ttl)
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		value, ok := res.Val.(V)
		if !ok {
			return zero, fmt.Errorf("read-through cache: unexpected value type %T", res.Val)
		}
		return value, nil
	}
}
