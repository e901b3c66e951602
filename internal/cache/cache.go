// Package cache provides a read-through cache for CRM collections with a
// declared stale time and explicit invalidation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"

	"gitlab.com/yelinaung/event-crm/internal/logger"
)

// Collection keys.
const (
	KeyLeads         = "leads"
	KeyExpenses      = "expenses"
	KeyInventory     = "inventory"
	KeyNotifications = "notifications"
)

// DefaultStaleTime is used when New receives a non-positive stale time.
const DefaultStaleTime = 5 * time.Minute

// Cache loads values through a Store. Concurrent misses on one key share a
// single load. A load that started before an invalidation of its key is
// returned to its callers but never written back.
type Cache struct {
	store     Store
	staleTime time.Duration

	group singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// New returns a Cache over store. A nil store means a fresh MemoryStore.
func New(store Store, staleTime time.Duration) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}

	meter := otel.Meter("gitlab.com/yelinaung/event-crm/internal/cache")
	hits, err := meter.Int64Counter("crm.cache.hits", metric.WithDescription("Read-through cache hits"))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create cache hit counter")
		hits = noop.Int64Counter{}
	}
	misses, err := meter.Int64Counter("crm.cache.misses", metric.WithDescription("Read-through cache misses"))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create cache miss counter")
		misses = noop.Int64Counter{}
	}

	return &Cache{
		store:       store,
		staleTime:   staleTime,
		generations: make(map[string]uint64),
		hits:        hits,
		misses:      misses,
	}
}

// StaleTime returns the configured entry lifetime.
func (c *Cache) StaleTime() time.Duration {
	return c.staleTime
}

// Load returns the cached value for key, or calls load, caches and returns
// its result. Load errors are returned and not cached.
func Load[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.get(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return out, nil
}

func (c *Cache) get(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	attrs := metric.WithAttributes(attribute.String("key", key))

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		c.hits.Add(ctx, 1, attrs)
		return raw, nil
	}
	c.misses.Add(ctx, 1, attrs)

	gen := c.generation(key)
	// The shared load is detached from the first caller so its
	// cancellation does not fail the other waiters.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.writeBack(loadCtx, key, gen, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

// writeBack stores value unless key was invalidated after the load began.
func (c *Cache) writeBack(ctx context.Context, key string, gen uint64, value []byte) {
	if c.generation(key) != gen {
		return
	}
	if err := c.store.Set(ctx, key, value, c.staleTime); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
		return
	}
	// An invalidation may have landed between the check and the write.
	if c.generation(key) != gen {
		_ = c.store.Delete(ctx, key)
	}
}

// Invalidate drops keys so the next Load reloads them. Loads already in
// flight for these keys are detached and will not be written back.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		c.generations[k]++
		c.group.Forget(k)
	}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate %v: %w", keys, err)
	}
	return nil
}
