package elevation

import (
	"context"
	"fmt"
	"sync"
)

// PointCache is the process-lifetime in-memory elevation cache keyed by
// coordinates rounded to 5 decimal places (~1.1 m at the equator). Many
// readers, rare writers. An optional durable second tier backs it: on
// miss, the durable tier is consulted before falling back to the
// network, and every network resolution is written through to both
// tiers.
type PointCache struct {
	mu      sync.RWMutex
	values  map[string]float64
	durable DurableCache
}

// DurableCache is the optional SQLite-backed second tier; implemented
// by pkg/cache.SQLiteCache.
type DurableCache interface {
	GetElevation(ctx context.Context, key string) (elevationM float64, ok bool)
	SetElevation(ctx context.Context, key string, lat, lon, elevationM float64, source string) error
}

// NewPointCache creates an empty cache. durable may be nil, in which
// case only the in-memory tier is used.
func NewPointCache(durable DurableCache) *PointCache {
	return &PointCache{
		values:  make(map[string]float64),
		durable: durable,
	}
}

// Key returns the rounded-coordinate cache key for a point.
func Key(p Point) string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lon)
}

// Get returns the cached elevation for p, checking the in-memory tier
// first and the durable tier on miss.
func (c *PointCache) Get(ctx context.Context, p Point) (float64, bool) {
	key := Key(p)

	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v, true
	}

	if c.durable == nil {
		return 0, false
	}
	v, ok = c.durable.GetElevation(ctx, key)
	if !ok {
		return 0, false
	}

	c.mu.Lock()
	c.values[key] = v
	c.mu.Unlock()
	return v, true
}

// Set stores elevationM for p in both cache tiers. source identifies
// which strategy produced the value ("tile" or "provider"), for the
// durable tier's bookkeeping.
func (c *PointCache) Set(ctx context.Context, p Point, elevationM float64, source string) {
	key := Key(p)

	c.mu.Lock()
	c.values[key] = elevationM
	c.mu.Unlock()

	if c.durable != nil {
		_ = c.durable.SetElevation(ctx, key, p.Lat, p.Lon, elevationM, source)
	}
}

// Clear empties the in-memory tier. The durable tier, if any, is left
// intact; tests that need a cold cache construct a fresh PointCache
// instead.
func (c *PointCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]float64)
}

// Len returns the number of entries in the in-memory tier.
func (c *PointCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
