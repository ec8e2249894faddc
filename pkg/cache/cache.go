// Package cache provides the two durable, SQLite-backed caches used by
// the pipeline: a generic byte-blob cache for raw provider responses
// (consulted by pkg/request before a network round trip) and a typed
// elevation-point cache (consulted by pkg/elevation after its in-memory
// point cache misses). Both survive across pipeline runs and process
// restarts.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aurel42/sunviewfinder/pkg/db"
)

// Cacher is the generic byte-blob cache consulted by the HTTP client
// layer, keyed by an opaque cache key (typically the request URL).
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// ElevationCacher is the typed, durable elevation-point cache.
type ElevationCacher interface {
	GetElevation(ctx context.Context, key string) (elevationM float64, ok bool)
	SetElevation(ctx context.Context, key string, lat, lon, elevationM float64, source string) error
}

// SQLiteCache implements both Cacher and ElevationCacher against the
// embedded database.
type SQLiteCache struct {
	db *db.DB
}

// NewSQLiteCache creates a new cache backed by d.
func NewSQLiteCache(d *db.DB) *SQLiteCache {
	return &SQLiteCache{db: d}
}

// GetCache returns a previously cached raw response body for key, if
// present.
func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&val)
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetCache stores a raw response body under key, overwriting any prior
// entry.
func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = CURRENT_TIMESTAMP`,
		key, val)
	if err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

// GetElevation returns a previously cached elevation for key, if present.
func (c *SQLiteCache) GetElevation(ctx context.Context, key string) (float64, bool) {
	var elev float64
	err := c.db.QueryRowContext(ctx, `SELECT elevation_m FROM elevation_cache WHERE key = ?`, key).Scan(&elev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	return elev, true
}

// SetElevation persists an elevation lookup, overwriting any prior entry
// for the same key.
func (c *SQLiteCache) SetElevation(ctx context.Context, key string, lat, lon, elevationM float64, source string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO elevation_cache (key, lat, lon, elevation_m, source, created_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET elevation_m = excluded.elevation_m, source = excluded.source, created_at = CURRENT_TIMESTAMP`,
		key, lat, lon, elevationM, source)
	if err != nil {
		return fmt.Errorf("cache: set elevation: %w", err)
	}
	return nil
}
