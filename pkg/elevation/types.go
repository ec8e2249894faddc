// Package elevation resolves bulk elevation for geographic points,
// backed by a process-lifetime in-memory cache, an optional durable
// SQLite second tier, and two pluggable network strategies: tile-based
// (Terrarium PNG tiles) and batched-provider (HTTP GET/POST).
package elevation

import "github.com/aurel42/sunviewfinder/pkg/geo"

// Point is a plain coordinate to resolve.
type Point = geo.Point

// ElevatedPoint is a Point plus its resolved elevation, nullable when
// resolution failed for that point.
type ElevatedPoint struct {
	geo.Point
	ElevationM *float64
}

// ProgressFunc reports (completed, total) after each batch or tile
// completes. completed includes cache hits.
type ProgressFunc func(completed, total int)
