// Package geocode documents the contract a place-name-to-coordinate
// lookup must satisfy to plug into the pipeline. No implementation
// ships here: geocoding is out of scope for this module, but a caller
// wiring their own pipeline.Input needs a stable interface to target.
package geocode

import "context"

// Result is a single geocoding match.
type Result struct {
	Lat         float64
	Lng         float64
	DisplayName string
}

// Geocoder resolves a free-text place name to coordinates. Callers
// implementing this are expected to self-rate-limit to roughly one
// request per second, matching the public geocoding services this
// contract targets (e.g. Nominatim's usage policy).
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}
