package grid

import (
	"math"
	"testing"

	"github.com/aurel42/sunviewfinder/pkg/geo"
)

func TestGenerate_WithinRadius(t *testing.T) {
	center := geo.Point{Lat: 45.5231, Lon: -122.6765}
	radius := 2000.0
	points := Generate(center, radius, DefaultSpacingMeters)

	if len(points) == 0 {
		t.Fatal("expected non-empty grid")
	}
	for _, p := range points {
		d := geo.Distance(center, p)
		if d > radius+1e-6 {
			t.Errorf("point %v is %0.2fm from center, exceeds radius %v", p, d, radius)
		}
	}
}

func TestGenerate_ZeroRadius(t *testing.T) {
	center := geo.Point{Lat: 0, Lon: 0}
	points := Generate(center, 0, DefaultSpacingMeters)
	if len(points) > 1 {
		t.Errorf("expected at most 1 point for zero radius, got %d", len(points))
	}
}

func TestGenerate_NegativeRadius(t *testing.T) {
	points := Generate(geo.Point{Lat: 0, Lon: 0}, -100, DefaultSpacingMeters)
	if points != nil {
		t.Errorf("expected nil for negative radius, got %d points", len(points))
	}
}

func TestGenerate_PointCountScalesWithArea(t *testing.T) {
	center := geo.Point{Lat: 10, Lon: 10}
	radius := 5000.0
	spacing := DefaultSpacingMeters
	points := Generate(center, radius, spacing)

	cellArea := spacing * spacing * sqrt3over2
	expected := math.Pi * radius * radius / cellArea
	got := float64(len(points))

	diff := math.Abs(got-expected) / expected
	if diff > 0.15 {
		t.Errorf("point count %v deviates from expected %v by %.2f%%, want <=15%%", got, expected, diff*100)
	}
}
