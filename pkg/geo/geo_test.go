package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   Point{Lat: 51.5074, Lon: -0.1278},
			p2:   Point{Lat: 48.8566, Lon: 2.3522},
			want: 344000, // Approx 344km
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 111319, // Approx 111km
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			// Allow 1% margin of error due to float precision/earth radius var
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestDestinationPointRoundTrip(t *testing.T) {
	start := Point{Lat: 45.5, Lon: -122.6}
	for _, bearing := range []float64{0, 45, 90, 135, 180, 225, 270, 315} {
		dest := DestinationPoint(start, 5000, bearing)
		gotDist := Distance(start, dest)
		if math.Abs(gotDist-5000) > 5 {
			t.Errorf("bearing %v: distance round trip = %v, want ~5000", bearing, gotDist)
		}
		gotBearing := Bearing(start, dest)
		diff := math.Abs(NormalizeAngle(gotBearing - bearing))
		if diff > 0.5 {
			t.Errorf("bearing %v: recovered bearing = %v", bearing, gotBearing)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{190, -170},
		{-190, 170},
		{360, 0},
		{-360, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCurvatureDrop(t *testing.T) {
	// At 10km, curvature drop is on the order of a few meters.
	got := CurvatureDrop(10000)
	if got < 5 || got > 10 {
		t.Errorf("CurvatureDrop(10000) = %v, want roughly 7.8", got)
	}
	if CurvatureDrop(0) != 0 {
		t.Errorf("CurvatureDrop(0) should be 0")
	}
}

func TestCompassPoint(t *testing.T) {
	tests := []struct {
		az   float64
		want string
	}{
		{0, "N"},
		{44, "NE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{359, "N"},
		{-1, "N"},
	}
	for _, tt := range tests {
		if got := CompassPoint(tt.az); got != tt.want {
			t.Errorf("CompassPoint(%v) = %q, want %q", tt.az, got, tt.want)
		}
	}
}
