// Package geo provides the spherical-earth math shared by every other
// package in the pipeline: distance, bearing, and destination-point
// projection, plus conversion to orb's geometry types for GeoJSON output.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean radius used for all spherical geometry
// in this module. Good enough at viewpoint-finder ranges; we are not
// doing geodetic survey work.
const EarthRadiusMeters = 6371000.0

// Point represents a geographic coordinate as plain degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Orb converts a Point into an orb.Point ([lon, lat] order) for use with
// github.com/paulmach/orb and orb/geojson.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Distance calculates the Haversine great-circle distance between two
// points in meters.
func Distance(p1, p2 Point) float64 {
	dLat := (p2.Lat - p1.Lat) * (math.Pi / 180.0)
	dLon := (p2.Lon - p1.Lon) * (math.Pi / 180.0)
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DestinationPoint calculates the destination point from a start point,
// given a distance (in meters) and initial bearing (in degrees, 0=north,
// clockwise).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	const R = EarthRadiusMeters
	lat1 := start.Lat * (math.Pi / 180.0)
	lon1 := start.Lon * (math.Pi / 180.0)
	brng := bearing * (math.Pi / 180.0)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(distMeters/R) +
		math.Cos(lat1)*math.Sin(distMeters/R)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(distMeters/R)*math.Cos(lat1),
		math.Cos(distMeters/R)-math.Sin(lat1)*math.Sin(lat2))

	return Point{
		Lat: lat2 * (180.0 / math.Pi),
		Lon: lon2 * (180.0 / math.Pi),
	}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2
// in degrees, 0=north, clockwise.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)
	dLon := (p2.Lon - p1.Lon) * (math.Pi / 180.0)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x)

	return math.Mod(brng*(180.0/math.Pi)+360.0, 360.0)
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// CurvatureDrop returns the additional vertical drop, in meters, that the
// earth's curvature introduces at distance distMeters from an observer.
// Used by the viewshed engine to correct naive terrain-elevation angles at
// range.
func CurvatureDrop(distMeters float64) float64 {
	return (distMeters * distMeters) / (2 * EarthRadiusMeters)
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts an azimuth in degrees (0=north, clockwise) to one
// of the 16 compass points.
func CompassPoint(azimuthDeg float64) string {
	az := math.Mod(azimuthDeg, 360.0)
	if az < 0 {
		az += 360.0
	}
	idx := int(math.Round(az/22.5)) % 16
	return compassPoints[idx]
}
