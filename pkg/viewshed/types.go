package viewshed

import "github.com/aurel42/sunviewfinder/pkg/geo"

// Candidate is a grid point that survived elevation resolution: its
// elevation is always present by the time it reaches the viewshed
// engine.
type Candidate struct {
	geo.Point
	ElevationM float64
}

// RaySample is one point along a candidate's sun-azimuth ray, with the
// exact nominal distance from the candidate (not a recomputed
// haversine) and its resolved elevation.
type RaySample struct {
	geo.Point
	DistanceM  float64
	ElevationM float64
}

// Obstruction is the result of sweeping a candidate's ray samples for
// the steepest apparent blocker.
type Obstruction struct {
	ObstructionAngleDeg  float64
	MaxBlockerDistanceM  float64
	MaxBlockerElevationM float64
	IsClear              bool
}

// ViewQuality classifies a scored candidate for display.
const (
	ViewQualityClear      = "clear"
	ViewQualityObstructed = "obstructed"
)

// ScoredCandidate is a Candidate plus its Obstruction and the sun
// geometry it was evaluated against, before the scorer attaches
// score/rank.
type ScoredCandidate struct {
	Candidate
	Obstruction
	SunAzimuthDeg  float64
	SunAltitudeDeg float64
	ViewQuality    string
}
