package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/scorer"
	"github.com/aurel42/sunviewfinder/pkg/sun"
)

// Input describes one run of the pipeline.
type Input struct {
	Center   geo.Point
	RadiusM  float64
	SpacingM float64 // 0 uses the grid package's default
	Date     time.Time
	Mode     sun.Mode
}

// ProgressFunc reports coarse run-wide progress in [0, 100], per the
// pipeline's milestone schedule: elevation fetch (10-50), ray
// elevation fetch (50-80), obstruction scoring (80-95), ranking
// (95-100).
type ProgressFunc func(percent int)

// Output is the result of one completed run.
type Output struct {
	RunID       uuid.UUID
	Input       Input
	SunData     sun.Data
	Candidates  []scorer.Ranked
	GeneratedAt time.Time
}
