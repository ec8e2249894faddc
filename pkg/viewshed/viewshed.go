// Package viewshed computes, for each candidate viewpoint, the
// maximum apparent elevation angle of terrain along a single ray cast
// toward the sun's azimuth — a one-dimensional viewshed reduced to the
// line of sight that actually matters for a sunset or sunrise.
package viewshed

import (
	"context"
	"errors"
	"math"

	"github.com/aurel42/sunviewfinder/pkg/elevation"
	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/workerpool"
)

// Default tunables, all overridable via WithConstants.
const (
	DefaultRaySampleSpacing   = 300.0
	DefaultRayMaxDistance     = 8000.0
	DefaultCurvatureThreshold = 2000.0
	DefaultHorizonMargin      = 0.5
)

// ElevationResolver is satisfied by *elevation.Service (and test
// doubles), matching its Resolve signature exactly.
type ElevationResolver interface {
	Resolve(ctx context.Context, points []elevation.Point, progress elevation.ProgressFunc) ([]elevation.ElevatedPoint, error)
}

// Engine runs the two-phase ray expansion / obstruction sweep.
type Engine struct {
	resolver ElevationResolver
	pool     *workerpool.Pool

	raySampleSpacing   float64
	rayMaxDistance     float64
	curvatureThreshold float64
	horizonMargin      float64
}

// NewEngine creates an Engine. pool may be shared with other callers;
// a nil pool runs Phase B on a single worker.
func NewEngine(resolver ElevationResolver, pool *workerpool.Pool) *Engine {
	if pool == nil {
		pool = workerpool.New(1)
	}
	return &Engine{
		resolver:           resolver,
		pool:               pool,
		raySampleSpacing:   DefaultRaySampleSpacing,
		rayMaxDistance:     DefaultRayMaxDistance,
		curvatureThreshold: DefaultCurvatureThreshold,
		horizonMargin:      DefaultHorizonMargin,
	}
}

// WithConstants overrides the ray sampling and curvature tunables.
// Any zero value leaves the corresponding default in place.
func (e *Engine) WithConstants(sampleSpacing, maxDistance, curvatureThreshold, horizonMargin float64) *Engine {
	if sampleSpacing > 0 {
		e.raySampleSpacing = sampleSpacing
	}
	if maxDistance > 0 {
		e.rayMaxDistance = maxDistance
	}
	if curvatureThreshold > 0 {
		e.curvatureThreshold = curvatureThreshold
	}
	if horizonMargin > 0 {
		e.horizonMargin = horizonMargin
	}
	return e
}

// Analyze runs ray expansion (Phase A) followed by the obstruction
// sweep (Phase B) for every candidate. onRayProgress reports elevation
// resolution progress for the flattened ray-sample vector;
// onScoreProgress reports Phase B progress at least every 100 candidates. Either may
// be nil.
func (e *Engine) Analyze(
	ctx context.Context,
	candidates []Candidate,
	sunAzimuthDeg, sunAltitudeDeg float64,
	onRayProgress func(completed, total int),
	onScoreProgress func(completed, total int),
) ([]ScoredCandidate, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	raysByCandidate, err := e.expandRays(ctx, candidates, sunAzimuthDeg, onRayProgress)
	if err != nil {
		return nil, err
	}

	type indexed struct {
		candidate Candidate
		samples   []RaySample
	}
	items := make([]indexed, len(candidates))
	for i, c := range candidates {
		items[i] = indexed{candidate: c, samples: raysByCandidate[i]}
	}

	results, err := workerpool.Run(ctx, e.pool, items, func(completed int) {
		if onScoreProgress != nil && (completed%100 == 0 || completed == len(candidates)) {
			onScoreProgress(completed, len(candidates))
		}
	}, func(it indexed) ScoredCandidate {
		c := it.candidate
		obstruction := e.sweep(c, it.samples)
		quality := ViewQualityObstructed
		if obstruction.IsClear {
			quality = ViewQualityClear
		}
		return ScoredCandidate{
			Candidate:      c,
			Obstruction:    obstruction,
			SunAzimuthDeg:  sunAzimuthDeg,
			SunAltitudeDeg: sunAltitudeDeg,
			ViewQuality:    quality,
		}
	})
	if err != nil {
		return results, err
	}
	return results, nil
}

// expandRays generates ray samples for every candidate along
// sunAzimuthDeg, resolves their elevation in one flattened Elevation
// Service call, and re-splits the results back per candidate. Samples
// whose elevation could not be resolved are dropped.
func (e *Engine) expandRays(ctx context.Context, candidates []Candidate, sunAzimuthDeg float64, progress func(completed, total int)) ([][]RaySample, error) {
	distances := e.rayDistances()

	flatPoints := make([]elevation.Point, 0, len(candidates)*len(distances))
	counts := make([]int, len(candidates))
	flatDistances := make([]float64, 0, len(candidates)*len(distances))

	for i, c := range candidates {
		counts[i] = len(distances)
		for _, d := range distances {
			p := geo.DestinationPoint(c.Point, d, sunAzimuthDeg)
			flatPoints = append(flatPoints, p)
			flatDistances = append(flatDistances, d)
		}
	}

	resolved, err := e.resolver.Resolve(ctx, flatPoints, progress)
	if err != nil && !(errors.Is(err, elevation.ErrAllElevationsFailed) && len(resolved) == len(flatPoints)) {
		return nil, err
	}

	out := make([][]RaySample, len(candidates))
	offset := 0
	for i := range candidates {
		n := counts[i]
		samples := make([]RaySample, 0, n)
		for j := 0; j < n; j++ {
			ep := resolved[offset+j]
			if ep.ElevationM != nil {
				samples = append(samples, RaySample{
					Point:      ep.Point,
					DistanceM:  flatDistances[offset+j],
					ElevationM: *ep.ElevationM,
				})
			}
		}
		out[i] = samples
		offset += n
	}
	return out, nil
}

// rayDistances returns the sample distances spacing, 2*spacing, ...
// up to and including rayMaxDistance.
func (e *Engine) rayDistances() []float64 {
	var distances []float64
	for d := e.raySampleSpacing; d <= e.rayMaxDistance+1e-6; d += e.raySampleSpacing {
		distances = append(distances, d)
	}
	return distances
}

// sweep computes the steepest apparent blocker along a candidate's
// ray samples. Curvature correction adjusts the terrain height used
// for the angle computation; MaxBlockerElevationM stays uncorrected.
func (e *Engine) sweep(c Candidate, samples []RaySample) Obstruction {
	if len(samples) == 0 {
		return Obstruction{
			ObstructionAngleDeg: -90,
			MaxBlockerDistanceM: 0,
			IsClear:             true,
		}
	}

	maxAngle := math.Inf(-1)
	var maxBlockerDistance, maxBlockerElevation float64

	for _, s := range samples {
		terrain := s.ElevationM
		if s.DistanceM > e.curvatureThreshold {
			terrain -= geo.CurvatureDrop(s.DistanceM)
		}
		delta := terrain - c.ElevationM
		angle := math.Atan2(delta, s.DistanceM) * 180.0 / math.Pi
		if angle > maxAngle {
			maxAngle = angle
			maxBlockerDistance = s.DistanceM
			maxBlockerElevation = s.ElevationM
		}
	}

	return Obstruction{
		ObstructionAngleDeg:  maxAngle,
		MaxBlockerDistanceM:  maxBlockerDistance,
		MaxBlockerElevationM: maxBlockerElevation,
		IsClear:              maxAngle < e.horizonMargin,
	}
}
