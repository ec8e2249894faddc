// Package pipeline drives the full solar -> grid -> elevation ->
// viewshed -> score sequence as one cooperatively-scheduled run, with
// a one-run-at-a-time cancellation policy: starting a new run cancels
// whichever run is still in flight.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aurel42/sunviewfinder/pkg/elevation"
	"github.com/aurel42/sunviewfinder/pkg/grid"
	"github.com/aurel42/sunviewfinder/pkg/scorer"
	"github.com/aurel42/sunviewfinder/pkg/sun"
	"github.com/aurel42/sunviewfinder/pkg/viewshed"
)

// DefaultSpacingMeters is used when Input.SpacingM is 0.
const DefaultSpacingMeters = grid.DefaultSpacingMeters

// elevationResolver is satisfied by *elevation.Service (and test
// doubles).
type elevationResolver interface {
	Resolve(ctx context.Context, points []elevation.Point, progress elevation.ProgressFunc) ([]elevation.ElevatedPoint, error)
}

// viewshedEngine is satisfied by *viewshed.Engine (and test doubles).
type viewshedEngine interface {
	Analyze(ctx context.Context, candidates []viewshed.Candidate, sunAzimuthDeg, sunAltitudeDeg float64, onRayProgress, onScoreProgress func(completed, total int)) ([]viewshed.ScoredCandidate, error)
}

// Pipeline holds the collaborators one run needs and the mutex-guarded
// run-generation counter backing one-run-at-a-time cancellation.
type Pipeline struct {
	elevation elevationResolver
	viewshed  viewshedEngine

	mu         sync.Mutex
	cancelPrev context.CancelFunc
	generation int64
}

// New creates a Pipeline from its two network/CPU collaborators.
func New(elevationSvc elevationResolver, engine viewshedEngine) *Pipeline {
	return &Pipeline{elevation: elevationSvc, viewshed: engine}
}

// Run executes one pipeline pass. If a previous Run call is still in
// flight on this Pipeline, it is cancelled immediately; this call then
// proceeds under its own generation. progress may be nil.
func (p *Pipeline) Run(ctx context.Context, in Input, progress ProgressFunc) (*Output, error) {
	runCtx, myGen := p.startRun(ctx)
	defer p.finishRun(myGen)

	report := func(percent int) {
		if progress != nil {
			progress(percent)
		}
	}

	sunData, err := sun.At(in.Date, in.Center.Lat, in.Center.Lon, in.Mode)
	if err != nil {
		return nil, fmt.Errorf("pipeline: solar oracle: %w", err)
	}

	gridPoints := grid.Generate(in.Center, in.RadiusM, in.SpacingM)

	elevated, err := p.elevation.Resolve(runCtx, gridPoints, func(completed, total int) {
		report(scaleProgress(10, 50, completed, total))
	})
	if err != nil {
		if runCtx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: %v", ErrLocationDataUnavailable, err)
	}

	candidates := make([]viewshed.Candidate, 0, len(elevated))
	for _, e := range elevated {
		if e.ElevationM != nil {
			candidates = append(candidates, viewshed.Candidate{Point: e.Point, ElevationM: *e.ElevationM})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrLocationDataUnavailable
	}
	report(50)

	scored, err := p.viewshed.Analyze(runCtx, candidates, sunData.AzimuthDeg, sunData.AltitudeDeg,
		func(completed, total int) { report(scaleProgress(50, 80, completed, total)) },
		func(completed, total int) { report(scaleProgress(80, 95, completed, total)) },
	)
	if err != nil {
		if runCtx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("pipeline: viewshed analysis: %w", err)
	}

	maxRadius := in.RadiusM
	ranked := scorer.Rank(scored, scorer.Options{Center: &in.Center, MaxRadiusM: maxRadius})
	report(100)

	return &Output{
		RunID:      uuid.New(),
		Input:      in,
		SunData:    sunData,
		Candidates: ranked,
	}, nil
}

// startRun cancels any run still in flight on this Pipeline, derives a
// fresh cancellable context from ctx, and bumps the run generation.
func (p *Pipeline) startRun(ctx context.Context) (context.Context, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancelPrev = cancel
	p.generation++
	return runCtx, p.generation
}

// finishRun clears the cancel func if no newer run has superseded
// this one.
func (p *Pipeline) finishRun(myGen int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation == myGen {
		p.cancelPrev = nil
	}
}

// scaleProgress maps a (completed, total) pair onto the [lo, hi]
// percent band the caller reserved for this stage.
func scaleProgress(lo, hi, completed, total int) int {
	if total <= 0 {
		return lo
	}
	frac := float64(completed) / float64(total)
	return lo + int(frac*float64(hi-lo))
}
