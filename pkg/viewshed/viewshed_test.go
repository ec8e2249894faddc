package viewshed

import (
	"context"
	"math"
	"testing"

	"github.com/aurel42/sunviewfinder/pkg/elevation"
	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/workerpool"
)

// fakeResolver returns a fixed elevation for every point it's asked
// about, ignoring the coordinates entirely; tests that need per-point
// control set byIndex.
type fakeResolver struct {
	elevation float64
	byIndex   []float64 // overrides elevation when non-nil and long enough
	calls     int
}

func (f *fakeResolver) Resolve(ctx context.Context, points []elevation.Point, progress elevation.ProgressFunc) ([]elevation.ElevatedPoint, error) {
	f.calls++
	out := make([]elevation.ElevatedPoint, len(points))
	for i, p := range points {
		v := f.elevation
		if i < len(f.byIndex) {
			v = f.byIndex[i]
		}
		vv := v
		out[i] = elevation.ElevatedPoint{Point: p, ElevationM: &vv}
	}
	if progress != nil {
		progress(len(points), len(points))
	}
	return out, nil
}

func TestAnalyze_FlatPlainIsClear(t *testing.T) {
	resolver := &fakeResolver{elevation: 100}
	engine := NewEngine(resolver, workerpool.New(2))

	candidates := []Candidate{
		{Point: geo.Point{Lat: 45.0, Lon: -122.0}, ElevationM: 100},
		{Point: geo.Point{Lat: 45.01, Lon: -122.0}, ElevationM: 100},
	}

	results, err := engine.Analyze(context.Background(), candidates, 270, 5, nil, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, r := range results {
		if !r.IsClear {
			t.Errorf("expected clear view on a flat plain, got angle %v", r.ObstructionAngleDeg)
		}
		if r.ObstructionAngleDeg >= DefaultHorizonMargin {
			t.Errorf("expected obstruction angle below horizon margin, got %v", r.ObstructionAngleDeg)
		}
	}
}

func TestAnalyze_RidgeBlocksView(t *testing.T) {
	// Every ray sample sits at 600 m; candidate at 100 m, and the
	// closest sample lands at 1000 m (RaySampleSpacing=300 -> samples
	// at 300,600,900,1200,...; use a sample spacing that lands exactly
	// on 1000 for a clean assertion).
	resolver := &fakeResolver{elevation: 600}
	engine := NewEngine(resolver, workerpool.New(1)).WithConstants(1000, 1000, 2000, 0.5)

	candidates := []Candidate{
		{Point: geo.Point{Lat: 45.0, Lon: -122.0}, ElevationM: 100},
	}

	results, err := engine.Analyze(context.Background(), candidates, 270, 5, nil, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	got := results[0]
	want := math.Atan2(500, 1000) * 180 / math.Pi
	if math.Abs(got.ObstructionAngleDeg-want) > 0.01 {
		t.Errorf("obstruction angle = %v, want %v", got.ObstructionAngleDeg, want)
	}
	if got.IsClear {
		t.Errorf("expected ridge to obstruct the view")
	}
	if got.MaxBlockerDistanceM != 1000 {
		t.Errorf("max blocker distance = %v, want 1000", got.MaxBlockerDistanceM)
	}
}

func TestAnalyze_CurvatureCorrectionClearsSmallBump(t *testing.T) {
	// A sample +1m over the candidate at 5km should still read clear:
	// curvature_drop(5000) ~= 1.96m > 1m.
	resolver := &fakeResolver{elevation: 101}
	engine := NewEngine(resolver, workerpool.New(1)).WithConstants(5000, 5000, 2000, 0.5)

	candidates := []Candidate{
		{Point: geo.Point{Lat: 45.0, Lon: -122.0}, ElevationM: 100},
	}

	results, err := engine.Analyze(context.Background(), candidates, 270, 5, nil, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !results[0].IsClear {
		t.Errorf("expected curvature correction to clear a +1m bump at 5km, got angle %v", results[0].ObstructionAngleDeg)
	}
}

func TestAnalyze_NoSurvivingSamplesIsClear(t *testing.T) {
	engine := NewEngine(&fakeResolver{}, workerpool.New(1))

	c := Candidate{Point: geo.Point{Lat: 45, Lon: -122}, ElevationM: 100}
	obstruction := engine.sweep(c, nil)
	if !obstruction.IsClear || obstruction.ObstructionAngleDeg != -90 || obstruction.MaxBlockerDistanceM != 0 {
		t.Errorf("expected zero-sample edge case defaults, got %+v", obstruction)
	}
}

func TestAnalyze_NoCandidates(t *testing.T) {
	resolver := &fakeResolver{elevation: 0}
	engine := NewEngine(resolver, nil)
	_, err := engine.Analyze(context.Background(), nil, 270, 5, nil, nil)
	if err != ErrNoCandidates {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestAnalyze_ObstructionMonotonicInBlockerHeight(t *testing.T) {
	engineFor := func(elev float64) float64 {
		resolver := &fakeResolver{elevation: elev}
		engine := NewEngine(resolver, workerpool.New(1)).WithConstants(1000, 1000, 2000, 0.5)
		candidates := []Candidate{{Point: geo.Point{Lat: 45, Lon: -122}, ElevationM: 100}}
		results, err := engine.Analyze(context.Background(), candidates, 270, 5, nil, nil)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		return results[0].ObstructionAngleDeg
	}

	low := engineFor(200)
	high := engineFor(800)
	if !(high > low) {
		t.Errorf("expected obstruction angle to increase with blocker height: low=%v high=%v", low, high)
	}
}
