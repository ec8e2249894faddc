package elevation

import (
	"context"
	"testing"

	"github.com/aurel42/sunviewfinder/pkg/geo"
)

type fakeTileResolver struct {
	calls  int
	values map[string]float64
}

func (f *fakeTileResolver) Resolve(ctx context.Context, points []Point) []*float64 {
	f.calls++
	out := make([]*float64, len(points))
	for i, p := range points {
		if v, ok := f.values[Key(p)]; ok {
			vv := v
			out[i] = &vv
		}
	}
	return out
}

func TestService_ResolveAllCacheMiss(t *testing.T) {
	cache := NewPointCache(nil)
	fake := &fakeTileResolver{values: map[string]float64{
		Key(geo.Point{Lat: 1, Lon: 1}): 100,
		Key(geo.Point{Lat: 2, Lon: 2}): 200,
	}}
	svc := NewService(cache, fake, nil, StrategyTile)

	points := []Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	out, err := svc.Resolve(context.Background(), points, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if *out[0].ElevationM != 100 || *out[1].ElevationM != 200 {
		t.Errorf("unexpected elevations: %v, %v", *out[0].ElevationM, *out[1].ElevationM)
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 resolver call for a single batch, got %d", fake.calls)
	}
}

func TestService_ResolveUsesCacheOnSecondCall(t *testing.T) {
	cache := NewPointCache(nil)
	fake := &fakeTileResolver{values: map[string]float64{
		Key(geo.Point{Lat: 1, Lon: 1}): 100,
	}}
	svc := NewService(cache, fake, nil, StrategyTile)
	points := []Point{{Lat: 1, Lon: 1}}

	var progressCalls []int
	progress := func(completed, total int) {
		progressCalls = append(progressCalls, completed)
	}

	if _, err := svc.Resolve(context.Background(), points, progress); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 network call, got %d", fake.calls)
	}

	progressCalls = nil
	out, err := svc.Resolve(context.Background(), points, progress)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("expected cache hit to avoid a second network call, calls=%d", fake.calls)
	}
	if len(progressCalls) != 1 || progressCalls[0] != 1 {
		t.Errorf("expected progress to jump straight to completion, got %v", progressCalls)
	}
	if *out[0].ElevationM != 100 {
		t.Errorf("unexpected elevation %v", *out[0].ElevationM)
	}
}

func TestService_AllElevationsFailed(t *testing.T) {
	cache := NewPointCache(nil)
	fake := &fakeTileResolver{values: map[string]float64{}}
	svc := NewService(cache, fake, nil, StrategyTile)

	points := []Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	_, err := svc.Resolve(context.Background(), points, nil)
	if err != ErrAllElevationsFailed {
		t.Fatalf("expected ErrAllElevationsFailed, got %v", err)
	}
}

func TestService_PartialFailureReturnsNilElevations(t *testing.T) {
	cache := NewPointCache(nil)
	fake := &fakeTileResolver{values: map[string]float64{
		Key(geo.Point{Lat: 1, Lon: 1}): 50,
	}}
	svc := NewService(cache, fake, nil, StrategyTile)

	points := []Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	out, err := svc.Resolve(context.Background(), points, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if out[0].ElevationM == nil || *out[0].ElevationM != 50 {
		t.Errorf("expected first point resolved to 50")
	}
	if out[1].ElevationM != nil {
		t.Errorf("expected second point to remain unresolved")
	}
}

func TestPointCache_Clear(t *testing.T) {
	cache := NewPointCache(nil)
	ctx := context.Background()
	cache.Set(ctx, geo.Point{Lat: 1, Lon: 1}, 42, "tile")
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", cache.Len())
	}
	if _, ok := cache.Get(ctx, geo.Point{Lat: 1, Lon: 1}); ok {
		t.Errorf("expected miss after Clear")
	}
}
