package elevation

import (
	"context"
	"sync"
)

// DefaultConcurrency is the default number of concurrent batches/tile
// fetches the service issues against the network.
const DefaultConcurrency = 2

// Strategy selects which network resolver backs cache misses.
type Strategy string

const (
	StrategyTile     Strategy = "tile"
	StrategyProvider Strategy = "provider"
)

// tileResolver is satisfied by TileProvider (and test doubles).
type tileResolver interface {
	Resolve(ctx context.Context, points []Point) []*float64
}

// batchResolver is satisfied by Provider (and test doubles).
type batchResolver interface {
	ResolveBatch(ctx context.Context, points []Point) []*float64
}

// Service resolves bulk elevation for points, preserving input order,
// per the Elevation Service contract: cache first, then a bounded-
// concurrency network fetch, with every successful resolution written
// back into the cache.
type Service struct {
	cache       *PointCache
	tile        tileResolver
	provider    batchResolver
	strategy    Strategy
	concurrency int
	batchSize   int
}

// NewService creates an elevation Service. strategy selects the primary
// network resolver; the other (when non-nil) is used instead if the
// chosen strategy's resolver is nil, and is also tried for any batch
// the preferred resolver leaves entirely unresolved.
func NewService(cache *PointCache, tile tileResolver, provider batchResolver, strategy Strategy) *Service {
	return &Service{
		cache:       cache,
		tile:        tile,
		provider:    provider,
		strategy:    strategy,
		concurrency: DefaultConcurrency,
		batchSize:   BatchSize,
	}
}

// WithConcurrency overrides the default network concurrency.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Resolve resolves elevation for every point, preserving input order.
// progress may be nil. Returns ErrAllElevationsFailed if not a single
// point resolved.
func (s *Service) Resolve(ctx context.Context, points []Point, progress ProgressFunc) ([]ElevatedPoint, error) {
	total := len(points)
	out := make([]ElevatedPoint, total)
	for i, p := range points {
		out[i] = ElevatedPoint{Point: p}
	}
	if total == 0 {
		return out, nil
	}

	var completed int
	var completedMu sync.Mutex
	report := func(n int) {
		if progress == nil {
			return
		}
		completedMu.Lock()
		completed += n
		c := completed
		completedMu.Unlock()
		progress(c, total)
	}

	missIdx := make([]int, 0, total)
	for i, p := range points {
		if v, ok := s.cache.Get(ctx, p); ok {
			e := v
			out[i].ElevationM = &e
		} else {
			missIdx = append(missIdx, i)
		}
	}
	report(total - len(missIdx))

	if len(missIdx) > 0 {
		s.resolveMisses(ctx, points, missIdx, out, report)
	}

	resolved := 0
	for _, e := range out {
		if e.ElevationM != nil {
			resolved++
		}
	}
	if resolved == 0 {
		return out, ErrAllElevationsFailed
	}
	return out, nil
}

// resolveMisses dispatches the unresolved indices in batches across a
// bounded-concurrency pool, writing results (and cache entries) as each
// batch completes.
func (s *Service) resolveMisses(ctx context.Context, points []Point, missIdx []int, out []ElevatedPoint, report func(int)) {
	type batch struct {
		idx []int
	}

	var batches []batch
	for start := 0; start < len(missIdx); start += s.batchSize {
		end := start + s.batchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batches = append(batches, batch{idx: missIdx[start:end]})
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, b := range batches {
		b := b
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			batchPoints := make([]Point, len(b.idx))
			for i, idx := range b.idx {
				batchPoints[i] = points[idx]
			}

			values := s.resolveBatch(ctx, batchPoints)

			mu.Lock()
			for i, idx := range b.idx {
				if values[i] != nil {
					e := *values[i]
					out[idx].ElevationM = &e
				}
			}
			mu.Unlock()
			report(len(b.idx))
		}()
	}
	wg.Wait()
}

func (s *Service) resolveBatch(ctx context.Context, points []Point) []*float64 {
	var values []*float64
	source := string(s.strategy)

	switch {
	case s.strategy == StrategyTile && s.tile != nil:
		values = s.tile.Resolve(ctx, points)
	case s.provider != nil:
		values = s.provider.ResolveBatch(ctx, points)
		source = "provider"
	case s.tile != nil:
		values = s.tile.Resolve(ctx, points)
		source = "tile"
	default:
		values = make([]*float64, len(points))
	}

	// Providers fall back to each other when the preferred resolver
	// leaves everything unresolved.
	if allNil(values) {
		if s.strategy == StrategyTile && s.provider != nil {
			values = s.provider.ResolveBatch(ctx, points)
			source = "provider"
		} else if s.strategy == StrategyProvider && s.tile != nil {
			values = s.tile.Resolve(ctx, points)
			source = "tile"
		}
	}

	for i, v := range values {
		if v != nil {
			s.cache.Set(ctx, points[i], *v, source)
		}
	}
	return values
}

func allNil(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}
