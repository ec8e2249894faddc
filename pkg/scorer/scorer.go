// Package scorer turns a viewshed-analyzed candidate into a single
// 0-100 score, a dense rank among its peers, and a human-readable
// verdict string.
package scorer

import (
	"fmt"
	"math"
	"sort"

	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/viewshed"
)

// Options configures the center-proximity component. Center is nil
// when the run has no meaningful center (e.g. a single fixed point
// with no surrounding grid), in which case center proximity falls
// back to a flat score.
type Options struct {
	Center     *geo.Point
	MaxRadiusM float64
}

// Ranked is a scored candidate plus its dense rank among its peers.
type Ranked struct {
	viewshed.ScoredCandidate
	Score int
	Rank  int
}

// Scorer holds nothing but exists so one run's worth of scoring state
// (a Session) is created explicitly rather than threading Options
// through every call.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// NewSession starts one scoring cycle: every candidate scored through
// this Session shares the same center point and radius.
func (s *Scorer) NewSession(opts Options) *Session {
	return &Session{opts: opts}
}

// Session is a single scoring cycle's context, fixing the
// center-proximity reference point and radius for every candidate it
// scores.
type Session struct {
	opts Options
}

// Score sums the four weighted components and clamps the result to
// [0, 100]. The clear-candidate obstruction formula saturates at 40
// for nearly every clear candidate, since angle < 0.5° there; score
// separation among clear candidates comes mostly from elevation and
// center proximity instead.
func (sess *Session) Score(c viewshed.ScoredCandidate) int {
	total := obstructionComponent(c.Obstruction) +
		elevationComponent(c.ElevationM) +
		centerComponent(c.Point, sess.opts) +
		clearanceComponent(c.ObstructionAngleDeg)

	return int(math.Round(clamp(total, 0, 100)))
}

// Rank scores every candidate and sorts it into a dense 1..N ranking
// by descending score. Ties keep their relative input order (a
// stable sort), which is sufficient but not required by the ranking
// contract.
func (sess *Session) Rank(candidates []viewshed.ScoredCandidate) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		ranked[i] = Ranked{ScoredCandidate: c, Score: sess.Score(c)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Score is a convenience wrapper around Scorer.NewSession(opts).Score
// for callers scoring a single candidate outside of a batch.
func Score(c viewshed.ScoredCandidate, opts Options) int {
	return NewScorer().NewSession(opts).Score(c)
}

// Rank is a convenience wrapper around Scorer.NewSession(opts).Rank
// for callers that don't need to reuse a Session across multiple
// candidate batches.
func Rank(candidates []viewshed.ScoredCandidate, opts Options) []Ranked {
	return NewScorer().NewSession(opts).Rank(candidates)
}

func obstructionComponent(o viewshed.Obstruction) float64 {
	if o.IsClear {
		return clamp(40+4*(-o.ObstructionAngleDeg), 0, 40)
	}
	return math.Max(0, 20-4*o.ObstructionAngleDeg)
}

func elevationComponent(elevationM float64) float64 {
	return 30 * math.Min(elevationM/1000, 1)
}

func centerComponent(p geo.Point, opts Options) float64 {
	if opts.Center == nil || opts.MaxRadiusM <= 0 {
		return 10
	}
	dist := geo.Distance(*opts.Center, p)
	return 15 * (1 - math.Min(dist/opts.MaxRadiusM, 1))
}

func clearanceComponent(obstructionAngleDeg float64) float64 {
	if obstructionAngleDeg < 0 {
		return math.Min(15, 5*math.Abs(obstructionAngleDeg))
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Verdict renders a one-line human summary. mode is typically "sunset"
// or "sunrise", matching the run's solar mode.
func Verdict(c viewshed.ScoredCandidate, mode string) string {
	if c.IsClear {
		return fmt.Sprintf("Unobstructed %s view from %.0fm elevation", mode, c.ElevationM)
	}
	return fmt.Sprintf("Blocked by terrain %s away (%.1f° obstruction)", formatDistance(c.MaxBlockerDistanceM), c.ObstructionAngleDeg)
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// colorBands maps a score's lower bound to its display color, checked
// from highest to lowest.
var colorBands = []struct {
	min   int
	color string
}{
	{80, "#22c55e"},
	{55, "#eab308"},
	{35, "#f97316"},
	{0, "#ef4444"},
}

// ColorForScore returns the display color band for a 0-100 score.
func ColorForScore(score int) string {
	for _, band := range colorBands {
		if score >= band.min {
			return band.color
		}
	}
	return colorBands[len(colorBands)-1].color
}
