package pipeline

import (
	"fmt"

	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/scorer"
	"github.com/paulmach/orb/geojson"
)

// ToFeatureCollection serializes the ranked candidates as GeoJSON
// points, one feature per candidate, carrying score/rank/verdict as
// properties for a UI shell to render directly.
func (o *Output) ToFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range o.Candidates {
		f := geojson.NewFeature(c.Point.Orb())
		f.Properties["score"] = c.Score
		f.Properties["rank"] = c.Rank
		f.Properties["elevation_m"] = c.ElevationM
		f.Properties["obstruction_angle_deg"] = c.ObstructionAngleDeg
		f.Properties["view_quality"] = c.ViewQuality
		f.Properties["verdict"] = scorer.Verdict(c.ScoredCandidate, string(o.Input.Mode))
		fc.Append(f)
	}
	return fc
}

// Summary renders a one-line human-readable digest of the run.
func (o *Output) Summary() string {
	clear := 0
	for _, c := range o.Candidates {
		if c.IsClear {
			clear++
		}
	}

	if len(o.Candidates) == 0 {
		return "0 viewpoints evaluated"
	}

	best := o.Candidates[0] // Rank sorts descending by score
	return fmt.Sprintf("run %s: %d clear viewpoints of %d candidates within %.1fkm; best: %d/100 at %s",
		o.RunID, clear, len(o.Candidates), o.Input.RadiusM/1000, best.Score, formatCoord(best.Point))
}

func formatCoord(p geo.Point) string {
	return fmt.Sprintf("%.3f, %.3f", p.Lat, p.Lon)
}
