// Package grid generates the hex-packed candidate lattice that the
// pipeline evaluates around a center point, built from displacement-
// via-bearing destination points rather than a flat degrees-per-km
// approximation.
package grid

import (
	"math"

	"github.com/aurel42/sunviewfinder/pkg/geo"
)

// DefaultSpacingMeters is the nominal spacing between lattice points.
const DefaultSpacingMeters = 350.0

const sqrt3over2 = 0.8660254037844386

// Generate produces a hex-packed lattice of points within radiusM of
// center, with nominal spacing spacingM. If spacingM <= 0,
// DefaultSpacingMeters is used. For radiusM <= 0 the result is empty.
func Generate(center geo.Point, radiusM, spacingM float64) []geo.Point {
	if radiusM <= 0 {
		return nil
	}
	if spacingM <= 0 {
		spacingM = DefaultSpacingMeters
	}

	rowSpan := spacingM * sqrt3over2
	maxRow := int(math.Ceil(radiusM / rowSpan))
	maxCol := int(math.Ceil(radiusM / spacingM))

	var points []geo.Point
	for r := -maxRow; r <= maxRow; r++ {
		y := float64(r) * rowSpan
		offset := 0.0
		if r%2 != 0 {
			offset = spacingM / 2
		}
		for c := -maxCol; c <= maxCol; c++ {
			x := float64(c)*spacingM + offset

			dist := math.Hypot(x, y)
			if dist > radiusM {
				continue
			}

			if dist == 0 {
				points = append(points, center)
				continue
			}

			// y = north component, x = east component.
			bearing := math.Mod(math.Atan2(x, y)*(180.0/math.Pi)+360.0, 360.0)
			points = append(points, geo.DestinationPoint(center, dist, bearing))
		}
	}

	return points
}
