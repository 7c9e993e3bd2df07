package grid

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// sightMargin widens the segment bounding box used by the wall index broad
// phase so that walls touching the segment are handed to the raycast.
const sightMargin = 1e-6

// HasLineOfSight reports whether the straight segment from a to b is free of
// blocked cells. Identical points always see each other; NaN input never does.
func (g *Grid) HasLineOfSight(a, b orb.Point) bool {
	if math.IsNaN(a[0]) || math.IsNaN(a[1]) || math.IsNaN(b[0]) || math.IsNaN(b[1]) {
		return false
	}
	if a == b {
		return true
	}

	box := orb.Bound{Min: a, Max: a}.Extend(b).Pad(sightMargin * math.Max(g.cellSize, 1))
	if !g.walls.Any(box) {
		return true
	}

	dist := planar.Distance(a, b)
	hit, ok := g.Raycast(Ray{Origin: a, Direction: orb.Point{b[0] - a[0], b[1] - a[1]}})
	if !ok {
		return true
	}
	return hit.Distance >= dist
}
