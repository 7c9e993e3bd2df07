package solve

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// PathLength returns the summed segment length of path.
func PathLength(path orb.LineString) float64 {
	if len(path) < 2 {
		return 0
	}
	return planar.Length(path)
}

// Complete turns a raw solver result into a path that begins at start and
// ends at goal. A nil raw result becomes the direct segment from start to goal.
func Complete(start, goal orb.Point, raw orb.LineString) orb.LineString {
	if raw == nil {
		return orb.LineString{start, goal}
	}

	path := make(orb.LineString, 0, len(raw)+2)
	if len(raw) == 0 || raw[0] != start {
		path = append(path, start)
	}
	path = append(path, raw...)
	if path[len(path)-1] != goal {
		path = append(path, goal)
	}
	return path
}

// Simplify drops redundant waypoints with Douglas-Peucker at epsilon and
// returns the input unchanged if any simplified segment loses line of sight.
func Simplify(path orb.LineString, epsilon float64, sight Sight) orb.LineString {
	if len(path) <= 2 || epsilon <= 0 {
		return path
	}

	simplified := simplify.DouglasPeucker(epsilon).LineString(path.Clone())
	for i := 0; i+1 < len(simplified); i++ {
		if !sight.HasLineOfSight(simplified[i], simplified[i+1]) {
			return path
		}
	}
	return simplified
}
