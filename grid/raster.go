package grid

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// segment is a line segment between two world points
type segment struct {
	P1, P2 orb.Point
}

// RasterizeRing blocks every cell whose center lies inside ring or whose
// rectangle is crossed by one of the ring's edges. It returns the number of
// cells that changed from open to blocked.
func (g *Grid) RasterizeRing(ring orb.Ring) int {
	if len(ring) < 3 {
		return 0
	}
	if !ring.Closed() {
		ring = append(ring.Clone(), ring[0])
	}

	b := ring.Bound()
	x0, y0, x1, y1 := g.cellRange(b)
	changed := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			q, ok := g.CellQuad(x, y)
			if !ok || g.IsBlocked(x, y) {
				continue
			}
			if planar.RingContains(ring, q.Center()) || ringCrossesQuad(ring, q) {
				g.Set(x, y, Blocked)
				changed++
			}
		}
	}
	return changed
}

// cellRange returns the inclusive cell index range covering b, clamped to the grid
func (g *Grid) cellRange(b orb.Bound) (int, int, int, int) {
	x0 := int(math.Floor((b.Min[0] - g.origin[0]) / g.cellSize))
	y0 := int(math.Floor((b.Min[1] - g.origin[1]) / g.cellSize))
	x1 := int(math.Floor((b.Max[0] - g.origin[0]) / g.cellSize))
	y1 := int(math.Floor((b.Max[1] - g.origin[1]) / g.cellSize))
	return max(x0, 0), max(y0, 0), min(x1, g.width-1), min(y1, g.height-1)
}

// ringCrossesQuad checks if any edge of the ring touches the quad
func ringCrossesQuad(ring orb.Ring, q orb.Bound) bool {
	corners := [4]orb.Point{
		q.Min,
		{q.Max[0], q.Min[1]},
		q.Max,
		{q.Min[0], q.Max[1]},
	}

	for i := 0; i < len(ring)-1; i++ {
		edge := segment{P1: ring[i], P2: ring[i+1]}
		if q.Contains(edge.P1) || q.Contains(edge.P2) {
			return true
		}
		for j := 0; j < 4; j++ {
			side := segment{P1: corners[j], P2: corners[(j+1)%4]}
			if segmentsIntersect(edge, side) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect checks if two line segments intersect, including touching
func segmentsIntersect(seg1, seg2 segment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}
