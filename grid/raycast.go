package grid

import (
	"math"

	"github.com/paulmach/orb"
)

// Ray is a half-line starting at Origin. Direction need not be normalized.
type Ray struct {
	Origin    orb.Point
	Direction orb.Point
}

// RayHit describes where a ray first struck a blocked cell.
type RayHit struct {
	Point    orb.Point
	Normal   orb.Point
	Distance float64
	CellX    int
	CellY    int
}

// edgeBand is the fraction of the cell size, measured from each edge, inside
// which a hit is attributed to that edge.
const edgeBand = 0.1

// cornerEpsilon is the relative tolerance under which the two axis boundary
// distances are considered equal, i.e. the ray crosses a cell corner.
const cornerEpsilon = 1e-9

// Raycast walks r through the grid cells and returns the nearest blocked cell hit.
// It returns false when the direction is zero or NaN, when the ray misses the
// grid, or when it leaves the grid without striking a wall.
func (g *Grid) Raycast(r Ray) (RayHit, bool) {
	dir, ok := normalize(r.Direction)
	if !ok || math.IsNaN(r.Origin[0]) || math.IsNaN(r.Origin[1]) {
		return RayHit{}, false
	}
	if g.width == 0 || g.height == 0 || g.cellSize <= 0 {
		return RayHit{}, false
	}

	tEnter, ok := g.slab(r.Origin, dir)
	if !ok {
		return RayHit{}, false
	}

	entry := orb.Point{r.Origin[0] + dir[0]*tEnter, r.Origin[1] + dir[1]*tEnter}
	cx := clampIndex(int(math.Floor((entry[0]-g.origin[0])/g.cellSize)), g.width)
	cy := clampIndex(int(math.Floor((entry[1]-g.origin[1])/g.cellSize)), g.height)

	stepX, tDeltaX, tMaxX := g.axisSetup(r.Origin[0], dir[0], g.origin[0], cx)
	stepY, tDeltaY, tMaxY := g.axisSetup(r.Origin[1], dir[1], g.origin[1], cy)

	t := tEnter
	for g.inBounds(cx, cy) {
		if g.IsBlocked(cx, cy) {
			return g.hit(r.Origin, dir, t, cx, cy), true
		}

		switch {
		case nearlyEqual(tMaxX, tMaxY, g.cellSize):
			// Passing through a corner touches both side cells.
			t = tMaxX
			if g.IsBlocked(cx+stepX, cy) {
				return g.hit(r.Origin, dir, t, cx+stepX, cy), true
			}
			if g.IsBlocked(cx, cy+stepY) {
				return g.hit(r.Origin, dir, t, cx, cy+stepY), true
			}
			cx += stepX
			cy += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
		case tMaxX < tMaxY:
			t = tMaxX
			cx += stepX
			tMaxX += tDeltaX
		default:
			t = tMaxY
			cy += stepY
			tMaxY += tDeltaY
		}
	}

	return RayHit{}, false
}

// slab intersects the ray with the grid bounds and returns the entry distance.
func (g *Grid) slab(o, dir orb.Point) (float64, bool) {
	b := g.BoundsQuad()
	tEnter, tExit := 0.0, math.Inf(1)

	for axis := 0; axis < 2; axis++ {
		lo, hi := b.Min[axis], b.Max[axis]
		if dir[axis] == 0 {
			if o[axis] < lo || o[axis] > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o[axis]) / dir[axis]
		t2 := (hi - o[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEnter = math.Max(tEnter, t1)
		tExit = math.Min(tExit, t2)
	}

	if tEnter > tExit {
		return 0, false
	}
	return tEnter, true
}

// axisSetup returns the cell step, the distance to cross one cell and the
// distance from the ray origin to the first cell boundary along one axis.
func (g *Grid) axisSetup(o, d, origin float64, cell int) (int, float64, float64) {
	switch {
	case d > 0:
		boundary := origin + float64(cell+1)*g.cellSize
		return 1, g.cellSize / d, (boundary - o) / d
	case d < 0:
		boundary := origin + float64(cell)*g.cellSize
		return -1, g.cellSize / -d, (boundary - o) / d
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

func (g *Grid) hit(o, dir orb.Point, t float64, cx, cy int) RayHit {
	p := orb.Point{o[0] + dir[0]*t, o[1] + dir[1]*t}
	return RayHit{
		Point:    p,
		Normal:   g.hitNormal(p, dir, cx, cy),
		Distance: t,
		CellX:    cx,
		CellY:    cy,
	}
}

// hitNormal picks the axis-aligned normal of the cell edge closest to p.
// Hits away from every edge fall back to the direction from p to the cell
// center, which is only an approximation of a surface normal.
func (g *Grid) hitNormal(p, dir orb.Point, cx, cy int) orb.Point {
	q, _ := g.CellQuad(cx, cy)
	lx := p[0] - q.Min[0]
	ly := p[1] - q.Min[1]
	band := edgeBand * g.cellSize

	type edge struct {
		dist   float64
		normal orb.Point
	}
	candidates := [4]edge{
		{lx, orb.Point{-1, 0}},
		{g.cellSize - lx, orb.Point{1, 0}},
		{ly, orb.Point{0, -1}},
		{g.cellSize - ly, orb.Point{0, 1}},
	}

	best := -1
	for i, e := range candidates {
		if e.dist >= band {
			continue
		}
		if best < 0 || e.dist < candidates[best].dist {
			best = i
		}
	}
	if best >= 0 {
		return candidates[best].normal
	}

	c := q.Center()
	if n, ok := normalize(orb.Point{c[0] - p[0], c[1] - p[1]}); ok {
		return n
	}
	return orb.Point{-dir[0], -dir[1]}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func normalize(v orb.Point) (orb.Point, bool) {
	l := math.Hypot(v[0], v[1])
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return orb.Point{}, false
	}
	return orb.Point{v[0] / l, v[1] / l}, true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func nearlyEqual(a, b, scale float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return false
	}
	return math.Abs(a-b) <= cornerEpsilon*scale
}
