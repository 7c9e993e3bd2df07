package grid

import (
	"math"

	"github.com/paulmach/orb"
)

// CellState is the occupancy of a single grid cell.
type CellState uint8

const (
	Open CellState = iota
	Blocked
)

func (s CellState) String() string {
	if s == Blocked {
		return "blocked"
	}
	return "open"
}

// Grid is a fixed-size 2D array of cell states anchored at a world-space origin.
// Cells are stored row-major; cell (0,0) has its lower-left corner at Origin.
type Grid struct {
	width    int
	height   int
	cellSize float64
	origin   orb.Point
	cells    []CellState
	walls    *WallIndex
}

// NewGrid creates a grid with every cell open.
func NewGrid(width, height int, cellSize float64, origin orb.Point) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		origin:   origin,
		cells:    make([]CellState, width*height),
		walls:    NewWallIndex(),
	}
}

func (g *Grid) Width() int { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) CellSize() float64 { return g.cellSize }
func (g *Grid) Origin() orb.Point { return g.origin }
func (g *Grid) WallCount() int { return g.walls.Size() }
func (g *Grid) WorldWidth() float64 { return float64(g.width) * g.cellSize }
func (g *Grid) WorldHeight() float64 { return float64(g.height) * g.cellSize }

// Get returns the state of cell (x,y), or false when out of bounds.
func (g *Grid) Get(x, y int) (CellState, bool) {
	i, ok := g.index(x, y)
	if !ok {
		return Open, false
	}
	return g.cells[i], true
}

// IsBlocked reports whether (x,y) is in bounds and blocked.
func (g *Grid) IsBlocked(x, y int) bool {
	s, ok := g.Get(x, y)
	return ok && s == Blocked
}

// Set changes the state of cell (x,y). It is a no-op returning false when out of bounds.
func (g *Grid) Set(x, y int, state CellState) bool {
	i, ok := g.index(x, y)
	if !ok {
		return false
	}
	if g.cells[i] == state {
		return true
	}
	g.cells[i] = state
	if state == Blocked {
		q, _ := g.CellQuad(x, y)
		g.walls.Insert(x, y, q)
	} else {
		g.walls.Remove(x, y)
	}
	return true
}

// Toggle flips cell (x,y) between Open and Blocked and returns the new state.
func (g *Grid) Toggle(x, y int) (CellState, bool) {
	s, ok := g.Get(x, y)
	if !ok {
		return Open, false
	}
	if s == Blocked {
		s = Open
	} else {
		s = Blocked
	}
	g.Set(x, y, s)
	return s, true
}

// Border blocks the outer ring of cells.
func (g *Grid) Border() {
	for x := 0; x < g.width; x++ {
		g.Set(x, 0, Blocked)
		g.Set(x, g.height-1, Blocked)
	}
	for y := 0; y < g.height; y++ {
		g.Set(0, y, Blocked)
		g.Set(g.width-1, y, Blocked)
	}
}

// WorldToCell maps a world position to the cell containing it.
func (g *Grid) WorldToCell(pos orb.Point) (int, int, bool) {
	lx := pos[0] - g.origin[0]
	ly := pos[1] - g.origin[1]
	if math.IsNaN(lx) || math.IsNaN(ly) || lx < 0 || ly < 0 || g.cellSize <= 0 {
		return 0, 0, false
	}

	fx := math.Floor(lx / g.cellSize)
	fy := math.Floor(ly / g.cellSize)
	if fx >= float64(g.width) || fy >= float64(g.height) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// CellQuad returns the world-space rectangle of cell (x,y).
func (g *Grid) CellQuad(x, y int) (orb.Bound, bool) {
	if _, ok := g.index(x, y); !ok {
		return orb.Bound{}, false
	}
	lo := orb.Point{
		g.origin[0] + float64(x)*g.cellSize,
		g.origin[1] + float64(y)*g.cellSize,
	}
	return orb.Bound{Min: lo, Max: orb.Point{lo[0] + g.cellSize, lo[1] + g.cellSize}}, true
}

// CellCenter returns the world-space center of cell (x,y).
func (g *Grid) CellCenter(x, y int) (orb.Point, bool) {
	q, ok := g.CellQuad(x, y)
	if !ok {
		return orb.Point{}, false
	}
	return q.Center(), true
}

// BoundsQuad returns the world-space rectangle covered by the whole grid.
func (g *Grid) BoundsQuad() orb.Bound {
	return orb.Bound{
		Min: g.origin,
		Max: orb.Point{g.origin[0] + g.WorldWidth(), g.origin[1] + g.WorldHeight()},
	}
}

// Bound is BoundsQuad; it lets *Grid satisfy the solvers' world interface.
func (g *Grid) Bound() orb.Bound { return g.BoundsQuad() }

// WallsIn returns the blocked cells whose rectangles intersect q.
func (g *Grid) WallsIn(q orb.Bound) [][2]int {
	return g.walls.Search(q)
}

// Clone returns a deep copy of the grid, including its wall index.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.width, g.height, g.cellSize, g.origin)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.IsBlocked(x, y) {
				c.Set(x, y, Blocked)
			}
		}
	}
	return c
}

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, false
	}
	return y*g.width + x, true
}
