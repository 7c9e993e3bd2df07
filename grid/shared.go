package grid

import (
	"sync"

	"github.com/paulmach/orb"
)

// Shared owns a Grid and guards it with a read/write lock. Solvers running in
// the background take the read lock for each query; wall edits take the write
// lock, so an edit waits for the raycast in flight and never interleaves with it.
type Shared struct {
	mu   sync.RWMutex
	grid *Grid
}

func NewShared(g *Grid) *Shared {
	return &Shared{grid: g}
}

// View runs fn with the grid read-locked. fn must not retain g.
func (s *Shared) View(fn func(g *Grid)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.grid)
}

// Update runs fn with the grid write-locked.
func (s *Shared) Update(fn func(g *Grid)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.grid)
}

func (s *Shared) Set(x, y int, state CellState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Set(x, y, state)
}

func (s *Shared) Toggle(x, y int) (CellState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Toggle(x, y)
}

func (s *Shared) Get(x, y int) (CellState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Get(x, y)
}

func (s *Shared) Raycast(r Ray) (RayHit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Raycast(r)
}

func (s *Shared) HasLineOfSight(a, b orb.Point) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.HasLineOfSight(a, b)
}

func (s *Shared) WorldToCell(p orb.Point) (int, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.WorldToCell(p)
}

func (s *Shared) CellQuad(x, y int) (orb.Bound, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.CellQuad(x, y)
}

func (s *Shared) CellCenter(x, y int) (orb.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.CellCenter(x, y)
}

func (s *Shared) WallsIn(q orb.Bound) [][2]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.WallsIn(q)
}

// Extent and cell size are fixed at construction and read without locking.

func (s *Shared) Bound() orb.Bound { return s.grid.BoundsQuad() }
func (s *Shared) CellSize() float64 { return s.grid.CellSize() }
func (s *Shared) Origin() orb.Point { return s.grid.Origin() }
func (s *Shared) Width() int { return s.grid.Width() }
func (s *Shared) Height() int { return s.grid.Height() }

func (s *Shared) WallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.WallCount()
}
