package grid

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// wallEntry wraps a blocked cell for R-tree storage
type wallEntry struct {
	X, Y int
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (w *wallEntry) Bounds() rtreego.Rect {
	return w.BBox
}

// WallIndex manages spatial queries over blocked cells
type WallIndex struct {
	tree    *rtreego.Rtree
	entries map[[2]int]*wallEntry
}

// NewWallIndex creates an empty wall index
func NewWallIndex() *WallIndex {
	return &WallIndex{
		tree:    rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		entries: make(map[[2]int]*wallEntry),
	}
}

// Insert adds cell (x,y) covering quad q. Re-inserting a cell replaces it.
func (wi *WallIndex) Insert(x, y int, q orb.Bound) {
	wi.Remove(x, y)

	bbox, err := boundToRect(q)
	if err != nil {
		return
	}
	entry := &wallEntry{X: x, Y: y, BBox: bbox}
	wi.tree.Insert(entry)
	wi.entries[[2]int{x, y}] = entry
}

// Remove drops cell (x,y) from the index if present
func (wi *WallIndex) Remove(x, y int) {
	key := [2]int{x, y}
	entry, ok := wi.entries[key]
	if !ok {
		return
	}
	wi.tree.Delete(entry)
	delete(wi.entries, key)
}

// Size returns the number of indexed walls
func (wi *WallIndex) Size() int {
	return len(wi.entries)
}

// Search returns the cells whose rectangles overlap q. Rectangles that only
// touch q along an edge are not reported.
func (wi *WallIndex) Search(q orb.Bound) [][2]int {
	if len(wi.entries) == 0 {
		return nil
	}
	bbox, err := boundToRect(q)
	if err != nil {
		return nil
	}

	results := wi.tree.SearchIntersect(bbox)
	cells := make([][2]int, 0, len(results))
	for _, item := range results {
		entry := item.(*wallEntry)
		cells = append(cells, [2]int{entry.X, entry.Y})
	}
	return cells
}

// Any reports whether at least one wall overlaps q
func (wi *WallIndex) Any(q orb.Bound) bool {
	if len(wi.entries) == 0 {
		return false
	}
	bbox, err := boundToRect(q)
	if err != nil {
		return true
	}
	return len(wi.tree.SearchIntersect(bbox)) > 0
}

// boundToRect converts an orb bound to an R-tree rectangle. Degenerate
// dimensions are widened so that zero-area queries still work.
func boundToRect(q orb.Bound) (rtreego.Rect, error) {
	const minLength = 1e-9

	w := q.Max[0] - q.Min[0]
	h := q.Max[1] - q.Min[1]
	x, y := q.Min[0], q.Min[1]
	if w < minLength {
		x -= minLength / 2
		w = minLength
	}
	if h < minLength {
		y -= minLength / 2
		h = minLength
	}

	return rtreego.NewRect(rtreego.Point{x, y}, []float64{w, h})
}
