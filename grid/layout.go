package grid

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoLayoutRows    = errors.New("layout has no rows")
	ErrRaggedLayout    = errors.New("layout rows differ in length")
	ErrInvalidCellSize = errors.New("cell size must be positive")
)

// Layout cell markers. Rows are written top row first.
const (
	markOpen  = '.'
	markWall  = '#'
	markStart = 'S'
	markGoal  = 'G'
)

// layoutFile is the YAML structure of a layout file
type layoutFile struct {
	CellSize float64       `yaml:"cell_size"`
	Origin   []float64     `yaml:"origin"`
	Border   bool          `yaml:"border"`
	Rows     []string      `yaml:"rows"`
	Polygons [][][]float64 `yaml:"polygons"`
}

// Layout is a parsed grid with optional start and goal markers.
type Layout struct {
	Grid  *Grid
	Start *orb.Point
	Goal  *orb.Point
}

// LoadLayout reads and parses a YAML layout file
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout builds a grid from YAML layout data
func ParseLayout(data []byte) (*Layout, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if f.CellSize <= 0 {
		return nil, ErrInvalidCellSize
	}
	if len(f.Rows) == 0 {
		return nil, ErrNoLayoutRows
	}

	width := len(f.Rows[0])
	for i, row := range f.Rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), width, ErrRaggedLayout)
		}
	}

	var origin orb.Point
	if len(f.Origin) >= 2 {
		origin = orb.Point{f.Origin[0], f.Origin[1]}
	}

	height := len(f.Rows)
	g := NewGrid(width, height, f.CellSize, origin)
	layout := &Layout{Grid: g}

	for i, row := range f.Rows {
		y := height - 1 - i
		for x, c := range row {
			switch c {
			case markWall:
				g.Set(x, y, Blocked)
			case markStart:
				p, _ := g.CellCenter(x, y)
				layout.Start = &p
			case markGoal:
				p, _ := g.CellCenter(x, y)
				layout.Goal = &p
			case markOpen, ' ':
			default:
				return nil, fmt.Errorf("row %d: unknown cell marker %q", i, c)
			}
		}
	}

	for i, coords := range f.Polygons {
		ring := make(orb.Ring, 0, len(coords))
		for _, coord := range coords {
			if len(coord) >= 2 {
				ring = append(ring, orb.Point{coord[0], coord[1]})
			}
		}
		if len(ring) < 3 {
			return nil, fmt.Errorf("polygon %d has %d vertices, want at least 3", i, len(ring))
		}
		g.RasterizeRing(ring)
	}

	if f.Border {
		g.Border()
	}
	return layout, nil
}

// Format renders the grid back into layout rows, top row first.
func (l *Layout) Format() string {
	g := l.Grid
	var sb strings.Builder
	for y := g.Height() - 1; y >= 0; y-- {
		for x := 0; x < g.Width(); x++ {
			sb.WriteByte(l.marker(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (l *Layout) marker(x, y int) byte {
	g := l.Grid
	if l.Start != nil {
		if sx, sy, ok := g.WorldToCell(*l.Start); ok && sx == x && sy == y {
			return markStart
		}
	}
	if l.Goal != nil {
		if gx, gy, ok := g.WorldToCell(*l.Goal); ok && gx == x && gy == y {
			return markGoal
		}
	}
	if g.IsBlocked(x, y) {
		return markWall
	}
	return markOpen
}
