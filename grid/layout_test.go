package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestLoadLayout(t *testing.T) {
	l, err := LoadLayout("testdata/corridor.yaml")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	g := l.Grid
	if g.Width() != 10 || g.Height() != 6 {
		t.Fatalf("size = %dx%d, want 10x6", g.Width(), g.Height())
	}

	// Top row of the file is the highest y.
	if !g.IsBlocked(5, 4) || g.IsBlocked(5, 2) || !g.IsBlocked(5, 1) {
		t.Error("interior wall misplaced")
	}
	if l.Start == nil || *l.Start != (orb.Point{15, 45}) {
		t.Errorf("start = %v, want (15,45)", l.Start)
	}
	if l.Goal == nil || *l.Goal != (orb.Point{85, 15}) {
		t.Errorf("goal = %v, want (85,15)", l.Goal)
	}

	want := strings.Join([]string{
		"##########",
		"#S...#...#",
		"#....#...#",
		"#........#",
		"#....#..G#",
		"##########",
	}, "\n") + "\n"
	if got := l.Format(); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no rows", "cell_size: 1\n", ErrNoLayoutRows},
		{"bad cell size", "cell_size: 0\nrows: ['..']\n", ErrInvalidCellSize},
		{"ragged", "cell_size: 1\nrows: ['...', '..']\n", ErrRaggedLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseLayout([]byte("cell_size: 1\nrows: ['.x.']\n")); err == nil {
		t.Error("unknown marker accepted")
	}
	if _, err := LoadLayout("testdata/missing.yaml"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestParseLayout_PolygonsAndBorder(t *testing.T) {
	data := `
cell_size: 1
border: true
rows:
  - "........"
  - "........"
  - "........"
  - "........"
  - "........"
  - "........"
  - "........"
  - "........"
polygons:
  - [[2.2, 2.2], [4.8, 2.2], [4.8, 4.8], [2.2, 4.8]]
`
	l, err := ParseLayout([]byte(data))
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	g := l.Grid
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			if !g.IsBlocked(x, y) {
				t.Errorf("cell (%d,%d) under polygon is open", x, y)
			}
		}
	}
	if g.IsBlocked(5, 3) || g.IsBlocked(1, 3) {
		t.Error("polygon bled into neighbouring cells")
	}
	if !g.IsBlocked(0, 0) || !g.IsBlocked(7, 7) {
		t.Error("border not applied")
	}
	// 28 border cells plus the 3x3 block.
	if g.WallCount() != 37 {
		t.Errorf("WallCount = %d, want 37", g.WallCount())
	}
}
