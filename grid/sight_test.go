package grid

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestHasLineOfSight(t *testing.T) {
	g := NewGrid(10, 10, 1, orb.Point{0, 0})
	for y := 0; y < 8; y++ {
		g.Set(5, y, Blocked)
	}

	tests := []struct {
		name string
		a, b orb.Point
		want bool
	}{
		{"same point", orb.Point{2.5, 2.5}, orb.Point{2.5, 2.5}, true},
		{"same point inside wall", orb.Point{5.5, 2.5}, orb.Point{5.5, 2.5}, true},
		{"blocked by wall", orb.Point{2.5, 2.5}, orb.Point{8.5, 2.5}, false},
		{"over the wall top", orb.Point{2.5, 8.5}, orb.Point{8.5, 8.5}, true},
		{"wall beyond target", orb.Point{1.5, 2.5}, orb.Point{4.5, 2.5}, true},
		{"target inside wall", orb.Point{2.5, 2.5}, orb.Point{5.5, 2.5}, false},
		{"no walls in box", orb.Point{0.5, 0.5}, orb.Point{3.5, 7.5}, true},
		{"nan", orb.Point{math.NaN(), 0}, orb.Point{1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.HasLineOfSight(tt.a, tt.b); got != tt.want {
				t.Errorf("HasLineOfSight(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestHasLineOfSight_SymmetricAndMatchesRaycast(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := NewGrid(30, 20, 3, orb.Point{10, -5})
	for i := 0; i < 120; i++ {
		g.Set(rng.Intn(30), rng.Intn(20), Blocked)
	}
	b := g.BoundsQuad()
	randPoint := func() orb.Point {
		return orb.Point{
			b.Min[0] + rng.Float64()*(b.Max[0]-b.Min[0]),
			b.Min[1] + rng.Float64()*(b.Max[1]-b.Min[1]),
		}
	}

	for i := 0; i < 2000; i++ {
		p, q := randPoint(), randPoint()

		ab := g.HasLineOfSight(p, q)
		if ba := g.HasLineOfSight(q, p); ab != ba {
			t.Fatalf("asymmetric sight between %v and %v: %v vs %v", p, q, ab, ba)
		}

		hit, ok := g.Raycast(Ray{Origin: p, Direction: orb.Point{q[0] - p[0], q[1] - p[1]}})
		want := !ok || hit.Distance >= planar.Distance(p, q)
		if ab != want {
			t.Fatalf("broad phase disagrees with raycast for %v -> %v: %v vs %v", p, q, ab, want)
		}
	}
}

func TestShared_ConcurrentReadsAndEdits(t *testing.T) {
	s := NewShared(NewGrid(20, 20, 1, orb.Point{0, 0}))

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.HasLineOfSight(orb.Point{0.5, 0.5}, orb.Point{19.5, 19.5})
				s.Raycast(Ray{Origin: orb.Point{0.5, 10.5}, Direction: orb.Point{1, 0}})
			}
		}()
	}
	for i := 0; i < 500; i++ {
		s.Toggle(i%20, (i*7)%20)
	}
	wg.Wait()

	s.Set(10, 10, Blocked)
	if st, _ := s.Get(10, 10); st != Blocked {
		t.Errorf("Get(10,10) = %v, want blocked", st)
	}
	s.View(func(g *Grid) {
		if !g.IsBlocked(10, 10) {
			t.Error("view does not see the edit")
		}
	})
}
