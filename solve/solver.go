// Package solve computes paths across a grid world with an any-angle search
// and an ant colony optimizer, and runs either of them off the caller's thread.
package solve

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Sight answers line-of-sight queries between two world points.
type Sight interface {
	HasLineOfSight(a, b orb.Point) bool
}

// World is the read side of a grid that solvers plan on. *grid.Grid and
// *grid.Shared both implement it.
type World interface {
	Sight
	Bound() orb.Bound
	CellSize() float64
	Origin() orb.Point
}

// Solver finds a path from start to goal. A nil result means no path.
type Solver interface {
	Name() string
	FindPath(start, goal orb.Point) orb.LineString
}

// Resetter is implemented by solvers that keep memory between calls.
type Resetter interface {
	Reset()
}

type options struct {
	logger *zap.Logger
	timers *Timers
}

// Option configures solvers and runners.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimers makes a Runner record each solve in t.
func WithTimers(t *Timers) Option {
	return func(o *options) { o.timers = t }
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
