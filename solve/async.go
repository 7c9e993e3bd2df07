package solve

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// ErrJobDrained is returned by Wait once the job's result was already taken.
var ErrJobDrained = errors.New("solve: job result already drained")

// Result is a completed path request.
type Result struct {
	Path     orb.LineString
	Found    bool // the solver produced the path itself
	Fallback bool // Path is the direct start-goal segment substituted for a missing result
	Solver   string
	Elapsed  time.Duration
}

// Job is one background solve. Its result can be taken exactly once, either
// by Poll or by Wait.
type Job struct {
	done   chan struct{}
	result *Result

	mu      sync.Mutex
	drained bool
}

// StartJob runs s on p in a new goroutine. It returns nil when p has no start or goal.
func StartJob(s Solver, p *Problem, opts ...Option) *Job {
	start, goal, ok := p.Endpoints()
	if !ok {
		return nil
	}
	o := applyOptions(opts)

	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)

		began := time.Now()
		raw := s.FindPath(start, goal)
		elapsed := time.Since(began)

		res := &Result{
			Path:     Complete(start, goal, raw),
			Found:    raw != nil,
			Fallback: raw == nil,
			Solver:   s.Name(),
			Elapsed:  elapsed,
		}
		if o.timers != nil {
			o.timers.Record(res.Solver, elapsed)
		}
		if res.Fallback {
			o.logger.Warn("solver found no path, using direct segment",
				zap.String("solver", res.Solver))
		}
		o.logger.Info("pathfinding completed",
			zap.String("solver", res.Solver),
			zap.Duration("elapsed", elapsed),
			zap.Int("waypoints", len(res.Path)),
			zap.Float64("length", PathLength(res.Path)))
		j.result = res
	}()
	return j
}

// Done is closed when the solver returns.
func (j *Job) Done() <-chan struct{} { return j.done }

// Poll returns the result if the job has completed and the result has not been
// taken yet. It never blocks.
func (j *Job) Poll() (Result, bool) {
	select {
	case <-j.done:
	default:
		return Result{}, false
	}
	return j.take()
}

// Wait blocks until the job completes or ctx is done.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	if res, ok := j.take(); ok {
		return res, nil
	}
	return Result{}, ErrJobDrained
}

func (j *Job) take() (Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.drained {
		return Result{}, false
	}
	j.drained = true
	return *j.result, true
}

// Runner keeps at most one outstanding job for an interactive owner that polls
// once per tick. Starting a new job or cancelling drops interest in the old
// one; its goroutine runs to completion and the late result is ignored.
type Runner struct {
	mu     sync.Mutex
	solver Solver
	job    *Job
	opts   []Option
	log    *zap.Logger
}

func NewRunner(s Solver, opts ...Option) *Runner {
	o := applyOptions(opts)
	return &Runner{solver: s, opts: opts, log: o.logger}
}

// Solver returns the solver used for new jobs.
func (r *Runner) Solver() Solver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.solver
}

// SetSolver changes the solver used for the next job. A running job keeps its solver.
func (r *Runner) SetSolver(s Solver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solver = s
}

// Start launches a job for p, dropping any outstanding one. It reports false
// when p is missing an endpoint.
func (r *Runner) Start(p *Problem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job != nil {
		r.log.Debug("dropping outstanding job", zap.String("solver", r.solver.Name()))
	}
	r.job = StartJob(r.solver, p, r.opts...)
	return r.job != nil
}

// Running reports whether a job is outstanding.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.job != nil
}

// Poll drains the outstanding job if it has completed and discards it.
func (r *Runner) Poll() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job == nil {
		return Result{}, false
	}
	res, ok := r.job.Poll()
	if ok {
		r.job = nil
	}
	return res, ok
}

// Cancel forgets the outstanding job. It reports whether there was one.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job == nil {
		return false
	}
	r.job = nil
	r.log.Debug("job cancelled")
	return true
}
