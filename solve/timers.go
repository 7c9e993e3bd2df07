package solve

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerStats summarizes the solve durations recorded for one solver.
type TimerStats struct {
	Solver  string  `json:"solver"`
	LastMS  float64 `json:"last_ms"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
	Count   int     `json:"count"`
}

// AverageMS is the mean duration over the recorded solves, 0 when none were recorded.
func (s TimerStats) AverageMS() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalMS / float64(s.Count)
}

// Timers accumulates solve durations per solver name. It is safe for
// concurrent use.
type Timers struct {
	mu    sync.Mutex
	stats map[string]*TimerStats
}

func NewTimers() *Timers {
	return &Timers{stats: make(map[string]*TimerStats)}
}

// Record adds one solve of duration d for the named solver.
func (t *Timers) Record(name string, d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[name]
	if !ok {
		s = &TimerStats{Solver: name}
		t.stats[name] = s
	}
	s.LastMS = ms
	s.TotalMS += ms
	s.Count++
	if ms > s.MaxMS {
		s.MaxMS = ms
	}
}

// Snapshot returns a copy of every solver's stats, sorted by solver name.
func (t *Timers) Snapshot() []TimerStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TimerStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Solver < out[j].Solver })
	return out
}

// ResetTotals zeroes the accumulated totals while keeping the last durations.
func (t *Timers) ResetTotals() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.stats {
		s.TotalMS = 0
		s.MaxMS = 0
		s.Count = 0
	}
}

// Log writes one Info entry per solver.
func (t *Timers) Log(log *zap.Logger) {
	for _, s := range t.Snapshot() {
		log.Info("solver timings",
			zap.String("solver", s.Solver),
			zap.Float64("lastMs", s.LastMS),
			zap.Float64("avgMs", s.AverageMS()),
			zap.Float64("maxMs", s.MaxMS),
			zap.Int("count", s.Count))
	}
}
