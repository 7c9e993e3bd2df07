package solve

import "github.com/paulmach/orb"

// Problem is a path request on a world. Start and Goal are nil until chosen.
type Problem struct {
	World World
	Start *orb.Point
	Goal  *orb.Point
}

// NewProblem creates a problem with no endpoints chosen.
func NewProblem(w World) *Problem {
	return &Problem{World: w}
}

func (p *Problem) SetStart(pt orb.Point) { p.Start = &pt }
func (p *Problem) SetGoal(pt orb.Point) { p.Goal = &pt }

// Clear forgets both endpoints.
func (p *Problem) Clear() {
	p.Start = nil
	p.Goal = nil
}

// Endpoints returns start and goal when both have been chosen.
func (p *Problem) Endpoints() (orb.Point, orb.Point, bool) {
	if p == nil || p.Start == nil || p.Goal == nil {
		return orb.Point{}, orb.Point{}, false
	}
	return *p.Start, *p.Goal, true
}

// Solve runs s when both endpoints are set and returns nil otherwise.
func (p *Problem) Solve(s Solver) orb.LineString {
	start, goal, ok := p.Endpoints()
	if !ok {
		return nil
	}
	return s.FindPath(start, goal)
}
