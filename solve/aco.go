package solve

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
)

// Floor scores keep weight sums positive when every neighbor is unattractive.
// A blocked neighbor always scores below an already visited one.
const (
	tabuScore    = 1e-7
	blockedScore = 1e-10
)

// ColonyConfig holds the ant colony coefficients.
type ColonyConfig struct {
	ExploitationChance float64 // probability of greedily taking the best neighbor
	Alpha              float64 // pheromone exponent
	Beta               float64 // desirability exponent

	ElicitationConstant float64 // desirability = (E+1)/(distance to goal+1)

	EvaporationCoefficient       float64 // local ρ, applied after every ant step
	DepositConstant              float64 // local Q
	GlobalEvaporationCoefficient float64 // ρ applied to the best path of a group
	GlobalDepositConstant        float64

	InitPheromone float64 // weight of an edge never updated

	Ants   int // ants per group
	Rounds int // steps each ant may take per group
	Groups int // groups per call

	LatticeSize float64 // lattice spacing, 0 means the world's cell size
	Seed        int64   // 0 seeds from the clock
}

func DefaultColonyConfig() ColonyConfig {
	return ColonyConfig{
		ExploitationChance:           0.7,
		Alpha:                        1,
		Beta:                         4,
		ElicitationConstant:          10,
		EvaporationCoefficient:       0.1,
		DepositConstant:              100,
		GlobalEvaporationCoefficient: 0.3,
		GlobalDepositConstant:        1000,
		InitPheromone:                1,
		Ants:                         24,
		Rounds:                       300,
		Groups:                       1,
	}
}

// LatticeNode is an integer lattice coordinate. Lattice nodes sit at the
// centers of lattice-sized squares measured from the world origin.
type LatticeNode struct {
	X, Y int
}

// LatticeEdge is a directed edge between two lattice nodes.
type LatticeEdge struct {
	From, To LatticeNode
}

// PheromoneField maps directed lattice edges to non-negative weights.
type PheromoneField map[LatticeEdge]float64

func (f PheromoneField) clone() PheromoneField {
	c := make(PheromoneField, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// deposit evaporates the edge and reinforces it in proportion to how short
// the depositing path is.
func (f PheromoneField) deposit(e LatticeEdge, rho, q, length, init float64) {
	old, ok := f[e]
	if !ok {
		old = init
	}
	f[e] = (1-rho)*old + rho*((q+1)/(length+1))
}

// Session is the optimizer memory that persists across calls: the global
// pheromone field, the best path found so far and the request it answers.
type Session struct {
	pheromones PheromoneField
	best       []LatticeNode
	bestLength float64

	start, goal orb.Point
	hasRequest  bool
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset clears all memory.
func (s *Session) Reset() {
	s.pheromones = make(PheromoneField)
	s.hasRequest = false
	s.invalidate()
}

func (s *Session) invalidate() {
	s.best = nil
	s.bestLength = math.Inf(1)
}

// BestLength returns the length of the cached best path, +Inf when there is none.
func (s *Session) BestLength() float64 { return s.bestLength }

// Pheromone returns the global weight of e and whether it was ever deposited.
func (s *Session) Pheromone(e LatticeEdge) (float64, bool) {
	v, ok := s.pheromones[e]
	return v, ok
}

type ant struct {
	path   []LatticeNode
	tabu   map[LatticeNode]struct{}
	length float64
	dead   bool
}

// neighborOffsets lists the 8-connected lattice steps in selection order.
var neighborOffsets = [8][2]int{
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, -1},
	{-1, 0},
	{-1, 1},
	{0, 1},
	{1, 1},
}

// Colony is an ant colony optimizer over an 8-connected lattice laid on the
// world. Lattice edges are usable only when their endpoints see each other.
// Calls are serialized; the default session caches the best path so repeated
// calls with the same request settle toward a shorter one.
type Colony struct {
	world World
	cfg   ColonyConfig
	log   *zap.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	session *Session
}

func NewColony(world World, cfg ColonyConfig, opts ...Option) *Colony {
	o := applyOptions(opts)
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Groups < 1 {
		cfg.Groups = 1
	}
	return &Colony{
		world:   world,
		cfg:     cfg,
		log:     o.logger,
		rng:     rand.New(rand.NewSource(seed)),
		session: NewSession(),
	}
}

func (c *Colony) Name() string { return "aco" }

// Reset clears the default session.
func (c *Colony) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Reset()
}

// Session returns the default session. It must not be used concurrently with
// FindPath.
func (c *Colony) Session() *Session { return c.session }

// FindPath runs the colony against the default session.
func (c *Colony) FindPath(start, goal orb.Point) orb.LineString {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findPath(c.session, start, goal)
}

// FindPathIn runs the colony against an explicit session.
func (c *Colony) FindPathIn(s *Session, start, goal orb.Point) orb.LineString {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findPath(s, start, goal)
}

func (c *Colony) findPath(s *Session, start, goal orb.Point) orb.LineString {
	startNode, ok := c.toNode(start)
	if !ok {
		return nil
	}
	goalNode, ok := c.toNode(goal)
	if !ok {
		return nil
	}

	if !s.hasRequest || s.start != start || s.goal != goal {
		s.Reset()
		s.start, s.goal, s.hasRequest = start, goal, true
	}
	if s.best != nil && !c.pathClear(s.best) {
		c.log.Info("cached colony path obstructed, recomputing",
			zap.Float64("length", s.bestLength))
		s.invalidate()
	}

	for i := 0; i < c.cfg.Groups; i++ {
		c.runGroup(s, startNode, goalNode, goal)
	}

	if s.best == nil {
		return nil
	}
	path := make(orb.LineString, len(s.best))
	for i, n := range s.best {
		path[i] = c.toWorld(n)
	}
	return path
}

func (c *Colony) runGroup(s *Session, startNode, goalNode LatticeNode, goal orb.Point) {
	pheromones := s.pheromones.clone()

	ants := make([]ant, c.cfg.Ants)
	for i := range ants {
		ants[i] = ant{
			path: []LatticeNode{startNode},
			tabu: map[LatticeNode]struct{}{startNode: {}},
		}
	}

	for round := 0; round < c.cfg.Rounds; round++ {
		moved := false
		for i := range ants {
			a := &ants[i]
			cur := a.path[len(a.path)-1]
			if a.dead || cur == goalNode {
				continue
			}

			next, visible := c.chooseNext(cur, goal, pheromones, a.tabu)
			if !visible {
				a.dead = true
				continue
			}

			a.length += planar.Distance(c.toWorld(cur), c.toWorld(next))
			a.path = append(a.path, next)
			a.tabu[next] = struct{}{}
			pheromones.deposit(LatticeEdge{cur, next},
				c.cfg.EvaporationCoefficient, c.cfg.DepositConstant, a.length, c.cfg.InitPheromone)
			moved = true
		}
		if !moved {
			break
		}
	}

	bestIdx, arrived := -1, 0
	for i := range ants {
		a := &ants[i]
		if a.dead || a.path[len(a.path)-1] != goalNode {
			continue
		}
		arrived++
		if bestIdx < 0 || a.length < ants[bestIdx].length {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		c.log.Debug("no ant reached the goal", zap.Int("ants", len(ants)))
		return
	}

	best := ants[bestIdx]
	for i := 0; i+1 < len(best.path); i++ {
		s.pheromones.deposit(LatticeEdge{best.path[i], best.path[i+1]},
			c.cfg.GlobalEvaporationCoefficient, c.cfg.GlobalDepositConstant, best.length, c.cfg.InitPheromone)
	}

	if best.length < s.bestLength {
		s.best = best.path
		s.bestLength = best.length
	}

	c.log.Debug("colony group finished",
		zap.Int("arrived", arrived),
		zap.Float64("groupBest", best.length),
		zap.Float64("sessionBest", s.bestLength))
}

// chooseNext picks the next lattice node for an ant standing on cur and
// reports whether the edge to it has line of sight.
func (c *Colony) chooseNext(cur LatticeNode, goal orb.Point, pheromones PheromoneField, tabu map[LatticeNode]struct{}) (LatticeNode, bool) {
	exploit := c.rng.Float64() < c.cfg.ExploitationChance

	var (
		nodes   [8]LatticeNode
		scores  [8]float64
		visible [8]bool
	)
	from := c.toWorld(cur)
	bound := c.world.Bound()
	for i, off := range neighborOffsets {
		n := LatticeNode{cur.X + off[0], cur.Y + off[1]}
		to := c.toWorld(n)
		nodes[i] = n
		visible[i] = bound.Contains(to) && c.world.HasLineOfSight(from, to)

		switch {
		case !visible[i]:
			scores[i] = blockedScore
		case hasNode(tabu, n):
			scores[i] = tabuScore
		default:
			pher, ok := pheromones[LatticeEdge{cur, n}]
			if !ok {
				pher = c.cfg.InitPheromone
			}
			scores[i] = math.Pow(pher, c.cfg.Alpha) * math.Pow(c.desirability(to, goal), c.cfg.Beta)
		}
	}

	idx := 0
	if exploit {
		for i := 1; i < len(scores); i++ {
			if scores[i] > scores[idx] {
				idx = i
			}
		}
	} else {
		idx = roll(c.rng, scores[:])
	}
	return nodes[idx], visible[idx]
}

func (c *Colony) desirability(p, goal orb.Point) float64 {
	return (c.cfg.ElicitationConstant + 1) / (planar.Distance(p, goal) + 1)
}

// pathClear reports whether every consecutive pair of nodes still sees each other.
func (c *Colony) pathClear(path []LatticeNode) bool {
	for i := 0; i+1 < len(path); i++ {
		if !c.world.HasLineOfSight(c.toWorld(path[i]), c.toWorld(path[i+1])) {
			return false
		}
	}
	return true
}

func (c *Colony) latticeSize() float64 {
	if c.cfg.LatticeSize > 0 {
		return c.cfg.LatticeSize
	}
	return c.world.CellSize()
}

// toNode maps a world position to the nearest lattice node.
func (c *Colony) toNode(p orb.Point) (LatticeNode, bool) {
	size := c.latticeSize()
	if isNaN(p) || size <= 0 {
		return LatticeNode{}, false
	}
	o := c.world.Origin()
	half := size / 2
	x := math.Round((p[0] - o[0] - half) / size)
	y := math.Round((p[1] - o[1] - half) / size)
	if math.Abs(x) > math.MaxInt32 || math.Abs(y) > math.MaxInt32 {
		return LatticeNode{}, false
	}
	return LatticeNode{int(x), int(y)}, true
}

func (c *Colony) toWorld(n LatticeNode) orb.Point {
	size := c.latticeSize()
	o := c.world.Origin()
	return orb.Point{
		o[0] + float64(n.X)*size + size/2,
		o[1] + float64(n.Y)*size + size/2,
	}
}

func hasNode(set map[LatticeNode]struct{}, n LatticeNode) bool {
	_, ok := set[n]
	return ok
}

// roll draws an index with probability proportional to its weight.
func roll(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
