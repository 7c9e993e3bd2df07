package solve

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
)

// AnyAngleConfig tunes the any-angle search.
type AnyAngleConfig struct {
	StepSize      float64 // world distance between probe positions
	MaxExpansions int     // 0 means unlimited
}

func DefaultAnyAngleConfig() AnyAngleConfig {
	return AnyAngleConfig{
		StepSize:      20,
		MaxExpansions: 200000,
	}
}

// probeDirections are the eight compass and diagonal steps, counter-clockwise from east.
var probeDirections = [8][2]int{
	{1, 0},
	{1, 1},
	{0, 1},
	{-1, 1},
	{-1, 0},
	{-1, -1},
	{0, -1},
	{1, -1},
}

// Node represents a position in the any-angle search. Key is the position's
// offset from the start in whole steps; Pos is derived from it.
type Node struct {
	Key    [2]int
	Pos    orb.Point
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to goal
	F      float64 // Total cost (G + H)
	Parent *Node
	Index  int // Index in the heap
}

// PriorityQueue implements heap.Interface ordered by F, then by H
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	return pq[i].H < pq[j].H
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// AnyAngle is a best-first search over positions spaced StepSize apart whose
// edges are accepted by line of sight rather than cell adjacency. Every
// expanded position first checks whether the goal is directly visible.
type AnyAngle struct {
	world World
	cfg   AnyAngleConfig
	log   *zap.Logger
}

func NewAnyAngle(world World, cfg AnyAngleConfig, opts ...Option) *AnyAngle {
	o := applyOptions(opts)
	return &AnyAngle{world: world, cfg: cfg, log: o.logger}
}

func (s *AnyAngle) Name() string { return "astar" }

// FindPath returns start, the intermediate probe positions and goal, or nil
// when the reachable positions are exhausted without seeing the goal.
func (s *AnyAngle) FindPath(start, goal orb.Point) orb.LineString {
	if isNaN(start) || isNaN(goal) {
		return nil
	}

	bound := s.world.Bound()
	openSet := &PriorityQueue{}
	heap.Init(openSet)

	startNode := &Node{
		Pos: start,
		G:   0,
		H:   planar.Distance(start, goal),
	}
	startNode.F = startNode.H
	heap.Push(openSet, startNode)

	bestG := map[[2]int]float64{startNode.Key: 0}
	nodesExplored := 0

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*Node)

		// Skip stale entries superseded by a cheaper route
		if current.G > bestG[current.Key] {
			continue
		}

		nodesExplored++
		if s.cfg.MaxExpansions > 0 && nodesExplored > s.cfg.MaxExpansions {
			s.log.Debug("any-angle search hit expansion limit",
				zap.Int("limit", s.cfg.MaxExpansions))
			return nil
		}

		if s.world.HasLineOfSight(current.Pos, goal) {
			goalNode := &Node{
				Pos:    goal,
				G:      current.G + planar.Distance(current.Pos, goal),
				Parent: current,
			}
			s.log.Debug("any-angle search reached goal",
				zap.Int("expanded", nodesExplored),
				zap.Float64("cost", goalNode.G))
			return reconstruct(goalNode)
		}

		if s.cfg.StepSize <= 0 {
			break
		}

		for _, dir := range probeDirections {
			key := [2]int{current.Key[0] + dir[0], current.Key[1] + dir[1]}
			pos := orb.Point{
				start[0] + float64(key[0])*s.cfg.StepSize,
				start[1] + float64(key[1])*s.cfg.StepSize,
			}
			if !bound.Contains(pos) {
				continue
			}
			if !s.world.HasLineOfSight(current.Pos, pos) {
				continue
			}

			tentativeG := current.G + planar.Distance(current.Pos, pos)
			if g, seen := bestG[key]; seen && tentativeG >= g {
				continue
			}
			bestG[key] = tentativeG

			neighbor := &Node{
				Key:    key,
				Pos:    pos,
				G:      tentativeG,
				H:      planar.Distance(pos, goal),
				Parent: current,
			}
			neighbor.F = neighbor.G + neighbor.H
			heap.Push(openSet, neighbor)
		}
	}

	s.log.Debug("any-angle search exhausted", zap.Int("expanded", nodesExplored))
	return nil
}

func reconstruct(n *Node) orb.LineString {
	var path orb.LineString
	for ; n != nil; n = n.Parent {
		path = append(path, n.Pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func isNaN(p orb.Point) bool {
	return math.IsNaN(p[0]) || math.IsNaN(p[1])
}
