package placer

import (
	"container/heap"

	"github.com/df-mc/dragonfly/server/block/cube"
	df_world "github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/world"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSupportDepth = 4
	MaxSupportDepth     = 12

	// supportMoveCost is the cost of every step of a support path.
	supportMoveCost = 2.0
)

// SupportSearch finds the shortest chain of support placements that makes a block placement possible
// where no face is available to click.
type SupportSearch struct {
	View *world.View
	// Depth is the maximum Manhattan distance from the target that a support block may have.
	Depth int
	// Range is the maximum distance from the eye to the centre of a support block. Zero disables the
	// check.
	Range float64
	// Blocked contains positions that may never hold a support block.
	Blocked map[cube.Pos]struct{}
	// Queued returns true if a block is already going to be placed at the position.
	Queued func(cube.Pos) bool
	Log    logrus.FieldLogger
}

// Path is a chain of support positions. The first position is adjacent to an existing surface and the
// last position is the target the search started from.
type Path []cube.Pos

// Set returns the positions of the path without order.
func (p Path) Set() map[cube.Pos]struct{} {
	set := make(map[cube.Pos]struct{}, len(p))
	for _, pos := range p {
		set[pos] = struct{}{}
	}
	return set
}

type node struct {
	pos    cube.Pos
	cost   float64
	index  int
	parent *node
}

type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool { return q[i].cost < q[j].cost }

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// FindSupport searches for the shortest path of placements from a position next to an existing
// surface up to target.
func (s SupportSearch) FindSupport(eye mgl64.Vec3, target cube.Pos) (Path, bool) {
	depth := s.Depth
	if depth <= 0 {
		depth = DefaultSupportDepth
	}
	depth = min(depth, MaxSupportDepth)

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &node{pos: target})
	costs := map[cube.Pos]float64{target: 0}
	closed := make(map[cube.Pos]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if _, seen := closed[current.pos]; seen {
			continue
		}
		closed[current.pos] = struct{}{}
		if s.touchesSurface(current.pos) {
			path := reconstructPath(current)
			s.debugf("support search for %v found %v after %d nodes", target, path, len(closed))
			return path, true
		}

		for _, face := range cube.Faces() {
			next := current.pos.Side(face)
			if _, seen := closed[next]; seen {
				continue
			}
			if !s.traversable(eye, target, next, depth) {
				closed[next] = struct{}{}
				continue
			}
			cost := current.cost + supportMoveCost
			if prev, ok := costs[next]; ok && cost >= prev {
				continue
			}
			costs[next] = cost
			heap.Push(open, &node{pos: next, cost: cost, parent: current})
		}
	}
	s.debugf("support search for %v exhausted %d nodes", target, len(closed))
	return nil, false
}

// touchesSurface returns true if a block could be placed at pos against one of its neighbours.
func (s SupportSearch) touchesSurface(pos cube.Pos) bool {
	for _, face := range cube.Faces() {
		if !s.View.ReplaceableAny(pos.Side(face)) {
			return true
		}
	}
	return false
}

func (s SupportSearch) traversable(eye mgl64.Vec3, target, pos cube.Pos, depth int) bool {
	if pos.OutOfBounds(df_world.Overworld.Range()) || !s.View.ReplaceableAny(pos) {
		return false
	}
	if _, ok := s.Blocked[pos]; ok {
		return false
	}
	if s.Queued != nil && s.Queued(pos) {
		return false
	}
	if manhattan(pos, target) > depth {
		return false
	}
	if s.Range > 0 && pos.Vec3Centre().Sub(eye).Len() > s.Range {
		return false
	}
	return !s.View.BlockedByEntities(pos)
}

func (s SupportSearch) debugf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Debugf(format, args...)
	}
}

// reconstructPath walks the parents of end back to the start of the search.
func reconstructPath(end *node) Path {
	var path Path
	for n := end; n != nil; n = n.parent {
		path = append(path, n.pos)
	}
	return path
}

func manhattan(a, b cube.Pos) int {
	return abs(a.X()-b.X()) + abs(a.Y()-b.Y()) + abs(a.Z()-b.Z())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
