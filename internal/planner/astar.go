package planner

import (
	"container/heap"
	"context"
	"log"
	"math"
	"time"

	"github.com/paulmach/orb"

	"agent-motion-planner/internal/gridmap"
)

// searchNode represents a node in the grid search arena. Nodes are compared by
// cell only; parent is an arena index, -1 for the root.
type searchNode struct {
	cell   gridmap.Cell
	parent int
	g      float64 // cost from start (cell-index units)
	h      float64 // heuristic cost to goal
	f      float64 // g + h
}

// successor is a cell reachable from the node being expanded, with its step cost.
type successor struct {
	cell gridmap.Cell
	cost float64
}

// successorFunc generates the successors of cur. It appends to dst and returns it.
type successorFunc func(cur gridmap.Cell, dst []successor) []successor

type direction struct{ dx, dy int }

var (
	axisDirections     = []direction{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagonalDirections = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// directionsFor returns the 4 axis moves, plus the 4 diagonals when allowed.
func directionsFor(allowDiagonal bool) []direction {
	dirs := append([]direction{}, axisDirections...)
	if allowDiagonal {
		dirs = append(dirs, diagonalDirections...)
	}
	return dirs
}

// canMoveDiagonally reports whether a diagonal step from cur along d keeps clear of
// obstacle corners: both orthogonal cells it passes between must be free.
func canMoveDiagonally(grid *gridmap.GridMap, cur gridmap.Cell, d direction) bool {
	return grid.IsFree(cur.I+d.dx, cur.J) && grid.IsFree(cur.I, cur.J+d.dy)
}

// gridSearch is the best-first loop shared by A* and JPS. Only the successor
// generator differs between the two.
type gridSearch struct {
	name   string
	grid   *gridmap.GridMap
	opts   GridOptions
	logger *log.Logger
	dirs   []direction
	expand successorFunc
}

// heuristic is Manhattan distance on 4-connected grids and Euclidean distance on
// 8-connected grids, both admissible for their step costs.
func (s *gridSearch) heuristic(c gridmap.Cell) float64 {
	goal := s.grid.Goal()
	dx := math.Abs(float64(c.I - goal.I))
	dy := math.Abs(float64(c.J - goal.J))
	if s.opts.AllowDiagonal {
		return math.Sqrt(dx*dx + dy*dy)
	}
	return dx + dy
}

func (s *gridSearch) run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{Planner: s.name}

	width := s.grid.Width()
	cellCount := width * s.grid.Height()
	closed := make([]bool, cellCount)
	bestG := make([]float64, cellCount)
	for i := range bestG {
		bestG[i] = math.Inf(1)
	}
	key := func(c gridmap.Cell) int { return c.J*width + c.I }

	start := s.grid.Start()
	arena := []searchNode{{cell: start, parent: -1, h: s.heuristic(start)}}
	arena[0].f = arena[0].h
	bestG[key(start)] = 0
	result.Explored = append(result.Explored, start)

	openSet := &frontier{}
	heap.Init(openSet)
	var seq uint64
	heap.Push(openSet, frontierItem{node: 0, f: arena[0].f, seq: seq})

	last := -1
	var children []successor

	for openSet.Len() > 0 {
		if err := ctx.Err(); err != nil {
			result.Status = StatusCanceled
			result.Path = s.buildPath(arena, last)
			result.finish(started, s.logger)
			return result, err
		}
		if result.Iterations >= s.opts.MaxIterations {
			// Return the path to the most recently expanded node
			result.Status = StatusPartial
			result.Path = s.buildPath(arena, last)
			result.finish(started, s.logger)
			return result, ErrIterationBudget
		}

		item := heap.Pop(openSet).(frontierItem)
		current := arena[item.node]
		ck := key(current.cell)
		if closed[ck] {
			continue
		}
		closed[ck] = true
		result.Iterations++
		last = item.node

		if s.grid.IsGoal(current.cell.I, current.cell.J) {
			result.Status = StatusSolved
			result.Path = s.buildPath(arena, item.node)
			result.finish(started, s.logger)
			return result, nil
		}

		children = s.expand(current.cell, children[:0])
		for _, child := range children {
			k := key(child.cell)
			if closed[k] {
				continue
			}

			tentativeG := current.g + child.cost
			if tentativeG >= bestG[k] {
				continue
			}
			if math.IsInf(bestG[k], 1) {
				result.Explored = append(result.Explored, child.cell)
			}
			bestG[k] = tentativeG

			node := searchNode{
				cell:   child.cell,
				parent: item.node,
				g:      tentativeG,
				h:      s.heuristic(child.cell),
			}
			node.f = node.g + node.h
			arena = append(arena, node)
			seq++
			heap.Push(openSet, frontierItem{node: len(arena) - 1, f: node.f, seq: seq})
		}
	}

	result.Status = StatusNoPath
	result.finish(started, s.logger)
	return result, ErrNoPath
}

// buildPath walks parent links back to the root and maps each cell to its center.
func (s *gridSearch) buildPath(arena []searchNode, last int) orb.LineString {
	if last < 0 {
		return nil
	}
	var path orb.LineString
	for n := last; n >= 0; n = arena[n].parent {
		c := arena[n].cell
		path = append(path, s.grid.CellCenter(c.I, c.J))
	}

	// Reverse path to go from start to goal
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// AStar is the classic best-first planner over the grid graph.
type AStar struct {
	search gridSearch
	cost   float64
}

// NewAStar creates an A* planner over grid.
func NewAStar(grid *gridmap.GridMap, opts GridOptions, logger *log.Logger) *AStar {
	opts = opts.withDefaults(defaultAStarIterations)
	a := &AStar{}
	a.search = gridSearch{
		name:   "A*",
		grid:   grid,
		opts:   opts,
		logger: logger,
		dirs:   directionsFor(opts.AllowDiagonal),
	}
	if opts.AllowDiagonal {
		a.search.name = "A* (diagonal)"
	}
	a.search.expand = a.neighbors
	return a
}

// Name identifies the planner in logs and results.
func (a *AStar) Name() string { return a.search.name }

// PathCost is the cost of the last returned path.
func (a *AStar) PathCost() float64 { return a.cost }

// Solve finds the cheapest path from the start cell to the goal cell.
func (a *AStar) Solve(ctx context.Context) (*Result, error) {
	result, err := a.search.run(ctx)
	a.cost = result.Cost
	return result, err
}

// neighbors returns the free 4- or 8-connected neighbours of cur.
func (a *AStar) neighbors(cur gridmap.Cell, dst []successor) []successor {
	grid := a.search.grid
	for _, d := range a.search.dirs {
		next := gridmap.Cell{I: cur.I + d.dx, J: cur.J + d.dy}
		if !grid.IsFree(next.I, next.J) {
			continue
		}
		cost := 1.0
		if d.dx != 0 && d.dy != 0 {
			if !canMoveDiagonally(grid, cur, d) {
				continue
			}
			cost = math.Sqrt2
		}
		dst = append(dst, successor{cell: next, cost: cost})
	}
	return dst
}
