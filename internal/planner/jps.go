package planner

import (
	"context"
	"log"
	"math"

	"agent-motion-planner/internal/gridmap"
)

// JPS implements Jump Point Search. It shares the A* loop but, instead of the
// immediate neighbours, its successors are the jump points found by scanning
// along each direction until the goal, a forced neighbour or a dead end.
type JPS struct {
	search gridSearch
	cost   float64
}

// NewJPS creates a Jump Point Search planner over grid.
func NewJPS(grid *gridmap.GridMap, opts GridOptions, logger *log.Logger) *JPS {
	opts = opts.withDefaults(defaultJPSIterations)
	j := &JPS{}
	j.search = gridSearch{
		name:   "JPS",
		grid:   grid,
		opts:   opts,
		logger: logger,
		dirs:   directionsFor(opts.AllowDiagonal),
	}
	if opts.AllowDiagonal {
		j.search.name = "JPS (diagonal)"
	}
	j.search.expand = j.successors
	return j
}

// Name identifies the planner in logs and results.
func (j *JPS) Name() string { return j.search.name }

// PathCost is the cost of the last returned path.
func (j *JPS) PathCost() float64 { return j.cost }

// Solve finds the cheapest path from the start cell to the goal cell.
func (j *JPS) Solve(ctx context.Context) (*Result, error) {
	result, err := j.search.run(ctx)
	j.cost = result.Cost
	return result, err
}

// successors jumps from cur in every direction. A jump can span many cells, so
// the step cost is the straight-line distance between the two jump points.
func (j *JPS) successors(cur gridmap.Cell, dst []successor) []successor {
	for _, d := range j.search.dirs {
		next, ok := j.jump(cur, d)
		if !ok {
			continue
		}
		dx := float64(next.I - cur.I)
		dy := float64(next.J - cur.J)
		dst = append(dst, successor{cell: next, cost: math.Sqrt(dx*dx + dy*dy)})
	}
	return dst
}

// jump steps from pos along d and returns the first jump point, or false when the
// ray runs into an obstacle or the grid edge.
func (j *JPS) jump(pos gridmap.Cell, d direction) (gridmap.Cell, bool) {
	grid := j.search.grid
	diagonal := d.dx != 0 && d.dy != 0

	for {
		if diagonal && !canMoveDiagonally(grid, pos, d) {
			return gridmap.Cell{}, false
		}
		next := gridmap.Cell{I: pos.I + d.dx, J: pos.J + d.dy}
		if !grid.IsFree(next.I, next.J) {
			return gridmap.Cell{}, false
		}

		// The goal must be caught here or the scan overshoots it.
		if grid.IsGoal(next.I, next.J) {
			return next, true
		}
		if j.isForced(next, d) {
			return next, true
		}

		switch {
		case diagonal:
			// An axis-aligned jump point reachable only through this diagonal step
			// makes the step itself a jump point.
			if _, ok := j.jump(next, direction{d.dx, 0}); ok {
				return next, true
			}
			if _, ok := j.jump(next, direction{0, d.dy}); ok {
				return next, true
			}
		case !j.search.opts.AllowDiagonal && d.dy != 0:
			// Without diagonals a vertical run has to probe sideways for the
			// points where the path turns.
			if _, ok := j.jump(next, direction{1, 0}); ok {
				return next, true
			}
			if _, ok := j.jump(next, direction{-1, 0}); ok {
				return next, true
			}
		}

		pos = next
	}
}

// isForced reports whether pos, reached by moving along d, has a neighbour that
// can only be reached optimally by turning at pos.
func (j *JPS) isForced(pos gridmap.Cell, d direction) bool {
	grid := j.search.grid
	x, y := pos.I, pos.J
	blocked := func(i, k int) bool { return !grid.IsFree(i, k) }

	switch {
	case d.dx != 0 && d.dy != 0:
		// Diagonal runs find their turns through the axis-aligned sub-scans.
		return false
	case d.dx != 0:
		return (grid.IsFree(x, y+1) && blocked(x-d.dx, y+1)) ||
			(grid.IsFree(x, y-1) && blocked(x-d.dx, y-1))
	default:
		return (grid.IsFree(x+1, y) && blocked(x+1, y-d.dy)) ||
			(grid.IsFree(x-1, y) && blocked(x-1, y-d.dy))
	}
}
