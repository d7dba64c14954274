package planner

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/gridmap"
)

// cellObstacle covers exactly cell (i, j) of a grid with unit cells.
func cellObstacle(i, j int) geometry.Obstacle {
	return geometry.Obstacle{X: float64(i) + 0.1, Y: float64(j) + 0.1, Width: 0.8, Height: 0.8}
}

func cellCenter(c gridmap.Cell) orb.Point {
	return orb.Point{float64(c.I) + 0.5, float64(c.J) + 0.5}
}

// unitProblem builds a w x h workspace with unit cells, start and goal at cell centers.
func unitProblem(t *testing.T, w, h int, start, goal gridmap.Cell, blocked ...gridmap.Cell) *Problem {
	t.Helper()
	obstacles := make([]geometry.Obstacle, 0, len(blocked))
	for _, c := range blocked {
		obstacles = append(obstacles, cellObstacle(c.I, c.J))
	}
	p, err := NewProblem(orb.Point{float64(w), float64(h)}, cellCenter(start), cellCenter(goal), obstacles, 0)
	require.NoError(t, err)
	return p
}

func unitGrid(t *testing.T, p *Problem, diagonal bool) (*gridmap.GridMap, GridOptions) {
	t.Helper()
	opts := GridOptions{
		Width:         int(p.Size.X()),
		Height:        int(p.Size.Y()),
		AllowDiagonal: diagonal,
		MaxIterations: 1_000_000,
	}
	grid, err := NewGrid(p, opts)
	require.NoError(t, err)
	return grid, opts
}

// goalBox is a closed ring of obstacle cells around goal.
func goalBox(goal gridmap.Cell) []gridmap.Cell {
	var ring []gridmap.Cell
	for i := goal.I - 1; i <= goal.I+1; i++ {
		for j := goal.J - 1; j <= goal.J+1; j++ {
			if i == goal.I && j == goal.J {
				continue
			}
			ring = append(ring, gridmap.Cell{I: i, J: j})
		}
	}
	return ring
}

// randomBlocked scatters obstacle cells with the given density, never on start or goal.
func randomBlocked(rng *rand.Rand, w, h int, density float64, start, goal gridmap.Cell) []gridmap.Cell {
	var cells []gridmap.Cell
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			c := gridmap.Cell{I: i, J: j}
			if c == start || c == goal {
				continue
			}
			if rng.Float64() < density {
				cells = append(cells, c)
			}
		}
	}
	return cells
}
