package planner

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-motion-planner/internal/gridmap"
)

func TestJPSMatchesAStarCost(t *testing.T) {
	wall := func(i, from, to int) []gridmap.Cell {
		var cells []gridmap.Cell
		for j := from; j <= to; j++ {
			cells = append(cells, gridmap.Cell{I: i, J: j})
		}
		return cells
	}

	layouts := []struct {
		name    string
		w, h    int
		start   gridmap.Cell
		goal    gridmap.Cell
		blocked []gridmap.Cell
	}{
		{"open", 12, 9, gridmap.Cell{I: 0, J: 0}, gridmap.Cell{I: 11, J: 5}, nil},
		{"wall with gap", 8, 8, gridmap.Cell{I: 0, J: 0}, gridmap.Cell{I: 6, J: 0}, wall(3, 0, 6)},
		{"two walls", 15, 10, gridmap.Cell{I: 0, J: 9}, gridmap.Cell{I: 14, J: 0},
			append(wall(4, 2, 9), wall(9, 0, 7)...)},
		{"goal behind pillar", 10, 10, gridmap.Cell{I: 1, J: 5}, gridmap.Cell{I: 8, J: 5}, wall(5, 3, 7)},
	}

	for _, l := range layouts {
		for _, diagonal := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/diagonal=%v", l.name, diagonal), func(t *testing.T) {
				p := unitProblem(t, l.w, l.h, l.start, l.goal, l.blocked...)
				grid, opts := unitGrid(t, p, diagonal)

				want, err := NewAStar(grid, opts, nil).Solve(context.Background())
				require.NoError(t, err)
				got, err := NewJPS(grid, opts, nil).Solve(context.Background())
				require.NoError(t, err)

				assert.InDelta(t, want.Cost, got.Cost, 1e-9)
				assert.Equal(t, want.Path[0], got.Path[0])
				assert.Equal(t, want.Path[len(want.Path)-1], got.Path[len(got.Path)-1])
			})
		}
	}
}

func TestJPSMatchesAStarOnRandomMaps(t *testing.T) {
	start := gridmap.Cell{I: 0, J: 0}
	goal := gridmap.Cell{I: 19, J: 19}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		blocked := randomBlocked(rng, 20, 20, 0.25, start, goal)
		p := unitProblem(t, 20, 20, start, goal, blocked...)

		for _, diagonal := range []bool{false, true} {
			grid, opts := unitGrid(t, p, diagonal)

			want, wantErr := NewAStar(grid, opts, nil).Solve(context.Background())
			got, gotErr := NewJPS(grid, opts, nil).Solve(context.Background())

			if wantErr != nil {
				require.ErrorIs(t, wantErr, ErrNoPath, "seed %d", seed)
				assert.ErrorIs(t, gotErr, ErrNoPath, "seed %d diagonal=%v", seed, diagonal)
				continue
			}
			require.NoError(t, gotErr, "seed %d diagonal=%v", seed, diagonal)
			assert.InDelta(t, want.Cost, got.Cost, 1e-9, "seed %d diagonal=%v", seed, diagonal)
		}
	}
}

func TestJPSPathStaysOnFreeCells(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := gridmap.Cell{I: 0, J: 0}
	goal := gridmap.Cell{I: 24, J: 17}
	p := unitProblem(t, 25, 18, start, goal, randomBlocked(rng, 25, 18, 0.2, start, goal)...)

	for _, diagonal := range []bool{false, true} {
		grid, opts := unitGrid(t, p, diagonal)
		result, err := NewJPS(grid, opts, nil).Solve(context.Background())
		if err != nil {
			require.ErrorIs(t, err, ErrNoPath)
			continue
		}

		// Jump points are joined by straight or 45 degree runs over free cells.
		for i := 1; i < len(result.Path); i++ {
			a := grid.CellIndex(result.Path[i-1])
			b := grid.CellIndex(result.Path[i])
			di, dj := b.I-a.I, b.J-a.J
			n := max(abs(di), abs(dj))
			require.True(t, di == 0 || dj == 0 || abs(di) == abs(dj), "leg %v -> %v is not a grid line", a, b)
			if !diagonal {
				require.True(t, di == 0 || dj == 0, "diagonal leg %v -> %v on a 4-connected grid", a, b)
			}
			for k := 0; k <= n; k++ {
				c := gridmap.Cell{I: a.I + k*sign(di), J: a.J + k*sign(dj)}
				assert.True(t, grid.IsFree(c.I, c.J), "leg %v -> %v crosses blocked cell %v", a, b, c)
			}
		}
	}
}

func TestJPSStopsAtGoalMidRun(t *testing.T) {
	p := unitProblem(t, 10, 5, gridmap.Cell{I: 0, J: 2}, gridmap.Cell{I: 5, J: 2})
	grid, opts := unitGrid(t, p, false)

	result, err := NewJPS(grid, opts, nil).Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{0.5, 2.5}, {5.5, 2.5}}, result.Path)
	assert.InDelta(t, 5.0, result.Cost, 1e-9)
}

func TestJPSForcedNeighbour(t *testing.T) {
	p := unitProblem(t, 10, 10, gridmap.Cell{I: 0, J: 5}, gridmap.Cell{I: 9, J: 5}, gridmap.Cell{I: 3, J: 4})
	grid, opts := unitGrid(t, p, true)
	j := NewJPS(grid, opts, nil)

	// Moving +x along row 5, the blocked cell below (3, 4) forces a turn at (4, 5).
	for x := 1; x < 9; x++ {
		forced := j.isForced(gridmap.Cell{I: x, J: 5}, direction{1, 0})
		assert.Equal(t, x == 4, forced, "x=%d", x)
	}

	// Diagonal moves never report forced neighbours themselves.
	assert.False(t, j.isForced(gridmap.Cell{I: 4, J: 5}, direction{1, 1}))
}

func TestJPSExploresFewerCells(t *testing.T) {
	p := unitProblem(t, 30, 30, gridmap.Cell{I: 0, J: 0}, gridmap.Cell{I: 29, J: 29})
	grid, opts := unitGrid(t, p, true)

	astar, err := NewAStar(grid, opts, nil).Solve(context.Background())
	require.NoError(t, err)
	jps, err := NewJPS(grid, opts, nil).Solve(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, astar.Cost, jps.Cost, 1e-9)
	assert.Less(t, len(jps.Explored), len(astar.Explored))
	assert.Less(t, jps.Iterations, astar.Iterations)
}

func TestJPSNoPath(t *testing.T) {
	goal := gridmap.Cell{I: 5, J: 5}
	p := unitProblem(t, 10, 10, gridmap.Cell{I: 0, J: 0}, goal, goalBox(goal)...)

	for _, diagonal := range []bool{false, true} {
		grid, opts := unitGrid(t, p, diagonal)
		result, err := NewJPS(grid, opts, nil).Solve(context.Background())
		require.ErrorIs(t, err, ErrNoPath)
		assert.Equal(t, StatusNoPath, result.Status)
		assert.True(t, math.IsInf(result.Cost, 1))
	}
}

func TestJPSDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := gridmap.Cell{I: 2, J: 1}
	goal := gridmap.Cell{I: 17, J: 18}
	p := unitProblem(t, 20, 20, start, goal, randomBlocked(rng, 20, 20, 0.15, start, goal)...)

	for _, diagonal := range []bool{false, true} {
		grid, opts := unitGrid(t, p, diagonal)
		first, firstErr := NewJPS(grid, opts, nil).Solve(context.Background())
		again, againErr := NewJPS(grid, opts, nil).Solve(context.Background())

		assert.Equal(t, firstErr, againErr)
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Explored, again.Explored)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
