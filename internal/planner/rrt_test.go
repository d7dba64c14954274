package planner

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-motion-planner/internal/geometry"
)

func newTestRRT(t *testing.T, p *Problem, opts RRTOptions) *RRT {
	t.Helper()
	r, err := NewRRT(p, opts, nil)
	require.NoError(t, err)
	return r
}

func TestRRTReachesGoalInStraightLine(t *testing.T) {
	p, err := NewProblem(orb.Point{50, 20}, orb.Point{10, 10}, orb.Point{40, 10}, nil, 0)
	require.NoError(t, err)

	r := newTestRRT(t, p, RRTOptions{Rate: 1, DistanceThreshold: 20, GoalThreshold: 10, Seed: 1})
	result, err := r.Solve(context.Background())
	require.NoError(t, err)

	// The first step stops exactly 10 short of the goal, which is not strictly
	// inside the threshold, so a second step is needed.
	assert.Equal(t, StatusSolved, result.Status)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, orb.LineString{{10, 10}, {30, 10}, {40, 10}}, result.Path)
	assert.InDelta(t, 30.0, result.Cost, 1e-9)
	assert.InDelta(t, 30.0, r.PathCost(), 1e-9)
	assert.Len(t, result.Tree, 2)
}

func TestRRTStartWithinGoalThreshold(t *testing.T) {
	p, err := NewProblem(orb.Point{50, 50}, orb.Point{10, 10}, orb.Point{12, 10}, nil, 0)
	require.NoError(t, err)

	result, err := newTestRRT(t, p, RRTOptions{Seed: 3}).Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{10, 10}}, result.Path)
	assert.Equal(t, 0, result.Iterations)
	assert.Equal(t, 0.0, result.Cost)
}

func TestRRTFindsCollisionFreePath(t *testing.T) {
	wall := geometry.Obstacle{X: 45, Y: 0, Width: 10, Height: 70}
	p, err := NewProblem(orb.Point{100, 100}, orb.Point{10, 50}, orb.Point{90, 50}, []geometry.Obstacle{wall}, 2)
	require.NoError(t, err)

	opts := DefaultRRTOptions()
	opts.Seed = 11
	result, err := newTestRRT(t, p, opts).Solve(context.Background())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Path), 2)
	assert.Equal(t, p.Start, result.Path[0])
	assert.Less(t, geometry.Distance(result.Path[len(result.Path)-1], p.Goal), opts.GoalThreshold)
	assert.True(t, p.Obstacles.IsPathClear(result.Path))
	assert.InDelta(t, geometry.PathLength(result.Path), result.Cost, 1e-9)

	for _, edge := range result.Tree {
		assert.LessOrEqual(t, geometry.Distance(edge[0], edge[1]), opts.DistanceThreshold+1e-9)
		assert.False(t, p.Obstacles.SegmentBlocked(edge[0], edge[1]))
	}
	assert.Len(t, result.Tree, result.Iterations)
}

func TestRRTNoPathWhenGoalEnclosed(t *testing.T) {
	ring := []geometry.Obstacle{
		{X: 40, Y: 40, Width: 2, Height: 20},
		{X: 58, Y: 40, Width: 2, Height: 20},
		{X: 40, Y: 40, Width: 20, Height: 2},
		{X: 40, Y: 58, Width: 20, Height: 2},
	}
	p, err := NewProblem(orb.Point{100, 100}, orb.Point{10, 10}, orb.Point{50, 50}, ring, 0)
	require.NoError(t, err)

	r := newTestRRT(t, p, RRTOptions{GoalThreshold: 0.5, MaxCanceledIterations: 50, Seed: 7})
	result, err := r.Solve(context.Background())
	require.ErrorIs(t, err, ErrNoPath)
	assert.Equal(t, StatusNoPath, result.Status)
	assert.Empty(t, result.Path)
	assert.Equal(t, 51, result.Canceled)
	assert.True(t, math.IsInf(result.Cost, 1))
	assert.True(t, math.IsInf(r.PathCost(), 1))
}

func TestRRTIterationBudget(t *testing.T) {
	p, err := NewProblem(orb.Point{100, 20}, orb.Point{10, 10}, orb.Point{90, 10}, nil, 0)
	require.NoError(t, err)

	r := newTestRRT(t, p, RRTOptions{Rate: 1, DistanceThreshold: 1, GoalThreshold: 1, MaxIterations: 3, Seed: 1})
	result, err := r.Solve(context.Background())
	require.ErrorIs(t, err, ErrIterationBudget)
	assert.Equal(t, StatusPartial, result.Status)
	assert.Equal(t, 3, result.Iterations)
	require.Len(t, result.Path, 4)
	assert.Equal(t, p.Start, result.Path[0])
	assert.InDelta(t, 13.0, result.Path[3].X(), 1e-9)
	assert.InDelta(t, 3.0, result.Cost, 1e-9)
}

func TestRRTCanceled(t *testing.T) {
	p, err := NewProblem(orb.Point{100, 100}, orb.Point{10, 10}, orb.Point{90, 90}, nil, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestRRT(t, p, RRTOptions{Seed: 1}).Solve(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCanceled, result.Status)
	assert.Equal(t, orb.LineString{{10, 10}}, result.Path)
}

func TestRRTDeterministicWithSeed(t *testing.T) {
	obstacles := []geometry.Obstacle{
		{X: 30, Y: 20, Width: 10, Height: 60},
		{X: 60, Y: 0, Width: 10, Height: 50},
	}
	p, err := NewProblem(orb.Point{100, 100}, orb.Point{5, 5}, orb.Point{95, 95}, obstacles, 1)
	require.NoError(t, err)

	opts := RRTOptions{Seed: 99}
	first, firstErr := newTestRRT(t, p, opts).Solve(context.Background())
	again, againErr := newTestRRT(t, p, opts).Solve(context.Background())

	assert.Equal(t, firstErr, againErr)
	assert.Equal(t, first.Path, again.Path)
	assert.Equal(t, first.Tree, again.Tree)
	assert.Equal(t, first.Canceled, again.Canceled)
}

func TestRRTRejectsBadOptions(t *testing.T) {
	p, err := NewProblem(orb.Point{10, 10}, orb.Point{1, 1}, orb.Point{9, 9}, nil, 0)
	require.NoError(t, err)

	for _, opts := range []RRTOptions{
		{Rate: 1.5},
		{Rate: -0.1},
		{DistanceThreshold: -1},
		{GoalThreshold: -2},
		{MaxCanceledIterations: -1},
	} {
		_, err := NewRRT(p, opts, nil)
		assert.ErrorIs(t, err, ErrConfig, "%+v", opts)
	}

	r, err := NewRRT(p, RRTOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRRTOptions(), r.Options())
}

func TestNearestIndex(t *testing.T) {
	idx := newNearestIndex()
	assert.Equal(t, -1, idx.Nearest(orb.Point{0, 0}))

	points := []orb.Point{{0, 0}, {10, 0}, {10, 10}, {3, 7}}
	for id, pt := range points {
		idx.Insert(id, pt)
	}
	assert.Equal(t, len(points), idx.Len())

	assert.Equal(t, 0, idx.Nearest(orb.Point{1, 1}))
	assert.Equal(t, 1, idx.Nearest(orb.Point{9, -2}))
	assert.Equal(t, 2, idx.Nearest(orb.Point{12, 12}))
	assert.Equal(t, 3, idx.Nearest(orb.Point{3, 6}))
}
