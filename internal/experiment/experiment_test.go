package experiment

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-motion-planner/internal/level"
	"agent-motion-planner/internal/planner"
)

func testLevel(name string) *level.Level {
	return &level.Level{
		Name:       name,
		ScreenSize: orb.Point{100, 100},
		AgentStart: orb.Point{10, 10},
		Goal:       orb.Point{90, 90},
		Obstacles:  []level.Corners{{{40, 0}, {60, 70}}},
	}
}

func testOptions() planner.Options {
	return planner.Options{
		Grid: planner.GridOptions{Width: 50, Height: 50, AllowDiagonal: true},
		RRT:  planner.RRTOptions{Seed: 21},
	}
}

func TestCompareSolvesWithEveryPlanner(t *testing.T) {
	problem, err := testLevel("wall").Problem()
	require.NoError(t, err)

	var notified []planner.Kind
	outcomes, err := Compare(context.Background(), problem, testOptions(), planner.Kinds, func(o Outcome) {
		notified = append(notified, o.Kind)
	})
	require.NoError(t, err)
	require.Len(t, outcomes, len(planner.Kinds))
	assert.ElementsMatch(t, planner.Kinds, notified)

	for i, o := range outcomes {
		assert.Equal(t, planner.Kinds[i], o.Kind)
		require.NoError(t, o.Err, o.Kind)
		assert.Equal(t, planner.StatusSolved, o.Result.Status)
		assert.True(t, problem.Obstacles.IsPathClear(o.Result.Path), o.Kind)
	}
	assert.InDelta(t, outcomes[0].Result.Cost, outcomes[1].Result.Cost, 1e-9)
}

func TestCompareRejectsUnknownPlanner(t *testing.T) {
	problem, err := testLevel("wall").Problem()
	require.NoError(t, err)

	_, err = Compare(context.Background(), problem, testOptions(), []planner.Kind{"dijkstra"}, nil)
	assert.ErrorIs(t, err, planner.ErrConfig)
}

func TestCompareCanceled(t *testing.T) {
	problem, err := testLevel("wall").Problem()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := Compare(ctx, problem, testOptions(), planner.Kinds, nil)
	require.ErrorIs(t, err, context.Canceled)
	for _, o := range outcomes {
		assert.Equal(t, planner.StatusCanceled, o.Result.Status)
	}
}

func TestRunAndSummarize(t *testing.T) {
	levels := []*level.Level{testLevel("first"), testLevel("second")}
	cfg := Config{Trials: 2, Options: testOptions()}

	records, err := Run(context.Background(), levels, cfg)
	require.NoError(t, err)
	require.Len(t, records, 2*2*len(planner.Kinds))

	for _, r := range records {
		assert.Equal(t, planner.StatusSolved, r.Status, "%s %s trial %d", r.Map, r.Planner, r.Trial)
		if r.Planner == "RRT" {
			assert.Equal(t, 20.0, r.DistanceThreshold)
			assert.Equal(t, 0.5, r.Rate)
			assert.Zero(t, r.Explored)
		} else {
			assert.Zero(t, r.DistanceThreshold)
			assert.NotZero(t, r.Explored)
		}
	}

	summaries := Summarize(records)
	require.Len(t, summaries, 2*len(planner.Kinds))
	assert.Equal(t, "first", summaries[0].Map)
	assert.Equal(t, "A* (diagonal)", summaries[0].Planner)
	for _, s := range summaries {
		assert.Equal(t, 2, s.Trials)
		assert.Equal(t, 2, s.Solved)
		assert.False(t, math.IsInf(s.Cost, 1))
	}
}

func TestSummarizeUnsolved(t *testing.T) {
	records := []Record{
		{Map: "m", Planner: "RRT", Status: planner.StatusNoPath, Cost: math.Inf(1), Iterations: 10, Canceled: 4, Elapsed: time.Second},
		{Map: "m", Planner: "RRT", Status: planner.StatusNoPath, Cost: math.Inf(1), Iterations: 20, Canceled: 6, Elapsed: 3 * time.Second},
	}

	summaries := Summarize(records)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.True(t, math.IsInf(s.Cost, 1))
	assert.Equal(t, 0, s.Solved)
	assert.Equal(t, 15.0, s.Iterations)
	assert.Equal(t, 5.0, s.Canceled)
	assert.Equal(t, 2*time.Second, s.Elapsed)
}

func TestWriteCSV(t *testing.T) {
	records := []Record{
		{Map: "m", Planner: "JPS", Cost: 12.5, Iterations: 7, Explored: 30, Status: planner.StatusSolved, Elapsed: 1500 * time.Millisecond},
		{Map: "m", Planner: "RRT", DistanceThreshold: 20, Rate: 0.5, Cost: math.Inf(1), Canceled: 3, Status: planner.StatusNoPath},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrialCSV(&buf, records))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, trialHeader, rows[0])
	assert.Equal(t, []string{"m", "JPS", "0", "0.0000", "0.0000", "12.5000", "7", "1.5000", "0", "30", "solved"}, rows[1])
	assert.Equal(t, "+Inf", rows[2][5])
	assert.Equal(t, "no-path", rows[2][10])

	buf.Reset()
	require.NoError(t, WriteSummaryCSV(&buf, Summarize(records)))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Test Map Name", rows[0][0])
	assert.Equal(t, []string{"m", "RRT", "20.0000", "0.5000", "+Inf", "0.0000", "0.0000", "3.0000", "0.0000", "1", "0"}, rows[2])
}
