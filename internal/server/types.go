package server

import (
	"errors"
	"math"

	"github.com/paulmach/orb"

	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/gridmap"
	"agent-motion-planner/internal/planner"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) toOrb() orb.Point { return orb.Point{p.X, p.Y} }

func toPoints(ls orb.LineString) []Point {
	points := make([]Point, 0, len(ls))
	for _, p := range ls {
		points = append(points, Point{X: p.X(), Y: p.Y()})
	}
	return points
}

// PlanRequest describes a problem either inline or by level name. Zero tunables
// fall back to the server defaults.
type PlanRequest struct {
	Level     string              `json:"level,omitempty"`
	Size      Point               `json:"size"`
	Start     Point               `json:"start"`
	Goal      Point               `json:"goal"`
	Obstacles []geometry.Obstacle `json:"obstacles,omitempty"`
	Radius    float64             `json:"radius,omitempty"`

	Planner  string   `json:"planner,omitempty"`  // POST /plan
	Planners []string `json:"planners,omitempty"` // POST /compare and /ws/compare

	GridWidth     int     `json:"gridWidth,omitempty"`
	GridHeight    int     `json:"gridHeight,omitempty"`
	Diagonal      *bool   `json:"diagonal,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`
	Rate          float64 `json:"rate,omitempty"`
	Step          float64 `json:"step,omitempty"`
	GoalThreshold float64 `json:"goalThreshold,omitempty"`
	Seed          int64   `json:"seed,omitempty"`

	// Simplify, when positive, is the Douglas-Peucker tolerance for an extra
	// collision-checked simplified copy of the path.
	Simplify float64 `json:"simplify,omitempty"`
}

// options layers the request's tunables over base.
func (req *PlanRequest) options(base planner.Options) planner.Options {
	opts := base
	if req.GridWidth != 0 {
		opts.Grid.Width = req.GridWidth
	}
	if req.GridHeight != 0 {
		opts.Grid.Height = req.GridHeight
	}
	if req.Diagonal != nil {
		opts.Grid.AllowDiagonal = *req.Diagonal
	}
	if req.MaxIterations != 0 {
		opts.Grid.MaxIterations = req.MaxIterations
		opts.RRT.MaxIterations = req.MaxIterations
	}
	if req.Rate != 0 {
		opts.RRT.Rate = req.Rate
	}
	if req.Step != 0 {
		opts.RRT.DistanceThreshold = req.Step
	}
	if req.GoalThreshold != 0 {
		opts.RRT.GoalThreshold = req.GoalThreshold
	}
	if req.Seed != 0 {
		opts.RRT.Seed = req.Seed
	}
	return opts
}

type PlanResponse struct {
	Planner string  `json:"planner"`
	Path    []Point `json:"path"`
	Success bool    `json:"success"`
	Partial bool    `json:"partial,omitempty"`
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	// Cost is null when no path exists.
	Cost       *float64       `json:"cost"`
	Iterations int            `json:"iterations"`
	ElapsedMs  float64        `json:"elapsedMs"`
	Explored   []gridmap.Cell `json:"explored,omitempty"`
	Canceled   int            `json:"canceledIterations,omitempty"`
	TreeEdges  int            `json:"treeEdges,omitempty"`
	Simplified []Point        `json:"simplified,omitempty"`
}

func newPlanResponse(result *planner.Result, err error) PlanResponse {
	resp := PlanResponse{
		Planner:    result.Planner,
		Path:       toPoints(result.Path),
		Success:    result.Status == planner.StatusSolved,
		Partial:    result.Status == planner.StatusPartial,
		Status:     result.Status.String(),
		Iterations: result.Iterations,
		ElapsedMs:  float64(result.Elapsed.Microseconds()) / 1000,
		Explored:   result.Explored,
		Canceled:   result.Canceled,
		TreeEdges:  len(result.Tree),
	}
	if !math.IsInf(result.Cost, 0) && !math.IsNaN(result.Cost) {
		cost := result.Cost
		resp.Cost = &cost
	}

	switch {
	case errors.Is(err, planner.ErrNoPath):
		resp.Message = "No path found"
	case errors.Is(err, planner.ErrIterationBudget):
		resp.Message = "Iteration budget exceeded, returning best partial path"
	case err != nil:
		resp.Message = err.Error()
	}
	return resp
}
