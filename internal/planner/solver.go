// Package planner implements the three interchangeable path planners (grid A*,
// Jump Point Search and RRT) behind one Solver contract.
package planner

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/paulmach/orb"

	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/gridmap"
)

// Solver is what the agent-control loop drives: one Solve per plan request.
type Solver interface {
	Name() string
	// Solve runs to completion, to its iteration cap, or until ctx is done.
	Solve(ctx context.Context) (*Result, error)
	// PathCost is the cost of the path returned by the last Solve.
	PathCost() float64
}

// Status tells a full solution apart from best-effort and failed runs.
type Status int

const (
	StatusSolved Status = iota
	StatusPartial
	StatusNoPath
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusPartial:
		return "partial"
	case StatusNoPath:
		return "no-path"
	case StatusCanceled:
		return "canceled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status by name in JSON and CSV output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of one Solve call.
type Result struct {
	Planner string
	// Path runs from start to goal (or to the best node reached when Status is
	// StatusPartial).
	Path orb.LineString
	// Cost is the Euclidean length of Path in workspace units, +Inf when no path exists.
	Cost       float64
	Status     Status
	Iterations int
	Elapsed    time.Duration

	// Explored lists grid cells in the order they were discovered (A* and JPS).
	Explored []gridmap.Cell
	// Canceled counts RRT steps rejected because the sampled segment was blocked.
	Canceled int
	// Tree holds every RRT edge as a two-point line.
	Tree []orb.LineString
}

// Reversed returns the waypoints goal-first, for control loops that pop the
// next waypoint off the end of a stack.
func (r *Result) Reversed() orb.LineString {
	out := make(orb.LineString, len(r.Path))
	for i, p := range r.Path {
		out[len(r.Path)-1-i] = p
	}
	return out
}

// finish stamps the cost and elapsed time and logs a summary line.
func (r *Result) finish(started time.Time, logger *log.Logger) {
	r.Cost = geometry.PathLength(r.Path)
	if r.Status == StatusNoPath {
		r.Cost = math.Inf(1)
	}
	r.Elapsed = time.Since(started)
	if logger == nil {
		return
	}
	switch r.Status {
	case StatusSolved:
		logger.Printf("✅ %s: path with %d waypoints, cost %.2f (%d iterations, %s)",
			r.Planner, len(r.Path), r.Cost, r.Iterations, r.Elapsed)
	case StatusPartial:
		logger.Printf("⚠️  %s: iteration budget exceeded after %d iterations, partial cost %.2f",
			r.Planner, r.Iterations, r.Cost)
	case StatusNoPath:
		logger.Printf("❌ %s: no path found (%d iterations)", r.Planner, r.Iterations)
	case StatusCanceled:
		logger.Printf("⚠️  %s: canceled after %d iterations", r.Planner, r.Iterations)
	}
}
