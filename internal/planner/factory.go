package planner

import (
	"strings"

	"agent-motion-planner/internal/gridmap"
)

// Kind names a planner algorithm.
type Kind string

const (
	KindAStar Kind = "astar"
	KindJPS   Kind = "jps"
	KindRRT   Kind = "rrt"
)

// Kinds lists every planner in a stable order.
var Kinds = []Kind{KindAStar, KindJPS, KindRRT}

// ParseKind accepts the planner names used on the command line and in requests.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "astar", "a*", "a-star":
		return KindAStar, nil
	case "jps", "jump-point-search":
		return KindJPS, nil
	case "rrt":
		return KindRRT, nil
	}
	return "", configError("planner", "unknown planner %q (want astar, jps or rrt)", s)
}

// New builds a fresh planner of the given kind for one planning episode. Grid
// planners get their own GridMap built from the problem's inflated obstacles.
func New(kind Kind, problem *Problem, opts Options) (Solver, error) {
	switch kind {
	case KindAStar, KindJPS:
		grid, err := NewGrid(problem, opts.Grid)
		if err != nil {
			return nil, err
		}
		if kind == KindAStar {
			return NewAStar(grid, opts.Grid, opts.Logger), nil
		}
		return NewJPS(grid, opts.Grid, opts.Logger), nil
	case KindRRT:
		return NewRRT(problem, opts.RRT, opts.Logger)
	}
	return nil, configError("planner", "unknown planner %q", string(kind))
}

// NewGrid discretizes problem at the resolution in opts and rejects start or
// goal cells that rasterized into an obstacle.
func NewGrid(problem *Problem, opts GridOptions) (*gridmap.GridMap, error) {
	opts = opts.withDefaults(0)
	grid, err := gridmap.New(gridmap.Config{
		Size:      problem.Size,
		Width:     opts.Width,
		Height:    opts.Height,
		Start:     problem.Start,
		Goal:      problem.Goal,
		Obstacles: problem.Obstacles.Bounds(),
	})
	if err != nil {
		return nil, &ConfigError{Field: "grid", Reason: "cannot build grid map", Err: err}
	}

	for _, check := range []struct {
		name string
		cell gridmap.Cell
	}{
		{"start", grid.Start()},
		{"goal", grid.Goal()},
	} {
		if grid.IsObstacle(check.cell.I, check.cell.J) {
			return nil, configError(check.name, "cell (%d, %d) is blocked at %dx%d resolution",
				check.cell.I, check.cell.J, opts.Width, opts.Height)
		}
	}
	return grid, nil
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }
