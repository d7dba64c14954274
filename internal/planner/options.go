package planner

import "log"

// GridOptions tunes the grid planners (A* and JPS).
type GridOptions struct {
	// Width and Height are the grid resolution in cells.
	Width  int `json:"width"`
	Height int `json:"height"`
	// AllowDiagonal switches from 4-connected to 8-connected movement.
	AllowDiagonal bool `json:"allowDiagonal"`
	// MaxIterations caps the number of frontier pops.
	MaxIterations int `json:"maxIterations"`
}

// RRTOptions tunes the RRT planner.
type RRTOptions struct {
	// Rate is the probability of sampling the goal instead of a uniform point.
	Rate float64 `json:"rate"`
	// DistanceThreshold is the maximum edge length.
	DistanceThreshold float64 `json:"distanceThreshold"`
	// GoalThreshold is how close a node must be to count as reaching the goal.
	GoalThreshold float64 `json:"goalThreshold"`
	// MaxCanceledIterations is how many blocked samples are tolerated before the
	// problem is declared unsolvable.
	MaxCanceledIterations int `json:"maxCanceledIterations"`
	// MaxIterations caps the total number of steps.
	MaxIterations int `json:"maxIterations"`
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// Options bundles the tunables of every planner kind.
type Options struct {
	Grid GridOptions
	RRT  RRTOptions
	// Logger receives one summary line per Solve; nil keeps planners silent.
	Logger *log.Logger
}

const (
	defaultGridCells         = 100
	defaultAStarIterations   = 10_000
	defaultJPSIterations     = 1_000_000
	defaultRate              = 0.5
	defaultDistanceThreshold = 20
	defaultGoalThreshold     = 10
	defaultMaxCanceled       = 10_000
	defaultRRTMaxIterations  = 1_000_000
)

// DefaultGridOptions returns a 100x100, 4-connected grid with the A* iteration cap.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Width:         defaultGridCells,
		Height:        defaultGridCells,
		MaxIterations: defaultAStarIterations,
	}
}

// DefaultRRTOptions returns the tunables the RRT planner uses when none are given.
func DefaultRRTOptions() RRTOptions {
	return RRTOptions{
		Rate:                  defaultRate,
		DistanceThreshold:     defaultDistanceThreshold,
		GoalThreshold:         defaultGoalThreshold,
		MaxCanceledIterations: defaultMaxCanceled,
		MaxIterations:         defaultRRTMaxIterations,
	}
}

// withDefaults fills zero fields. maxIterations is the planner-specific cap.
func (o GridOptions) withDefaults(maxIterations int) GridOptions {
	if o.Width == 0 {
		o.Width = defaultGridCells
	}
	if o.Height == 0 {
		o.Height = defaultGridCells
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = maxIterations
	}
	return o
}

func (o RRTOptions) withDefaults() RRTOptions {
	if o.Rate == 0 {
		o.Rate = defaultRate
	}
	if o.DistanceThreshold == 0 {
		o.DistanceThreshold = defaultDistanceThreshold
	}
	if o.GoalThreshold == 0 {
		o.GoalThreshold = defaultGoalThreshold
	}
	if o.MaxCanceledIterations == 0 {
		o.MaxCanceledIterations = defaultMaxCanceled
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = defaultRRTMaxIterations
	}
	return o
}

func (o RRTOptions) validate() error {
	if o.Rate < 0 || o.Rate > 1 {
		return configError("rate", "must be within [0, 1], got %.2f", o.Rate)
	}
	if o.DistanceThreshold < 0 {
		return configError("distanceThreshold", "must be positive, got %.2f", o.DistanceThreshold)
	}
	if o.GoalThreshold < 0 {
		return configError("goalThreshold", "must be positive, got %.2f", o.GoalThreshold)
	}
	if o.MaxCanceledIterations < 0 || o.MaxIterations < 0 {
		return configError("maxIterations", "caps must not be negative")
	}
	return nil
}
