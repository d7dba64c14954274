// Package experiment runs several planners against the same levels and
// records how they compare.
package experiment

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"agent-motion-planner/internal/planner"
)

// Outcome is one planner's answer to a shared problem.
type Outcome struct {
	Kind   planner.Kind
	Solver planner.Solver
	Result *planner.Result
	// Err is the solver's own error (ErrNoPath, ErrIterationBudget, cancellation).
	Err error
}

// Compare solves problem with every planner in kinds concurrently. The problem is
// read-only and shared; each grid planner rasterizes its own GridMap. notify, if
// set, is called once per planner as soon as it finishes, never concurrently.
//
// Solver errors are reported per Outcome; only failing to build a planner aborts
// the comparison.
func Compare(ctx context.Context, problem *planner.Problem, opts planner.Options, kinds []planner.Kind, notify func(Outcome)) ([]Outcome, error) {
	outcomes := make([]Outcome, len(kinds))
	for i, kind := range kinds {
		solver, err := planner.New(kind, problem, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s planner: %w", kind, err)
		}
		outcomes[i] = Outcome{Kind: kind, Solver: solver}
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for i := range outcomes {
		i := i
		g.Go(func() error {
			result, err := outcomes[i].Solver.Solve(ctx)
			outcomes[i].Result = result
			outcomes[i].Err = err

			if notify != nil {
				mu.Lock()
				notify(outcomes[i])
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, ctx.Err()
}
