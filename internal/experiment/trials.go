package experiment

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"agent-motion-planner/internal/level"
	"agent-motion-planner/internal/planner"
)

// Config describes one experiment.
type Config struct {
	// Trials is how many times each level is solved by each planner.
	Trials  int
	Kinds   []planner.Kind
	Options planner.Options
}

// Record is a single trial of one planner on one level.
type Record struct {
	Map               string
	Planner           string
	Trial             int
	DistanceThreshold float64
	Rate              float64
	Cost              float64
	Iterations        int
	Elapsed           time.Duration
	Canceled          int
	Explored          int
	Status            planner.Status
}

// Run solves every level Trials times with every planner. With a fixed RRT seed,
// trial i uses seed+i so trials differ but the whole run is reproducible.
func Run(ctx context.Context, levels []*level.Level, cfg Config) ([]Record, error) {
	if cfg.Trials <= 0 {
		cfg.Trials = 1
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = planner.Kinds
	}

	var records []Record
	for _, l := range levels {
		problem, err := l.Problem()
		if err != nil {
			return records, err
		}

		log.Printf("🔍 Level %s: %d trials with %d planners\n", l.Name, cfg.Trials, len(cfg.Kinds))

		for trial := 0; trial < cfg.Trials; trial++ {
			opts := cfg.Options
			if opts.RRT.Seed != 0 {
				opts.RRT.Seed += int64(trial)
			}

			outcomes, err := Compare(ctx, problem, opts, cfg.Kinds, nil)
			if err != nil {
				return records, fmt.Errorf("level %s trial %d: %w", l.Name, trial, err)
			}
			for _, o := range outcomes {
				records = append(records, newRecord(l.Name, trial, o))
			}
		}
	}

	log.Printf("✅ Experiment finished: %d records\n", len(records))
	return records, nil
}

func newRecord(mapName string, trial int, o Outcome) Record {
	r := Record{
		Map:        mapName,
		Planner:    o.Result.Planner,
		Trial:      trial,
		Cost:       o.Result.Cost,
		Iterations: o.Result.Iterations,
		Elapsed:    o.Result.Elapsed,
		Canceled:   o.Result.Canceled,
		Explored:   len(o.Result.Explored),
		Status:     o.Result.Status,
	}
	if rrt, ok := o.Solver.(*planner.RRT); ok {
		r.DistanceThreshold = rrt.Options().DistanceThreshold
		r.Rate = rrt.Options().Rate
	}
	return r
}

// Summary aggregates the trials of one planner on one level.
type Summary struct {
	Map               string
	Planner           string
	DistanceThreshold float64
	Rate              float64
	// Cost is the mean over solved trials, +Inf when none solved.
	Cost       float64
	Iterations float64
	Elapsed    time.Duration
	Canceled   float64
	Explored   float64
	Trials     int
	Solved     int
}

// Summarize averages records per (map, planner), in first-seen order.
func Summarize(records []Record) []Summary {
	type key struct{ mapName, planner string }

	var order []key
	groups := make(map[key][]Record)
	for _, r := range records {
		k := key{r.Map, r.Planner}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	summaries := make([]Summary, 0, len(order))
	for _, k := range order {
		group := groups[k]
		s := Summary{
			Map:               k.mapName,
			Planner:           k.planner,
			DistanceThreshold: group[0].DistanceThreshold,
			Rate:              group[0].Rate,
			Trials:            len(group),
		}

		var costSum, iterations, canceled, explored float64
		var elapsed time.Duration
		for _, r := range group {
			if r.Status == planner.StatusSolved {
				s.Solved++
				costSum += r.Cost
			}
			iterations += float64(r.Iterations)
			canceled += float64(r.Canceled)
			explored += float64(r.Explored)
			elapsed += r.Elapsed
		}

		n := float64(len(group))
		s.Cost = math.Inf(1)
		if s.Solved > 0 {
			s.Cost = costSum / float64(s.Solved)
		}
		s.Iterations = iterations / n
		s.Canceled = canceled / n
		s.Explored = explored / n
		s.Elapsed = elapsed / time.Duration(len(group))
		summaries = append(summaries, s)
	}
	return summaries
}
