package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"agent-motion-planner/internal/experiment"
	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/gridmap"
	"agent-motion-planner/internal/level"
	"agent-motion-planner/internal/planner"
	"agent-motion-planner/internal/server"
)

var (
	gridW         int
	gridH         int
	diagonal      bool
	maxIterations int
	rate          float64
	step          float64
	goalThreshold float64
	seed          int64
	radius        float64
	overlays      []string

	addr      string
	levelsDir string

	plannerNames []string
	simplify     float64
	savePath     string

	trials    int
	summaryTo string
	trialsTo  string
)

// plannerOptions collects the tunables from the persistent flags.
func plannerOptions() planner.Options {
	return planner.Options{
		Grid: planner.GridOptions{
			Width:         gridW,
			Height:        gridH,
			AllowDiagonal: diagonal,
			MaxIterations: maxIterations,
		},
		RRT: planner.RRTOptions{
			Rate:              rate,
			DistanceThreshold: step,
			GoalThreshold:     goalThreshold,
			MaxIterations:     maxIterations,
			Seed:              seed,
		},
	}
}

func parseKinds(names []string) ([]planner.Kind, error) {
	var kinds []planner.Kind
	for _, name := range names {
		if name == "all" {
			return planner.Kinds, nil
		}
		kind, err := planner.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// prepareLevel applies the --radius and --overlay flags to a loaded level.
func prepareLevel(cmd *cobra.Command, l *level.Level) error {
	if cmd.Flags().Changed("radius") {
		l.AgentRadius = radius
	}
	for _, path := range overlays {
		obstacles, err := level.LoadGeoJSON(path)
		if err != nil {
			return err
		}
		l.AddObstacles(obstacles...)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "motion-planner",
	Short: "Path planning for a point agent among rectangular obstacles",
	Long: `Plans collision-free paths for a circular agent in a 2D workspace with A*, Jump Point
Search or RRT, over HTTP or from level files on the command line.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket planning server",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("========================================")
		log.Println("🚀 Agent Motion Planner Server")
		log.Println("========================================")

		var levels []*level.Level
		if levelsDir != "" {
			loaded, err := level.LoadDir(levelsDir)
			if err != nil {
				return fmt.Errorf("failed to load levels: %w", err)
			}
			for _, l := range loaded {
				if err := prepareLevel(cmd, l); err != nil {
					return err
				}
			}
			levels = loaded
		} else {
			log.Println("ℹ️  No level directory given, problems must be sent inline")
		}
		log.Println("")

		s := server.New(server.Config{Options: plannerOptions(), Levels: levels})

		log.Printf("Server starting on %s\n", addr)
		log.Println("")
		log.Println("Endpoints:")
		log.Println("  POST /plan          - Plan a path with one planner")
		log.Println("  POST /compare       - Plan with several planners in parallel")
		log.Println("  GET  /ws/compare    - Stream a comparison over a websocket")
		log.Println("  GET  /tree          - Get the last RRT tree for visualization")
		log.Println("  GET  /health        - Check server status")
		log.Println("")
		log.Println("CORS enabled for all origins")
		log.Println("========================================")
		log.Println("")

		return http.ListenAndServe(addr, s.Handler())
	},
}

var solveCmd = &cobra.Command{
	Use:   "solve <level.json>",
	Short: "Solve one level and print the result of each planner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := level.Load(args[0])
		if err != nil {
			return err
		}
		if err := prepareLevel(cmd, l); err != nil {
			return err
		}
		if savePath != "" {
			if err := level.Save(savePath, l); err != nil {
				return err
			}
			log.Printf("💾 Saved level to %s\n", savePath)
		}

		problem, err := l.Problem()
		if err != nil {
			return err
		}
		kinds, err := parseKinds(plannerNames)
		if err != nil {
			return err
		}

		log.Printf("🔍 Solving %s (%d obstacles, radius %.2f)\n", l.Name, problem.Obstacles.Len(), l.AgentRadius)

		opts := plannerOptions()
		opts.Logger = log.Default()
		outcomes, err := experiment.Compare(cmd.Context(), problem, opts, kinds, nil)
		if err != nil {
			return err
		}

		for _, o := range outcomes {
			printOutcome(problem, opts.Grid, o)
		}
		return nil
	},
}

func printOutcome(problem *planner.Problem, gridOpts planner.GridOptions, o experiment.Outcome) {
	r := o.Result
	if errors.Is(o.Err, planner.ErrNoPath) {
		fmt.Printf("%-16s no path (%d iterations, %s)\n", r.Planner, r.Iterations, r.Elapsed)
		return
	}

	fmt.Printf("%-16s %-8s cost %.2f, %d waypoints, %d iterations, %s\n",
		r.Planner, r.Status, r.Cost, len(r.Path), r.Iterations, r.Elapsed)
	if len(r.Explored) > 0 {
		if grid, err := planner.NewGrid(problem, gridOpts); err == nil {
			view := grid.Clone()
			view.MarkExplored(r.Explored...)
			fmt.Printf("%-16s explored %d of %d free cells\n", "",
				view.Count(gridmap.Explored), view.Count(gridmap.Explored)+view.Count(gridmap.Unexplored))
		}
	}
	if simplify > 0 && len(r.Path) > 2 {
		simplified := geometry.SimplifyPath(r.Path, simplify, problem.Obstacles)
		fmt.Printf("%-16s simplified to %d waypoints, length %.2f\n", "", len(simplified), geometry.PathLength(simplified))
	}
}

var experimentCmd = &cobra.Command{
	Use:   "experiment <levels-dir>",
	Short: "Run repeated trials of every planner on a directory of levels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := level.LoadDir(args[0])
		if err != nil {
			return err
		}
		if len(levels) == 0 {
			return fmt.Errorf("no levels found in %s", args[0])
		}
		for _, l := range levels {
			if err := prepareLevel(cmd, l); err != nil {
				return err
			}
		}
		kinds, err := parseKinds(plannerNames)
		if err != nil {
			return err
		}

		records, err := experiment.Run(cmd.Context(), levels, experiment.Config{
			Trials:  trials,
			Kinds:   kinds,
			Options: plannerOptions(),
		})
		if err != nil {
			return err
		}

		if trialsTo != "" {
			if err := writeCSV(trialsTo, func(f *os.File) error { return experiment.WriteTrialCSV(f, records) }); err != nil {
				return err
			}
			log.Printf("💾 Wrote %d trials to %s\n", len(records), trialsTo)
		}

		summaries := experiment.Summarize(records)
		if summaryTo == "" {
			return experiment.WriteSummaryCSV(os.Stdout, summaries)
		}
		if err := writeCSV(summaryTo, func(f *os.File) error { return experiment.WriteSummaryCSV(f, summaries) }); err != nil {
			return err
		}
		log.Printf("💾 Wrote %d summaries to %s\n", len(summaries), summaryTo)
		return nil
	},
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.PersistentFlags().IntVar(&gridW, "grid-w", 100, "Grid width in cells for A* and JPS.")
	rootCmd.PersistentFlags().IntVar(&gridH, "grid-h", 100, "Grid height in cells for A* and JPS.")
	rootCmd.PersistentFlags().BoolVar(&diagonal, "diagonal", false, "Allow diagonal moves on the grid.")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 0, "Iteration cap for every planner (0 = planner default).")
	rootCmd.PersistentFlags().Float64Var(&rate, "rate", 0.5, "RRT goal-sampling probability.")
	rootCmd.PersistentFlags().Float64Var(&step, "step", 20, "RRT maximum edge length.")
	rootCmd.PersistentFlags().Float64Var(&goalThreshold, "goal-threshold", 10, "RRT distance at which the goal counts as reached.")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "RRT random seed (0 = seed from the clock).")
	rootCmd.PersistentFlags().Float64Var(&radius, "radius", 0, "Agent collision radius, overrides the level's own.")
	rootCmd.PersistentFlags().StringSliceVar(&overlays, "overlay", nil, "GeoJSON files with extra obstacles.")

	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address.")
	serveCmd.Flags().StringVar(&levelsDir, "levels", "", "Directory of level files that requests can reference by name.")

	solveCmd.Flags().StringSliceVar(&plannerNames, "planner", []string{"all"}, "Planners to run: astar, jps, rrt or all.")
	solveCmd.Flags().Float64Var(&simplify, "simplify", 0, "Douglas-Peucker tolerance for a simplified copy of each path.")
	solveCmd.Flags().StringVar(&savePath, "save", "", "Write the level, with overlays applied, to this path.")

	experimentCmd.Flags().StringSliceVar(&plannerNames, "planner", []string{"all"}, "Planners to run: astar, jps, rrt or all.")
	experimentCmd.Flags().IntVar(&trials, "trials", 10, "Trials per planner and level.")
	experimentCmd.Flags().StringVar(&summaryTo, "out", "", "Summary CSV path (default stdout).")
	experimentCmd.Flags().StringVar(&trialsTo, "trials-out", "", "Per-trial CSV path.")

	rootCmd.AddCommand(serveCmd, solveCmd, experimentCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}
