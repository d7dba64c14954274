package planner

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/paulmach/orb"

	"agent-motion-planner/internal/geometry"
)

// treeNode is one RRT vertex. parent is an index into the node slice, -1 for the root.
type treeNode struct {
	point    orb.Point
	parent   int
	children []int
}

// RRT grows a tree of continuous-space nodes from the start toward goal-biased
// random samples. Its paths are neither optimal nor grid-aligned, and two runs
// with different seeds grow different trees.
type RRT struct {
	problem *Problem
	opts    RRTOptions
	logger  *log.Logger
	cost    float64
}

// NewRRT creates an RRT planner for problem.
func NewRRT(problem *Problem, opts RRTOptions, logger *log.Logger) (*RRT, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &RRT{problem: problem, opts: opts, logger: logger}, nil
}

// Name identifies the planner in logs and results.
func (r *RRT) Name() string { return "RRT" }

// PathCost is the cost of the last returned path; +Inf after an unsolvable run.
func (r *RRT) PathCost() float64 { return r.cost }

// Options returns the effective tunables after defaults were applied.
func (r *RRT) Options() RRTOptions { return r.opts }

// rrtEpisode is the state of one Solve call.
type rrtEpisode struct {
	rng       *rand.Rand
	nodes     []treeNode
	index     *nearestIndex
	last      int
	goalFound bool
	added     int
	canceled  int
}

// Solve grows the tree until a node lands within GoalThreshold of the goal.
func (r *RRT) Solve(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{Planner: r.Name()}

	seed := r.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ep := &rrtEpisode{
		rng:   rand.New(rand.NewSource(seed)),
		nodes: []treeNode{{point: r.problem.Start, parent: -1}},
		index: newNearestIndex(),
	}
	ep.index.Insert(0, r.problem.Start)
	r.checkGoal(ep)

	var err error
	steps := 0
	for !ep.goalFound {
		if err = ctx.Err(); err != nil {
			result.Status = StatusCanceled
			break
		}
		if steps >= r.opts.MaxIterations {
			result.Status = StatusPartial
			err = ErrIterationBudget
			break
		}
		steps++

		r.nextMove(ep)
		if ep.canceled > r.opts.MaxCanceledIterations {
			// Too many blocked samples: declare the problem unsolvable.
			ep.goalFound = true
			result.Status = StatusNoPath
			err = ErrNoPath
			break
		}
		r.checkGoal(ep)
	}

	result.Iterations = ep.added
	result.Canceled = ep.canceled
	result.Tree = ep.edges()
	if result.Status != StatusNoPath {
		result.Path = ep.buildPath()
	}
	result.finish(started, r.logger)
	r.cost = result.Cost
	return result, err
}

// nextMove samples a target, finds the closest tree node and, if the straight
// segment between them is clear, grows one edge of at most DistanceThreshold.
func (r *RRT) nextMove(ep *rrtEpisode) {
	var target orb.Point
	if ep.rng.Float64() < r.opts.Rate {
		target = r.problem.Goal
	} else {
		target = r.randomPoint(ep.rng)
	}

	nearestID := ep.index.Nearest(target)
	if nearestID < 0 {
		return
	}
	nearest := ep.nodes[nearestID].point

	if r.problem.Obstacles.SegmentBlocked(nearest, target) {
		ep.canceled++
		return
	}

	dx := target.X() - nearest.X()
	dy := target.Y() - nearest.Y()
	dist := geometry.Distance(nearest, target)
	if dist == 0 {
		return
	}
	if dist > r.opts.DistanceThreshold {
		scale := r.opts.DistanceThreshold / dist
		dx *= scale
		dy *= scale
	}

	id := len(ep.nodes)
	ep.nodes = append(ep.nodes, treeNode{
		point:  orb.Point{nearest.X() + dx, nearest.Y() + dy},
		parent: nearestID,
	})
	ep.nodes[nearestID].children = append(ep.nodes[nearestID].children, id)
	ep.index.Insert(id, ep.nodes[id].point)
	ep.last = id
	ep.added++
}

// randomPoint samples uniformly within the workspace.
func (r *RRT) randomPoint(rng *rand.Rand) orb.Point {
	return orb.Point{
		rng.Float64() * r.problem.Size.X(),
		rng.Float64() * r.problem.Size.Y(),
	}
}

func (r *RRT) checkGoal(ep *rrtEpisode) {
	if geometry.Distance(ep.nodes[ep.last].point, r.problem.Goal) < r.opts.GoalThreshold {
		ep.goalFound = true
	}
}

// buildPath walks parent links from the last added node back to the root.
func (ep *rrtEpisode) buildPath() orb.LineString {
	var path orb.LineString
	for n := ep.last; n >= 0; n = ep.nodes[n].parent {
		path = append(path, ep.nodes[n].point)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// edges returns every tree edge as a line, parent first.
func (ep *rrtEpisode) edges() []orb.LineString {
	lines := make([]orb.LineString, 0, len(ep.nodes))
	for _, node := range ep.nodes {
		for _, child := range node.children {
			lines = append(lines, orb.LineString{node.point, ep.nodes[child].point})
		}
	}
	return lines
}
