package planner

import (
	"github.com/paulmach/orb"

	"agent-motion-planner/internal/geometry"
)

// Problem is the immutable snapshot one planning episode works on: workspace
// bounds, start, goal and the inflated obstacles. Several planners may share it.
type Problem struct {
	Size      orb.Point
	Start     orb.Point
	Goal      orb.Point
	Obstacles *geometry.ObstacleSet
}

// NewProblem validates the inputs and inflates the obstacles by radius.
func NewProblem(size, start, goal orb.Point, obstacles []geometry.Obstacle, radius float64) (*Problem, error) {
	if size.X() <= 0 || size.Y() <= 0 {
		return nil, configError("workspace", "size must be positive, got %.2fx%.2f", size.X(), size.Y())
	}
	if radius < 0 {
		return nil, configError("radius", "must not be negative, got %.2f", radius)
	}
	for i, o := range obstacles {
		if o.IsDegenerate() {
			return nil, configError("obstacle", "obstacle %d has no area (%.2fx%.2f)", i, o.Width, o.Height)
		}
	}

	p := &Problem{
		Size:      size,
		Start:     start,
		Goal:      goal,
		Obstacles: geometry.NewObstacleSet(obstacles, radius),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that start and goal are inside the workspace and outside every
// inflated obstacle.
func (p *Problem) Validate() error {
	workspace := p.Bounds()
	for _, check := range []struct {
		name  string
		point orb.Point
	}{
		{"start", p.Start},
		{"goal", p.Goal},
	} {
		if !workspace.Contains(check.point) {
			return configError(check.name, "(%.2f, %.2f) is outside the %.2fx%.2f workspace",
				check.point.X(), check.point.Y(), p.Size.X(), p.Size.Y())
		}
		if p.Obstacles != nil && p.Obstacles.Contains(check.point) {
			return configError(check.name, "(%.2f, %.2f) is inside an inflated obstacle",
				check.point.X(), check.point.Y())
		}
	}
	return nil
}

// Bounds is the workspace rectangle [0, width] x [0, height].
func (p *Problem) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: p.Size}
}
