// Package geometry holds the obstacle model shared by every planner: axis-aligned
// rectangles, their inflation by the agent's collision radius, and the segment
// tests used to keep straight-line moves out of obstacles.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Obstacle is an axis-aligned rectangle in continuous workspace coordinates.
type Obstacle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FromCorners builds an obstacle from two opposite corners given in any order,
// the way a rectangle is dragged out with a mouse.
func FromCorners(a, b orb.Point) Obstacle {
	minX, maxX := math.Min(a.X(), b.X()), math.Max(a.X(), b.X())
	minY, maxY := math.Min(a.Y(), b.Y()), math.Max(a.Y(), b.Y())
	return Obstacle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// FromBound converts an orb bound back into an obstacle.
func FromBound(b orb.Bound) Obstacle {
	return Obstacle{X: b.Min.X(), Y: b.Min.Y(), Width: b.Max.X() - b.Min.X(), Height: b.Max.Y() - b.Min.Y()}
}

// Bound returns the rectangle as an orb bound.
func (o Obstacle) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{o.X, o.Y},
		Max: orb.Point{o.X + o.Width, o.Y + o.Height},
	}
}

// Inflate expands the rectangle by r on every side.
func (o Obstacle) Inflate(r float64) Obstacle {
	return FromBound(o.Bound().Pad(r))
}

// IsDegenerate reports whether the rectangle has no area.
func (o Obstacle) IsDegenerate() bool {
	return o.Width <= 0 || o.Height <= 0
}

// Distance is the Euclidean distance between two points.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// PathLength sums the Euclidean distance between consecutive waypoints.
func PathLength(path orb.LineString) float64 {
	if len(path) < 2 {
		return 0
	}
	return planar.Length(path)
}

// SegmentIntersectsBound checks if the segment a-b touches the closed rectangle b.
// Liang-Barsky clipping; a segment lying on an edge counts as touching.
func SegmentIntersectsBound(a, b orb.Point, bound orb.Bound) bool {
	t0, t1 := 0.0, 1.0
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()

	clip := func(p, q float64) bool {
		if p == 0 {
			// Parallel to this edge: reject only if outside it
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	return clip(-dx, a.X()-bound.Min.X()) &&
		clip(dx, bound.Max.X()-a.X()) &&
		clip(-dy, a.Y()-bound.Min.Y()) &&
		clip(dy, bound.Max.Y()-a.Y())
}

// segmentBound is the axis-aligned bounding box of a segment.
func segmentBound(a, b orb.Point) orb.Bound {
	return orb.Bound{Min: a, Max: a}.Extend(b)
}
