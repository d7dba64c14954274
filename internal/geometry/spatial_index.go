package geometry

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent keeps zero-width rectangles (points, axis-parallel segments) valid for
// rtreego, which rejects non-positive lengths.
const minExtent = 1e-9

// boundEntry wraps an inflated obstacle for R-tree storage
type boundEntry struct {
	Bound orb.Bound
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *boundEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// ObstacleSet is the inflated obstacle snapshot used by all planners. It is
// immutable once built, so any number of planners may read it concurrently.
type ObstacleSet struct {
	radius   float64
	source   []Obstacle
	inflated []orb.Bound
	tree     *rtreego.Rtree
}

// NewObstacleSet inflates every obstacle by radius, drops the ones swallowed by
// another inflated obstacle and indexes the rest.
func NewObstacleSet(obstacles []Obstacle, radius float64) *ObstacleSet {
	if radius < 0 {
		radius = 0
	}
	source := make([]Obstacle, len(obstacles))
	copy(source, obstacles)

	bounds := make([]orb.Bound, 0, len(source))
	for _, o := range source {
		bounds = append(bounds, o.Inflate(radius).Bound())
	}
	bounds = RemoveContained(bounds)

	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	for _, b := range bounds {
		rect, err := toRect(b)
		if err == nil {
			tree.Insert(&boundEntry{Bound: b, BBox: rect})
		}
	}

	return &ObstacleSet{
		radius:   radius,
		source:   source,
		inflated: bounds,
		tree:     tree,
	}
}

// WithRadius re-derives the inflated set from the original rectangles.
// Inflation is never applied on top of an already inflated rectangle.
func (s *ObstacleSet) WithRadius(radius float64) *ObstacleSet {
	if radius == s.radius {
		return s
	}
	return NewObstacleSet(s.source, radius)
}

// Radius is the collision radius the set was inflated with.
func (s *ObstacleSet) Radius() float64 { return s.radius }

// Source returns the obstacles as given, before inflation.
func (s *ObstacleSet) Source() []Obstacle {
	out := make([]Obstacle, len(s.source))
	copy(out, s.source)
	return out
}

// Bounds returns the inflated rectangles.
func (s *ObstacleSet) Bounds() []orb.Bound {
	out := make([]orb.Bound, len(s.inflated))
	copy(out, s.inflated)
	return out
}

// Len is the number of indexed inflated obstacles.
func (s *ObstacleSet) Len() int { return len(s.inflated) }

// QueryRegion returns inflated obstacles whose bounding box intersects region
func (s *ObstacleSet) QueryRegion(region orb.Bound) []orb.Bound {
	rect, err := toRect(region)
	if err != nil {
		return []orb.Bound{}
	}

	results := s.tree.SearchIntersect(rect)
	bounds := make([]orb.Bound, 0, len(results))
	for _, item := range results {
		entry := item.(*boundEntry)
		bounds = append(bounds, entry.Bound)
	}
	return bounds
}

// Contains reports whether p lies inside (or on the edge of) any inflated obstacle.
func (s *ObstacleSet) Contains(p orb.Point) bool {
	for _, b := range s.QueryRegion(orb.Bound{Min: p, Max: p}) {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// SegmentBlocked reports whether the straight move a-b touches any inflated obstacle.
func (s *ObstacleSet) SegmentBlocked(a, b orb.Point) bool {
	for _, bound := range s.QueryRegion(segmentBound(a, b)) {
		if SegmentIntersectsBound(a, b, bound) {
			return true
		}
	}
	return false
}

// IsPathClear checks if every leg of a polyline is collision-free
func (s *ObstacleSet) IsPathClear(path orb.LineString) bool {
	for i := 1; i < len(path); i++ {
		if s.SegmentBlocked(path[i-1], path[i]) {
			return false
		}
	}
	return true
}

// toRect converts an orb bound into an rtreego rectangle. Every side is padded by
// minExtent so touching edges and zero-width shapes still intersect.
func toRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min.X() - minExtent, b.Min.Y() - minExtent},
		[]float64{b.Max.X() - b.Min.X() + 2*minExtent, b.Max.Y() - b.Min.Y() + 2*minExtent},
	)
}
