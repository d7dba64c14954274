package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// SimplifyPath reduces the number of waypoints using Douglas-Peucker, but only
// accepts a shortcut when the straight segment replacing the dropped waypoints is
// clear of every inflated obstacle. First and last waypoints are always kept.
func SimplifyPath(path orb.LineString, epsilon float64, obstacles *ObstacleSet) orb.LineString {
	if len(path) <= 2 {
		return path
	}
	out := douglasPeucker(path, epsilon, obstacles)
	return orb.LineString(out)
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points []orb.Point, epsilon float64, obstacles *ObstacleSet) []orb.Point {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from line between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	shortcutClear := obstacles == nil || !obstacles.SegmentBlocked(points[0], points[end])
	if dmax <= epsilon && shortcutClear {
		return []orb.Point{points[0], points[end]}
	}

	if index == 0 {
		// Every interior point is on the chord but the chord itself is blocked:
		// split in the middle so both halves get a chance.
		index = end / 2
	}

	left := douglasPeucker(points[0:index+1], epsilon, obstacles)
	right := douglasPeucker(points[index:], epsilon, obstacles)

	// Combine results (removing duplicate point at index)
	result := make([]orb.Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	result = append(result, right...)
	return result
}

// perpendicularDistance calculates perpendicular distance from point to line
func perpendicularDistance(point, lineStart, lineEnd orb.Point) float64 {
	dx := lineEnd.X() - lineStart.X()
	dy := lineEnd.Y() - lineStart.Y()

	// Normalize
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag > 0 {
		dx /= mag
		dy /= mag
	}

	pvx := point.X() - lineStart.X()
	pvy := point.Y() - lineStart.Y()

	// Project pv onto the normalized direction
	pvdot := dx*pvx + dy*pvy

	ax := pvx - pvdot*dx
	ay := pvy - pvdot*dy

	return math.Sqrt(ax*ax + ay*ay)
}
