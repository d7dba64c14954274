package geometry

import "github.com/paulmach/orb"

// RemoveContained drops rectangles that are fully contained within another rectangle.
// Identical rectangles keep exactly one copy.
func RemoveContained(bounds []orb.Bound) []orb.Bound {
	if len(bounds) <= 1 {
		return bounds
	}

	result := make([]orb.Bound, 0, len(bounds))
	contained := make([]bool, len(bounds))

	for i := 0; i < len(bounds); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(bounds); j++ {
			if i == j || contained[j] {
				continue
			}

			if isBoundContainedIn(bounds[i], bounds[j]) {
				contained[i] = true
				break
			}

			if isBoundContainedIn(bounds[j], bounds[i]) {
				contained[j] = true
			}
		}
	}

	for i := 0; i < len(bounds); i++ {
		if !contained[i] {
			result = append(result, bounds[i])
		}
	}

	return result
}

// isBoundContainedIn checks if bound a lies inside bound b
func isBoundContainedIn(a, b orb.Bound) bool {
	return a.Min.X() >= b.Min.X() && a.Max.X() <= b.Max.X() &&
		a.Min.Y() >= b.Min.Y() && a.Max.Y() <= b.Max.Y()
}
