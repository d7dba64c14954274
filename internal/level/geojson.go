package level

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"agent-motion-planner/internal/geometry"
)

// LoadGeoJSON reads a FeatureCollection and turns every Polygon or MultiPolygon
// into the obstacle covering its bounding box. Other geometry types are ignored.
func LoadGeoJSON(path string) ([]geometry.Obstacle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read obstacle overlay: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	var obstacles []geometry.Obstacle
	for _, feature := range fc.Features {
		obstacles = append(obstacles, featureObstacles(feature.Geometry)...)
	}

	log.Printf("   ✅ Loaded %d obstacles from %s\n", len(obstacles), filepath.Base(path))
	return obstacles, nil
}

func featureObstacles(g orb.Geometry) []geometry.Obstacle {
	var obstacles []geometry.Obstacle

	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			obstacles = append(obstacles, geometry.FromBound(g[0].Bound()))
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			// First ring is the outer boundary
			if len(poly) > 0 && len(poly[0]) > 0 {
				obstacles = append(obstacles, geometry.FromBound(poly[0].Bound()))
			}
		}
	}

	return obstacles
}
