// Package level reads and writes the JSON level files the planners are run on.
package level

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/planner"
)

// Corners is an obstacle as drawn in the level editor: the two corners of the
// drag, in any order.
type Corners [2]orb.Point

// Level is one planning scenario.
type Level struct {
	Name        string    `json:"-"`
	ScreenSize  orb.Point `json:"screen_size"`
	AgentStart  orb.Point `json:"agent_start"`
	Goal        orb.Point `json:"goal"`
	Obstacles   []Corners `json:"obstacles"`
	AgentRadius float64   `json:"agent_radius,omitempty"`
}

// ObstacleList converts the drawn corners into normalised obstacles.
func (l *Level) ObstacleList() []geometry.Obstacle {
	obstacles := make([]geometry.Obstacle, 0, len(l.Obstacles))
	for _, c := range l.Obstacles {
		obstacles = append(obstacles, geometry.FromCorners(c[0], c[1]))
	}
	return obstacles
}

// AddObstacles appends obstacles, e.g. ones loaded from a GeoJSON overlay.
func (l *Level) AddObstacles(obstacles ...geometry.Obstacle) {
	for _, o := range obstacles {
		b := o.Bound()
		l.Obstacles = append(l.Obstacles, Corners{b.Min, b.Max})
	}
}

// Problem builds the planning problem for this level, inflating every obstacle
// by the agent radius.
func (l *Level) Problem() (*planner.Problem, error) {
	p, err := planner.NewProblem(l.ScreenSize, l.AgentStart, l.Goal, l.ObstacleList(), l.AgentRadius)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", l.Name, err)
	}
	return p, nil
}

// Load reads a single level file. The level is named after the file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level: %w", err)
	}

	var l Level
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse level %s: %w", filepath.Base(path), err)
	}
	l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &l, nil
}

// LoadDir loads every *.json level in dir. Files that cannot be read or parsed
// are skipped with a warning.
func LoadDir(dir string) ([]*Level, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading levels from %d JSON files...\n", len(files))

	var levels []*Level
	for _, file := range files {
		l, err := Load(file)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v\n", file, err)
			continue
		}
		levels = append(levels, l)
		log.Printf("   ✅ Loaded %s (%d obstacles)\n", l.Name, len(l.Obstacles))
	}

	log.Printf("Total levels loaded: %d\n", len(levels))
	return levels, nil
}

// Save writes l to path in the same format Load reads.
func Save(path string, l *Level) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write level: %w", err)
	}
	return nil
}
