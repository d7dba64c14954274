// Package gridmap discretizes the continuous workspace into a width x height array
// of cells for the grid-based planners.
//
// For example: a 500x500 workspace converted into a 100x100 grid gives cells that
// each cover a 5x5 area.
package gridmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidDimensions is returned when the grid or workspace has no area.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// CellState classifies a grid cell.
type CellState uint8

const (
	Unexplored CellState = iota
	Explored
	Obstacle
)

func (s CellState) String() string {
	switch s {
	case Unexplored:
		return "unexplored"
	case Explored:
		return "explored"
	case Obstacle:
		return "obstacle"
	}
	return fmt.Sprintf("CellState(%d)", uint8(s))
}

// Cell is a grid index: I is the column, J the row.
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Config describes one planning episode.
type Config struct {
	Size      orb.Point   // workspace size (screen width, screen height)
	Width     int         // cells along x
	Height    int         // cells along y
	Start     orb.Point   // agent position
	Goal      orb.Point   // goal position
	Obstacles []orb.Bound // inflated obstacles
}

// GridMap owns the cell array of one planning episode. Obstacle cells are fixed
// at construction; only MarkExplored changes state afterwards.
type GridMap struct {
	width, height         int
	cellWidth, cellHeight float64
	size                  orb.Point
	cells                 []CellState
	start, goal           Cell
}

// New builds the grid and rasterizes every inflated obstacle into it.
func New(cfg Config) (*GridMap, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d cells", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if cfg.Size.X() <= 0 || cfg.Size.Y() <= 0 {
		return nil, fmt.Errorf("%w: got %.2fx%.2f workspace", ErrInvalidDimensions, cfg.Size.X(), cfg.Size.Y())
	}

	g := &GridMap{
		width:      cfg.Width,
		height:     cfg.Height,
		size:       cfg.Size,
		cellWidth:  cfg.Size.X() / float64(cfg.Width),
		cellHeight: cfg.Size.Y() / float64(cfg.Height),
		cells:      make([]CellState, cfg.Width*cfg.Height),
	}
	g.start = g.CellIndex(cfg.Start)
	g.goal = g.CellIndex(cfg.Goal)

	workspace := orb.Bound{Min: orb.Point{0, 0}, Max: cfg.Size}
	for _, b := range cfg.Obstacles {
		if !workspace.Intersects(b) {
			continue
		}
		lo := g.CellIndex(b.Min)
		hi := g.CellIndex(b.Max)
		for i := lo.I; i <= hi.I; i++ {
			for j := lo.J; j <= hi.J; j++ {
				g.cells[g.offset(i, j)] = Obstacle
			}
		}
	}

	return g, nil
}

// Width is the number of cells along x.
func (g *GridMap) Width() int { return g.width }

// Height is the number of cells along y.
func (g *GridMap) Height() int { return g.height }

// CellSize returns the continuous width and height of one cell.
func (g *GridMap) CellSize() (float64, float64) { return g.cellWidth, g.cellHeight }

// Start is the cell holding the agent.
func (g *GridMap) Start() Cell { return g.start }

// Goal is the cell holding the goal.
func (g *GridMap) Goal() Cell { return g.goal }

// CellIndex maps continuous coordinates to a cell. Coordinates beyond the
// workspace are clamped onto the boundary cells.
func (g *GridMap) CellIndex(p orb.Point) Cell {
	return Cell{
		I: clamp(int(math.Floor(p.X()/g.cellWidth)), 0, g.width-1),
		J: clamp(int(math.Floor(p.Y()/g.cellHeight)), 0, g.height-1),
	}
}

// CellCenter returns the centroid of cell (i, j); grid planners emit these as waypoints.
func (g *GridMap) CellCenter(i, j int) orb.Point {
	return orb.Point{
		(float64(i) + 0.5) * g.cellWidth,
		(float64(j) + 0.5) * g.cellHeight,
	}
}

// IsValid reports whether (i, j) lies inside the grid.
func (g *GridMap) IsValid(i, j int) bool {
	return i >= 0 && i < g.width && j >= 0 && j < g.height
}

// IsObstacle reports whether (i, j) is blocked. Cells outside the grid are not obstacles.
func (g *GridMap) IsObstacle(i, j int) bool {
	return g.IsValid(i, j) && g.cells[g.offset(i, j)] == Obstacle
}

// IsFree reports whether (i, j) is inside the grid and not blocked.
func (g *GridMap) IsFree(i, j int) bool {
	return g.IsValid(i, j) && g.cells[g.offset(i, j)] != Obstacle
}

// IsGoal reports whether (i, j) is the goal cell.
func (g *GridMap) IsGoal(i, j int) bool {
	return i == g.goal.I && j == g.goal.J
}

// State returns the state of (i, j); cells outside the grid report Obstacle.
func (g *GridMap) State(i, j int) CellState {
	if !g.IsValid(i, j) {
		return Obstacle
	}
	return g.cells[g.offset(i, j)]
}

// MarkExplored flags free cells as explored for visualization. Planners never
// call this; they report explored cells in their results instead.
func (g *GridMap) MarkExplored(cells ...Cell) {
	for _, c := range cells {
		if !g.IsValid(c.I, c.J) {
			continue
		}
		idx := g.offset(c.I, c.J)
		if g.cells[idx] == Unexplored {
			g.cells[idx] = Explored
		}
	}
}

// Count returns how many cells are in state s.
func (g *GridMap) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Clone returns an independent copy, e.g. for marking explored cells of one run.
func (g *GridMap) Clone() *GridMap {
	c := *g
	c.cells = make([]CellState, len(g.cells))
	copy(c.cells, g.cells)
	return &c
}

// offset converts a cell index into the row-major position in cells.
func (g *GridMap) offset(i, j int) int {
	return j*g.width + i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
