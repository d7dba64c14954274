// Package server exposes the planners over HTTP and a websocket stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"

	"agent-motion-planner/internal/experiment"
	"agent-motion-planner/internal/geometry"
	"agent-motion-planner/internal/level"
	"agent-motion-planner/internal/planner"
)

type Config struct {
	// Options are the defaults every request starts from.
	Options planner.Options
	// Levels can be referenced by name instead of sending the problem inline.
	Levels []*level.Level
	Logger *log.Logger
}

type Server struct {
	opts     planner.Options
	levels   map[string]*level.Level
	logger   *log.Logger
	upgrader websocket.Upgrader

	treeMu   sync.RWMutex
	lastTree []orb.LineString
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	levels := make(map[string]*level.Level, len(cfg.Levels))
	for _, l := range cfg.Levels {
		levels[l.Name] = l
	}

	return &Server{
		opts:   cfg.Options,
		levels: levels,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler routes every endpoint through the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/plan", corsMiddleware(s.planHandler))
	mux.HandleFunc("/compare", corsMiddleware(s.compareHandler))
	mux.HandleFunc("/tree", corsMiddleware(s.treeHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	mux.HandleFunc("/ws/compare", s.compareStreamHandler)
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// problem resolves the request into a validated planning problem.
func (s *Server) problem(req *PlanRequest) (*planner.Problem, error) {
	if req.Level == "" {
		return planner.NewProblem(req.Size.toOrb(), req.Start.toOrb(), req.Goal.toOrb(), req.Obstacles, req.Radius)
	}

	l, ok := s.levels[req.Level]
	if !ok {
		return nil, &planner.ConfigError{Field: "level", Reason: fmt.Sprintf("unknown level %q", req.Level)}
	}
	if req.Radius == 0 {
		return l.Problem()
	}
	withRadius := *l
	withRadius.AgentRadius = req.Radius
	return withRadius.Problem()
}

// errorStatus maps planner errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, planner.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// solverFailed reports whether err is more than the expected no-path or budget outcome.
func solverFailed(err error) bool {
	return err != nil && !errors.Is(err, planner.ErrNoPath) && !errors.Is(err, planner.ErrIterationBudget)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, method string) (*PlanRequest, bool) {
	if r.Method != method {
		s.logger.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// storeTree keeps the most recent RRT tree for GET /tree.
func (s *Server) storeTree(result *planner.Result) {
	if result == nil || result.Planner != "RRT" {
		return
	}
	s.treeMu.Lock()
	s.lastTree = result.Tree
	s.treeMu.Unlock()
}

// POST /plan - Solve one problem with one planner
func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Println("========================================")
	s.logger.Println("📍 Plan request received")
	defer s.logger.Println("========================================")

	req, ok := s.decode(w, r, http.MethodPost)
	if !ok {
		return
	}

	kind := planner.KindAStar
	if req.Planner != "" {
		parsed, err := planner.ParseKind(req.Planner)
		if err != nil {
			s.logger.Printf("❌ %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = parsed
	}

	problem, err := s.problem(req)
	if err != nil {
		s.logger.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	s.logger.Printf("   Start: (%.2f, %.2f)\n", problem.Start.X(), problem.Start.Y())
	s.logger.Printf("   Goal:  (%.2f, %.2f)\n", problem.Goal.X(), problem.Goal.Y())
	s.logger.Printf("   Obstacles: %d (radius %.2f)\n", problem.Obstacles.Len(), problem.Obstacles.Radius())

	opts := req.options(s.opts)
	opts.Logger = s.logger
	solver, err := planner.New(kind, problem, opts)
	if err != nil {
		s.logger.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	s.logger.Printf("🔍 Running %s...\n", solver.Name())
	result, err := solver.Solve(r.Context())
	if solverFailed(err) {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	s.storeTree(result)

	resp := newPlanResponse(result, err)
	if req.Simplify > 0 && len(result.Path) > 2 {
		simplified := geometry.SimplifyPath(result.Path, req.Simplify, problem.Obstacles)
		s.logger.Printf("   Simplified %d -> %d waypoints\n", len(result.Path), len(simplified))
		resp.Simplified = toPoints(simplified)
	}
	writeJSON(w, http.StatusOK, resp)
}

type compareResponse struct {
	Results []PlanResponse `json:"results"`
}

// kinds parses the requested planners, defaulting to all of them.
func kinds(names []string) ([]planner.Kind, error) {
	if len(names) == 0 {
		return planner.Kinds, nil
	}
	out := make([]planner.Kind, 0, len(names))
	for _, name := range names {
		kind, err := planner.ParseKind(name)
		if err != nil {
			return nil, err
		}
		out = append(out, kind)
	}
	return out, nil
}

// POST /compare - Solve one problem with several planners in parallel
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Println("========================================")
	s.logger.Println("📊 Compare request received")
	defer s.logger.Println("========================================")

	req, ok := s.decode(w, r, http.MethodPost)
	if !ok {
		return
	}
	ks, err := kinds(req.Planners)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	problem, err := s.problem(req)
	if err != nil {
		s.logger.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	opts := req.options(s.opts)
	opts.Logger = s.logger
	outcomes, err := experiment.Compare(r.Context(), problem, opts, ks, nil)
	if err != nil {
		s.logger.Printf("❌ Comparison failed: %v\n", err)
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	resp := compareResponse{Results: make([]PlanResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		s.storeTree(o.Result)
		resp.Results = append(resp.Results, newPlanResponse(o.Result, o.Err))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /tree - Get the last RRT tree as line segments for visualization
func (s *Server) treeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.treeMu.RLock()
	tree := s.lastTree
	s.treeMu.RUnlock()

	if tree == nil {
		http.Error(w, "No RRT tree yet. Run the rrt planner first", http.StatusNotFound)
		return
	}

	lines := make([][]Point, 0, len(tree))
	for _, edge := range tree {
		lines = append(lines, toPoints(edge))
	}
	s.logger.Printf("   Returning %d line segments\n", len(lines))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numEdges": len(lines),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.levels))
	for name := range s.levels {
		names = append(names, name)
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"planners": planner.Kinds,
		"levels":   names,
	})
}
