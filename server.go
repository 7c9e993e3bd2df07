package main

import (
	"encoding/json"
	"net/http"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"grid-planner/grid"
	"grid-planner/solve"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) toOrb() orb.Point { return orb.Point{p.X, p.Y} }

func fromPath(path orb.LineString) []Point {
	out := make([]Point, len(path))
	for i, p := range path {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}

type RouteRequest struct {
	Start  Point  `json:"start"`
	End    Point  `json:"end"`
	Solver string `json:"solver,omitempty"` // "astar" (default) or "aco"
}

type RouteResponse struct {
	Path     []Point `json:"path"`
	Success  bool    `json:"success"`
	Fallback bool    `json:"fallback,omitempty"`
	Solver   string  `json:"solver"`
	Message  string  `json:"message,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

type CellEdit struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Blocked bool `json:"blocked"`
}

type WallsRequest struct {
	Cells    []CellEdit     `json:"cells"`
	Polygons [][][2]float64 `json:"polygons,omitempty"` // world-space rings, rasterized as walls
}

// plannerServer exposes the grid and both solvers over HTTP.
type plannerServer struct {
	grid    *grid.Shared
	solvers map[string]solve.Solver
	colony  *solve.Colony
	timers  *solve.Timers
	log     *zap.Logger

	simplifyEpsilon float64
}

func newPlannerServer(g *grid.Shared, astar *solve.AnyAngle, colony *solve.Colony, timers *solve.Timers, log *zap.Logger, simplifyEpsilon float64) *plannerServer {
	return &plannerServer{
		grid: g,
		solvers: map[string]solve.Solver{
			astar.Name():  astar,
			colony.Name(): colony,
		},
		colony:          colony,
		timers:          timers,
		log:             log,
		simplifyEpsilon: simplifyEpsilon,
	}
}

func (s *plannerServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(s.routeHandler))
	mux.HandleFunc("/walls", corsMiddleware(s.wallsHandler))
	mux.HandleFunc("/reset", corsMiddleware(s.resetHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
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

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// POST /route - Compute a path between two world points
func (s *plannerServer) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("invalid route request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Solver == "" {
		req.Solver = "astar"
	}
	solver, ok := s.solvers[req.Solver]
	if !ok {
		s.log.Warn("unknown solver requested", zap.String("solver", req.Solver))
		http.Error(w, "Unknown solver "+req.Solver, http.StatusBadRequest)
		return
	}

	start, end := req.Start.toOrb(), req.End.toOrb()
	if _, _, ok := s.grid.WorldToCell(start); !ok {
		http.Error(w, "Start is outside the grid", http.StatusBadRequest)
		return
	}
	if _, _, ok := s.grid.WorldToCell(end); !ok {
		http.Error(w, "End is outside the grid", http.StatusBadRequest)
		return
	}

	s.log.Info("route request received",
		zap.String("solver", req.Solver),
		zap.Float64("startX", start[0]), zap.Float64("startY", start[1]),
		zap.Float64("endX", end[0]), zap.Float64("endY", end[1]))

	problem := solve.NewProblem(s.grid)
	problem.SetStart(start)
	problem.SetGoal(end)

	job := solve.StartJob(solver, problem, solve.WithLogger(s.log), solve.WithTimers(s.timers))
	res, err := job.Wait(r.Context())
	if err != nil {
		s.log.Info("route request abandoned", zap.String("solver", req.Solver), zap.Error(err))
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}

	path := res.Path
	if res.Found && s.simplifyEpsilon > 0 {
		path = solve.Simplify(path, s.simplifyEpsilon, s.grid)
	}

	response := RouteResponse{
		Path:     fromPath(path),
		Success:  res.Found,
		Fallback: res.Fallback,
		Solver:   res.Solver,
		Distance: solve.PathLength(path),
	}
	if res.Fallback {
		response.Message = "No path found, returning the direct segment"
	}

	if r.URL.Query().Get("format") == "geojson" {
		f := grid.PathFeature(path, res.Solver)
		f.Properties["success"] = res.Found
		f.Properties["distance"] = response.Distance
		writeJSON(w, http.StatusOK, f)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// GET /walls - Blocked cells as GeoJSON polygons
// POST /walls - Edit cells and rasterize polygons into walls
func (s *plannerServer) wallsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var body []byte
		var err error
		s.grid.View(func(g *grid.Grid) {
			body, err = json.Marshal(g.WallsGeoJSON(g.BoundsQuad()))
		})
		if err != nil {
			s.log.Error("encode walls", zap.Error(err))
			http.Error(w, "Could not encode walls", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(body)

	case http.MethodPost:
		var req WallsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.log.Warn("invalid walls request", zap.Error(err))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		applied, rejected, rasterized := 0, 0, 0
		s.grid.Update(func(g *grid.Grid) {
			for _, c := range req.Cells {
				state := grid.Open
				if c.Blocked {
					state = grid.Blocked
				}
				if g.Set(c.X, c.Y, state) {
					applied++
				} else {
					rejected++
				}
			}
			for _, poly := range req.Polygons {
				if len(poly) < 3 {
					rejected++
					continue
				}
				ring := make(orb.Ring, len(poly))
				for i, v := range poly {
					ring[i] = orb.Point{v[0], v[1]}
				}
				rasterized += g.RasterizeRing(ring)
			}
		})

		s.log.Info("walls edited",
			zap.Int("applied", applied),
			zap.Int("rejected", rejected),
			zap.Int("rasterized", rasterized))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"applied":    applied,
			"rejected":   rejected,
			"rasterized": rasterized,
			"walls":      s.grid.WallCount(),
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /reset - Forget optimizer memory and timer totals
func (s *plannerServer) resetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.colony.Reset()
	s.timers.ResetTotals()
	s.log.Info("optimizer memory reset")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GET /health - Health check endpoint
func (s *plannerServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"width":    s.grid.Width(),
		"height":   s.grid.Height(),
		"cellSize": s.grid.CellSize(),
		"walls":    s.grid.WallCount(),
		"timers":   s.timers.Snapshot(),
	})
}
