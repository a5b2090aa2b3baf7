package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joakar/starlink-tracker/internal/auth"
	"github.com/joakar/starlink-tracker/internal/engine"
	"github.com/joakar/starlink-tracker/internal/health"
	"github.com/joakar/starlink-tracker/internal/httputil"
	"github.com/joakar/starlink-tracker/internal/metrics"
	"github.com/joakar/starlink-tracker/internal/stats"
)

// Server is the HTTP control and observation surface. Reads come from the
// stats publisher; writes are enqueued as engine commands so they apply on
// the frame goroutine.
type Server struct {
	httpServer *http.Server
	app        *engine.App
	pub        *stats.Publisher
	logger     *slog.Logger
	trustProxy bool
}

// NewServer creates a configured HTTP server around a running engine.
func NewServer(addr string, app *engine.App, pub *stats.Publisher, logger *slog.Logger, authCfg auth.Config, trustProxy bool) *Server {
	s := &Server{
		app:        app,
		pub:        pub,
		logger:     logger,
		trustProxy: trustProxy,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("POST /api/v1/groups/{bucket}/toggle", s.handleGroupToggle)
	mux.HandleFunc("POST /api/v1/control/speed", s.handleSpeed)
	mux.HandleFunc("POST /api/v1/control/autorotate", s.handleAutoRotate)
	mux.HandleFunc("POST /api/v1/control/trajectories", s.handleTrajectories)

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = s.loggingMiddleware()(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.pub.Latest()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// enqueue pushes a command and answers 202, or 503 when the engine's
// queue is saturated.
func (s *Server) enqueue(w http.ResponseWriter, cmd engine.Command) {
	if !s.app.Enqueue(cmd) {
		writeError(w, http.StatusServiceUnavailable, "engine busy")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (s *Server) handleGroupToggle(w http.ResponseWriter, r *http.Request) {
	bucket, err := strconv.Atoi(r.PathValue("bucket"))
	if err != nil || bucket < 0 || bucket > 170 || bucket%10 != 0 {
		writeError(w, http.StatusBadRequest, "bucket must be a multiple of 10 in [0,170]")
		return
	}
	s.enqueue(w, func(a *engine.App) { a.Catalog.Toggle(bucket) })
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Multiplier int `json:"multiplier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	idx := -1
	for i, s := range engine.Speeds {
		if s == req.Multiplier {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusBadRequest, "unsupported multiplier")
		return
	}
	s.enqueue(w, func(a *engine.App) { a.SetSpeedIndex(idx) })
}

func (s *Server) handleAutoRotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.enqueue(w, func(a *engine.App) { a.SetAutoRotate(req.Enabled) })
}

func (s *Server) handleTrajectories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode  string  `json:"mode"`
		Hours float64 `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var mode engine.TrajectoryMode
	switch req.Mode {
	case "off":
		mode = engine.TrajectoryOff
	case "selected":
		mode = engine.TrajectorySelected
	case "all":
		mode = engine.TrajectoryAll
	default:
		writeError(w, http.StatusBadRequest, "mode must be off, selected, or all")
		return
	}
	// Hours is optional; zero leaves the current window untouched.
	if req.Hours != 0 && (req.Hours < engine.MinTrajectoryHours || req.Hours > engine.MaxTrajectoryHours) {
		writeError(w, http.StatusBadRequest, "hours out of range")
		return
	}
	s.enqueue(w, func(a *engine.App) {
		a.SetTrajectoryMode(mode)
		if req.Hours != 0 {
			a.SetTrajectoryHours(req.Hours)
		}
	})
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			s.logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, s.trustProxy),
			)
		})
	}
}
