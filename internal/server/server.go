package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/forgelab/internal/forgelab"
	"github.com/claude/forgelab/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	lab    *forgelab.Cache
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, lab *forgelab.Cache, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		lab:    lab,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/sessions", s.handleIngestSessions)
		r.Post("/api/v1/weight", s.handleUpsertWeight)
	})

	// Analytics endpoints (no auth; the listener controls access)
	s.router.Get("/api/v1/forgelab", s.handleGetForgeLab)
	s.router.Post("/api/v1/forgelab/range", s.handleSetRange)
	s.router.Post("/api/v1/forgelab/refresh", s.handleRefresh)
	s.router.Get("/api/v1/forgelab/strength-curve", s.handleStrengthCurve)
	s.router.Get("/api/v1/forgelab/rank-projection", s.handleRankProjection)
	s.router.Get("/api/v1/forgelab/correlation", s.handleCorrelation)
	s.router.Get("/api/v1/stats", s.handleStats)
}
