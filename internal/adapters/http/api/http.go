// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/wolfwise/internal/app"
	"github.com/okian/wolfwise/internal/domain/lineup"
)

const requestTimeout = 30 * time.Second

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	StatsProvider

	// RefreshGame queues a refresh of one game.
	RefreshGame(ctx context.Context, gameID string) (service.EnqueueResult, error)

	// RunJob queues a named collector.
	RunJob(ctx context.Context, name string) (service.EnqueueResult, error)

	// LatestResult returns the last reconstruction of a game.
	LatestResult(gameID string) (lineup.Result, bool)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	gamesHandler  *GamesHandler
	jobsHandler   *JobsHandler
	origins       []string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins, "*" by default.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		gamesHandler:  NewGamesHandler(deps),
		jobsHandler:   NewJobsHandler(deps),
		origins:       []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Post("/refresh", MetricsMiddleware(s.gamesHandler.HandleRefresh, "games_refresh"))
		r.Get("/lineups", MetricsMiddleware(s.gamesHandler.HandleGetLineups, "games_lineups"))
	})
	r.Post("/jobs/{name}", MetricsMiddleware(s.jobsHandler.HandleRunJob, "jobs"))
}

// Router returns a chi router with the standard middleware stack and every
// route registered. extra registers additional routes, e.g. the API docs.
func (s *Server) Router(extra ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.Register(r)
	for _, fn := range extra {
		fn(r)
	}
	return r
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEnqueue maps an enqueue outcome to 202, 200 or 429.
func writeEnqueue(w http.ResponseWriter, op string, res service.EnqueueResult) {
	switch res {
	case service.Accepted:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
	case service.Duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	default:
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	}
}
