// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/okian/birdiecount/internal/adapters/http/swagger"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/pkg/logger"
)

const handlerTimeout = 10 * time.Second

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the scheduler.
type Dependencies interface {
	// State returns the currently published board state.
	State() model.State

	// Params returns the params of the live session.
	Params() model.Params

	// Apply switches the board to p; it reports whether a new session started.
	Apply(ctx context.Context, p model.Params) bool
}

// Server wires HTTP routes for the board API.
type Server struct {
	scoreHandler  *ScoreHandler
	paramsHandler *ParamsHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler

	rateLimit   rate.Limit
	rateBurst   int
	corsOrigins []string
	log         logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits each client IP to rps requests per second with the
// given burst. Zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.rateLimit = rate.Limit(rps)
			s.rateBurst = burst
		}
	}
}

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		scoreHandler:  NewScoreHandler(deps),
		paramsHandler: NewParamsHandler(deps),
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		log:           logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(RateLimitMiddleware(NewIPRateLimiter(s.rateLimit, s.rateBurst)))
		}
		r.Get("/score", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
		r.Get("/params", MetricsMiddleware(s.paramsHandler.HandleGetParams, "params"))
		r.Put("/params", MetricsMiddleware(s.paramsHandler.HandlePutParams, "params"))
	})

	swagger.Register(ctx, r)
	s.log.Debug(ctx, "routes registered")
}

// Handler builds the router with the standard middleware stack and every route.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(handlerTimeout))
	r.Use(CORSMiddleware(s.corsOrigins))
	s.Register(ctx, r)
	return r
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
