// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/okian/tatami/internal/adapters/http/site"
	"github.com/okian/tatami/internal/adapters/http/swagger"
	"github.com/okian/tatami/internal/adapters/repository"
	service "github.com/okian/tatami/internal/app"
	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/pkg/logger"
	"github.com/okian/tatami/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Submit(ctx context.Context, sub model.ResultSubmission) (service.Receipt, error)

	Phases(ctx context.Context) []types.PhaseSummary
	Ranking(ctx context.Context, phaseID string) (types.Ranking, error)
	Standings(ctx context.Context, phaseID string) (types.Ranking, error)
	Rounds(ctx context.Context, phaseID string) (types.Rounds, error)
	Teams(ctx context.Context, phaseID string) (types.Teams, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithSubmitRateLimit limits POST /results per client IP. rps <= 0 disables it.
func WithSubmitRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.submitRPS = rps
		s.submitBurst = burst
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	resultsHandler *ResultsHandler
	phasesHandler  *PhasesHandler

	corsOrigins []string
	submitRPS   float64
	submitBurst int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		resultsHandler: NewResultsHandler(deps),
		phasesHandler:  NewPhasesHandler(deps),
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and every route.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(ctx, r)
	site.Register(ctx, r)

	r.Group(func(r chi.Router) {
		if s.submitRPS > 0 {
			r.Use(RateLimitMiddleware(s.submitRPS, s.submitBurst))
		}
		r.Post("/results", s.resultsHandler.HandlePostResult)
	})

	r.Route("/phases", func(r chi.Router) {
		r.Get("/", s.phasesHandler.HandleList)
		r.Route("/{phaseID}", func(r chi.Router) {
			r.Get("/ranking", s.phasesHandler.HandleRanking)
			r.Get("/ranking.xlsx", s.phasesHandler.HandleRankingXLSX)
			r.Get("/standings", s.phasesHandler.HandleStandings)
			r.Get("/rounds", s.phasesHandler.HandleRounds)
			r.Get("/teams", s.phasesHandler.HandleTeams)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
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

// writeServiceError translates service and store errors into responses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidSubmission), errors.Is(err, model.ErrInvalidMatch):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		logger.Get().Named("api").Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
