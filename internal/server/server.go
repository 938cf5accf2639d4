package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/techtransfer/internal/api/v1"
	"github.com/gosuda/techtransfer/internal/api/ws"
	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/config"
	"github.com/gosuda/techtransfer/internal/server/middleware"
)

// Store is the persistence surface the server needs.
type Store interface {
	v1.DataStore
	Ping(ctx context.Context) error
}

// Deps are the collaborators wired into the HTTP routes.
type Deps struct {
	Store   Store
	Auth    v1.AuthService
	Auditor *audit.Auditor
	// Names fills in descriptions of records stored without one. May be nil.
	Names *audit.ActorNames
	// Feed backs the /ws audit streams. Nil disables them.
	Feed ws.Subscriber
	// Metrics is served on /metrics. Nil disables the endpoint.
	Metrics *prometheus.Registry
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	deps       Deps
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the lifetime of the
// rate limiter sweepers.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(log.Logger))
	router.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		router.Use(middleware.NewHTTPMetrics(deps.Metrics).Handler)
	}
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		deps:   deps,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	rate := float64(cfg.Server.RateLimit)
	burst := cfg.Server.RateBurst

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for register, login and refresh.
	// 2. Authenticated group for everything else.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, rate/10, max(burst/10, 1)))
			registerPublicRoutes(r, deps)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RateLimit(ctx, rate, burst))
			registerAPIRoutes(r, deps)
		})
	})

	// WebSocket audit streams are admin only, like the audit read routes.
	if deps.Feed != nil {
		hub := ws.NewHub(deps.Feed)
		router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireAdmin())
			registerWSRoutes(r, hub)
		})
	}

	registerOpsRoutes(router, deps)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	log.Info().Str("addr", s.cfg.Server.Addr).Msg("starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
