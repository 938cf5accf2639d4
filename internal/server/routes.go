package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/techtransfer/internal/api/v1"
	"github.com/gosuda/techtransfer/internal/api/ws"
)

const apiVersion = "1.0.0"

func newAPI(r chi.Router, title, docsPrefix string) huma.API {
	cfg := huma.DefaultConfig(title, apiVersion)
	cfg.Servers = []*huma.Server{
		{URL: "/api/v1"},
	}
	// Both groups share one router, so their generated docs need distinct paths.
	if docsPrefix != "" {
		cfg.OpenAPIPath = docsPrefix + "/openapi"
		cfg.DocsPath = docsPrefix + "/docs"
		cfg.SchemasPath = docsPrefix + "/schemas"
	}
	return humachi.New(r, cfg)
}

func registerPublicRoutes(r chi.Router, deps Deps) {
	api := newAPI(r, "Tech Transfer Auth API", "/auth")
	v1.RegisterAuthRoutes(api, deps.Auth)
}

func registerAPIRoutes(r chi.Router, deps Deps) {
	api := newAPI(r, "Tech Transfer API", "")

	v1.RegisterSessionRoutes(api, deps.Store, deps.Auth, deps.Auditor, deps.Names)
	v1.RegisterCampusRoutes(api, deps.Store)
	v1.RegisterUserRoutes(api, deps.Store, deps.Auditor, deps.Names)
	v1.RegisterAuditRoutes(api, deps.Store, deps.Names)

	v1.RegisterProjectRoutes(api, deps.Store, deps.Auditor, deps.Auth)
	v1.RegisterAwardRoutes(api, deps.Store, deps.Auditor, deps.Auth)
	v1.RegisterInternationalPartnerRoutes(api, deps.Store, deps.Auditor, deps.Auth)
	v1.RegisterModalityRoutes(api, deps.Store, deps.Auditor, deps.Auth)
	v1.RegisterResolutionRoutes(api, deps.Store, deps.Auditor, deps.Auth)
	v1.RegisterImpactAssessmentRoutes(api, deps.Store, deps.Auditor, deps.Auth)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/audit", hub.ServeFeed)
	r.Get("/audit/subjects/{kind}/{id}", hub.ServeSubject)
}

func registerOpsRoutes(r chi.Router, deps Deps) {
	// Liveness (unauthenticated).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	// Readiness checks the database.
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("readiness check failed")
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
