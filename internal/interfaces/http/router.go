package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/handlers"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	KCFHandler    *handlers.KCFHandler
	HealthHandler *handlers.HealthHandler

	// Infrastructure
	Logger           logging.Logger
	Logging          middleware.LoggingConfig
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerKCFRoutes(api, cfg.KCFHandler)
	})

	return r
}

// registerKCFRoutes mounts the parse endpoints under /kcf.
func registerKCFRoutes(r chi.Router, h *handlers.KCFHandler) {
	if h == nil {
		return
	}
	r.Route("/kcf", func(kr chi.Router) {
		kr.Post("/parse", h.Parse)
		kr.Post("/batch", h.Batch)
		kr.Get("/objects/*", h.Object)
	})
}

//Personal.AI order the ending
