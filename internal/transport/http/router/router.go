package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/city-population-api/internal/config"
	"github.com/baechuer/city-population-api/internal/metrics"
	"github.com/baechuer/city-population-api/internal/transport/http/handlers"
	mw "github.com/baechuer/city-population-api/internal/transport/http/middleware"
	"github.com/baechuer/city-population-api/internal/transport/http/response"
)

// New builds the HTTP handler. limiter may be nil, in which case the
// in-process httprate limiter is used when rate limiting is enabled.
func New(
	h *handlers.CitiesHandler,
	z *handlers.HealthHandler,
	limiter mw.Allower,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.AccessLog)
	r.Use(mw.Metrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusNotFound, "not_found", "route not found", nil, response.RequestIDFromRequest(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil, response.RequestIDFromRequest(r))
	})

	// probes and scraping stay outside the limiter
	r.Get("/health", z.Health)
	r.Get("/healthz", z.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RLEnabled {
			if limiter == nil {
				r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
			} else {
				r.Use(mw.RateLimit(limiter, cfg.RLLimit, cfg.RLWindow))
			}
		}

		r.Post("/city", h.Upsert)
		r.Get("/city/{name}", h.Get)
		r.Get("/cities", h.List)
	})

	return r
}
