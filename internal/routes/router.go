package routes

import (
	"net/http"
	"time"

	"flightpulse/delaydash/internal/api"
	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/logging"
	"flightpulse/delaydash/internal/metrics"
	"flightpulse/delaydash/internal/middleware"
	"flightpulse/delaydash/internal/stats"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes wires up the full HTTP surface: JSON API, dashboard UI,
// and the health check.
func RegisterRoutes(upSince time.Time, svc *stats.Service, cache common.CacheInterface, metricsReg *metrics.MetricsRegistry) http.Handler {

	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Trigger"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(svc.Store(), cache, upSince))

	RegisterAPIRoutes(r, svc, cache, upSince)
	RegisterUIRoutes(r, svc)

	return r
}
