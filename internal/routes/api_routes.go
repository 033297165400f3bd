package routes

import (
	"time"

	"flightpulse/delaydash/internal/api"
	"flightpulse/delaydash/internal/common"
	"flightpulse/delaydash/internal/middleware"
	"flightpulse/delaydash/internal/stats"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers.
// This keeps API route registration separate from the main router setup.
func RegisterAPIRoutes(r chi.Router, svc *stats.Service, cache common.CacheInterface, upSince time.Time) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimitMiddleware)

		v1.Get("/health", api.HealthCheckHandler(svc.Store(), cache, upSince))
		v1.Get("/options", api.FilterOptionsHandler(svc))

		v1.Route("/dashboard", func(d chi.Router) {
			d.Get("/", api.DashboardHandler(svc))
			d.Get("/summary", api.SummaryHandler(svc))
			d.Get("/map", api.MapHandler(svc))
			d.Get("/airports", api.ByAirportHandler(svc))
			d.Get("/dates", api.ByDateHandler(svc))
			d.Get("/weekdays", api.ByWeekdayHandler(svc))
			d.Get("/heatmap", api.HeatmapHandler(svc))
			d.Get("/histogram", api.HistogramHandler(svc))
			d.Get("/airlines", api.TopAirlinesHandler(svc))
		})
	})
}
