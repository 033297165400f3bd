package routes

import (
	"net/http"
	"path/filepath"
	"strings"

	"flightpulse/delaydash/internal/stats"
	"flightpulse/delaydash/web/ui"

	"github.com/go-chi/chi/v5"
)

// RegisterUIRoutes registers all UI-related routes
func RegisterUIRoutes(r chi.Router, svc *stats.Service) {
	uiHandler := ui.NewUIHandler(svc)

	// Static file serving (CSS, JS) with correct MIME types
	fileServer := http.FileServer(http.Dir("web/ui/static"))
	r.Handle("/static/*", http.StripPrefix("/static/", mimeTypeMiddleware(fileServer)))

	// Default route - redirect to the dashboard
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusMovedPermanently)
	})

	r.Route("/dashboard", func(dashboard chi.Router) {
		// Main dashboard page
		dashboard.Get("/", uiHandler.DashboardHandler)

		// HTMX fragments
		dashboard.Get("/fragments/kpis", uiHandler.KPIFragmentHandler)
		dashboard.Get("/fragments/airlines", uiHandler.TopAirlinesFragmentHandler)

		// Theme preference
		dashboard.Post("/theme", uiHandler.SetThemeHandler)
	})

	// UI API routes
	r.Route("/ui/api", func(uiApi chi.Router) {
		uiApi.Get("/health", uiHandler.HealthCheckHandler)
	})
}

// mimeTypeMiddleware wraps a file server and sets correct MIME types for various file types
func mimeTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := filepath.Ext(r.URL.Path)

		// Set correct MIME type for .mjs files (ES modules)
		if strings.EqualFold(ext, ".mjs") {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		}

		next.ServeHTTP(w, r)
	})
}
