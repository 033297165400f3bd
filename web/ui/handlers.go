package ui

import (
	"net/http"

	"flightpulse/delaydash/internal/stats"
)

// UIHandler manages all dashboard UI routes
type UIHandler struct {
	svc *stats.Service
}

// NewUIHandler creates a new UI handler
func NewUIHandler(svc *stats.Service) *UIHandler {
	return &UIHandler{svc: svc}
}

// SetThemeHandler handles theme changes via POST request
func (h *UIHandler) SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	theme := r.FormValue("theme")
	if theme == "" {
		theme = "light"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "theme_preference",
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true, "theme": "` + theme + `"}`))
}

// HealthCheckHandler is a simple health check for the UI service
func (h *UIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
