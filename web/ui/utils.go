package ui

import (
	"html/template"
	"net/http"
	"strings"
)

// templateRoot is where the server process finds the UI templates,
// relative to the working directory
const templateRoot = "web/ui/templates/"

// RenderTemplate renders a template with the base layout
func RenderTemplate(w http.ResponseWriter, templateName string, data map[string]interface{}) error {
	funcMap := template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"split": func(s string, sep string) []string {
			return strings.Split(s, sep)
		},
	}

	t := template.New("base.html").Funcs(funcMap)
	t, err := t.ParseFiles(
		templateRoot+"layouts/base.html",
		templateRoot+templateName,
	)
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	return nil
}

// getThemeFromRequest returns the theme preference cookie value,
// defaulting to light
func getThemeFromRequest(r *http.Request) string {
	cookie, err := r.Cookie("theme_preference")
	if err != nil || cookie.Value == "" {
		return "light"
	}
	return cookie.Value
}
