// Package view renders the HTML pages. Templates are embedded so the binary
// is self-contained.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{
	"landing",
	"login",
	"signup",
	"dashboard",
	"food",
	"social",
	"leaderboard",
	"settings",
}

type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"percent":  percent,
		"shortday": shortday,
		"add1":     func(i int) int { return i + 1 },
	}

	r := &Renderer{templates: map[string]*template.Template{}}
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templatesFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}

	return r, nil
}

// Render writes the page. The template is executed into a buffer first so a
// rendering failure produces a clean error page instead of a half-written
// response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, exists := r.templates[page]
	if !exists {
		slog.Error("unknown template", "page", page)
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("template execution failed", "page", page, "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<!doctype html><title>CalMate</title><p>Something went wrong. Please try again.</p>"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// percent clamps consumed/goal into 0..100 for progress bars.
func percent(consumed, goal int) int {
	if goal <= 0 {
		return 0
	}
	p := consumed * 100 / goal
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func shortday(t time.Time) string {
	return t.Format("Mon")
}
