// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"webstories/internal/middleware"
	"webstories/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g., "dashboard", "posts")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution for admin pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":   true,
	"welcome": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each admin page is paired with the base layout and the
// shared partials. When devMode is true, templates use CDN-hosted assets
// (TailwindCSS, HTMX); when false, they reference local static files.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap:   funcMap(devMode),
	}

	entries, err := templateFS.ReadDir("templates/admin")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Files starting with "_" are partials shared by every admin page.
	shared := []string{"templates/admin/base.html"}
	var pages []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir() || name == "base.html":
		case strings.HasPrefix(name, "_"):
			shared = append(shared, "templates/admin/"+name)
		default:
			pages = append(pages, name)
		}
	}

	for _, name := range pages {
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, "templates/admin/"+name)
		} else {
			files := append(append([]string{}, shared...), "templates/admin/"+name)
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(templateFS, files...)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		r.templates[tmplName] = tmpl
	}

	welcome, err := template.New("welcome.html").Funcs(r.funcMap).ParseFS(templateFS, "templates/public/welcome.html")
	if err != nil {
		return nil, fmt.Errorf("parse template welcome.html: %w", err)
	}
	r.templates["welcome"] = welcome

	return r, nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
// For full page loads, the entire base layout is rendered.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used to re-render a
// form with validation errors.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	rn.inject(r, data)

	execName := "base.html"
	switch {
	case standaloneTemplates[name]:
		execName = name + ".html"
	case isHTMX(r):
		execName = "content"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := executeTemplate(w, tmpl, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
	}
}

// Fragment renders one named block of a page template with data, such as
// a table row toggle swapped in by HTMX.
func (rn *Renderer) Fragment(w http.ResponseWriter, page, block string, data any) {
	tmpl, ok := rn.templates[page]
	if !ok || tmpl.Lookup(block) == nil {
		http.Error(w, fmt.Sprintf("template %q not found", page+"/"+block), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := executeTemplate(w, tmpl, block, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// inject fills the CSRF token and session from the request context.
func (rn *Renderer) inject(r *http.Request, data *PageData) {
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func funcMap(devMode bool) template.FuncMap {
	return template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "bg-gray-900 text-white"
			}
			return "text-gray-300 hover:bg-gray-700 hover:text-white"
		},
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// isDev returns true when the app runs in development mode.
		"isDev": func() bool {
			return devMode
		},
		"dict":       dict,
		"inputName":  inputName,
		"errorKey":   errorKey,
		"formatTime": formatTime,
		"since":      since,
		"truncate":   truncate,
		"add":        func(a, b int) int { return a + b },
		"join":       strings.Join,
		"lower":      strings.ToLower,
	}
}

// dict builds a map from alternating keys and values so templates can
// pass several values to a sub-template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// inputName returns the form name of a field, "slides[0][title]" inside a
// repeater row or the plain field name at the top level.
func inputName(repeater string, index any, field string) string {
	if repeater == "" {
		return field
	}
	return fmt.Sprintf("%s[%v][%s]", repeater, index, field)
}

// errorKey mirrors resource.ItemKey for templates.
func errorKey(repeater string, index any, field string) string {
	if repeater == "" {
		return field
	}
	return fmt.Sprintf("%s.%v.%s", repeater, index, field)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

// since renders a coarse relative time, such as "3 hours ago".
func since(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return formatTime(t)
	}
}

// truncate cuts s to n characters and appends "...". Zero n keeps s.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
