// Package web provides embedded static assets (CSS, JS) for the admin interface.
// In development, templates load Tailwind and HTMX from a CDN; in production,
// the compiled and vendored files are embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. "make assets" adds the
// compiled TailwindCSS build and the vendored HTMX file.
//
//go:embed all:static
var StaticFS embed.FS
