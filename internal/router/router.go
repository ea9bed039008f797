// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// web stories CMS. It organizes routes into public, API, and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"webstories/internal/handlers"
	"webstories/internal/middleware"
)

// Deps are the handler groups and middleware inputs the router wires up.
type Deps struct {
	Sessions middleware.SessionLoader
	Tracer   trace.Tracer

	Admin  *handlers.Admin
	Auth   *handlers.Auth
	API    *handlers.API
	Public *handlers.Public

	// LoginLimiter throttles login attempts; nil disables it.
	LoginLimiter *middleware.RateLimiter
	// Static serves /static/. Nil disables the route.
	Static fs.FS
	// MediaDir is served at /media/ when media lives on the local disk.
	MediaDir string
	// SecureCookies sets the Secure flag on the CSRF cookie.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	if d.Tracer != nil {
		r.Use(middleware.Trace(d.Tracer))
	}
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Get("/", d.Public.Welcome)
	r.Get("/api/posts", d.API.Posts)

	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}
	if d.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(noListing{http.Dir(d.MediaDir)})))
	}

	// Admin routes: CSRF everywhere, authentication past the login page.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/login", d.Auth.LoginPage)
		if d.LoginLimiter != nil {
			r.With(d.LoginLimiter.Middleware).Post("/login", d.Auth.LoginSubmit)
		} else {
			r.Post("/login", d.Auth.LoginSubmit)
		}
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			admin := d.Admin

			// Dashboard
			r.Get("/", admin.Dashboard)
			r.Get("/dashboard", admin.Dashboard)

			// Web stories
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsList)
				r.Get("/new", admin.PostNew)
				r.Post("/", admin.PostCreate)
				r.Post("/bulk", admin.PostsBulk)
				r.Get("/{id}/edit", admin.PostEdit)
				r.Post("/{id}", admin.PostUpdate)
				r.Delete("/{id}", admin.PostDelete)
				r.Post("/{id}/toggle", admin.PostToggle)
				r.Post("/{id}/cover", admin.CoverUpload)
				r.Post("/{id}/slides", admin.SlideAdd)
				r.Post("/{id}/slides/reorder", admin.SlidesReorder)
			})

			// Slides
			r.Route("/slides", func(r chi.Router) {
				r.Post("/{id}", admin.SlideUpdate)
				r.Delete("/{id}", admin.SlideDelete)
				r.Post("/{id}/duplicate", admin.SlideDuplicate)
				r.Post("/{id}/image", admin.SlideImageUpload)
			})

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoriesList)
				r.Get("/new", admin.CategoryNew)
				r.Post("/", admin.CategoryCreate)
				r.Get("/{id}/edit", admin.CategoryEdit)
				r.Post("/{id}", admin.CategoryUpdate)
				r.Delete("/{id}", admin.CategoryDelete)
				r.Post("/{id}/toggle", admin.CategoryToggle)
			})
		})
	})

	return r
}

// noListing hides directory indexes of the media directory.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
