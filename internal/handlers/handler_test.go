// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. They run against in-memory SQLite and a temporary
// local disk, so no external services are needed.
package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"webstories/internal/database"
	"webstories/internal/database/dbtest"
	"webstories/internal/media"
	"webstories/internal/middleware"
	"webstories/internal/models"
	"webstories/internal/render"
	"webstories/internal/session"
	"webstories/internal/storage"
	"webstories/internal/stories"
	"webstories/internal/store"
)

// testEnv bundles the dependencies of every handler group.
type testEnv struct {
	db       *database.DB
	svc      *stories.Service
	renderer *render.Renderer
	admin    *Admin
	api      *API
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	disk, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	svc := stories.New(db, media.NewLibrary(disk, store.NewMediaStore(db)), nil)

	renderer, err := render.New(true)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		svc:      svc,
		renderer: renderer,
		admin:    NewAdmin(renderer, svc),
		api:      NewAPI(svc, nil, 2, ""),
	}
	env.router = env.routes()
	return env
}

// routes mirrors the admin and API routes without the auth and CSRF
// middleware, which have their own tests.
func (e *testEnv) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/posts", e.api.Posts)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/dashboard", e.admin.Dashboard)

		r.Get("/posts", e.admin.PostsList)
		r.Get("/posts/new", e.admin.PostNew)
		r.Post("/posts", e.admin.PostCreate)
		r.Post("/posts/bulk", e.admin.PostsBulk)
		r.Get("/posts/{id}/edit", e.admin.PostEdit)
		r.Post("/posts/{id}", e.admin.PostUpdate)
		r.Delete("/posts/{id}", e.admin.PostDelete)
		r.Post("/posts/{id}/toggle", e.admin.PostToggle)
		r.Post("/posts/{id}/slides", e.admin.SlideAdd)
		r.Post("/posts/{id}/slides/reorder", e.admin.SlidesReorder)
		r.Post("/posts/{id}/cover", e.admin.CoverUpload)

		r.Post("/slides/{id}", e.admin.SlideUpdate)
		r.Delete("/slides/{id}", e.admin.SlideDelete)
		r.Post("/slides/{id}/image", e.admin.SlideImageUpload)

		r.Get("/categories", e.admin.CategoriesList)
		r.Get("/categories/new", e.admin.CategoryNew)
		r.Post("/categories", e.admin.CategoryCreate)
		r.Get("/categories/{id}/edit", e.admin.CategoryEdit)
		r.Post("/categories/{id}", e.admin.CategoryUpdate)
		r.Delete("/categories/{id}", e.admin.CategoryDelete)
		r.Post("/categories/{id}/toggle", e.admin.CategoryToggle)
	})
	return r
}

// do sends req through the test router with an admin session attached.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	sess := &session.Data{UserID: 1, Email: "admin@example.test", Name: "Test Admin"}
	req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, sess))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (e *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// upload is one file part of a multipart request.
type upload struct {
	field, name string
	data        []byte
}

func (e *testEnv) postMultipart(t *testing.T, target string, form url.Values, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vals := range form {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.svc.CreateCategory(context.Background(), stories.CategoryInput{Name: name, IsActive: true})
	require.NoError(t, err)
	return c
}

func (e *testEnv) createPost(t *testing.T, in stories.PostInput) *models.Post {
	t.Helper()
	p, err := e.svc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return p
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
