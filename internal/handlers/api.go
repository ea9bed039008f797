// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"webstories/internal/cache"
	"webstories/internal/media"
	"webstories/internal/models"
	"webstories/internal/stories"
)

// apiTimeFormat matches the "Y-m-d H:i:s" timestamps clients expect.
const apiTimeFormat = "2006-01-02 15:04:05"

// API serves the public JSON endpoints. Responses are cached in Valkey
// until the next write invalidates them.
type API struct {
	stories   *stories.Service
	cache     *cache.ResponseCache
	perPage   int
	publicURL string
}

// NewAPI creates the API handler group. responseCache may be nil.
// publicURL prefixes the pagination links; empty means relative links.
func NewAPI(svc *stories.Service, responseCache *cache.ResponseCache, perPage int, publicURL string) *API {
	if perPage < 1 {
		perPage = stories.DefaultPerPage
	}
	return &API{
		stories:   svc,
		cache:     responseCache,
		perPage:   perPage,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

type postResource struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Slug           string           `json:"slug"`
	Slides         []slideResource  `json:"slides"`
	FeaturedImage  *string          `json:"featured_image"`
	SlidesCount    int              `json:"slides_count"`
	HasZoomEffects bool             `json:"has_zoom_effects"`
	IsActive       bool             `json:"is_active"`
	Category       categoryResource `json:"category"`
	SEO            seoResource      `json:"seo"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

type slideResource struct {
	ID             int64       `json:"id"`
	Title          *string     `json:"title"`
	TextActive     bool        `json:"text_active"`
	ZoomEffect     bool        `json:"zoom_effect"`
	TextPosition   string      `json:"text_position"`
	Content        *string     `json:"content"`
	CTALink        *string     `json:"cta_link"`
	CTAButtonShow  bool        `json:"cta_button_show"`
	HasCTAButton   bool        `json:"has_cta_button"`
	IsValidCTALink bool        `json:"is_valid_cta_link"`
	CTAButtonText  string      `json:"cta_button_text"`
	Position       int         `json:"position"`
	Image          *media.URLs `json:"image"`
}

// categoryResource keeps its keys when the post has no category; the
// values are null then.
type categoryResource struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type seoResource struct {
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
	MetaKeywords    []string `json:"meta_keywords"`
}

type pageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type pageMeta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int    `json:"total"`
}

type postsResponse struct {
	Data  []postResource `json:"data"`
	Links pageLinks      `json:"links"`
	Meta  pageMeta       `json:"meta"`
}

// Posts returns one page of published stories, newest first.
func (a *API) Posts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	key := cache.PostsPageKey(page, a.perPage)
	if cached, ok := a.cache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	pg, err := a.stories.PublishedPage(ctx, page, a.perPage)
	if err != nil {
		slog.Error("list published posts failed", "error", err, "page", page)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	body, err := json.Marshal(a.postsResponse(pg))
	if err != nil {
		slog.Error("encode posts response failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}
	a.cache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

func (a *API) postsResponse(pg stories.Page) postsResponse {
	path := a.publicURL + "/api/posts"
	pageURL := func(n int) string { return fmt.Sprintf("%s?page=%d", path, n) }

	resp := postsResponse{
		Data: make([]postResource, 0, len(pg.Posts)),
		Links: pageLinks{
			First: pageURL(1),
			Last:  pageURL(pg.LastPage),
		},
		Meta: pageMeta{
			CurrentPage: pg.CurrentPage,
			LastPage:    pg.LastPage,
			Path:        path,
			PerPage:     pg.PerPage,
			Total:       pg.Total,
		},
	}
	if pg.CurrentPage > 1 {
		prev := pageURL(pg.CurrentPage - 1)
		resp.Links.Prev = &prev
	}
	if pg.CurrentPage < pg.LastPage {
		next := pageURL(pg.CurrentPage + 1)
		resp.Links.Next = &next
	}
	if from, to := pg.From(), pg.To(); from > 0 {
		resp.Meta.From, resp.Meta.To = &from, &to
	}

	library := a.stories.Library()
	for i := range pg.Posts {
		resp.Data = append(resp.Data, newPostResource(&pg.Posts[i], library))
	}
	return resp
}

func newPostResource(p *models.Post, library *media.Library) postResource {
	out := postResource{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		Slides:         make([]slideResource, 0, len(p.Slides)),
		SlidesCount:    p.SlidesCount(),
		HasZoomEffects: p.HasZoomEffects(),
		IsActive:       p.IsActive,
		SEO: seoResource{
			MetaTitle:       p.MetaTitle,
			MetaDescription: p.MetaDescription,
			MetaKeywords:    []string(p.MetaKeywords),
		},
		CreatedAt: p.CreatedAt.Format(apiTimeFormat),
		UpdatedAt: p.UpdatedAt.Format(apiTimeFormat),
	}
	if out.SEO.MetaKeywords == nil {
		out.SEO.MetaKeywords = []string{}
	}
	if p.Cover != nil {
		u := library.URLs(p.Cover).Original
		out.FeaturedImage = &u
	}
	if c := p.Category; c != nil {
		out.Category = categoryResource{ID: &c.ID, Name: &c.Name, Slug: &c.Slug}
	}
	for i := range p.Slides {
		out.Slides = append(out.Slides, newSlideResource(&p.Slides[i], library))
	}
	return out
}

func newSlideResource(s *models.Slide, library *media.Library) slideResource {
	out := slideResource{
		ID:             s.ID,
		Title:          s.Title,
		TextActive:     s.TextActive,
		ZoomEffect:     s.ZoomEffect,
		TextPosition:   string(s.TextPosition),
		Content:        s.Content,
		CTAButtonShow:  s.CTAButtonShow,
		HasCTAButton:   s.HasCTAButton(),
		IsValidCTALink: s.IsValidCTALink(),
		CTAButtonText:  s.CTAButtonText(),
		Position:       s.Position,
	}
	if s.CTALink != nil && strings.TrimSpace(*s.CTALink) != "" {
		out.CTALink = s.CTALink
	}
	if s.Image != nil {
		u := library.URLs(s.Image)
		out.Image = &u
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSONBytes(w, status, body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
