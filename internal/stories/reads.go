// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package stories

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"webstories/internal/models"
	"webstories/internal/store"
)

// DefaultPerPage is the page size of the public API.
const DefaultPerPage = 10

// Page is one page of published posts.
type Page struct {
	Posts       []models.Post
	Total       int
	CurrentPage int
	PerPage     int
	LastPage    int
}

// From returns the 1-based index of the first post on the page, or 0 when
// the page is empty.
func (p Page) From() int {
	if len(p.Posts) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PerPage + 1
}

// To returns the 1-based index of the last post on the page, or 0.
func (p Page) To() int {
	if len(p.Posts) == 0 {
		return 0
	}
	return p.From() + len(p.Posts) - 1
}

// PublishedPage returns active posts, newest first, with every relation
// the API renders. A page past the end is empty, not an error.
func (s *Service) PublishedPage(ctx context.Context, page, perPage int) (pg Page, err error) {
	ctx, span := s.start(ctx, "PublishedPage", attribute.Int("page", page))
	defer func() { finish(span, err) }()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total, err := s.posts.CountPublished(ctx)
	if err != nil {
		return Page{}, err
	}
	pg = Page{Total: total, CurrentPage: page, PerPage: perPage, LastPage: lastPage(total, perPage)}
	if (page-1)*perPage >= total {
		pg.Posts = []models.Post{}
		return pg, nil
	}

	posts, err := s.posts.ListPublished(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return Page{}, err
	}
	if err := s.hydrate(ctx, posts); err != nil {
		return Page{}, err
	}
	pg.Posts = posts
	return pg, nil
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// GetPost returns a post with its category, cover, and slides.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	posts := []models.Post{*p}
	if err := s.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns one admin table page and the total match count.
func (s *Service) ListPosts(ctx context.Context, f store.PostFilter) ([]models.Post, int, error) {
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrate(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListCategories returns categories with their post counts.
func (s *Service) ListCategories(ctx context.Context, f store.CategoryFilter) ([]models.Category, error) {
	return s.categories.List(ctx, f)
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// hydrate loads categories, covers, slides, and slide images for posts in
// a fixed number of queries.
func (s *Service) hydrate(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	postIDs := make([]int64, len(posts))
	var categoryIDs []int64
	for i, p := range posts {
		postIDs[i] = p.ID
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
	}

	categories, err := s.categories.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return fmt.Errorf("hydrate categories: %w", err)
	}
	covers, err := s.media.ListFor(ctx, models.MediaOwnerPost, postIDs, models.CollectionCover)
	if err != nil {
		return fmt.Errorf("hydrate covers: %w", err)
	}
	slides, err := s.slides.ListByPosts(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("hydrate slides: %w", err)
	}

	var slideIDs []int64
	for _, list := range slides {
		for _, sl := range list {
			slideIDs = append(slideIDs, sl.ID)
		}
	}
	images, err := s.media.ListFor(ctx, models.MediaOwnerSlide, slideIDs, models.CollectionSlideImage)
	if err != nil {
		return fmt.Errorf("hydrate slide images: %w", err)
	}

	for i := range posts {
		p := &posts[i]
		if p.CategoryID != nil {
			p.Category = categories[*p.CategoryID]
		}
		p.Cover = covers[p.ID]
		p.Slides = slides[p.ID]
		for j := range p.Slides {
			p.Slides[j].Image = images[p.Slides[j].ID]
		}
	}
	return nil
}

// Stats are the dashboard counters.
type Stats struct {
	Posts          int
	PublishedPosts int
	Categories     int
	Slides         int
	SlidesWithCTA  int
	ZoomSlides     int
	MediaFiles     int
}

// DashboardStats gathers the dashboard counters.
func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Posts, err = s.posts.Count(ctx, store.PostFilter{}); err != nil {
		return Stats{}, err
	}
	if st.PublishedPosts, err = s.posts.CountPublished(ctx); err != nil {
		return Stats{}, err
	}
	if st.Categories, err = s.categories.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Slides, err = s.slides.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.SlidesWithCTA, err = s.slides.Count(ctx, store.WithCTA); err != nil {
		return Stats{}, err
	}
	if st.ZoomSlides, err = s.slides.Count(ctx, store.WithZoomEffect); err != nil {
		return Stats{}, err
	}
	if st.MediaFiles, err = s.media.Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// RecentPosts returns the newest posts for the dashboard.
func (s *Service) RecentPosts(ctx context.Context, n int) ([]models.Post, error) {
	posts, _, err := s.ListPosts(ctx, store.PostFilter{Limit: n})
	return posts, err
}
