// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"webstories/internal/database"
	"webstories/internal/models"
)

// SlideStore manages slides in the database.
type SlideStore struct {
	base
}

// NewSlideStore returns a new SlideStore.
func NewSlideStore(db *database.DB) *SlideStore {
	return &SlideStore{base: newBase(db)}
}

// WithTx returns a SlideStore that runs inside tx.
func (s *SlideStore) WithTx(tx *sqlx.Tx) *SlideStore {
	return &SlideStore{base: s.base.withTx(tx)}
}

var slideColumns = []string{
	"id", "post_id", "title", "text_active", "zoom_effect", "text_position",
	"content", "cta_link", "cta_button_show", "position", "created_at", "updated_at",
}

// Slide scopes, passed to the list methods to narrow results.
var (
	// WithCTA matches slides whose CTA toggle is on and that carry a link.
	WithCTA sq.Sqlizer = sq.And{sq.Eq{"cta_button_show": true}, sq.NotEq{"cta_link": nil}}
	// WithoutCTA is the complement of WithCTA.
	WithoutCTA sq.Sqlizer = sq.Or{sq.Eq{"cta_button_show": false}, sq.Eq{"cta_link": nil}}
	// WithZoomEffect matches slides using the zoom effect.
	WithZoomEffect sq.Sqlizer = sq.Eq{"zoom_effect": true}
	// Active matches slides with their text enabled.
	Active sq.Sqlizer = sq.Eq{"text_active": true}
)

// ListByPost returns the slides of one post in display order.
func (s *SlideStore) ListByPost(ctx context.Context, postID int64, scopes ...sq.Sqlizer) ([]models.Slide, error) {
	return s.list(ctx, sq.Eq{"post_id": postID}, scopes)
}

// ListByPosts returns the slides of several posts in display order, grouped
// by post ID.
func (s *SlideStore) ListByPosts(ctx context.Context, postIDs []int64, scopes ...sq.Sqlizer) (map[int64][]models.Slide, error) {
	out := make(map[int64][]models.Slide, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	items, err := s.list(ctx, sq.Eq{"post_id": postIDs}, scopes)
	if err != nil {
		return nil, err
	}
	for _, sl := range items {
		out[sl.PostID] = append(out[sl.PostID], sl)
	}
	return out, nil
}

func (s *SlideStore) list(ctx context.Context, where sq.Eq, scopes []sq.Sqlizer) ([]models.Slide, error) {
	q := s.sb.Select(slideColumns...).From("slides").Where(where)
	for _, scope := range scopes {
		q = q.Where(scope)
	}
	q = q.OrderBy("post_id", "position", "id")

	var items []models.Slide
	if err := s.selectAll(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	return items, nil
}

// FindByID retrieves a slide by ID. Returns nil if not found.
func (s *SlideStore) FindByID(ctx context.Context, id int64) (*models.Slide, error) {
	var sl models.Slide
	found, err := s.get(ctx, &sl, s.sb.Select(slideColumns...).From("slides").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find slide by id: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &sl, nil
}

// Create appends sl to the end of its post and sets its ID, position, and
// timestamps.
func (s *SlideStore) Create(ctx context.Context, sl *models.Slide) error {
	var next int
	q := s.sb.Select("COALESCE(MAX(position), -1) + 1").From("slides").Where(sq.Eq{"post_id": sl.PostID})
	if _, err := s.get(ctx, &next, q); err != nil {
		return fmt.Errorf("next slide position: %w", err)
	}

	ts := now()
	ins := s.sb.Insert("slides").
		Columns("post_id", "title", "text_active", "zoom_effect", "text_position",
			"content", "cta_link", "cta_button_show", "position", "created_at", "updated_at").
		Values(sl.PostID, sl.Title, sl.TextActive, sl.ZoomEffect, string(sl.TextPosition),
			sl.Content, sl.CTALink, sl.CTAButtonShow, next, ts, ts).
		Suffix("RETURNING id")
	if _, err := s.get(ctx, &sl.ID, ins); err != nil {
		return fmt.Errorf("create slide: %w", err)
	}
	sl.Position = next
	sl.CreatedAt, sl.UpdatedAt = ts, ts
	return nil
}

// Update saves every editable column of sl. Position is changed only
// through Reorder.
func (s *SlideStore) Update(ctx context.Context, sl *models.Slide) error {
	ts := now()
	_, err := s.exec(ctx, s.sb.Update("slides").
		Set("title", sl.Title).
		Set("text_active", sl.TextActive).
		Set("zoom_effect", sl.ZoomEffect).
		Set("text_position", string(sl.TextPosition)).
		Set("content", sl.Content).
		Set("cta_link", sl.CTALink).
		Set("cta_button_show", sl.CTAButtonShow).
		Set("updated_at", ts).
		Where(sq.Eq{"id": sl.ID}))
	if err != nil {
		return fmt.Errorf("update slide: %w", err)
	}
	sl.UpdatedAt = ts
	return nil
}

// Delete removes one slide.
func (s *SlideStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, s.sb.Delete("slides").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete slide: %w", err)
	}
	return nil
}

// Reorder assigns positions 0..n-1 following ids. IDs that do not belong
// to postID are ignored.
func (s *SlideStore) Reorder(ctx context.Context, postID int64, ids []int64) error {
	ts := now()
	for i, id := range ids {
		_, err := s.exec(ctx, s.sb.Update("slides").
			Set("position", i).
			Set("updated_at", ts).
			Where(sq.Eq{"id": id, "post_id": postID}))
		if err != nil {
			return fmt.Errorf("reorder slides: %w", err)
		}
	}
	return nil
}

// IDsByPosts returns the IDs of every slide belonging to the given posts.
func (s *SlideStore) IDsByPosts(ctx context.Context, postIDs []int64) ([]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := s.selectAll(ctx, &ids, s.sb.Select("id").From("slides").Where(sq.Eq{"post_id": postIDs})); err != nil {
		return nil, fmt.Errorf("slide ids by posts: %w", err)
	}
	return ids, nil
}

// CountByPost returns the number of slides in one post.
func (s *SlideStore) CountByPost(ctx context.Context, postID int64) (int, error) {
	var n int
	if _, err := s.get(ctx, &n, s.sb.Select("COUNT(*)").From("slides").Where(sq.Eq{"post_id": postID})); err != nil {
		return 0, fmt.Errorf("count slides: %w", err)
	}
	return n, nil
}

// Count returns the number of slides matching every scope.
func (s *SlideStore) Count(ctx context.Context, scopes ...sq.Sqlizer) (int, error) {
	q := s.sb.Select("COUNT(*)").From("slides")
	for _, scope := range scopes {
		q = q.Where(scope)
	}
	var n int
	if _, err := s.get(ctx, &n, q); err != nil {
		return 0, fmt.Errorf("count slides: %w", err)
	}
	return n, nil
}
