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

// PostStore manages posts in the database.
type PostStore struct {
	base
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *database.DB) *PostStore {
	return &PostStore{base: newBase(db)}
}

// WithTx returns a PostStore that runs inside tx.
func (s *PostStore) WithTx(tx *sqlx.Tx) *PostStore {
	return &PostStore{base: s.base.withTx(tx)}
}

var postColumns = []string{
	"id", "category_id", "title", "slug", "meta_title", "meta_description",
	"meta_keywords", "is_active", "content", "created_at", "updated_at",
}

// Sortable post columns. Anything else falls back to created_at.
var postSortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"created_at": true,
	"updated_at": true,
	"is_active":  true,
}

// PostFilter narrows List and Count results. Nil pointers match everything.
type PostFilter struct {
	Active     *bool
	HasEffects *bool
	HasCTA     *bool
	CategoryID *int64
	Search     string

	// Sort is a column name; Desc flips the direction. The default is
	// created_at descending.
	Sort string
	Desc bool

	Limit  int
	Offset int
}

func (f PostFilter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.Active != nil {
		q = q.Where(sq.Eq{"posts.is_active": *f.Active})
	}
	if f.CategoryID != nil {
		q = q.Where(sq.Eq{"posts.category_id": *f.CategoryID})
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		q = q.Where("(LOWER(posts.title) LIKE ?"+likeEscape+" OR LOWER(posts.slug) LIKE ?"+likeEscape+")", like, like)
	}
	if f.HasEffects != nil {
		q = q.Where(existsSlide(*f.HasEffects, "s.zoom_effect = ?", true))
	}
	if f.HasCTA != nil {
		q = q.Where(existsSlide(*f.HasCTA, "s.cta_button_show = ? AND s.cta_link IS NOT NULL AND s.cta_link <> ''", true))
	}
	return q
}

// existsSlide renders an (NOT) EXISTS check against the post's slides.
func existsSlide(want bool, cond string, args ...any) sq.Sqlizer {
	op := "EXISTS"
	if !want {
		op = "NOT EXISTS"
	}
	return sq.Expr(op+" (SELECT 1 FROM slides s WHERE s.post_id = posts.id AND "+cond+")", args...)
}

func (f PostFilter) order() []string {
	col := "created_at"
	desc := true
	if postSortColumns[f.Sort] {
		col, desc = f.Sort, f.Desc
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return []string{"posts." + col + dir, "posts.id" + dir}
}

func qualified(cols []string, table string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = table + "." + c
	}
	return out
}

// List returns posts matching f in the requested order.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	q := f.apply(s.sb.Select(qualified(postColumns, "posts")...).From("posts")).
		OrderBy(f.order()...)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	}

	var items []models.Post
	if err := s.selectAll(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return items, nil
}

// Count returns the number of posts matching f. Limit and sort are ignored.
func (s *PostStore) Count(ctx context.Context, f PostFilter) (int, error) {
	var n int
	if _, err := s.get(ctx, &n, f.apply(s.sb.Select("COUNT(*)").From("posts"))); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// ListPublished returns a page of active posts, newest first.
func (s *PostStore) ListPublished(ctx context.Context, limit, offset int) ([]models.Post, error) {
	active := true
	return s.List(ctx, PostFilter{Active: &active, Limit: limit, Offset: offset})
}

// CountPublished returns the number of active posts.
func (s *PostStore) CountPublished(ctx context.Context) (int, error) {
	active := true
	return s.Count(ctx, PostFilter{Active: &active})
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.findBy(ctx, sq.Eq{"id": id})
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findBy(ctx, sq.Eq{"slug": slug})
}

func (s *PostStore) findBy(ctx context.Context, where sq.Eq) (*models.Post, error) {
	var p models.Post
	found, err := s.get(ctx, &p, s.sb.Select(postColumns...).From("posts").Where(where))
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// FindByIDs returns posts with the given IDs in ascending ID order.
func (s *PostStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Post
	q := s.sb.Select(postColumns...).From("posts").Where(sq.Eq{"id": ids}).OrderBy("id")
	if err := s.selectAll(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("find posts by ids: %w", err)
	}
	return items, nil
}

// SlugExists reports whether slug is taken by a post other than excludeID.
// Pass 0 to check against every row.
func (s *PostStore) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	q := s.sb.Select("COUNT(*)").From("posts").Where(sq.Eq{"slug": slug})
	if excludeID != 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	var n int
	if _, err := s.get(ctx, &n, q); err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return n > 0, nil
}

// Create inserts p and sets its ID and timestamps.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	ts := now()
	q := s.sb.Insert("posts").
		Columns("category_id", "title", "slug", "meta_title", "meta_description",
			"meta_keywords", "is_active", "content", "created_at", "updated_at").
		Values(p.CategoryID, p.Title, p.Slug, p.MetaTitle, p.MetaDescription,
			p.MetaKeywords, p.IsActive, p.LegacyContent, ts, ts).
		Suffix("RETURNING id")
	if _, err := s.get(ctx, &p.ID, q); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = ts, ts
	return nil
}

// Update saves every editable column of p.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	ts := now()
	_, err := s.exec(ctx, s.sb.Update("posts").
		Set("category_id", p.CategoryID).
		Set("title", p.Title).
		Set("slug", p.Slug).
		Set("meta_title", p.MetaTitle).
		Set("meta_description", p.MetaDescription).
		Set("meta_keywords", p.MetaKeywords).
		Set("is_active", p.IsActive).
		Set("content", p.LegacyContent).
		Set("updated_at", ts).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	p.UpdatedAt = ts
	return nil
}

// SetActive publishes or unpublishes the given posts and returns how many
// rows changed.
func (s *PostStore) SetActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.exec(ctx, s.sb.Update("posts").
		Set("is_active", active).
		Set("updated_at", now()).
		Where(sq.Eq{"id": ids}))
	if err != nil {
		return 0, fmt.Errorf("set posts active: %w", err)
	}
	return n, nil
}

// Delete removes the given posts. Their slides are removed by cascade.
func (s *PostStore) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.exec(ctx, s.sb.Delete("posts").Where(sq.Eq{"id": ids}))
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return n, nil
}

// IDsByCategory returns the IDs of every post in a category.
func (s *PostStore) IDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	var ids []int64
	q := s.sb.Select("id").From("posts").Where(sq.Eq{"category_id": categoryID}).OrderBy("id")
	if err := s.selectAll(ctx, &ids, q); err != nil {
		return nil, fmt.Errorf("post ids by category: %w", err)
	}
	return ids, nil
}

// ListWithLegacyContent returns posts whose content column still holds
// a legacy JSON document.
func (s *PostStore) ListWithLegacyContent(ctx context.Context) ([]models.Post, error) {
	var items []models.Post
	q := s.sb.Select(postColumns...).From("posts").
		Where(sq.NotEq{"content": nil}).
		Where(sq.NotEq{"content": ""}).
		OrderBy("id")
	if err := s.selectAll(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list legacy posts: %w", err)
	}
	return items, nil
}

// ClearLegacyContent empties the legacy content column of one post.
func (s *PostStore) ClearLegacyContent(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, s.sb.Update("posts").
		Set("content", nil).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("clear legacy content: %w", err)
	}
	return nil
}
