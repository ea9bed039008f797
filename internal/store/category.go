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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	base
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *database.DB) *CategoryStore {
	return &CategoryStore{base: newBase(db)}
}

// WithTx returns a CategoryStore that runs inside tx.
func (s *CategoryStore) WithTx(tx *sqlx.Tx) *CategoryStore {
	return &CategoryStore{base: s.base.withTx(tx)}
}

var categoryColumns = []string{"id", "name", "slug", "is_active", "created_at", "updated_at"}

// CategoryFilter narrows List results. Zero values match everything.
type CategoryFilter struct {
	Search string
	Active *bool
}

// List returns categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context, f CategoryFilter) ([]models.Category, error) {
	q := s.sb.Select(
		"c.id", "c.name", "c.slug", "c.is_active", "c.created_at", "c.updated_at",
		"COUNT(p.id) AS post_count",
	).
		From("categories c").
		LeftJoin("posts p ON p.category_id = c.id").
		GroupBy("c.id", "c.name", "c.slug", "c.is_active", "c.created_at", "c.updated_at").
		OrderBy("c.name", "c.id")

	if f.Search != "" {
		q = q.Where("LOWER(c.name) LIKE ?"+likeEscape, containsPattern(f.Search))
	}
	if f.Active != nil {
		q = q.Where(sq.Eq{"c.is_active": *f.Active})
	}

	var items []models.Category
	if err := s.selectAll(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	found, err := s.get(ctx, &c, s.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

// FindByIDs returns the categories with the given IDs keyed by ID.
func (s *CategoryStore) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Category, error) {
	out := make(map[int64]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Category
	if err := s.selectAll(ctx, &items, s.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": ids})); err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

// SlugExists reports whether slug is taken by a category other than excludeID.
// Pass 0 to check against every row.
func (s *CategoryStore) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	q := s.sb.Select("COUNT(*)").From("categories").Where(sq.Eq{"slug": slug})
	if excludeID != 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	var n int
	if _, err := s.get(ctx, &n, q); err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return n > 0, nil
}

// Create inserts c and sets its ID and timestamps.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	ts := now()
	q := s.sb.Insert("categories").
		Columns("name", "slug", "is_active", "created_at", "updated_at").
		Values(c.Name, c.Slug, c.IsActive, ts, ts).
		Suffix("RETURNING id")
	if _, err := s.get(ctx, &c.ID, q); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = ts, ts
	return nil
}

// Update saves every editable column of c.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	ts := now()
	_, err := s.exec(ctx, s.sb.Update("categories").
		Set("name", c.Name).
		Set("slug", c.Slug).
		Set("is_active", c.IsActive).
		Set("updated_at", ts).
		Where(sq.Eq{"id": c.ID}))
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	c.UpdatedAt = ts
	return nil
}

// SetActive toggles the is_active flag of one category.
func (s *CategoryStore) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := s.exec(ctx, s.sb.Update("categories").
		Set("is_active", active).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return nil
}

// Delete removes a category. Its posts and their slides go with it.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, s.sb.Delete("categories").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Count returns the total number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := s.get(ctx, &n, s.sb.Select("COUNT(*)").From("categories")); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
