// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package stories is the service layer for categories, posts, and slides.
// It owns the slug lifecycle, cascading media cleanup, SEO generation, and
// API cache invalidation, so handlers never talk to the stores directly
// for writes.
package stories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"webstories/internal/cache"
	"webstories/internal/database"
	"webstories/internal/media"
	"webstories/internal/models"
	"webstories/internal/slug"
	"webstories/internal/store"
	"webstories/internal/telemetry"
)

const (
	// maxSlugAttempts bounds the recompute-and-retry loop when a concurrent
	// writer claims the same slug between the check and the insert.
	maxSlugAttempts = 3

	maxNameLength = 255
)

// Service implements every write path and the relation-loading reads.
type Service struct {
	db         *database.DB
	categories *store.CategoryStore
	posts      *store.PostStore
	slides     *store.SlideStore
	media      *store.MediaStore
	library    *media.Library
	cache      *cache.ResponseCache
	tracer     trace.Tracer
}

// New returns a Service. responseCache may be nil.
func New(db *database.DB, library *media.Library, responseCache *cache.ResponseCache) *Service {
	return &Service{
		db:         db,
		categories: store.NewCategoryStore(db),
		posts:      store.NewPostStore(db),
		slides:     store.NewSlideStore(db),
		media:      store.NewMediaStore(db),
		library:    library,
		cache:      responseCache,
		tracer:     telemetry.Tracer("stories"),
	}
}

// Library returns the media library used for attachments.
func (s *Service) Library() *media.Library { return s.library }

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "stories."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrInvalid) && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}

// PostSlugTaken reports whether the normalized form of value is used by a
// post other than excludeID.
func (s *Service) PostSlugTaken(ctx context.Context, value string, excludeID int64) (bool, error) {
	return s.posts.SlugExists(ctx, slug.Generate(value), excludeID)
}

// CategorySlugTaken is PostSlugTaken for categories.
func (s *Service) CategorySlugTaken(ctx context.Context, value string, excludeID int64) (bool, error) {
	return s.categories.SlugExists(ctx, slug.Generate(value), excludeID)
}

// slugPlan describes how a write chooses its slug.
type slugPlan struct {
	// explicit is a user-edited slug that must be used as is.
	explicit string
	// source is the text the slug is derived from when explicit is empty.
	source string
	// keep is the current slug, reused when nothing changed.
	keep string
}

// resolve returns the slug for one write attempt.
func (p slugPlan) resolve(ctx context.Context, exists slug.ExistsFunc) (string, error) {
	switch {
	case p.explicit != "":
		taken, err := exists(ctx, p.explicit)
		if err != nil {
			return "", err
		}
		if taken {
			return "", &ValidationError{Fields: map[string]string{"slug": slugTaken}}
		}
		return p.explicit, nil
	case p.keep != "":
		return p.keep, nil
	default:
		return slug.Unique(ctx, slug.Generate(p.source), exists)
	}
}

// planSlug applies the slug lifecycle. On create, current is empty. A
// submitted slug that differs from the stored one counts as an edit and
// wins; otherwise a changed source regenerates it.
func planSlug(submitted, source, currentSlug, currentSource string, creating bool) slugPlan {
	submitted = slug.Generate(submitted)
	if creating {
		return slugPlan{explicit: submitted, source: source}
	}
	if submitted != "" && submitted != currentSlug {
		return slugPlan{explicit: submitted}
	}
	if strings.TrimSpace(source) != strings.TrimSpace(currentSource) {
		return slugPlan{source: source}
	}
	return slugPlan{keep: currentSlug}
}

// withSlugRetry runs write until it succeeds, fails with something other
// than a unique violation, or exhausts maxSlugAttempts. Explicit slugs are
// never retried because the user chose them.
func withSlugRetry(ctx context.Context, plan slugPlan, write func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		err = write(attempt)
		if err == nil || !database.IsUniqueViolation(err) {
			return err
		}
		if plan.explicit != "" {
			return &ValidationError{Fields: map[string]string{"slug": slugTaken}}
		}
		slog.Warn("slug collided on write, retrying", "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("slug still taken after %d attempts: %w", maxSlugAttempts, err)
}

// CategoryInput is the editable state of a category.
type CategoryInput struct {
	Name     string
	Slug     string
	IsActive bool
}

func (in CategoryInput) validate() error {
	v := validation{}
	v.required("name", "name", in.Name)
	v.maxLen("name", "name", in.Name, maxNameLength)
	v.maxLen("slug", "slug", in.Slug, maxNameLength)
	return v.err()
}

// CreateCategory inserts a category, deriving its slug from the name when
// none is given.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (c *models.Category, err error) {
	ctx, span := s.start(ctx, "CreateCategory")
	defer func() { finish(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	plan := planSlug(in.Slug, name, "", "", true)

	c = &models.Category{Name: name, IsActive: in.IsActive}
	err = withSlugRetry(ctx, plan, func(int) error {
		return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
			cs := s.categories.WithTx(tx)
			sl, err := plan.resolve(ctx, func(ctx context.Context, cand string) (bool, error) {
				return cs.SlugExists(ctx, cand, 0)
			})
			if err != nil {
				return err
			}
			c.Slug = sl
			return cs.Create(ctx, c)
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("category.id", c.ID))
	s.invalidate(ctx)
	slog.Info("category created", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// UpdateCategory saves a category. A name change regenerates the slug
// unless the slug itself was edited in the same change.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (c *models.Category, err error) {
	ctx, span := s.start(ctx, "UpdateCategory", attribute.Int64("category.id", id))
	defer func() { finish(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err = s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(in.Name)
	plan := planSlug(in.Slug, name, c.Slug, c.Name, false)
	c.Name, c.IsActive = name, in.IsActive

	err = withSlugRetry(ctx, plan, func(int) error {
		return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
			cs := s.categories.WithTx(tx)
			sl, err := plan.resolve(ctx, func(ctx context.Context, cand string) (bool, error) {
				return cs.SlugExists(ctx, cand, id)
			})
			if err != nil {
				return err
			}
			c.Slug = sl
			return cs.Update(ctx, c)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	slog.Info("category updated", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// SetCategoryActive toggles a category.
func (s *Service) SetCategoryActive(ctx context.Context, id int64, active bool) (c *models.Category, err error) {
	ctx, span := s.start(ctx, "SetCategoryActive", attribute.Int64("category.id", id))
	defer func() { finish(span, err) }()

	c, err = s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if err := s.categories.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	c.IsActive = active
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory removes a category together with its posts, their
// slides, and every attached file.
func (s *Service) DeleteCategory(ctx context.Context, id int64) (err error) {
	ctx, span := s.start(ctx, "DeleteCategory", attribute.Int64("category.id", id))
	defer func() { finish(span, err) }()

	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	postIDs, err := s.posts.IDsByCategory(ctx, id)
	if err != nil {
		return err
	}
	slideIDs, err := s.slides.IDsByPosts(ctx, postIDs)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.removeMedia(ctx, postIDs, slideIDs)

	s.invalidate(ctx)
	slog.Info("category deleted", "id", id, "posts", len(postIDs))
	return nil
}

// removeMedia deletes files owned by removed posts and slides. Media rows
// have no foreign key, so this runs after the owning rows are gone.
func (s *Service) removeMedia(ctx context.Context, postIDs, slideIDs []int64) {
	if s.library == nil {
		return
	}
	if err := s.library.Remove(ctx, models.MediaOwnerPost, postIDs); err != nil {
		slog.Warn("post media cleanup failed", "error", err)
	}
	if err := s.library.Remove(ctx, models.MediaOwnerSlide, slideIDs); err != nil {
		slog.Warn("slide media cleanup failed", "error", err)
	}
}
