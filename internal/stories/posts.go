// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package stories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"webstories/internal/models"
	"webstories/internal/seo"
	"webstories/internal/store"
)

const (
	maxMetaTitleLength       = seo.MaxTitleLength
	maxMetaDescriptionLength = seo.MaxDescriptionLength
	maxCTALinkLength         = 255
)

// PostInput is the editable state of a post as submitted by the wizard.
type PostInput struct {
	CategoryID      *int64
	Title           string
	Slug            string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    []string
	IsActive        bool

	// Slides, when non-nil, replaces the post's slides: entries with an ID
	// update that slide, entries without one are created, and slides left
	// out are deleted. Order of the slice becomes display order.
	Slides []SlideInput
}

func (in PostInput) validate() error {
	v := validation{}
	v.required("title", "title", in.Title)
	v.maxLen("title", "title", in.Title, maxNameLength)
	v.maxLen("slug", "slug", in.Slug, maxNameLength)
	v.maxLen("meta_title", "meta title", in.MetaTitle, maxMetaTitleLength)
	v.maxLen("meta_description", "meta description", in.MetaDescription, maxMetaDescriptionLength)
	for i, sl := range in.Slides {
		sl.check(v, fmt.Sprintf("slides.%d.", i))
	}
	return v.err()
}

// apply copies the input onto p. The slug is handled separately.
func (in PostInput) apply(p *models.Post) {
	p.CategoryID = in.CategoryID
	p.Title = strings.TrimSpace(in.Title)
	p.MetaTitle = optional(in.MetaTitle)
	p.MetaDescription = optional(in.MetaDescription)
	p.MetaKeywords = models.ParseKeywords(strings.Join(in.MetaKeywords, ","))
	p.IsActive = in.IsActive
}

// optional returns nil for blank strings.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	c, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return &ValidationError{Fields: map[string]string{"category_id": "The selected category is invalid."}}
	}
	return nil
}

// CreatePost inserts a post and its inline slides in one transaction.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (p *models.Post, err error) {
	ctx, span := s.start(ctx, "CreatePost")
	defer func() { finish(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p = &models.Post{}
	in.apply(p)
	plan := planSlug(in.Slug, p.Title, "", "", true)

	err = withSlugRetry(ctx, plan, func(int) error {
		p.Slides = nil
		return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
			ps := s.posts.WithTx(tx)
			sl, err := plan.resolve(ctx, func(ctx context.Context, cand string) (bool, error) {
				return ps.SlugExists(ctx, cand, 0)
			})
			if err != nil {
				return err
			}
			p.Slug = sl
			if err := ps.Create(ctx, p); err != nil {
				return err
			}
			slides := s.slides.WithTx(tx)
			for _, si := range in.Slides {
				slide := si.build(p.ID)
				if err := slides.Create(ctx, slide); err != nil {
					return err
				}
				p.Slides = append(p.Slides, *slide)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("post.id", p.ID), attribute.Int("post.slides", len(p.Slides)))
	s.invalidate(ctx)
	slog.Info("post created", "id", p.ID, "slug", p.Slug, "slides", len(p.Slides))
	return p, nil
}

// UpdatePost saves a post. A title change regenerates the slug unless the
// slug itself was edited in the same change.
func (s *Service) UpdatePost(ctx context.Context, id int64, in PostInput) (p *models.Post, err error) {
	ctx, span := s.start(ctx, "UpdatePost", attribute.Int64("post.id", id))
	defer func() { finish(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err = s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	plan := planSlug(in.Slug, strings.TrimSpace(in.Title), p.Slug, p.Title, false)
	in.apply(p)

	var removed []int64
	err = withSlugRetry(ctx, plan, func(int) error {
		removed = nil
		return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
			ps := s.posts.WithTx(tx)
			sl, err := plan.resolve(ctx, func(ctx context.Context, cand string) (bool, error) {
				return ps.SlugExists(ctx, cand, id)
			})
			if err != nil {
				return err
			}
			p.Slug = sl
			if err := ps.Update(ctx, p); err != nil {
				return err
			}
			if in.Slides == nil {
				return nil
			}
			removed, err = syncSlides(ctx, s.slides.WithTx(tx), id, in.Slides)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.removeMedia(ctx, nil, removed)

	s.invalidate(ctx)
	slog.Info("post updated", "id", p.ID, "slug", p.Slug)
	return s.GetPost(ctx, id)
}

// syncSlides makes the post's slides match inputs and returns the IDs of
// the slides it deleted.
func syncSlides(ctx context.Context, slides *store.SlideStore, postID int64, inputs []SlideInput) ([]int64, error) {
	existing, err := slides.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(existing))
	for _, sl := range existing {
		known[sl.ID] = true
	}

	order := make([]int64, 0, len(inputs))
	kept := make(map[int64]bool, len(inputs))
	for _, in := range inputs {
		slide := in.build(postID)
		if in.ID != 0 && known[in.ID] {
			slide.ID = in.ID
			if err := slides.Update(ctx, slide); err != nil {
				return nil, err
			}
		} else if err := slides.Create(ctx, slide); err != nil {
			return nil, err
		}
		kept[slide.ID] = true
		order = append(order, slide.ID)
	}

	var removed []int64
	for _, sl := range existing {
		if kept[sl.ID] {
			continue
		}
		if err := slides.Delete(ctx, sl.ID); err != nil {
			return nil, err
		}
		removed = append(removed, sl.ID)
	}
	if err := slides.Reorder(ctx, postID, order); err != nil {
		return nil, err
	}
	return removed, nil
}

// SetPostActive toggles one post.
func (s *Service) SetPostActive(ctx context.Context, id int64, active bool) (p *models.Post, err error) {
	ctx, span := s.start(ctx, "SetPostActive", attribute.Int64("post.id", id))
	defer func() { finish(span, err) }()

	n, err := s.posts.SetActive(ctx, []int64{id}, active)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	s.invalidate(ctx)
	return s.posts.FindByID(ctx, id)
}

// Publish activates the given posts and returns how many changed.
func (s *Service) Publish(ctx context.Context, ids []int64) (int64, error) {
	return s.setActive(ctx, "Publish", ids, true)
}

// Unpublish deactivates the given posts and returns how many changed.
func (s *Service) Unpublish(ctx context.Context, ids []int64) (int64, error) {
	return s.setActive(ctx, "Unpublish", ids, false)
}

func (s *Service) setActive(ctx context.Context, op string, ids []int64, active bool) (n int64, err error) {
	ctx, span := s.start(ctx, op, attribute.Int("post.count", len(ids)))
	defer func() { finish(span, err) }()

	n, err = s.posts.SetActive(ctx, ids, active)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	slog.Info("posts status changed", "active", active, "requested", len(ids), "changed", n)
	return n, nil
}

// DeletePost removes one post, its slides, and every attached file.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	n, err := s.BulkDelete(ctx, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the given posts and returns how many existed.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) (n int64, err error) {
	ctx, span := s.start(ctx, "BulkDelete", attribute.Int("post.count", len(ids)))
	defer func() { finish(span, err) }()

	if len(ids) == 0 {
		return 0, nil
	}
	slideIDs, err := s.slides.IDsByPosts(ctx, ids)
	if err != nil {
		return 0, err
	}
	n, err = s.posts.Delete(ctx, ids...)
	if err != nil {
		return 0, err
	}
	s.removeMedia(ctx, ids, slideIDs)
	if n > 0 {
		s.invalidate(ctx)
	}
	slog.Info("posts deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// GenerateSEO fills empty meta fields of the given posts from their title,
// category, and slides. Filled fields are never overwritten. It returns
// how many posts changed.
func (s *Service) GenerateSEO(ctx context.Context, ids []int64) (changed int, err error) {
	ctx, span := s.start(ctx, "GenerateSEO", attribute.Int("post.count", len(ids)))
	defer func() { finish(span, err) }()

	posts, err := s.posts.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if err := s.hydrate(ctx, posts); err != nil {
		return 0, err
	}

	for i := range posts {
		p := &posts[i]
		fields, ok := seo.Fill(seo.Fields{
			MetaTitle:       p.MetaTitle,
			MetaDescription: p.MetaDescription,
			MetaKeywords:    p.MetaKeywords,
		}, seoInput(p))
		if !ok {
			continue
		}
		p.MetaTitle, p.MetaDescription = fields.MetaTitle, fields.MetaDescription
		p.MetaKeywords = fields.MetaKeywords
		if err := s.posts.Update(ctx, p); err != nil {
			return changed, err
		}
		changed++
	}

	if changed > 0 {
		s.invalidate(ctx)
	}
	slog.Info("seo generated", "requested", len(ids), "changed", changed)
	return changed, nil
}

func seoInput(p *models.Post) seo.Input {
	in := seo.Input{Title: p.Title}
	if p.Category != nil {
		in.Category = p.Category.Name
	}
	if len(p.Slides) > 0 && p.Slides[0].Content != nil {
		in.FirstSlide = *p.Slides[0].Content
	}
	if excerpt := p.Excerpt(maxMetaDescriptionLength); excerpt != models.NoExcerpt {
		in.Excerpt = excerpt
	}
	return in
}
