// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package stories

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"webstories/internal/media"
	"webstories/internal/models"
)

// SlideInput is the editable state of one slide.
type SlideInput struct {
	// ID identifies an existing slide when syncing through UpdatePost.
	ID            int64
	Title         string
	TextActive    bool
	ZoomEffect    bool
	TextPosition  models.TextPosition
	Content       string
	CTALink       string
	CTAButtonShow bool
}

// check validates the slide, prefixing field names with prefix. An invalid
// CTA link is not an error; it is only flagged when displayed.
func (in SlideInput) check(v validation, prefix string) {
	v.maxLen(prefix+"title", "slide title", in.Title, maxNameLength)
	v.maxLen(prefix+"cta_link", "CTA link", in.CTALink, maxCTALinkLength)
	if in.TextPosition != "" && !in.TextPosition.Valid() {
		v.add(prefix+"text_position", "The selected text position is invalid.")
	}
}

// build returns the slide row for postID. Disabled text keeps its content
// so toggling back does not lose it.
func (in SlideInput) build(postID int64) *models.Slide {
	pos := in.TextPosition
	if pos == "" {
		pos = models.TextPositionCenter
	}
	content := strings.TrimSpace(in.Content)
	sl := &models.Slide{
		PostID:        postID,
		Title:         optional(in.Title),
		TextActive:    in.TextActive,
		ZoomEffect:    in.ZoomEffect,
		TextPosition:  pos,
		CTALink:       optional(in.CTALink),
		CTAButtonShow: in.CTAButtonShow,
	}
	if content != "" {
		sl.Content = &content
	}
	return sl
}

func (s *Service) requirePost(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// AddSlide appends a slide to a post.
func (s *Service) AddSlide(ctx context.Context, postID int64, in SlideInput) (sl *models.Slide, err error) {
	ctx, span := s.start(ctx, "AddSlide", attribute.Int64("post.id", postID))
	defer func() { finish(span, err) }()

	v := validation{}
	in.check(v, "")
	if err := v.err(); err != nil {
		return nil, err
	}
	if _, err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	sl = in.build(postID)
	if err := s.slides.Create(ctx, sl); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("slide.id", sl.ID))
	s.invalidate(ctx)
	slog.Info("slide added", "post_id", postID, "slide_id", sl.ID, "position", sl.Position)
	return sl, nil
}

// UpdateSlide saves a slide. Its position is kept.
func (s *Service) UpdateSlide(ctx context.Context, id int64, in SlideInput) (sl *models.Slide, err error) {
	ctx, span := s.start(ctx, "UpdateSlide", attribute.Int64("slide.id", id))
	defer func() { finish(span, err) }()

	v := validation{}
	in.check(v, "")
	if err := v.err(); err != nil {
		return nil, err
	}
	current, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	sl = in.build(current.PostID)
	sl.ID, sl.Position, sl.CreatedAt = current.ID, current.Position, current.CreatedAt
	if err := s.slides.Update(ctx, sl); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return sl, nil
}

// DuplicateSlide copies a slide and places the copy right after it. The
// image is not copied.
func (s *Service) DuplicateSlide(ctx context.Context, id int64) (sl *models.Slide, err error) {
	ctx, span := s.start(ctx, "DuplicateSlide", attribute.Int64("slide.id", id))
	defer func() { finish(span, err) }()

	src, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNotFound
	}

	sl = &models.Slide{
		PostID:        src.PostID,
		Title:         src.Title,
		TextActive:    src.TextActive,
		ZoomEffect:    src.ZoomEffect,
		TextPosition:  src.TextPosition,
		Content:       src.Content,
		CTALink:       src.CTALink,
		CTAButtonShow: src.CTAButtonShow,
	}
	if err := s.slides.Create(ctx, sl); err != nil {
		return nil, err
	}

	existing, err := s.slides.ListByPost(ctx, src.PostID)
	if err != nil {
		return nil, err
	}
	order := make([]int64, 0, len(existing))
	for _, e := range existing {
		if e.ID == sl.ID {
			continue
		}
		order = append(order, e.ID)
		if e.ID == src.ID {
			sl.Position = len(order)
			order = append(order, sl.ID)
		}
	}
	if err := s.slides.Reorder(ctx, src.PostID, order); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("slide.copy_id", sl.ID))
	s.invalidate(ctx)
	slog.Info("slide duplicated", "post_id", src.PostID, "slide_id", id, "copy_id", sl.ID, "position", sl.Position)
	return sl, nil
}

// DeleteSlide removes a slide and its image.
func (s *Service) DeleteSlide(ctx context.Context, id int64) (err error) {
	ctx, span := s.start(ctx, "DeleteSlide", attribute.Int64("slide.id", id))
	defer func() { finish(span, err) }()

	current, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	if err := s.slides.Delete(ctx, id); err != nil {
		return err
	}
	s.removeMedia(ctx, nil, []int64{id})
	s.invalidate(ctx)
	slog.Info("slide deleted", "post_id", current.PostID, "slide_id", id)
	return nil
}

// ReorderSlides sets the display order of a post's slides. ids must list
// every slide of the post exactly once.
func (s *Service) ReorderSlides(ctx context.Context, postID int64, ids []int64) (err error) {
	ctx, span := s.start(ctx, "ReorderSlides", attribute.Int64("post.id", postID))
	defer func() { finish(span, err) }()

	if _, err := s.requirePost(ctx, postID); err != nil {
		return err
	}
	existing, err := s.slides.ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	if !sameSet(existing, ids) {
		return &ValidationError{Fields: map[string]string{"order": "The slide order must list every slide of the story once."}}
	}
	if err := s.slides.Reorder(ctx, postID, ids); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func sameSet(slides []models.Slide, ids []int64) bool {
	if len(slides) != len(ids) {
		return false
	}
	want := make(map[int64]bool, len(slides))
	for _, sl := range slides {
		want[sl.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return true
}

// AttachCover replaces the cover image of a post.
func (s *Service) AttachCover(ctx context.Context, postID int64, filename string, data []byte) (m *models.Media, err error) {
	ctx, span := s.start(ctx, "AttachCover", attribute.Int64("post.id", postID))
	defer func() { finish(span, err) }()

	if _, err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	m, err = s.library.Attach(ctx, media.Owner{Type: models.MediaOwnerPost, ID: postID},
		models.CollectionCover, filename, data)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return m, nil
}

// AttachSlideImage replaces the image of a slide.
func (s *Service) AttachSlideImage(ctx context.Context, slideID int64, filename string, data []byte) (m *models.Media, err error) {
	ctx, span := s.start(ctx, "AttachSlideImage", attribute.Int64("slide.id", slideID))
	defer func() { finish(span, err) }()

	sl, err := s.slides.FindByID(ctx, slideID)
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, ErrNotFound
	}
	m, err = s.library.Attach(ctx, media.Owner{Type: models.MediaOwnerSlide, ID: slideID},
		models.CollectionSlideImage, filename, data)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return m, nil
}
