// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package legacy moves slides stored inline in a post's content JSON into
// the slides table.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"webstories/internal/database"
	"webstories/internal/models"
	"webstories/internal/store"
)

// Result counts what one Import run did.
type Result struct {
	Imported int // posts whose slides were created
	Slides   int // slide rows created
	Skipped  int // posts left untouched
	Failed   int // posts rolled back after an error
}

// document is the legacy content column.
type document struct {
	Slides []slide `json:"slides"`
}

type slide struct {
	SlideTitle   string `json:"slide_title"`
	TextActive   flag   `json:"text_active"`
	ZoomEffect   flag   `json:"zoom_effect"`
	TextPosition string `json:"text_position"`
	Content      string `json:"content"`
}

// flag decodes toggles saved as booleans, numbers, or strings.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = false
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil && s != "" {
			v = s == "on" || s == "yes"
		}
		*f = flag(v)
	default:
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		switch t := v.(type) {
		case bool:
			*f = flag(t)
		case float64:
			*f = t != 0
		default:
			return fmt.Errorf("toggle: unexpected value %s", b)
		}
	}
	return nil
}

// Import creates slide rows for every post whose content column holds a
// slides array, then clears the column. Posts that already have slides
// are skipped, so running it twice is safe. Each post is imported in its
// own transaction; a failing post is logged and the run continues.
func Import(ctx context.Context, db *database.DB) (Result, error) {
	var res Result

	postStore := store.NewPostStore(db)
	slideStore := store.NewSlideStore(db)

	posts, err := postStore.ListWithLegacyContent(ctx)
	if err != nil {
		return res, err
	}

	for _, p := range posts {
		slides, ok := parse(p)
		if !ok {
			res.Skipped++
			continue
		}

		created := 0
		err := db.InTx(ctx, func(tx *sqlx.Tx) error {
			txSlides := slideStore.WithTx(tx)
			existing, err := txSlides.CountByPost(ctx, p.ID)
			if err != nil {
				return err
			}
			if existing > 0 {
				return nil
			}
			for _, in := range slides {
				sl := toSlide(p.ID, in)
				if err := txSlides.Create(ctx, &sl); err != nil {
					return err
				}
				created++
			}
			return postStore.WithTx(tx).ClearLegacyContent(ctx, p.ID)
		})
		if err != nil {
			slog.Error("legacy import failed", "post_id", p.ID, "error", err)
			res.Failed++
			continue
		}
		if created == 0 {
			slog.Info("post already has slides, skipping", "post_id", p.ID)
			res.Skipped++
			continue
		}

		slog.Info("imported legacy slides", "post_id", p.ID, "slides", created)
		res.Imported++
		res.Slides += created
	}
	return res, nil
}

// parse decodes the content of p. It reports false when the content is
// not a document with at least one slide.
func parse(p models.Post) ([]slide, bool) {
	if p.LegacyContent == nil {
		return nil, false
	}
	var doc document
	if err := json.Unmarshal([]byte(*p.LegacyContent), &doc); err != nil {
		slog.Warn("legacy content is not valid JSON", "post_id", p.ID, "error", err)
		return nil, false
	}
	if len(doc.Slides) == 0 {
		return nil, false
	}
	return doc.Slides, true
}

func toSlide(postID int64, in slide) models.Slide {
	sl := models.Slide{
		PostID:       postID,
		TextActive:   bool(in.TextActive),
		ZoomEffect:   bool(in.ZoomEffect),
		TextPosition: models.TextPosition(strings.ToLower(strings.TrimSpace(in.TextPosition))),
	}
	if !sl.TextPosition.Valid() {
		sl.TextPosition = models.TextPositionCenter
	}
	if t := strings.TrimSpace(in.SlideTitle); t != "" {
		sl.Title = &t
	}
	if in.Content != "" {
		c := in.Content
		sl.Content = &c
	}
	return sl
}
