// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"webstories/internal/seo"
)

// DefaultExcerptLimit is the character limit used by Post.Excerpt callers
// that have no better value.
const DefaultExcerptLimit = 150

// NoExcerpt is the excerpt of a story without any slide text.
const NoExcerpt = "No content available."

// Post is a web story: an ordered set of slides with a cover image,
// SEO metadata, and an optional category.
type Post struct {
	ID              int64     `db:"id" json:"id"`
	CategoryID      *int64    `db:"category_id" json:"category_id"`
	Title           string    `db:"title" json:"title"`
	Slug            string    `db:"slug" json:"slug"`
	MetaTitle       *string   `db:"meta_title" json:"meta_title"`
	MetaDescription *string   `db:"meta_description" json:"meta_description"`
	MetaKeywords    Keywords  `db:"meta_keywords" json:"meta_keywords"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	LegacyContent   *string   `db:"content" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	// Relations populated by the stories service.
	Category *Category `db:"-" json:"category,omitempty"`
	Slides   []Slide   `db:"-" json:"slides,omitempty"`
	Cover    *Media    `db:"-" json:"cover,omitempty"`
}

// SlidesCount returns the number of loaded slides.
func (p *Post) SlidesCount() int {
	return len(p.Slides)
}

// HasZoomEffects reports whether any loaded slide uses the zoom effect.
func (p *Post) HasZoomEffects() bool {
	for _, s := range p.Slides {
		if s.ZoomEffect {
			return true
		}
	}
	return false
}

// HasCTA reports whether any loaded slide renders a CTA button.
func (p *Post) HasCTA() bool {
	for _, s := range p.Slides {
		if s.HasCTAButton() {
			return true
		}
	}
	return false
}

// Excerpt returns the stripped text of the first text-enabled slide,
// limited to limit characters.
func (p *Post) Excerpt(limit int) string {
	for _, s := range p.Slides {
		if !s.TextActive || s.Content == nil {
			continue
		}
		if text := seo.StripTags(*s.Content); text != "" {
			return seo.Limit(text, limit)
		}
	}
	return NoExcerpt
}

// PreviewImage returns the first slide image, falling back to the cover.
// Used for the thumbnail column in the admin table.
func (p *Post) PreviewImage() *Media {
	for _, s := range p.Slides {
		if s.Image != nil {
			return s.Image
		}
	}
	return p.Cover
}

// Keywords is a list of SEO keywords stored as a JSON array in a text
// column. Comma-separated legacy values are accepted on scan.
type Keywords []string

// ParseKeywords splits comma-separated input into trimmed, de-duplicated
// keywords, preserving order.
func ParseKeywords(s string) Keywords {
	seen := make(map[string]bool)
	var out Keywords
	for _, part := range strings.Split(s, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		out = append(out, kw)
	}
	return out
}

// String joins the keywords for display in a text input.
func (k Keywords) String() string {
	return strings.Join(k, ", ")
}

// Value implements driver.Valuer. An empty list is stored as NULL.
func (k Keywords) Value() (driver.Value, error) {
	if len(k) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (k *Keywords) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*k = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("scan keywords: unsupported type %T", src)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*k = nil
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return fmt.Errorf("scan keywords: %w", err)
		}
		*k = list
		return nil
	}
	*k = ParseKeywords(raw)
	return nil
}
