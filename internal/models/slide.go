// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"net/url"
	"strings"
	"time"
)

// TextPosition controls where slide text is laid out.
type TextPosition string

const (
	TextPositionCenter TextPosition = "center"
	TextPositionLeft   TextPosition = "left"
	TextPositionRight  TextPosition = "right"
	TextPositionBottom TextPosition = "bottom"
)

// TextPositions lists the accepted positions in display order.
var TextPositions = []TextPosition{
	TextPositionCenter,
	TextPositionLeft,
	TextPositionRight,
	TextPositionBottom,
}

// Valid reports whether p is one of the known positions.
func (p TextPosition) Valid() bool {
	for _, known := range TextPositions {
		if p == known {
			return true
		}
	}
	return false
}

// ctaButtonText is the label rendered on every CTA button.
const ctaButtonText = "Call to Action"

// Slide is one screen of a web story.
type Slide struct {
	ID            int64        `db:"id" json:"id"`
	PostID        int64        `db:"post_id" json:"post_id"`
	Title         *string      `db:"title" json:"title"`
	TextActive    bool         `db:"text_active" json:"text_active"`
	ZoomEffect    bool         `db:"zoom_effect" json:"zoom_effect"`
	TextPosition  TextPosition `db:"text_position" json:"text_position"`
	Content       *string      `db:"content" json:"content"`
	CTALink       *string      `db:"cta_link" json:"cta_link"`
	CTAButtonShow bool         `db:"cta_button_show" json:"cta_button_show"`
	Position      int          `db:"position" json:"position"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`

	// Image is populated by the stories service.
	Image *Media `db:"-" json:"image,omitempty"`
}

// HasCTAButton reports whether the CTA button should render: the toggle
// is on and a link is present.
func (s *Slide) HasCTAButton() bool {
	return s.CTAButtonShow && s.CTALink != nil && strings.TrimSpace(*s.CTALink) != ""
}

// IsValidCTALink reports whether the link parses as an absolute http(s)
// URL. It is a display hint only and never blocks saving.
func (s *Slide) IsValidCTALink() bool {
	if s.CTALink == nil {
		return false
	}
	return IsValidURL(*s.CTALink)
}

// CTAButtonText returns the label for the CTA button.
func (s *Slide) CTAButtonText() string {
	return ctaButtonText
}

// IsValidURL reports whether raw is an absolute http or https URL with a host.
func IsValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
