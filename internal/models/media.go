// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// Owner types for polymorphic media rows.
const (
	MediaOwnerPost  = "post"
	MediaOwnerSlide = "slide"
)

// Media collections. Each collection holds at most one file per owner.
const (
	CollectionCover      = "cover"
	CollectionSlideImage = "slide_image"
)

// Media is an uploaded file attached to a post or slide. The file and its
// conversions live on a storage disk; this row records where.
type Media struct {
	ID           int64     `db:"id" json:"id"`
	ModelType    string    `db:"model_type" json:"model_type"`
	ModelID      int64     `db:"model_id" json:"model_id"`
	Collection   string    `db:"collection" json:"collection"`
	FileName     string    `db:"file_name" json:"file_name"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	Width        int       `db:"width" json:"width"`
	Height       int       `db:"height" json:"height"`
	Disk         string    `db:"disk" json:"disk"`
	Path         string    `db:"path" json:"path"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Conversions []MediaConversion `db:"-" json:"conversions,omitempty"`
}

// MediaConversion is a resized rendition of a media file.
type MediaConversion struct {
	ID        int64     `db:"id" json:"id"`
	MediaID   int64     `db:"media_id" json:"media_id"`
	Name      string    `db:"name" json:"name"`
	Width     int       `db:"width" json:"width"`
	Height    int       `db:"height" json:"height"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	Path      string    `db:"path" json:"path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Conversion returns the named conversion, or nil.
func (m *Media) Conversion(name string) *MediaConversion {
	for i := range m.Conversions {
		if m.Conversions[i].Name == name {
			return &m.Conversions[i]
		}
	}
	return nil
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.MimeType, "image/")
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.SizeBytes)/float64(mb))
	case m.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.SizeBytes)
	}
}
