// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media attaches uploaded images to posts and slides. It validates
// the upload, renders every registered conversion, writes the files to a
// storage disk, and records the rows.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"webstories/internal/imaging"
	"webstories/internal/models"
	"webstories/internal/storage"
	"webstories/internal/store"
)

// Library manages single-file media collections.
type Library struct {
	disk  storage.Disk
	store *store.MediaStore
}

// NewLibrary returns a Library writing to disk.
func NewLibrary(disk storage.Disk, mediaStore *store.MediaStore) *Library {
	return &Library{disk: disk, store: mediaStore}
}

// Owner identifies the record a file is attached to.
type Owner struct {
	Type string
	ID   int64
}

// URLs are the public addresses of an image and its conversions.
type URLs struct {
	Original string `json:"original"`
	Story    string `json:"story"`
	Thumb    string `json:"thumb"`
}

// Attach stores data as the only file in owner's collection, replacing any
// previous file. Nothing is written when the upload fails validation.
func (l *Library) Attach(ctx context.Context, owner Owner, collection, filename string, data []byte) (*models.Media, error) {
	info, err := imaging.Inspect(data)
	if err != nil {
		return nil, err
	}
	conversions, err := imaging.Generate(data, imaging.Conversions)
	if err != nil {
		return nil, fmt.Errorf("generate conversions: %w", err)
	}

	previous, err := l.store.ListAll(ctx, owner.Type, []int64{owner.ID})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	dir := fmt.Sprintf("%ss/%d", owner.Type, owner.ID)
	m := &models.Media{
		ModelType:    owner.Type,
		ModelID:      owner.ID,
		Collection:   collection,
		FileName:     id + info.Extension,
		OriginalName: cleanName(filename),
		MimeType:     info.MimeType,
		SizeBytes:    int64(len(data)),
		Width:        info.Width,
		Height:       info.Height,
		Disk:         l.disk.Name(),
		Path:         dir + "/" + id + info.Extension,
	}

	uploaded := []string{}
	cleanup := func() {
		for _, key := range uploaded {
			if err := l.disk.Delete(context.WithoutCancel(ctx), key); err != nil {
				slog.Warn("media cleanup failed", "error", err, "key", key)
			}
		}
	}

	if err := l.disk.Upload(ctx, m.Path, m.MimeType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, err
	}
	uploaded = append(uploaded, m.Path)

	for _, c := range conversions {
		key := fmt.Sprintf("%s/%s-%s.jpg", dir, id, c.Name)
		if err := l.disk.Upload(ctx, key, c.MimeType, bytes.NewReader(c.Data), int64(len(c.Data))); err != nil {
			cleanup()
			return nil, err
		}
		uploaded = append(uploaded, key)
		m.Conversions = append(m.Conversions, models.MediaConversion{
			Name:      c.Name,
			Width:     c.Width,
			Height:    c.Height,
			MimeType:  c.MimeType,
			SizeBytes: int64(len(c.Data)),
			Path:      key,
		})
	}

	if err := l.store.Create(ctx, m); err != nil {
		cleanup()
		return nil, err
	}

	var stale []models.Media
	for _, p := range previous {
		if p.Collection == collection {
			stale = append(stale, p)
		}
	}
	l.purge(ctx, stale)

	slog.Info("media attached", "owner", owner.Type, "owner_id", owner.ID,
		"collection", collection, "media_id", m.ID, "size", m.HumanSize())
	return m, nil
}

// Remove deletes every file attached to the given owners.
func (l *Library) Remove(ctx context.Context, ownerType string, ids []int64) error {
	items, err := l.store.ListAll(ctx, ownerType, ids)
	if err != nil {
		return err
	}
	l.purge(ctx, items)
	return nil
}

// purge deletes rows first, then files on a best-effort basis.
func (l *Library) purge(ctx context.Context, items []models.Media) {
	if len(items) == 0 {
		return
	}
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	if err := l.store.Delete(ctx, ids...); err != nil {
		slog.Error("media row delete failed", "error", err, "ids", ids)
		return
	}
	for _, m := range items {
		keys := []string{m.Path}
		for _, c := range m.Conversions {
			keys = append(keys, c.Path)
		}
		for _, key := range keys {
			if err := l.disk.Delete(ctx, key); err != nil {
				slog.Warn("media file delete failed", "error", err, "key", key)
			}
		}
	}
}

// URLs returns the original and conversion URLs of m. A missing conversion
// falls back to the original. A nil m yields empty URLs.
func (l *Library) URLs(m *models.Media) URLs {
	if m == nil {
		return URLs{}
	}
	original := l.disk.FileURL(m.Path)
	out := URLs{Original: original, Story: original, Thumb: original}
	if c := m.Conversion("story"); c != nil {
		out.Story = l.disk.FileURL(c.Path)
	}
	if c := m.Conversion("thumb"); c != nil {
		out.Thumb = l.disk.FileURL(c.Path)
	}
	return out
}

// cleanName keeps the base of an uploaded file name for display.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
