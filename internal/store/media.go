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

// MediaStore handles all media-related database operations.
type MediaStore struct {
	base
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *database.DB) *MediaStore {
	return &MediaStore{base: newBase(db)}
}

// WithTx returns a MediaStore that runs inside tx.
func (s *MediaStore) WithTx(tx *sqlx.Tx) *MediaStore {
	return &MediaStore{base: s.base.withTx(tx)}
}

var mediaColumns = []string{
	"id", "model_type", "model_id", "collection", "file_name", "original_name",
	"mime_type", "size_bytes", "width", "height", "disk", "path", "created_at",
}

var conversionColumns = []string{
	"id", "media_id", "name", "width", "height", "mime_type", "size_bytes", "path", "created_at",
}

// Create inserts m and its conversions, setting IDs and timestamps.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) error {
	ts := now()
	q := s.sb.Insert("media").
		Columns("model_type", "model_id", "collection", "file_name", "original_name",
			"mime_type", "size_bytes", "width", "height", "disk", "path", "created_at").
		Values(m.ModelType, m.ModelID, m.Collection, m.FileName, m.OriginalName,
			m.MimeType, m.SizeBytes, m.Width, m.Height, m.Disk, m.Path, ts).
		Suffix("RETURNING id")
	if _, err := s.get(ctx, &m.ID, q); err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	m.CreatedAt = ts

	for i := range m.Conversions {
		c := &m.Conversions[i]
		c.MediaID = m.ID
		q := s.sb.Insert("media_conversions").
			Columns("media_id", "name", "width", "height", "mime_type", "size_bytes", "path", "created_at").
			Values(c.MediaID, c.Name, c.Width, c.Height, c.MimeType, c.SizeBytes, c.Path, ts).
			Suffix("RETURNING id")
		if _, err := s.get(ctx, &c.ID, q); err != nil {
			return fmt.Errorf("create media conversion %s: %w", c.Name, err)
		}
		c.CreatedAt = ts
	}
	return nil
}

// FindFirst returns the newest media row for an owner and collection, with
// its conversions. Returns nil if none exists.
func (s *MediaStore) FindFirst(ctx context.Context, modelType string, modelID int64, collection string) (*models.Media, error) {
	items, err := s.list(ctx, modelType, []int64{modelID}, collection)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	m := items[len(items)-1]
	return &m, nil
}

// ListFor returns media of the given owners keyed by owner ID. When an
// owner holds several files in collection, the newest wins.
func (s *MediaStore) ListFor(ctx context.Context, modelType string, modelIDs []int64, collection string) (map[int64]*models.Media, error) {
	out := make(map[int64]*models.Media, len(modelIDs))
	if len(modelIDs) == 0 {
		return out, nil
	}
	items, err := s.list(ctx, modelType, modelIDs, collection)
	if err != nil {
		return nil, err
	}
	for i := range items {
		out[items[i].ModelID] = &items[i]
	}
	return out, nil
}

// ListAll returns every media row of the given owners across all
// collections, oldest first.
func (s *MediaStore) ListAll(ctx context.Context, modelType string, modelIDs []int64) ([]models.Media, error) {
	if len(modelIDs) == 0 {
		return nil, nil
	}
	return s.list(ctx, modelType, modelIDs, "")
}

// list selects media ordered by id and attaches conversions. An empty
// collection matches every collection.
func (s *MediaStore) list(ctx context.Context, modelType string, modelIDs []int64, collection string) ([]models.Media, error) {
	where := sq.Eq{"model_type": modelType, "model_id": modelIDs}
	if collection != "" {
		where["collection"] = collection
	}
	var items []models.Media
	if err := s.selectAll(ctx, &items, s.sb.Select(mediaColumns...).From("media").Where(where).OrderBy("id")); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	var convs []models.MediaConversion
	q := s.sb.Select(conversionColumns...).From("media_conversions").
		Where(sq.Eq{"media_id": ids}).
		OrderBy("media_id", "name")
	if err := s.selectAll(ctx, &convs, q); err != nil {
		return nil, fmt.Errorf("list media conversions: %w", err)
	}

	byMedia := make(map[int64][]models.MediaConversion, len(items))
	for _, c := range convs {
		byMedia[c.MediaID] = append(byMedia[c.MediaID], c)
	}
	for i := range items {
		items[i].Conversions = byMedia[items[i].ID]
	}
	return items, nil
}

// Delete removes media rows by ID. Conversions are removed by cascade.
func (s *MediaStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.exec(ctx, s.sb.Delete("media").Where(sq.Eq{"id": ids})); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}

// Count returns the total number of media rows.
func (s *MediaStore) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := s.get(ctx, &n, s.sb.Select("COUNT(*)").From("media")); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}
