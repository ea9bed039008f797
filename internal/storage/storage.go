// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides the disks media files are written to: an
// S3-compatible object store for production and a local directory for
// development.
package storage

import (
	"context"
	"io"
)

// Disk stores and serves files by key.
type Disk interface {
	// Name identifies the disk in media rows.
	Name() string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// FileURL returns the public URL of key.
	FileURL(key string) string
}
