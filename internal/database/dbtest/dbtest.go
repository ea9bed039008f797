// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"webstories/internal/database"
)

// New returns a fresh, fully migrated in-memory database that is closed
// when the test finishes.
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Connect(database.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
