// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedOptions controls what Seed creates.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	// Demo adds a sample category and story when the posts table is empty.
	Demo bool
}

// Seed populates the database with initial data. It creates the admin user
// if no user exists and, when requested, demo content. Running it again is
// a no-op.
func Seed(ctx context.Context, db *DB, opts SeedOptions) error {
	b := db.Builder()

	var users int
	if err := db.GetContext(ctx, &users, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if users == 0 {
		if err := seedAdmin(ctx, db, b, opts); err != nil {
			return err
		}
	} else {
		slog.Info("users already seeded, skipping admin")
	}

	if !opts.Demo {
		return nil
	}

	var posts int
	if err := db.GetContext(ctx, &posts, "SELECT COUNT(*) FROM posts"); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if posts > 0 {
		slog.Info("posts already seeded, skipping demo content")
		return nil
	}
	return db.InTx(ctx, func(tx *sqlx.Tx) error {
		return seedDemo(ctx, tx, b)
	})
}

func seedAdmin(ctx context.Context, db *DB, b sq.StatementBuilderType, opts SeedOptions) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	name := opts.AdminName
	if name == "" {
		name = "Admin"
	}
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	ts := time.Now().UTC()

	query, args, err := b.Insert("users").
		Columns("name", "email", "password_hash", "created_at", "updated_at").
		Values(name, email, string(hash), ts, ts).
		ToSql()
	if err != nil {
		return fmt.Errorf("seed build admin: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", email)
	return nil
}

type demoSlide struct {
	title    string
	content  string
	position string
	zoom     bool
	ctaLink  string
}

var demoSlides = []demoSlide{
	{title: "Into the Mountains", content: "<p>The road climbs through pine forests toward the first pass.</p>", position: "bottom", zoom: true},
	{title: "Village Mornings", content: "<p>Fresh bread, strong coffee, and bells echoing across the valley.</p>", position: "left"},
	{title: "Plan Your Trip", content: "<p>Everything you need to walk the route yourself.</p>", position: "center", ctaLink: "https://example.com/guide"},
}

func seedDemo(ctx context.Context, tx *sqlx.Tx, b sq.StatementBuilderType) error {
	ts := time.Now().UTC()

	var categoryID int64
	query, args, err := b.Insert("categories").
		Columns("name", "slug", "is_active", "created_at", "updated_at").
		Values("Travel", "travel", true, ts, ts).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("seed build category: %w", err)
	}
	if err := tx.GetContext(ctx, &categoryID, query, args...); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	var postID int64
	query, args, err = b.Insert("posts").
		Columns("category_id", "title", "slug", "is_active", "created_at", "updated_at").
		Values(categoryID, "Amazing Journey", "amazing-journey", true, ts, ts).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("seed build post: %w", err)
	}
	if err := tx.GetContext(ctx, &postID, query, args...); err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	for i, s := range demoSlides {
		var link any
		if s.ctaLink != "" {
			link = s.ctaLink
		}
		query, args, err := b.Insert("slides").
			Columns("post_id", "title", "text_active", "zoom_effect", "text_position",
				"content", "cta_link", "cta_button_show", "position", "created_at", "updated_at").
			Values(postID, s.title, true, s.zoom, s.position, s.content, link, s.ctaLink != "", i, ts, ts).
			ToSql()
		if err != nil {
			return fmt.Errorf("seed build slide: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed insert slide: %w", err)
		}
	}

	slog.Info("database seeded with demo story", "post_id", postID, "slides", len(demoSlides))
	return nil
}
