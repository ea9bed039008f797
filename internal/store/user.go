// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/crypto/bcrypt"

	"webstories/internal/database"
	"webstories/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	base
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{base: newBase(db)}
}

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findBy(ctx, sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByID retrieves a user by ID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findBy(ctx, sq.Eq{"id": id})
}

func (s *UserStore) findBy(ctx context.Context, where sq.Eq) (*models.User, error) {
	var u models.User
	found, err := s.get(ctx, &u, s.sb.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ts := now()
	u := &models.User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	q := s.sb.Insert("users").
		Columns("name", "email", "password_hash", "created_at", "updated_at").
		Values(u.Name, u.Email, u.PasswordHash, ts, ts).
		Suffix("RETURNING id")
	if _, err := s.get(ctx, &u.ID, q); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CheckPassword reports whether password matches the user's hash.
func CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Count returns the total number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := s.get(ctx, &n, s.sb.Select("COUNT(*)").From("users")); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
