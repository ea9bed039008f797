// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all web story
// entities. Each store wraps a database.Queryer (a pool or a transaction)
// and builds its SQL with squirrel so the same code runs on PostgreSQL and
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"webstories/internal/database"
)

// base carries the executor and statement builder shared by every store.
type base struct {
	q  database.Queryer
	sb sq.StatementBuilderType
}

func newBase(db *database.DB) base {
	return base{q: db, sb: db.Builder()}
}

// withTx returns a copy bound to tx. The placeholder format is kept.
func (b base) withTx(tx *sqlx.Tx) base {
	return base{q: tx, sb: b.sb}
}

// get runs a single-row query into dest. It reports false with a nil error
// when no row matched.
func (b base) get(ctx context.Context, dest any, query sq.Sqlizer) (bool, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	if err := sqlx.GetContext(ctx, b.q, dest, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// selectAll runs a multi-row query into the slice pointed to by dest.
func (b base) selectAll(ctx context.Context, dest any, query sq.Sqlizer) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, b.q, dest, stmt, args...)
}

// exec runs a statement and returns the number of affected rows.
func (b base) exec(ctx context.Context, query sq.Sqlizer) (int64, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := b.q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// likeEscaper escapes LIKE wildcards with the backslash named in
// likeEscape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likeEscape follows every LIKE built from containsPattern.
const likeEscape = ` ESCAPE '\'`

// containsPattern returns a lowercased LIKE pattern matching term
// literally anywhere in a value.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// now returns the timestamp written to created_at and updated_at columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
