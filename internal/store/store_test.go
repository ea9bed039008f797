// store_test.go provides shared fixtures for the store tests. Every test
// runs against its own migrated in-memory SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstories/internal/database"
	"webstories/internal/database/dbtest"
	"webstories/internal/models"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db         *database.DB
	categories *CategoryStore
	posts      *PostStore
	slides     *SlideStore
	media      *MediaStore
	users      *UserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	return &fixture{
		db:         db,
		categories: NewCategoryStore(db),
		posts:      NewPostStore(db),
		slides:     NewSlideStore(db),
		media:      NewMediaStore(db),
		users:      NewUserStore(db),
	}
}

func (f *fixture) category(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(t, f.categories.Create(context.Background(), c))
	return c
}

func (f *fixture) post(t *testing.T, title, slug string, active bool, categoryID *int64) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Slug: slug, IsActive: active, CategoryID: categoryID}
	require.NoError(t, f.posts.Create(context.Background(), p))
	return p
}

func (f *fixture) slide(t *testing.T, postID int64, mutate func(*models.Slide)) *models.Slide {
	t.Helper()
	s := &models.Slide{PostID: postID, TextActive: true, TextPosition: models.TextPositionCenter}
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, f.slides.Create(context.Background(), s))
	return s
}

// brokenResult fails RowsAffected the way some drivers do.
type brokenResult struct{ err error }

func (r brokenResult) LastInsertId() (int64, error) { return 0, r.err }
func (r brokenResult) RowsAffected() (int64, error) { return 0, r.err }

// brokenExec returns brokenResult from every ExecContext.
type brokenExec struct {
	database.Queryer
	err error
}

func (e brokenExec) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return brokenResult{err: e.err}, nil
}

func TestExecReportsRowsAffectedError(t *testing.T) {
	f := newFixture(t)
	unsupported := errors.New("rows affected unsupported")
	b := base{q: brokenExec{Queryer: f.db, err: unsupported}, sb: f.db.Builder()}

	n, err := b.exec(context.Background(), b.sb.Delete("posts").Where(sq.Eq{"id": 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, unsupported)
	assert.Contains(t, err.Error(), "rows affected")
	assert.Zero(t, n)
}
