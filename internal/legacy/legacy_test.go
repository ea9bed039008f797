package legacy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstories/internal/database"
	"webstories/internal/database/dbtest"
	"webstories/internal/models"
	"webstories/internal/store"
)

func createPost(t *testing.T, db *database.DB, slug string, content *string) *models.Post {
	t.Helper()
	p := &models.Post{Title: slug, Slug: slug, IsActive: true, LegacyContent: content}
	require.NoError(t, store.NewPostStore(db).Create(context.Background(), p))
	return p
}

func ptr(s string) *string { return &s }

func TestImport(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	content := `{"slides":[
		{"slide_title":"Opening","text_active":true,"zoom_effect":false,"content":"<p>Hi</p>","text_position":"bottom"},
		{"slide_title":"","text_active":"0","zoom_effect":1,"content":""},
		{"text_active":"on","text_position":"diagonal"}
	]}`
	p := createPost(t, db, "legacy-story", ptr(content))

	res, err := Import(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Slides: 3}, res)

	slides, err := store.NewSlideStore(db).ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, slides, 3)

	first := slides[0]
	require.NotNil(t, first.Title)
	assert.Equal(t, "Opening", *first.Title)
	assert.True(t, first.TextActive)
	assert.False(t, first.ZoomEffect)
	assert.Equal(t, models.TextPositionBottom, first.TextPosition)
	require.NotNil(t, first.Content)
	assert.Equal(t, "<p>Hi</p>", *first.Content)
	assert.Equal(t, 0, first.Position)

	second := slides[1]
	assert.Nil(t, second.Title)
	assert.Nil(t, second.Content)
	assert.False(t, second.TextActive)
	assert.True(t, second.ZoomEffect)
	assert.Equal(t, models.TextPositionCenter, second.TextPosition)

	third := slides[2]
	assert.True(t, third.TextActive)
	assert.Equal(t, models.TextPositionCenter, third.TextPosition)
	assert.Equal(t, 2, third.Position)

	got, err := store.NewPostStore(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LegacyContent)
}

func TestImportIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	createPost(t, db, "once", ptr(`{"slides":[{"slide_title":"A"}]}`))
	_, err := Import(ctx, db)
	require.NoError(t, err)

	res, err := Import(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestImportSkipsPostsWithSlides(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	content := ptr(`{"slides":[{"slide_title":"Old"}]}`)
	p := createPost(t, db, "has-slides", content)
	existing := &models.Slide{PostID: p.ID, TextActive: true, TextPosition: models.TextPositionCenter}
	require.NoError(t, store.NewSlideStore(db).Create(ctx, existing))

	res, err := Import(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	n, err := store.NewSlideStore(db).CountByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.NewPostStore(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LegacyContent)
	assert.Equal(t, *content, *got.LegacyContent)
}

func TestImportSkipsUnusableContent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	createPost(t, db, "not-json", ptr("<p>plain html</p>"))
	createPost(t, db, "no-slides", ptr(`{"body":"text"}`))
	createPost(t, db, "empty-slides", ptr(`{"slides":[]}`))
	createPost(t, db, "no-content", nil)

	res, err := Import(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 3}, res)
}

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want flag
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"true"`, true},
		{`"on"`, true},
		{`"off"`, false},
		{`""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f flag
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}

	var f flag
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &f))
}
