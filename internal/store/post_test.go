package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstories/internal/models"
)

func TestPostStoreCreateAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.category(t, "Travel", "travel")

	p := &models.Post{
		CategoryID:   &c.ID,
		Title:        "Amazing Journey",
		Slug:         "amazing-journey",
		MetaTitle:    ptr("Amazing"),
		MetaKeywords: models.Keywords{"travel", "alps"},
		IsActive:     true,
	}
	require.NoError(t, f.posts.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := f.posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Amazing Journey", got.Title)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, c.ID, *got.CategoryID)
	assert.Equal(t, "Amazing", *got.MetaTitle)
	assert.Nil(t, got.MetaDescription)
	assert.Equal(t, models.Keywords{"travel", "alps"}, got.MetaKeywords)
	assert.True(t, got.IsActive)

	bySlug, err := f.posts.FindBySlug(ctx, "amazing-journey")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, p.ID, bySlug.ID)

	missing, err := f.posts.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostStoreUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, "Draft", "draft", false, nil)

	p.Title = "Final"
	p.Slug = "final"
	p.MetaDescription = ptr("A description")
	p.MetaKeywords = nil
	require.NoError(t, f.posts.Update(ctx, p))

	got, err := f.posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Slug)
	assert.Equal(t, "A description", *got.MetaDescription)
	assert.Nil(t, got.CategoryID)
	assert.Empty(t, got.MetaKeywords)
}

func TestPostStoreSlugExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, "Amazing Journey", "amazing-journey", true, nil)

	taken, err := f.posts.SlugExists(ctx, "amazing-journey", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.posts.SlugExists(ctx, "amazing-journey", p.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestPostStorePublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.post(t, "First", "first", true, nil)
	f.post(t, "Hidden", "hidden", false, nil)
	third := f.post(t, "Third", "third", true, nil)

	posts, err := f.posts.ListPublished(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, third.ID, posts[0].ID, "newest first")
	assert.Equal(t, first.ID, posts[1].ID)
	for _, p := range posts {
		assert.True(t, p.IsActive)
	}

	n, err := f.posts.CountPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page2, err := f.posts.ListPublished(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, first.ID, page2[0].ID)

	beyond, err := f.posts.ListPublished(ctx, 10, 20)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestPostStoreListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	travel := f.category(t, "Travel", "travel")

	zoomed := f.post(t, "Alpine Views", "alpine-views", true, &travel.ID)
	f.slide(t, zoomed.ID, func(s *models.Slide) { s.ZoomEffect = true })

	cta := f.post(t, "Book Now", "book-now", false, nil)
	f.slide(t, cta.ID, func(s *models.Slide) {
		s.CTAButtonShow = true
		s.CTALink = ptr("https://example.com")
	})

	plain := f.post(t, "Quiet Streets", "quiet-streets", true, nil)
	f.slide(t, plain.ID, func(s *models.Slide) { s.CTAButtonShow = true })

	tests := []struct {
		name   string
		filter PostFilter
		want   []int64
	}{
		{name: "all newest first", filter: PostFilter{}, want: []int64{plain.ID, cta.ID, zoomed.ID}},
		{name: "active", filter: PostFilter{Active: ptr(true)}, want: []int64{plain.ID, zoomed.ID}},
		{name: "inactive", filter: PostFilter{Active: ptr(false)}, want: []int64{cta.ID}},
		{name: "has effects", filter: PostFilter{HasEffects: ptr(true)}, want: []int64{zoomed.ID}},
		{name: "no effects", filter: PostFilter{HasEffects: ptr(false)}, want: []int64{plain.ID, cta.ID}},
		{name: "has cta ignores missing link", filter: PostFilter{HasCTA: ptr(true)}, want: []int64{cta.ID}},
		{name: "category", filter: PostFilter{CategoryID: &travel.ID}, want: []int64{zoomed.ID}},
		{name: "search title case insensitive", filter: PostFilter{Search: "quiet"}, want: []int64{plain.ID}},
		{name: "search slug", filter: PostFilter{Search: "book-now"}, want: []int64{cta.ID}},
		{name: "sort by title ascending", filter: PostFilter{Sort: "title"}, want: []int64{zoomed.ID, cta.ID, plain.ID}},
		{name: "unknown sort falls back", filter: PostFilter{Sort: "password"}, want: []int64{plain.ID, cta.ID, zoomed.ID}},
		{name: "limit and offset", filter: PostFilter{Limit: 1, Offset: 1}, want: []int64{cta.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := f.posts.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]int64, len(posts))
			for i, p := range posts {
				ids[i] = p.ID
			}
			if len(tt.want) == 0 {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}

			count := tt.filter
			count.Limit, count.Offset = 0, 0
			n, err := f.posts.Count(ctx, count)
			require.NoError(t, err)
			if tt.filter.Limit == 0 {
				assert.Equal(t, len(tt.want), n)
			}
		})
	}
}

func TestPostStoreBulkOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.post(t, "A", "a", false, nil)
	b := f.post(t, "B", "b", false, nil)
	c := f.post(t, "C", "c", false, nil)

	n, err := f.posts.SetActive(ctx, []int64{a.ID, b.ID}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	published, err := f.posts.CountPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	f.slide(t, a.ID, nil)
	n, err = f.posts.Delete(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	slides, err := f.slides.ListByPost(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, slides, "slides cascade with their post")

	n, err = f.posts.Delete(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostStoreLegacyContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &models.Post{Title: "Old", Slug: "old", LegacyContent: ptr(`{"slides":[]}`)}
	require.NoError(t, f.posts.Create(ctx, legacy))
	f.post(t, "New", "new", true, nil)
	empty := &models.Post{Title: "Empty", Slug: "empty", LegacyContent: ptr("")}
	require.NoError(t, f.posts.Create(ctx, empty))

	posts, err := f.posts.ListWithLegacyContent(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, legacy.ID, posts[0].ID)

	require.NoError(t, f.posts.ClearLegacyContent(ctx, legacy.ID))
	posts, err = f.posts.ListWithLegacyContent(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostSearchMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	percent := f.post(t, "100% Fun", "hundred-percent-fun", true, nil)
	f.post(t, "1000 Funny Faces", "thousand-funny-faces", true, nil)
	under := f.post(t, "snake_case Tips", "snake-case-tips", true, nil)
	f.post(t, "Snake Case Study", "snake-case-study", true, nil)
	slash := f.post(t, `Back\Slash`, "back-slash", true, nil)

	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{"percent", "100%", []int64{percent.ID}},
		{"underscore", "e_c", []int64{under.ID}},
		{"backslash", `k\s`, []int64{slash.ID}},
		{"lone percent", "%", []int64{percent.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := f.posts.List(ctx, PostFilter{Search: tt.search})
			require.NoError(t, err)
			ids := make([]int64, len(posts))
			for i, p := range posts {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.want, ids)

			n, err := f.posts.Count(ctx, PostFilter{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}
}
