package stories

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstories/internal/database"
	"webstories/internal/database/dbtest"
	"webstories/internal/media"
	"webstories/internal/models"
	"webstories/internal/slug"
	"webstories/internal/storage"
	"webstories/internal/store"
)

func newService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db := dbtest.New(t)
	disk, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	return New(db, media.NewLibrary(disk, store.NewMediaStore(db)), nil), db
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalid)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Fields[field]
}

func TestPlanSlug(t *testing.T) {
	tests := []struct {
		name                            string
		submitted, source, slug, oldSrc string
		creating                        bool
		want                            slugPlan
	}{
		{name: "create derives", source: "Amazing Journey", creating: true, want: slugPlan{source: "Amazing Journey"}},
		{name: "create explicit", submitted: "My Slug", source: "x", creating: true, want: slugPlan{explicit: "my-slug", source: "x"}},
		{name: "update unchanged", submitted: "trip", source: "Trip", slug: "trip", oldSrc: "Trip", want: slugPlan{keep: "trip"}},
		{name: "update title changed", submitted: "trip", source: "Long Trip", slug: "trip", oldSrc: "Trip", want: slugPlan{source: "Long Trip"}},
		{name: "update blank slug title changed", source: "Long Trip", slug: "trip", oldSrc: "Trip", want: slugPlan{source: "Long Trip"}},
		{name: "update slug edited with title", submitted: "custom", source: "Long Trip", slug: "trip", oldSrc: "Trip", want: slugPlan{explicit: "custom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planSlug(tt.submitted, tt.source, tt.slug, tt.oldSrc, tt.creating)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreatePostSlugSuffixes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, PostInput{Title: "Amazing Journey"})
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, PostInput{Title: "Amazing Journey"})
	require.NoError(t, err)
	third, err := svc.CreatePost(ctx, PostInput{Title: "  Amazing   Journey "})
	require.NoError(t, err)

	assert.Equal(t, "amazing-journey", first.Slug)
	assert.Equal(t, "amazing-journey-1", second.Slug)
	assert.Equal(t, "amazing-journey-2", third.Slug)
}

func TestCreatePostExplicitSlugTaken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, PostInput{Title: "One", Slug: "shared"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, PostInput{Title: "Two", Slug: "Shared"})
	assert.Equal(t, slugTaken, fieldError(t, err, "slug"))
}

func TestUpdatePostSlugLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Trip"})
	require.NoError(t, err)
	require.Equal(t, "trip", p.Slug)

	// Title changed, slug submitted as stored: regenerated.
	p, err = svc.UpdatePost(ctx, p.ID, PostInput{Title: "Mountain Trip", Slug: "trip"})
	require.NoError(t, err)
	assert.Equal(t, "mountain-trip", p.Slug)

	// Title and slug edited together: the slug wins.
	p, err = svc.UpdatePost(ctx, p.ID, PostInput{Title: "Sea Trip", Slug: "summer-2026"})
	require.NoError(t, err)
	assert.Equal(t, "summer-2026", p.Slug)

	// Nothing changed: slug kept.
	p, err = svc.UpdatePost(ctx, p.ID, PostInput{Title: "Sea Trip", Slug: "summer-2026"})
	require.NoError(t, err)
	assert.Equal(t, "summer-2026", p.Slug)
}

func TestLongTitleSlugsFitColumn(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	title := strings.Repeat("a", maxNameLength)

	first, err := svc.CreatePost(ctx, PostInput{Title: title})
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, PostInput{Title: title})
	require.NoError(t, err)

	assert.Len(t, first.Slug, slug.MaxLength)
	assert.LessOrEqual(t, len(second.Slug), slug.MaxLength)
	assert.True(t, strings.HasSuffix(second.Slug, "-1"), second.Slug)

	c1, err := svc.CreateCategory(ctx, CategoryInput{Name: title})
	require.NoError(t, err)
	c2, err := svc.CreateCategory(ctx, CategoryInput{Name: title})
	require.NoError(t, err)
	assert.NotEqual(t, c1.Slug, c2.Slug)
	assert.LessOrEqual(t, len(c2.Slug), slug.MaxLength)
}

// racingWrite inserts a post with the plan's slug. On the first attempt a
// competing row claims the same slug between the check and the insert.
func racingWrite(t *testing.T, db *database.DB, plan slugPlan, calls *int, got *string) func(int) error {
	posts := store.NewPostStore(db)
	return func(attempt int) error {
		*calls++
		ctx := context.Background()
		s, err := plan.resolve(ctx, func(ctx context.Context, cand string) (bool, error) {
			return posts.SlugExists(ctx, cand, 0)
		})
		if err != nil {
			return err
		}
		if attempt == 1 {
			require.NoError(t, posts.Create(ctx, &models.Post{Title: "Competitor", Slug: s}))
		}
		p := &models.Post{Title: "Race Title", Slug: s}
		if err := posts.Create(ctx, p); err != nil {
			return err
		}
		*got = p.Slug
		return nil
	}
}

func TestWithSlugRetryRecomputes(t *testing.T) {
	_, db := newService(t)
	plan := planSlug("", "Race Title", "", "", true)

	var calls int
	var got string
	err := withSlugRetry(context.Background(), plan, racingWrite(t, db, plan, &calls, &got))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "race-title-1", got)
}

func TestWithSlugRetryExplicitSlugIsValidationError(t *testing.T) {
	_, db := newService(t)
	plan := planSlug("chosen-slug", "Race Title", "", "", true)

	var calls int
	var got string
	err := withSlugRetry(context.Background(), plan, racingWrite(t, db, plan, &calls, &got))
	assert.Equal(t, slugTaken, fieldError(t, err, "slug"))
	assert.Equal(t, 1, calls)
	assert.Empty(t, got)
}

func TestWithSlugRetryGivesUp(t *testing.T) {
	var calls int
	err := withSlugRetry(context.Background(), slugPlan{source: "x"}, func(int) error {
		calls++
		return uniqueViolation(t)
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
	assert.Equal(t, maxSlugAttempts, calls)
}

func TestWithSlugRetryOtherErrorsNotRetried(t *testing.T) {
	boom := errors.New("disk full")
	var calls int
	err := withSlugRetry(context.Background(), slugPlan{source: "x"}, func(int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

// uniqueViolation produces a real driver unique violation.
func uniqueViolation(t *testing.T) error {
	t.Helper()
	db := dbtest.New(t)
	posts := store.NewPostStore(db)
	ctx := context.Background()
	require.NoError(t, posts.Create(ctx, &models.Post{Title: "Dup", Slug: "dup"}))
	err := posts.Create(ctx, &models.Post{Title: "Dup", Slug: "dup"})
	require.True(t, database.IsUniqueViolation(err), "%v", err)
	return err
}

func TestUpdatePostExcludesItself(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Tokyo Nights"})
	require.NoError(t, err)
	p, err = svc.UpdatePost(ctx, p.ID, PostInput{Title: "Tokyo nights"})
	require.NoError(t, err)
	assert.Equal(t, "tokyo-nights", p.Slug)
}

func TestUpdatePostNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdatePost(context.Background(), 99, PostInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, PostInput{
		Title:     "  ",
		MetaTitle: strings.Repeat("a", 61),
		Slides:    []SlideInput{{TextPosition: "diagonal"}},
	})
	assert.Equal(t, "The title field is required.", fieldError(t, err, "title"))
	assert.Equal(t, "The meta title field must not be greater than 60 characters.", fieldError(t, err, "meta_title"))
	assert.Equal(t, "The selected text position is invalid.", fieldError(t, err, "slides.0.text_position"))

	missing := int64(42)
	_, err = svc.CreatePost(ctx, PostInput{Title: "Ok", CategoryID: &missing})
	assert.NotEmpty(t, fieldError(t, err, "category_id"))
}

func TestInvalidCTALinkDoesNotBlockSaving(t *testing.T) {
	svc, _ := newService(t)
	p, err := svc.CreatePost(context.Background(), PostInput{
		Title:    "Soft",
		IsActive: true,
		Slides:   []SlideInput{{CTAButtonShow: true, CTALink: "not a url"}, {CTAButtonShow: true}},
	})
	require.NoError(t, err)
	require.Len(t, p.Slides, 2)
	assert.False(t, p.Slides[0].IsValidCTALink())
	assert.True(t, p.Slides[0].HasCTAButton())
	assert.Nil(t, p.Slides[1].CTALink)
	assert.False(t, p.Slides[1].HasCTAButton())
}

func TestUpdatePostSyncsSlides(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Sync", Slides: []SlideInput{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}})
	require.NoError(t, err)
	a, b, c := p.Slides[0], p.Slides[1], p.Slides[2]

	got, err := svc.UpdatePost(ctx, p.ID, PostInput{Title: "Sync", Slides: []SlideInput{
		{ID: c.ID, Title: "c2"}, {Title: "new"}, {ID: a.ID, Title: "a"},
	}})
	require.NoError(t, err)

	var titles []string
	for _, sl := range got.Slides {
		titles = append(titles, *sl.Title)
		assert.NotEqual(t, b.ID, sl.ID)
	}
	assert.Equal(t, []string{"c2", "new", "a"}, titles)
	assert.Equal(t, c.ID, got.Slides[0].ID)
}

func TestUpdatePostWithoutSlidesKeepsThem(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Keep", Slides: []SlideInput{{Title: "only"}}})
	require.NoError(t, err)
	got, err := svc.UpdatePost(ctx, p.ID, PostInput{Title: "Keep"})
	require.NoError(t, err)
	assert.Len(t, got.Slides, 1)
}

func TestCategorySlugLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	travel, err := svc.CreateCategory(ctx, CategoryInput{Name: "Travel", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "travel", travel.Slug)

	again, err := svc.CreateCategory(ctx, CategoryInput{Name: "Travel"})
	require.NoError(t, err)
	assert.Equal(t, "travel-1", again.Slug)

	renamed, err := svc.UpdateCategory(ctx, again.ID, CategoryInput{Name: "Food & Drink", Slug: "travel-1"})
	require.NoError(t, err)
	assert.Equal(t, "food-drink", renamed.Slug)

	_, err = svc.UpdateCategory(ctx, renamed.ID, CategoryInput{Name: "Food", Slug: "travel"})
	assert.Equal(t, slugTaken, fieldError(t, err, "slug"))

	_, err = svc.CreateCategory(ctx, CategoryInput{})
	assert.Equal(t, "The name field is required.", fieldError(t, err, "name"))
}

func TestSlugTaken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Night Market"})
	require.NoError(t, err)
	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Street Food"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		check     func(context.Context, string, int64) (bool, error)
		value     string
		excludeID int64
		want      bool
	}{
		{"post normalized", svc.PostSlugTaken, "Night  MARKET", 0, true},
		{"post excludes itself", svc.PostSlugTaken, "night-market", p.ID, false},
		{"post free", svc.PostSlugTaken, "day-market", 0, false},
		{"category normalized", svc.CategorySlugTaken, "street food", 0, true},
		{"category excludes itself", svc.CategorySlugTaken, "street-food", c.ID, false},
		{"category free", svc.CategorySlugTaken, "desserts", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check(ctx, tt.value, tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetCategoryActive(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "News", IsActive: true})
	require.NoError(t, err)
	c, err = svc.SetCategoryActive(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	_, err = svc.SetCategoryActive(ctx, 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryCascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Travel"})
	require.NoError(t, err)
	p, err := svc.CreatePost(ctx, PostInput{Title: "Gone", CategoryID: &c.ID, Slides: []SlideInput{{Title: "s"}}})
	require.NoError(t, err)
	_, err = svc.AttachCover(ctx, p.ID, "cover.png", pngBytes(t, 40, 30))
	require.NoError(t, err)
	_, err = svc.AttachSlideImage(ctx, p.Slides[0].ID, "slide.png", pngBytes(t, 40, 30))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))

	_, err = svc.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := store.NewMediaStore(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishUnpublishAndBulkDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"One", "Two", "Three"} {
		p, err := svc.CreatePost(ctx, PostInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	n, err := svc.Publish(ctx, ids[:2])
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	pg, err := svc.PublishedPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, pg.Total)

	n, err = svc.Unpublish(ctx, ids[:1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = svc.BulkDelete(ctx, []int64{ids[1], ids[2], 999})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.ErrorIs(t, svc.DeletePost(ctx, ids[2]), ErrNotFound)
	require.NoError(t, svc.DeletePost(ctx, ids[0]))
}

func TestGenerateSEONeverOverwrites(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Travel"})
	require.NoError(t, err)
	long := strings.Repeat("Wanderlust ", 8)
	empty, err := svc.CreatePost(ctx, PostInput{
		Title:      long,
		CategoryID: &c.ID,
		Slides:     []SlideInput{{TextActive: true, Content: "<p>Snow <b>peaks</b> at dawn.</p>"}},
	})
	require.NoError(t, err)
	filled, err := svc.CreatePost(ctx, PostInput{
		Title:           "Kept",
		MetaTitle:       "Hand written",
		MetaDescription: "Mine",
		MetaKeywords:    []string{"mine"},
	})
	require.NoError(t, err)

	changed, err := svc.GenerateSEO(ctx, []int64{empty.ID, filled.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := svc.GetPost(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MetaTitle)
	assert.Equal(t, strings.TrimSpace(long[:60]), *got.MetaTitle)
	require.NotNil(t, got.MetaDescription)
	assert.Equal(t, "Snow peaks at dawn.", *got.MetaDescription)
	assert.Equal(t, models.Keywords{"Travel", "wanderlust"}, got.MetaKeywords)

	kept, err := svc.GetPost(ctx, filled.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hand written", *kept.MetaTitle)
	assert.Equal(t, "Mine", *kept.MetaDescription)
	assert.Equal(t, models.Keywords{"mine"}, kept.MetaKeywords)
}

func TestSlidesAddReorderDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Order"})
	require.NoError(t, err)
	var ids []int64
	for _, title := range []string{"first", "second", "third"} {
		sl, err := svc.AddSlide(ctx, p.ID, SlideInput{Title: title})
		require.NoError(t, err)
		assert.Equal(t, models.TextPositionCenter, sl.TextPosition)
		ids = append(ids, sl.ID)
	}

	require.NoError(t, svc.ReorderSlides(ctx, p.ID, []int64{ids[2], ids[0], ids[1]}))
	got, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 3)
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, []int64{got.Slides[0].ID, got.Slides[1].ID, got.Slides[2].ID})

	err = svc.ReorderSlides(ctx, p.ID, []int64{ids[0], ids[0], ids[1]})
	assert.ErrorIs(t, err, ErrInvalid)

	updated, err := svc.UpdateSlide(ctx, ids[2], SlideInput{Title: "renamed", TextPosition: models.TextPositionBottom})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Position)

	require.NoError(t, svc.DeleteSlide(ctx, ids[0]))
	assert.ErrorIs(t, svc.DeleteSlide(ctx, ids[0]), ErrNotFound)

	_, err = svc.AddSlide(ctx, 999, SlideInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateSlide(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Copies", Slides: []SlideInput{
		{Title: "first"},
		{Title: "second", ZoomEffect: true, TextActive: true, TextPosition: models.TextPositionBottom,
			Content: "<p>Body</p>", CTALink: "https://example.com", CTAButtonShow: true},
		{Title: "third"},
	}})
	require.NoError(t, err)
	src := p.Slides[1]
	_, err = svc.AttachSlideImage(ctx, src.ID, "slide.png", pngBytes(t, 40, 30))
	require.NoError(t, err)

	cp, err := svc.DuplicateSlide(ctx, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, cp.ID)
	assert.Equal(t, 2, cp.Position)

	got, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 4)
	order := make([]int64, len(got.Slides))
	for i, sl := range got.Slides {
		order[i] = sl.ID
		assert.Equal(t, i, sl.Position)
	}
	assert.Equal(t, []int64{p.Slides[0].ID, src.ID, cp.ID, p.Slides[2].ID}, order)

	dup := got.Slides[2]
	assert.Equal(t, "second", *dup.Title)
	assert.True(t, dup.ZoomEffect)
	assert.True(t, dup.TextActive)
	assert.Equal(t, models.TextPositionBottom, dup.TextPosition)
	assert.Equal(t, "<p>Body</p>", *dup.Content)
	assert.Equal(t, "https://example.com", *dup.CTALink)
	assert.True(t, dup.CTAButtonShow)
	assert.NotNil(t, got.Slides[1].Image)
	assert.Nil(t, dup.Image, "the image stays with the original")

	last, err := svc.DuplicateSlide(ctx, p.Slides[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, last.Position)

	_, err = svc.DuplicateSlide(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishedPage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Travel", IsActive: true})
	require.NoError(t, err)
	var last *models.Post
	for i := 0; i < 12; i++ {
		last, err = svc.CreatePost(ctx, PostInput{
			Title:      "Story",
			CategoryID: &c.ID,
			IsActive:   true,
			Slides:     []SlideInput{{Title: "one"}, {Title: "two"}},
		})
		require.NoError(t, err)
	}
	_, err = svc.CreatePost(ctx, PostInput{Title: "Draft"})
	require.NoError(t, err)

	pg, err := svc.PublishedPage(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, pg.Total)
	assert.Equal(t, DefaultPerPage, pg.PerPage)
	assert.Equal(t, 2, pg.LastPage)
	require.Len(t, pg.Posts, 10)
	assert.Equal(t, 1, pg.From())
	assert.Equal(t, 10, pg.To())
	assert.Equal(t, last.ID, pg.Posts[0].ID)
	for _, p := range pg.Posts {
		assert.True(t, p.IsActive)
		require.NotNil(t, p.Category)
		assert.Equal(t, "Travel", p.Category.Name)
		require.Len(t, p.Slides, 2)
		assert.Equal(t, "one", *p.Slides[0].Title)
	}

	pg, err = svc.PublishedPage(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, pg.Posts, 2)
	assert.Equal(t, 11, pg.From())

	pg, err = svc.PublishedPage(ctx, 9, 10)
	require.NoError(t, err)
	assert.NotNil(t, pg.Posts)
	assert.Empty(t, pg.Posts)
	assert.Zero(t, pg.From())
}

func TestAttachCoverReplacesPrevious(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{Title: "Cover"})
	require.NoError(t, err)
	_, err = svc.AttachCover(ctx, p.ID, "a.png", pngBytes(t, 20, 20))
	require.NoError(t, err)
	second, err := svc.AttachCover(ctx, p.ID, "b.png", pngBytes(t, 30, 20))
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Cover)
	assert.Equal(t, second.ID, got.Cover.ID)
	n, err := store.NewMediaStore(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.AttachCover(ctx, p.ID, "bad.txt", []byte("plain text"))
	assert.Error(t, err)
	_, err = svc.AttachCover(ctx, 404, "a.png", pngBytes(t, 10, 10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, PostInput{Title: "A", IsActive: true, Slides: []SlideInput{
		{ZoomEffect: true, CTAButtonShow: true, CTALink: "https://example.com"},
		{},
	}})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, PostInput{Title: "B"})
	require.NoError(t, err)

	st, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Posts: 2, PublishedPosts: 1, Slides: 2, SlidesWithCTA: 1, ZoomSlides: 1}, st)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "t", "name": "n"}}
	assert.Equal(t, "validation failed: name: n; title: t", err.Error())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NotErrorIs(t, err, ErrNotFound)
}
