package resource

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostResourceShape(t *testing.T) {
	r := PostResource()

	var keys []string
	for _, st := range r.Form.Steps {
		keys = append(keys, st.Label)
	}
	assert.Equal(t, []string{"Story Details", "SEO", "Cover Image", "Slides"}, keys)

	var bulk []string
	for _, a := range r.Table.BulkActions {
		bulk = append(bulk, a.Name)
	}
	assert.ElementsMatch(t, []string{"publish", "unpublish", "delete", "generate_seo"}, bulk)
	assert.Equal(t, Sort{Column: "created_at", Desc: true}, r.Table.DefaultSort)
	assert.Equal(t, "No Web Stories Yet", r.Table.EmptyState.Heading)
	assert.True(t, r.Table.SortColumn("title"))
	assert.False(t, r.Table.SortColumn("preview"))

	slides, ok := r.Form.Field("slides")
	require.True(t, ok)
	visibility := map[string]string{}
	for _, f := range slides.Fields {
		visibility[f.Name] = f.VisibleWhen
	}
	assert.Equal(t, "cta_button_show", visibility["cta_link"])
	assert.Equal(t, "text_active", visibility["content"])
	assert.Equal(t, "image_active", visibility["zoom_effect"])
}

func TestFieldVisible(t *testing.T) {
	f := Field{Name: "cta_link", VisibleWhen: "cta_button_show"}
	assert.False(t, f.Visible(Values{}))
	assert.False(t, f.Visible(Values{"cta_button_show": false}))
	assert.True(t, f.Visible(Values{"cta_button_show": true}))
	assert.True(t, f.Visible(Values{"cta_button_show": "on"}))
	assert.True(t, Field{Name: "title"}.Visible(nil))
}

func TestWithOptionsCopies(t *testing.T) {
	base := PostResource().Form
	withCats := base.WithOptions("category_id", []Option{{Value: "1", Label: "Travel"}})

	f, _ := withCats.Field("category_id")
	assert.Len(t, f.Options, 1)
	f, _ = base.Field("category_id")
	assert.Empty(t, f.Options)
}

func okSlide() Values {
	return Values{"title": "One", "text_active": true, "text_position": "center", "content": "<p>Hi</p>"}
}

func TestValidate(t *testing.T) {
	form := PostResource().Form
	tests := []struct {
		name     string
		values   Values
		errors   map[string]string
		warnings map[string]string
	}{
		{
			name:   "valid",
			values: Values{"title": "Trip", "slides": []Values{okSlide()}},
		},
		{
			name:   "required title and min slides",
			values: Values{"title": "   "},
			errors: map[string]string{
				"title":  "The story title field is required.",
				"slides": "The slides field must have at least 1 items.",
			},
		},
		{
			name: "max lengths are counted in runes",
			values: Values{
				"title":      strings.Repeat("é", 255),
				"meta_title": strings.Repeat("é", 61),
				"slides":     []Values{okSlide()},
			},
			errors: map[string]string{"meta_title": "The meta title field must not be greater than 60 characters."},
		},
		{
			name: "invalid text position",
			values: Values{"title": "Trip", "slides": []Values{
				{"text_active": true, "text_position": "diagonal"},
			}},
			errors: map[string]string{"slides.0.text_position": "The selected text position is invalid."},
		},
		{
			name: "hidden fields are skipped",
			values: Values{"title": "Trip", "slides": []Values{
				{"text_active": false, "text_position": "diagonal", "cta_link": strings.Repeat("x", 300)},
			}},
		},
		{
			name: "cta without link warns",
			values: Values{"title": "Trip", "slides": []Values{
				okSlide(),
				{"cta_button_show": true, "cta_link": ""},
			}},
			warnings: map[string]string{"slides.1.cta_link": "The CTA button is on but has no link, so it will not be shown."},
		},
		{
			name: "cta with bad link warns",
			values: Values{"title": "Trip", "slides": []Values{
				{"cta_button_show": true, "cta_link": "example dot com"},
			}},
			warnings: map[string]string{"slides.0.cta_link": "This CTA link does not look like a valid URL."},
		},
		{
			name: "long keyword",
			values: Values{"title": "Trip", "meta_keywords": []string{"ok", strings.Repeat("k", 51)},
				"slides": []Values{okSlide()}},
			errors: map[string]string{"meta_keywords": "Each meta keyword must not be greater than 50 characters."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(context.Background(), form, tt.values, nil)
			require.NoError(t, err)
			if tt.errors == nil {
				assert.True(t, res.OK(), "errors: %v", res.Errors)
			} else {
				assert.Equal(t, tt.errors, res.Errors)
			}
			if tt.warnings == nil {
				assert.Empty(t, res.Warnings)
			} else {
				assert.Equal(t, tt.warnings, res.Warnings)
			}
		})
	}
}

func TestValidateURLAndUnique(t *testing.T) {
	form := Form{Steps: []Step{{Fields: []Field{
		{Name: "link", Label: "Link", Type: Text, URL: true},
		{Name: "slug", Label: "Slug", Type: Text, Unique: true},
	}}}}
	taken := func(_ context.Context, field, value string) (bool, error) {
		return field == "slug" && value == "travel", nil
	}

	res, err := Validate(context.Background(), form, Values{"link": "ftp://x", "slug": "travel"}, taken)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"link": "The link field must be a valid URL.",
		"slug": "The slug has already been taken.",
	}, res.Errors)

	res, err = Validate(context.Background(), form, Values{"link": "https://example.com", "slug": "food"}, taken)
	require.NoError(t, err)
	assert.True(t, res.OK())

	boom := errors.New("db down")
	_, err = Validate(context.Background(), form, Values{"slug": "x"}, func(context.Context, string, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFromForm(t *testing.T) {
	posted := url.Values{
		"title":                      {"Trip"},
		"is_active":                  {"0", "1"},
		"meta_keywords":              {"travel, food ,", "sea"},
		"slides[1][title]":           {"second"},
		"slides[0][title]":           {"first"},
		"slides[0][id]":              {"7"},
		"slides[0][text_active]":     {"1"},
		"slides[0][cta_button_show]": {"0"},
		"slides[10][title]":          {"last"},
		"other[0][title]":            {"ignored"},
	}
	v := FromForm(PostResource().Form, posted)

	assert.Equal(t, "Trip", v.String("title"))
	assert.True(t, v.Bool("is_active"))
	assert.Equal(t, []string{"travel", "food", "sea"}, v.List("meta_keywords"))

	items := v.Items("slides")
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].String("title"))
	assert.Equal(t, "7", items[0].String("id"))
	assert.True(t, items[0].Bool("text_active"))
	assert.False(t, items[0].Bool("cta_button_show"))
	assert.Equal(t, "second", items[1].String("title"))
	assert.False(t, items[1].Bool("text_active"))
	assert.Equal(t, "last", items[2].String("title"))
	assert.Equal(t, "slides.2.title", ItemKey("slides", 2, "title"))
}

func TestFormDefaults(t *testing.T) {
	v := FormDefaults(PostResource().Form)

	assert.Equal(t, "", v.String("title"))
	assert.True(t, v.Bool("is_active"))
	assert.Nil(t, v.List("meta_keywords"))

	items := v.Items("slides")
	require.Len(t, items, 1)
	assert.True(t, items[0].Bool("text_active"))
	assert.True(t, items[0].Bool("image_active"))
	assert.False(t, items[0].Bool("zoom_effect"))
	assert.Equal(t, "center", items[0].String("text_position"))
}

func TestRowOrder(t *testing.T) {
	posted := url.Values{
		"slides[7][title]":         {"b"},
		"slides[2][title]":         {"a"},
		"slides[2][text_position]": {"top"},
		"title":                    {"Story"},
		"other[0][title]":          {"x"},
	}
	assert.Equal(t, map[int]int{2: 0, 7: 1}, RowOrder("slides", posted))

	rep, i, field, ok := ParseItemName("slides[3][image]")
	require.True(t, ok)
	assert.Equal(t, "slides", rep)
	assert.Equal(t, 3, i)
	assert.Equal(t, "image", field)

	_, _, _, ok = ParseItemName("cover")
	assert.False(t, ok)
}
