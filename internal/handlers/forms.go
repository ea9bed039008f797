// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strconv"
	"strings"

	"webstories/internal/models"
	"webstories/internal/resource"
	"webstories/internal/stories"
)

// postValues fills the story wizard from a stored post.
func postValues(p *models.Post) resource.Values {
	v := resource.Values{
		"title":            p.Title,
		"slug":             p.Slug,
		"category_id":      "",
		"is_active":        p.IsActive,
		"meta_title":       ptrStr(p.MetaTitle),
		"meta_description": ptrStr(p.MetaDescription),
		"meta_keywords":    []string(p.MetaKeywords),
	}
	if p.CategoryID != nil {
		v["category_id"] = strconv.FormatInt(*p.CategoryID, 10)
	}
	rows := make([]resource.Values, len(p.Slides))
	for i := range p.Slides {
		rows[i] = slideValues(&p.Slides[i])
	}
	v["slides"] = rows
	return v
}

func slideValues(s *models.Slide) resource.Values {
	return resource.Values{
		"id":              strconv.FormatInt(s.ID, 10),
		"title":           ptrStr(s.Title),
		"text_active":     s.TextActive,
		"image_active":    true,
		"zoom_effect":     s.ZoomEffect,
		"text_position":   string(s.TextPosition),
		"content":         ptrStr(s.Content),
		"cta_button_show": s.CTAButtonShow,
		"cta_link":        ptrStr(s.CTALink),
	}
}

// postInput converts a wizard submission. Values that cannot be parsed
// come back as field errors.
func postInput(v resource.Values) (stories.PostInput, map[string]string) {
	errs := map[string]string{}
	in := stories.PostInput{
		Title:           v.String("title"),
		Slug:            v.String("slug"),
		MetaTitle:       v.String("meta_title"),
		MetaDescription: v.String("meta_description"),
		MetaKeywords:    v.List("meta_keywords"),
		IsActive:        v.Bool("is_active"),
		Slides:          []stories.SlideInput{},
	}
	if raw := strings.TrimSpace(v.String("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs["category_id"] = "The selected category is invalid."
		} else {
			in.CategoryID = &id
		}
	}
	for i, row := range v.Items("slides") {
		sl, ok := slideInput(row)
		if !ok {
			errs[resource.ItemKey("slides", i, "id")] = "The selected slide is invalid."
		}
		in.Slides = append(in.Slides, sl)
	}
	return in, errs
}

// slideInput converts one repeater row. Fields hidden by their toggle are
// submitted as they are so switching the toggle back keeps them.
func slideInput(row resource.Values) (stories.SlideInput, bool) {
	in := stories.SlideInput{
		Title:         row.String("title"),
		TextActive:    row.Bool("text_active"),
		ZoomEffect:    row.Bool("zoom_effect") && row.Bool("image_active"),
		TextPosition:  models.TextPosition(row.String("text_position")),
		Content:       row.String("content"),
		CTALink:       row.String("cta_link"),
		CTAButtonShow: row.Bool("cta_button_show"),
	}
	if raw := row.String("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return in, false
		}
		in.ID = id
	}
	return in, true
}

func categoryValues(c *models.Category) resource.Values {
	return resource.Values{"name": c.Name, "slug": c.Slug, "is_active": c.IsActive}
}

func categoryInput(v resource.Values) stories.CategoryInput {
	return stories.CategoryInput{
		Name:     v.String("name"),
		Slug:     v.String("slug"),
		IsActive: v.Bool("is_active"),
	}
}

// ptrStr safely dereferences a string pointer.
func ptrStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
