// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo derives search metadata for stories: plain-text extraction
// from rich slide content and the auto-fill rules for meta fields.
package seo

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

const (
	// MaxTitleLength is the meta title limit in characters.
	MaxTitleLength = 60
	// MaxDescriptionLength is the meta description limit in characters.
	MaxDescriptionLength = 160
	// MaxKeywords caps the generated keyword list.
	MaxKeywords = 10
	// minKeywordLength is the shortest title word kept as a keyword.
	minKeywordLength = 4
)

// blockTags separate words when stripped, so "<p>a</p><p>b</p>" reads "a b".
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true, "td": true,
}

// StripTags returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed to single spaces. Script and style
// contents are dropped.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read.
			return collapse(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Limit truncates s to n characters and appends "..." when anything was
// cut. Trailing whitespace before the ellipsis is removed.
func Limit(s string, n int) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + "..."
}

// MetaTitle truncates a title to MaxTitleLength characters with no ellipsis.
func MetaTitle(title string) string {
	title = strings.TrimSpace(title)
	r := []rune(title)
	if len(r) <= MaxTitleLength {
		return title
	}
	return strings.TrimRightFunc(string(r[:MaxTitleLength]), unicode.IsSpace)
}

// Input is what the fill rules read from a story.
type Input struct {
	Title    string
	Category string
	// FirstSlide is the raw rich-text content of the first slide.
	FirstSlide string
	// Excerpt is the fallback description source, empty when the story has
	// no text at all.
	Excerpt string
}

// Fields are the meta fields of a story. Nil or empty means unset.
type Fields struct {
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    []string
}

// Fill sets every empty field in f from in and reports whether anything
// changed. Fields that already hold a value are left untouched.
func Fill(f Fields, in Input) (Fields, bool) {
	changed := false

	if isEmpty(f.MetaTitle) {
		if title := MetaTitle(in.Title); title != "" {
			f.MetaTitle = &title
			changed = true
		}
	}

	if isEmpty(f.MetaDescription) {
		desc := StripTags(in.FirstSlide)
		if desc == "" {
			desc = StripTags(in.Excerpt)
		}
		if desc != "" {
			desc = Limit(desc, MaxDescriptionLength)
			f.MetaDescription = &desc
			changed = true
		}
	}

	if len(f.MetaKeywords) == 0 {
		if kws := Keywords(in.Category, in.Title); len(kws) > 0 {
			f.MetaKeywords = kws
			changed = true
		}
	}

	return f, changed
}

// Keywords builds the keyword list: the category name first, then the
// distinct lowercased title words of at least four letters.
func Keywords(category, title string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(kw string) {
		key := strings.ToLower(kw)
		if kw == "" || seen[key] || len(out) >= MaxKeywords {
			return
		}
		seen[key] = true
		out = append(out, kw)
	}

	add(strings.TrimSpace(category))
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len([]rune(w)) >= minKeywordLength {
			add(strings.ToLower(w))
		}
	}
	return out
}

func isEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
