// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Fallback is used when the source string normalizes to nothing.
	Fallback = "untitled"

	// MaxLength is the width of the slug columns. Generated slugs and
	// their numeric suffixes always fit.
	MaxLength = 255
)

var (
	// nonAlphanumeric matches runs of anything that isn't a letter or digit.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// apostrophes are dropped rather than turned into separators.
	apostrophes = strings.NewReplacer("'", "", "’", "")
)

// Generate creates a URL-friendly slug from the given string. Accented
// letters are reduced to their base form.
// Example: "Café au Lait, 2026!" → "cafe-au-lait-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = apostrophes.Replace(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return truncate(strings.Trim(result, "-"), MaxLength)
}

// truncate cuts the ASCII slug s to at most n bytes without leaving a
// trailing hyphen.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

// fold decomposes s and drops combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ExistsFunc reports whether a candidate slug is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base, or base with the first free numeric suffix
// ("-1", "-2", ...) according to exists. An empty base becomes Fallback.
// The base is shortened as needed so every candidate fits MaxLength.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	base = truncate(base, MaxLength)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug exists check: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(i)
		candidate = truncate(base, MaxLength-len(suffix)) + suffix
	}
}
