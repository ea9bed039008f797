// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package stories

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a category, post, or slide does not exist.
	ErrNotFound = errors.New("stories: not found")
	// ErrInvalid matches every *ValidationError through errors.Is.
	ErrInvalid = errors.New("stories: invalid input")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is reports ErrInvalid as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// validation collects field errors, keeping the first message per field.
type validation map[string]string

func (v validation) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v validation) required(field, label, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, fmt.Sprintf("The %s field is required.", label))
	}
}

func (v validation) maxLen(field, label, value string, n int) {
	if len([]rune(value)) > n {
		v.add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", label, n))
	}
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// slugTaken is the message for an explicitly chosen slug that collides.
const slugTaken = "The slug has already been taken."
