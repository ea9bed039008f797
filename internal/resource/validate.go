// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"webstories/internal/models"
)

// UniqueFunc reports whether value is already taken for field.
type UniqueFunc func(ctx context.Context, field, value string) (bool, error)

// Result holds field messages keyed by field name, or by
// "repeater.index.field" for repeater rows. Errors block saving; warnings
// are only displayed.
type Result struct {
	Errors   map[string]string
	Warnings map[string]string
}

// OK reports whether there are no errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(key, format string, args ...any) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	if _, ok := r.Errors[key]; !ok {
		r.Errors[key] = fmt.Sprintf(format, args...)
	}
}

func (r *Result) warn(key, msg string) {
	if r.Warnings == nil {
		r.Warnings = map[string]string{}
	}
	r.Warnings[key] = msg
}

// Validate checks values against the rules declared on form. Hidden
// fields are skipped. unique may be nil when the form has no unique
// fields.
func Validate(ctx context.Context, form Form, values Values, unique UniqueFunc) (Result, error) {
	var res Result
	for _, st := range form.Steps {
		for _, f := range st.Fields {
			if err := validateField(ctx, &res, f, f.Name, values, unique); err != nil {
				return Result{}, err
			}
		}
	}
	return res, nil
}

func validateField(ctx context.Context, res *Result, f Field, key string, scope Values, unique UniqueFunc) error {
	if !f.Visible(scope) {
		return nil
	}
	label := strings.ToLower(f.Label)

	switch f.Type {
	case Repeater:
		items := scope.Items(f.Name)
		if len(items) < f.MinItems {
			res.errorf(key, "The %s field must have at least %d items.", label, f.MinItems)
		}
		for i, item := range items {
			for _, sub := range f.Fields {
				if err := validateField(ctx, res, sub, ItemKey(f.Name, i, sub.Name), item, nil); err != nil {
					return err
				}
			}
			if w := ctaWarning(item); w != "" {
				res.warn(ItemKey(f.Name, i, "cta_link"), w)
			}
		}
		return nil
	case Toggle, File:
		return nil
	case Tags:
		tags := scope.List(f.Name)
		if f.Required && len(tags) == 0 {
			res.errorf(key, "The %s field is required.", label)
		}
		for _, tag := range tags {
			if f.MaxLength > 0 && utf8.RuneCountInString(tag) > f.MaxLength {
				res.errorf(key, "Each %s must not be greater than %d characters.", singular(label), f.MaxLength)
			}
		}
		return nil
	}

	value := strings.TrimSpace(scope.String(f.Name))
	if value == "" {
		if f.Required {
			res.errorf(key, "The %s field is required.", label)
		}
		return nil
	}
	if f.MaxLength > 0 && utf8.RuneCountInString(value) > f.MaxLength {
		res.errorf(key, "The %s field must not be greater than %d characters.", label, f.MaxLength)
	}
	if f.URL && !models.IsValidURL(value) {
		res.errorf(key, "The %s field must be a valid URL.", label)
	}
	if f.Type == Select && len(f.Options) > 0 && !hasOption(f.Options, value) {
		res.errorf(key, "The selected %s is invalid.", label)
	}
	if f.Unique && unique != nil {
		taken, err := unique(ctx, f.Name, value)
		if err != nil {
			return fmt.Errorf("unique check %s: %w", f.Name, err)
		}
		if taken {
			res.errorf(key, "The %s has already been taken.", label)
		}
	}
	return nil
}

// ctaWarning flags a slide whose CTA button is on without a usable link.
func ctaWarning(item Values) string {
	if !item.Bool("cta_button_show") {
		return ""
	}
	link := strings.TrimSpace(item.String("cta_link"))
	switch {
	case link == "":
		return "The CTA button is on but has no link, so it will not be shown."
	case !models.IsValidURL(link):
		return "This CTA link does not look like a valid URL."
	}
	return ""
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func singular(label string) string {
	return strings.TrimSuffix(label, "s")
}
