// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Values holds a submission keyed by field name. Scalars are strings,
// toggles are bools, tags are []string, and repeaters are []Values.
type Values map[string]any

// String returns the named scalar, or "".
func (v Values) String(name string) string {
	switch x := v[name].(type) {
	case string:
		return x
	case []string:
		if len(x) > 0 {
			return x[0]
		}
	}
	return ""
}

// Bool returns the named toggle. The strings "1", "on", and "true" count
// as on.
func (v Values) Bool(name string) bool {
	switch x := v[name].(type) {
	case bool:
		return x
	case string:
		return truthy(x)
	}
	return false
}

func truthy(s string) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s == "on"
}

// List returns the named tags value.
func (v Values) List(name string) []string {
	switch x := v[name].(type) {
	case []string:
		return x
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	}
	return nil
}

// Items returns the named repeater value.
func (v Values) Items(name string) []Values {
	items, _ := v[name].([]Values)
	return items
}

// bracketKey matches keys like "slides[2][cta_link]".
var bracketKey = regexp.MustCompile(`^([a-z_]+)\[(\d+)\]\[([a-z_]+)\]$`)

// FromForm builds Values for form from posted url.Values. Repeater rows
// are read from bracketed keys, for example "slides[0][title]", and come
// back in index order.
func FromForm(form Form, posted url.Values) Values {
	out := Values{}
	for _, st := range form.Steps {
		for _, f := range st.Fields {
			if f.Type == Repeater {
				out[f.Name] = repeaterRows(f, posted)
				continue
			}
			out[f.Name] = readField(f, posted[f.Name])
		}
	}
	return out
}

func readField(f Field, raw []string) any {
	switch f.Type {
	case Toggle:
		return len(raw) > 0 && truthy(raw[len(raw)-1])
	case Tags:
		var tags []string
		for _, r := range raw {
			for _, part := range strings.Split(r, ",") {
				if part = strings.TrimSpace(part); part != "" {
					tags = append(tags, part)
				}
			}
		}
		return tags
	default:
		if len(raw) == 0 {
			return ""
		}
		return raw[0]
	}
}

func repeaterRows(f Field, posted url.Values) []Values {
	raw := map[int]url.Values{}
	for key, vals := range posted {
		m := bracketKey.FindStringSubmatch(key)
		if m == nil || m[1] != f.Name {
			continue
		}
		i, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if raw[i] == nil {
			raw[i] = url.Values{}
		}
		raw[i][m[3]] = vals
	}

	idx := make([]int, 0, len(raw))
	for i := range raw {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	rows := make([]Values, 0, len(idx))
	for _, i := range idx {
		row := Values{}
		for _, sub := range f.Fields {
			row[sub.Name] = readField(sub, raw[i][sub.Name])
		}
		if id := raw[i].Get("id"); id != "" {
			row["id"] = id
		}
		rows = append(rows, row)
	}
	return rows
}

// ParseItemName splits an input name like "slides[2][image]".
func ParseItemName(name string) (repeater string, index int, field string, ok bool) {
	m := bracketKey.FindStringSubmatch(name)
	if m == nil {
		return "", 0, "", false
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", false
	}
	return m[1], i, m[3], true
}

// RowOrder maps the posted row indexes of repeater to their position in
// the rows returned by FromForm.
func RowOrder(repeater string, posted url.Values) map[int]int {
	seen := map[int]bool{}
	for key := range posted {
		if rep, i, _, ok := ParseItemName(key); ok && rep == repeater {
			seen[i] = true
		}
	}
	idx := make([]int, 0, len(seen))
	for i := range seen {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	order := make(map[int]int, len(idx))
	for pos, i := range idx {
		order[i] = pos
	}
	return order
}

// ItemKey returns the error key of a repeater row field.
func ItemKey(repeater string, i int, field string) string {
	return fmt.Sprintf("%s.%d.%s", repeater, i, field)
}

// Defaults returns the declared default of every field in fields.
func Defaults(fields []Field) Values {
	out := Values{}
	for _, f := range fields {
		switch {
		case f.Type == Repeater:
			rows := make([]Values, f.MinItems)
			for i := range rows {
				rows[i] = Defaults(f.Fields)
			}
			out[f.Name] = rows
		case f.Default != nil:
			out[f.Name] = f.Default
		case f.Type == Toggle:
			out[f.Name] = false
		case f.Type == Tags:
			out[f.Name] = []string(nil)
		default:
			out[f.Name] = ""
		}
	}
	return out
}

// FormDefaults returns the defaults of every top-level field of form.
func FormDefaults(form Form) Values {
	var fields []Field
	for _, st := range form.Steps {
		fields = append(fields, st.Fields...)
	}
	return Defaults(fields)
}
