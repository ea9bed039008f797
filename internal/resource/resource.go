// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resource declares the admin panel's forms and tables as plain
// values. The render package draws them and Validate checks submissions
// against them.
package resource

// FieldType selects the input widget and how a value is read.
type FieldType string

const (
	Text     FieldType = "text"
	Textarea FieldType = "textarea"
	RichText FieldType = "richtext"
	Toggle   FieldType = "toggle"
	Select   FieldType = "select"
	Tags     FieldType = "tags"
	File     FieldType = "file"
	Repeater FieldType = "repeater"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form input.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	MaxLength   int
	URL         bool
	Unique      bool
	Options     []Option
	Default     any
	Help        string
	Placeholder string

	// VisibleWhen names a sibling toggle. The field is shown, and
	// validated, only while that toggle is on.
	VisibleWhen string

	// Persisted is false for fields that only drive the form, such as a
	// toggle that reveals other fields.
	Persisted bool

	// Accept lists MIME types for file fields.
	Accept []string

	// Fields, MinItems, AddLabel, and Cloneable apply to repeaters.
	// Cloneable rows get a duplicate button.
	Fields    []Field
	MinItems  int
	AddLabel  string
	Cloneable bool
}

// Visible reports whether f is shown given the values of its scope.
func (f Field) Visible(values Values) bool {
	if f.VisibleWhen == "" {
		return true
	}
	return values.Bool(f.VisibleWhen)
}

// Step is one page of a wizard form.
type Step struct {
	Key         string
	Label       string
	Description string
	Fields      []Field
}

// Form is a wizard made of steps.
type Form struct {
	Steps []Step
}

// Field returns the top-level field with the given name.
func (f Form) Field(name string) (Field, bool) {
	for _, st := range f.Steps {
		for _, fd := range st.Fields {
			if fd.Name == name {
				return fd, true
			}
		}
	}
	return Field{}, false
}

// WithOptions returns a copy of f whose named select field offers opts.
func (f Form) WithOptions(name string, opts []Option) Form {
	steps := make([]Step, len(f.Steps))
	for i, st := range f.Steps {
		fields := make([]Field, len(st.Fields))
		copy(fields, st.Fields)
		for j := range fields {
			if fields[j].Name == name {
				fields[j].Options = opts
			}
		}
		st.Fields = fields
		steps[i] = st
	}
	return Form{Steps: steps}
}

// ColumnKind selects how a table cell renders.
type ColumnKind string

const (
	ColumnText     ColumnKind = "text"
	ColumnImage    ColumnKind = "image"
	ColumnBadge    ColumnKind = "badge"
	ColumnBoolean  ColumnKind = "boolean"
	ColumnToggle   ColumnKind = "toggle"
	ColumnDateTime ColumnKind = "datetime"
	ColumnSince    ColumnKind = "since"
)

// Column is one table column.
type Column struct {
	Name       string
	Label      string
	Kind       ColumnKind
	Sortable   bool
	Searchable bool
	// Limit truncates text cells; zero means no limit.
	Limit int
	// Hidden columns can be toggled on by the user.
	Hidden bool
}

// FilterKind selects the filter widget.
type FilterKind string

const (
	// FilterTernary offers all, true, and false.
	FilterTernary FilterKind = "ternary"
	// FilterToggle is a checkbox that narrows when checked.
	FilterToggle FilterKind = "toggle"
	// FilterSelect narrows to one option.
	FilterSelect FilterKind = "select"
)

// Filter is one table filter.
type Filter struct {
	Name        string
	Label       string
	Kind        FilterKind
	Placeholder string
	TrueLabel   string
	FalseLabel  string
	Options     []Option
}

// Action is a bulk or row action.
type Action struct {
	Name        string
	Label       string
	Confirm     bool
	Destructive bool
}

// Sort is a column and a direction.
type Sort struct {
	Column string
	Desc   bool
}

// EmptyState is shown when the table has no rows.
type EmptyState struct {
	Heading     string
	Description string
}

// Table describes a listing page.
type Table struct {
	Columns     []Column
	Filters     []Filter
	RowActions  []Action
	BulkActions []Action
	DefaultSort Sort
	EmptyState  EmptyState
	PerPage     int
}

// SortColumn reports whether name is a sortable column.
func (t Table) SortColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name && c.Sortable {
			return true
		}
	}
	return false
}

// Resource ties a form and a table to a model.
type Resource struct {
	Slug        string
	Label       string
	PluralLabel string
	Form        Form
	Table       Table
}
