// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import "webstories/internal/models"

// Accepted image types for uploads.
var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

func textPositionOptions() []Option {
	labels := map[models.TextPosition]string{
		models.TextPositionCenter: "Center",
		models.TextPositionLeft:   "Left",
		models.TextPositionRight:  "Right",
		models.TextPositionBottom: "Bottom",
	}
	opts := make([]Option, len(models.TextPositions))
	for i, p := range models.TextPositions {
		opts[i] = Option{Value: string(p), Label: labels[p]}
	}
	return opts
}

// SlideFields are the fields of one slide in the story wizard.
func SlideFields() []Field {
	return []Field{
		{Name: "title", Label: "Slide Title", Type: Text, MaxLength: 255, Persisted: true,
			Placeholder: "Give this slide a title"},
		{Name: "text_active", Label: "Enable Text", Type: Toggle, Default: true, Persisted: true},
		{Name: "image_active", Label: "Enable Image", Type: Toggle, Default: true},
		{Name: "zoom_effect", Label: "Zoom Effect", Type: Toggle, Default: false, Persisted: true,
			VisibleWhen: "image_active", Help: "Add zoom animation to images"},
		{Name: "text_position", Label: "Text Position", Type: Select, Default: string(models.TextPositionCenter),
			Options: textPositionOptions(), Persisted: true, VisibleWhen: "text_active"},
		{Name: "content", Label: "Slide Content", Type: RichText, Persisted: true,
			VisibleWhen: "text_active", Placeholder: "Write your engaging content here..."},
		{Name: "image", Label: "Slide Image", Type: File, Accept: imageTypes,
			VisibleWhen: "image_active", Help: "Upload image - will be optimized for web delivery"},
		{Name: "cta_button_show", Label: "Show CTA Button", Type: Toggle, Default: false, Persisted: true},
		{Name: "cta_link", Label: "CTA Link", Type: Text, MaxLength: 255, Persisted: true,
			VisibleWhen: "cta_button_show", Placeholder: "https://example.com"},
	}
}

// PostResource is the web story resource. The category select has no
// options until the caller supplies them with Form.WithOptions.
func PostResource() Resource {
	return Resource{
		Slug:        "posts",
		Label:       "Web Story",
		PluralLabel: "Web Stories",
		Form: Form{Steps: []Step{
			{
				Key: "details", Label: "Story Details",
				Description: "Basic information about your web story",
				Fields: []Field{
					{Name: "title", Label: "Story Title", Type: Text, Required: true, MaxLength: 255, Persisted: true,
						Placeholder: "Enter an engaging title for your story"},
					{Name: "slug", Label: "Slug", Type: Text, MaxLength: 255, Unique: true, Persisted: true,
						Help: "Leave empty to generate it from the title"},
					{Name: "category_id", Label: "Category", Type: Select, Persisted: true},
					{Name: "is_active", Label: "Publish Story", Type: Toggle, Default: true, Persisted: true,
						Help: "Make this story visible to visitors"},
				},
			},
			{
				Key: "seo", Label: "SEO",
				Description: "Search engine metadata. Empty fields can be generated from the story.",
				Fields: []Field{
					{Name: "meta_title", Label: "Meta Title", Type: Text, MaxLength: 60, Persisted: true},
					{Name: "meta_description", Label: "Meta Description", Type: Textarea, MaxLength: 160, Persisted: true},
					{Name: "meta_keywords", Label: "Meta Keywords", Type: Tags, MaxLength: 50, Persisted: true,
						Help: "Separate keywords with commas"},
				},
			},
			{
				Key: "cover", Label: "Cover Image",
				Description: "The featured image shown in story listings",
				Fields: []Field{
					{Name: "cover", Label: "Cover Image", Type: File, Accept: imageTypes},
				},
			},
			{
				Key: "slides", Label: "Slides",
				Description: "Create engaging slides for your web story",
				Fields: []Field{
					{Name: "slides", Label: "Slides", Type: Repeater, Fields: SlideFields(), MinItems: 1,
						AddLabel: "Add New Slide", Persisted: true, Cloneable: true,
						Help: "Create multiple slides for your web story. Each slide can contain text, images, or both."},
				},
			},
		}},
		Table: Table{
			Columns: []Column{
				{Name: "id", Label: "ID", Kind: ColumnText, Sortable: true},
				{Name: "preview", Label: "Preview", Kind: ColumnImage},
				{Name: "title", Label: "Story Title", Kind: ColumnText, Sortable: true, Searchable: true, Limit: 40},
				{Name: "category", Label: "Category", Kind: ColumnBadge},
				{Name: "slides_count", Label: "Slides", Kind: ColumnBadge},
				{Name: "has_zoom_effects", Label: "Effects", Kind: ColumnBoolean},
				{Name: "is_active", Label: "Status", Kind: ColumnToggle, Sortable: true},
				{Name: "created_at", Label: "Created", Kind: ColumnDateTime, Sortable: true},
				{Name: "updated_at", Label: "Updated", Kind: ColumnSince, Sortable: true, Hidden: true},
			},
			Filters: []Filter{
				{Name: "is_active", Label: "Status", Kind: FilterTernary, Placeholder: "All Stories",
					TrueLabel: "Published Stories", FalseLabel: "Draft Stories"},
				{Name: "category_id", Label: "Category", Kind: FilterSelect, Placeholder: "All Categories"},
				{Name: "has_effects", Label: "Has Effects", Kind: FilterToggle},
				{Name: "has_cta", Label: "Has CTA", Kind: FilterToggle},
			},
			RowActions: []Action{
				{Name: "edit", Label: "Edit"},
				{Name: "delete", Label: "Delete", Confirm: true, Destructive: true},
			},
			BulkActions: []Action{
				{Name: "publish", Label: "Publish Selected", Confirm: true},
				{Name: "unpublish", Label: "Move to Draft", Confirm: true},
				{Name: "generate_seo", Label: "Generate SEO", Confirm: true},
				{Name: "delete", Label: "Delete Selected", Confirm: true, Destructive: true},
			},
			DefaultSort: Sort{Column: "created_at", Desc: true},
			EmptyState: EmptyState{
				Heading:     "No Web Stories Yet",
				Description: "Create your first engaging web story to get started.",
			},
			PerPage: 10,
		},
	}
}

// CategoryResource is the category resource.
func CategoryResource() Resource {
	return Resource{
		Slug:        "categories",
		Label:       "Category",
		PluralLabel: "Categories",
		Form: Form{Steps: []Step{{
			Key: "details", Label: "Category",
			Fields: []Field{
				{Name: "name", Label: "Name", Type: Text, Required: true, MaxLength: 255, Persisted: true},
				{Name: "slug", Label: "Slug", Type: Text, MaxLength: 255, Unique: true, Persisted: true,
					Help: "Leave empty to generate it from the name"},
				{Name: "is_active", Label: "Active", Type: Toggle, Default: true, Persisted: true},
			},
		}}},
		Table: Table{
			Columns: []Column{
				{Name: "name", Label: "Name", Kind: ColumnText, Sortable: true, Searchable: true},
				{Name: "slug", Label: "Slug", Kind: ColumnText},
				{Name: "post_count", Label: "Stories", Kind: ColumnBadge},
				{Name: "is_active", Label: "Active", Kind: ColumnToggle},
			},
			Filters: []Filter{
				{Name: "is_active", Label: "Status", Kind: FilterTernary, Placeholder: "All",
					TrueLabel: "Active", FalseLabel: "Inactive"},
			},
			RowActions: []Action{
				{Name: "edit", Label: "Edit"},
				{Name: "delete", Label: "Delete", Confirm: true, Destructive: true},
			},
			DefaultSort: Sort{Column: "name"},
			EmptyState: EmptyState{
				Heading:     "No Categories Yet",
				Description: "Categories group your stories.",
			},
		},
	}
}
