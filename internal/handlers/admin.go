// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the admin panel, the
// public API, and the login flow.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"webstories/internal/models"
	"webstories/internal/render"
	"webstories/internal/resource"
	"webstories/internal/stories"
	"webstories/internal/store"
)

// Admin groups all admin panel HTTP handlers.
type Admin struct {
	renderer *render.Renderer
	stories  *stories.Service
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, svc *stories.Service) *Admin {
	return &Admin{renderer: renderer, stories: svc}
}

// postRow is a story in the dashboard's recent list.
type postRow struct {
	Post    *models.Post
	Preview string
}

// Dashboard renders the admin dashboard with summary statistics.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := a.stories.DashboardStats(ctx)
	if err != nil {
		a.serverError(w, "dashboard stats failed", err)
		return
	}
	recent, err := a.stories.RecentPosts(ctx, 5)
	if err != nil {
		a.serverError(w, "recent posts failed", err)
		return
	}

	library := a.stories.Library()
	rows := make([]postRow, len(recent))
	for i := range recent {
		rows[i] = postRow{Post: &recent[i], Preview: library.URLs(recent[i].PreviewImage()).Thumb}
	}

	a.page(w, r, "dashboard", "Dashboard", "dashboard", map[string]any{
		"Stats":  stats,
		"Recent": rows,
	})
}

// --- Categories ---

// tableRow is one row of a resource table. Cells are keyed by column name.
type tableRow struct {
	ID    int64
	Cells map[string]any
}

// toggleView renders an HTMX switch that flips a boolean column.
type toggleView struct {
	URL    string
	Active bool
}

// CategoriesList renders the category table.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.CategoryFilter{Search: q.Get("search"), Active: ternary(q.Get("is_active"))}

	items, err := a.stories.ListCategories(r.Context(), f)
	if err != nil {
		a.serverError(w, "list categories failed", err)
		return
	}

	rows := make([]tableRow, len(items))
	for i, c := range items {
		rows[i] = tableRow{ID: c.ID, Cells: map[string]any{
			"name":       c.Name,
			"slug":       c.Slug,
			"post_count": strconv.Itoa(c.PostCount),
			"is_active":  categoryToggle(&c),
		}}
	}

	a.page(w, r, "categories_list", "Categories", "categories", map[string]any{
		"Resource": resource.CategoryResource(),
		"Rows":     rows,
		"Query":    q,
	})
}

// CategoryNew renders the empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	res := resource.CategoryResource()
	a.categoryForm(w, r, http.StatusOK, nil, resource.FormDefaults(res.Form), nil)
}

// CategoryCreate validates and stores a new category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	a.saveCategory(w, r, nil)
}

// CategoryEdit renders the form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadCategory(w, r)
	if !ok {
		return
	}
	a.categoryForm(w, r, http.StatusOK, c, categoryValues(c), nil)
}

// CategoryUpdate validates and saves an existing category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadCategory(w, r)
	if !ok {
		return
	}
	a.saveCategory(w, r, c)
}

func (a *Admin) saveCategory(w http.ResponseWriter, r *http.Request, current *models.Category) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var excludeID int64
	if current != nil {
		excludeID = current.ID
	}
	form := resource.CategoryResource().Form
	values := resource.FromForm(form, r.PostForm)
	result, err := resource.Validate(ctx, form, values, func(ctx context.Context, _, value string) (bool, error) {
		return a.stories.CategorySlugTaken(ctx, value, excludeID)
	})
	if err != nil {
		a.serverError(w, "validate category failed", err)
		return
	}
	if !result.OK() {
		a.categoryForm(w, r, http.StatusUnprocessableEntity, current, values, result.Errors)
		return
	}

	in := categoryInput(values)
	var saved *models.Category
	if current == nil {
		saved, err = a.stories.CreateCategory(ctx, in)
	} else {
		saved, err = a.stories.UpdateCategory(ctx, current.ID, in)
	}
	if fields := validationFields(err); fields != nil {
		a.categoryForm(w, r, http.StatusUnprocessableEntity, current, values, fields)
		return
	}
	if err != nil {
		a.serverError(w, "save category failed", err)
		return
	}

	setFlash(w, "success", fmt.Sprintf("Category %q saved.", saved.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (a *Admin) categoryForm(w http.ResponseWriter, r *http.Request, status int, c *models.Category, values resource.Values, errs map[string]string) {
	title, action := "New Category", "/admin/categories"
	if c != nil {
		title, action = "Edit Category", fmt.Sprintf("/admin/categories/%d", c.ID)
	}
	a.pageStatus(w, r, status, "category_form", title, "categories", map[string]any{
		"Resource": resource.CategoryResource(),
		"Values":   values,
		"Errors":   nonNil(errs),
		"Warnings": map[string]string{},
		"Images":   map[string]string{},
		"Category": c,
		"Action":   action,
	})
}

// CategoryToggle flips is_active and returns the new switch.
func (a *Admin) CategoryToggle(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadCategory(w, r)
	if !ok {
		return
	}
	c, err := a.stories.SetCategoryActive(r.Context(), c.ID, !c.IsActive)
	if err != nil {
		a.serverError(w, "toggle category failed", err)
		return
	}
	a.renderer.Fragment(w, "categories_list", "toggle", categoryToggle(c))
}

// CategoryDelete removes a category together with its stories.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := a.stories.DeleteCategory(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, "delete category failed", err)
		return
	}
	deleted(w, r, "/admin/categories")
}

func (a *Admin) loadCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	c, err := a.stories.GetCategory(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		a.serverError(w, "load category failed", err)
		return nil, false
	}
	return c, true
}

func categoryToggle(c *models.Category) toggleView {
	return toggleView{URL: fmt.Sprintf("/admin/categories/%d/toggle", c.ID), Active: c.IsActive}
}

// --- Shared helpers ---

// page renders an admin page with the flashes carried by the request.
func (a *Admin) page(w http.ResponseWriter, r *http.Request, name, title, section string, data map[string]any) {
	a.pageStatus(w, r, http.StatusOK, name, title, section, data)
}

func (a *Admin) pageStatus(w http.ResponseWriter, r *http.Request, status int, name, title, section string, data map[string]any) {
	a.renderer.PageStatus(w, r, status, name, &render.PageData{
		Title:   title,
		Section: section,
		Data:    data,
		Flashes: takeFlashes(w, r),
	})
}

func (a *Admin) serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// parseID reads the {id} URL parameter.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// deleted answers a delete. HTMX callers get an empty body that removes
// the row; plain requests are sent back to the list.
func deleted(w http.ResponseWriter, r *http.Request, list string) {
	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, list, http.StatusSeeOther)
}

// validationFields returns the field messages of a *stories.ValidationError.
func validationFields(err error) map[string]string {
	var ve *stories.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// ternary parses an all/true/false filter value.
func ternary(raw string) *bool {
	switch raw {
	case "1", "true":
		v := true
		return &v
	case "0", "false":
		v := false
		return &v
	}
	return nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// listURL rebuilds the current list URL with one parameter replaced.
func listURL(path string, q url.Values, key, value string) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = append([]string(nil), v...)
	}
	if value == "" {
		next.Del(key)
	} else {
		next.Set(key, value)
	}
	if enc := next.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
