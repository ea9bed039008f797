// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"webstories/internal/imaging"
	"webstories/internal/models"
	"webstories/internal/resource"
	"webstories/internal/stories"
	"webstories/internal/store"
)

// sortView builds the header links of a sortable table.
type sortView struct {
	path   string
	query  url.Values
	Column string
	Desc   bool
}

// URL returns the link that sorts by col, flipping the direction when col
// is already the sort column.
func (s sortView) URL(col string) string {
	dir := "asc"
	if col == s.Column && !s.Desc {
		dir = "desc"
	}
	q := url.Values{}
	for k, v := range s.query {
		q[k] = v
	}
	q.Set("sort", col)
	q.Set("dir", dir)
	q.Del("page")
	return s.path + "?" + q.Encode()
}

// Arrow marks the active sort column.
func (s sortView) Arrow(col string) string {
	if col != s.Column {
		return ""
	}
	if s.Desc {
		return " ↓"
	}
	return " ↑"
}

// pagerView is the pagination footer.
type pagerView struct {
	Page     int
	LastPage int
	Total    int
	From     int
	To       int
	PrevURL  string
	NextURL  string
}

func newPager(path string, q url.Values, page, perPage, total, shown int) pagerView {
	last := 1
	if total > 0 {
		last = (total + perPage - 1) / perPage
	}
	pv := pagerView{Page: page, LastPage: last, Total: total}
	if shown > 0 {
		pv.From = (page-1)*perPage + 1
		pv.To = pv.From + shown - 1
	}
	if page > 1 {
		pv.PrevURL = listURL(path, q, "page", strconv.Itoa(page-1))
	}
	if page < last {
		pv.NextURL = listURL(path, q, "page", strconv.Itoa(page+1))
	}
	return pv
}

// postFilter reads the table filters, sort, and page from the query.
func postFilter(q url.Values, table resource.Table) (store.PostFilter, sortView, int) {
	f := store.PostFilter{
		Search: q.Get("search"),
		Active: ternary(q.Get("is_active")),
		Limit:  table.PerPage,
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	on := true
	if q.Get("has_effects") == "1" {
		f.HasEffects = &on
	}
	if q.Get("has_cta") == "1" {
		f.HasCTA = &on
	}

	sv := sortView{path: "/admin/posts", query: q, Column: table.DefaultSort.Column, Desc: table.DefaultSort.Desc}
	if col := q.Get("sort"); table.SortColumn(col) {
		sv.Column, sv.Desc = col, q.Get("dir") == "desc"
	}
	f.Sort, f.Desc = sv.Column, sv.Desc

	page := 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		page = n
	}
	f.Offset = (page - 1) * table.PerPage
	return f, sv, page
}

// PostsList renders the story table.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	res, err := a.postResource(ctx)
	if err != nil {
		a.serverError(w, "load categories failed", err)
		return
	}
	f, sv, page := postFilter(q, res.Table)

	posts, total, err := a.stories.ListPosts(ctx, f)
	if err != nil {
		a.serverError(w, "list posts failed", err)
		return
	}

	library := a.stories.Library()
	rows := make([]tableRow, len(posts))
	for i := range posts {
		p := &posts[i]
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		rows[i] = tableRow{ID: p.ID, Cells: map[string]any{
			"id":               strconv.FormatInt(p.ID, 10),
			"preview":          library.URLs(p.PreviewImage()).Thumb,
			"title":            p.Title,
			"category":         category,
			"slides_count":     strconv.Itoa(p.SlidesCount()),
			"has_zoom_effects": p.HasZoomEffects(),
			"is_active":        postToggle(p),
			"created_at":       p.CreatedAt,
			"updated_at":       p.UpdatedAt,
		}}
	}

	a.page(w, r, "posts_list", "Web Stories", "posts", map[string]any{
		"Resource": res,
		"Query":    q,
		"Rows":     rows,
		"Sort":     sv,
		"Pager":    newPager("/admin/posts", q, page, res.Table.PerPage, total, len(rows)),
	})
}

// postResource returns the post resource with category choices filled in.
func (a *Admin) postResource(ctx context.Context) (resource.Resource, error) {
	res := resource.PostResource()
	cats, err := a.stories.ListCategories(ctx, store.CategoryFilter{})
	if err != nil {
		return res, err
	}
	opts := make([]resource.Option, len(cats))
	for i, c := range cats {
		opts[i] = resource.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name}
	}
	res.Form = res.Form.WithOptions("category_id", opts)

	filters := append([]resource.Filter(nil), res.Table.Filters...)
	for i := range filters {
		if filters[i].Name == "category_id" {
			filters[i].Options = opts
		}
	}
	res.Table.Filters = filters
	return res, nil
}

// PostNew renders the empty story wizard.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	res, err := a.postResource(r.Context())
	if err != nil {
		a.serverError(w, "load categories failed", err)
		return
	}
	a.postForm(w, r, http.StatusOK, res, nil, resource.FormDefaults(res.Form), resource.Result{})
}

// PostEdit renders the wizard for an existing story.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	res, err := a.postResource(r.Context())
	if err != nil {
		a.serverError(w, "load categories failed", err)
		return
	}
	a.postForm(w, r, http.StatusOK, res, p, postValues(p), resource.Result{})
}

// PostCreate validates the wizard and stores a new story.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	a.savePost(w, r, nil)
}

// PostUpdate validates the wizard and saves an existing story.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	a.savePost(w, r, p)
}

func (a *Admin) savePost(w http.ResponseWriter, r *http.Request, current *models.Post) {
	ctx := r.Context()
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res, err := a.postResource(ctx)
	if err != nil {
		a.serverError(w, "load categories failed", err)
		return
	}

	var excludeID int64
	if current != nil {
		excludeID = current.ID
	}
	values := resource.FromForm(res.Form, r.PostForm)
	result, err := resource.Validate(ctx, res.Form, values, func(ctx context.Context, _, value string) (bool, error) {
		return a.stories.PostSlugTaken(ctx, value, excludeID)
	})
	if err != nil {
		a.serverError(w, "validate post failed", err)
		return
	}

	in, inputErrs := postInput(values)
	for k, msg := range inputErrs {
		if result.Errors == nil {
			result.Errors = map[string]string{}
		}
		result.Errors[k] = msg
	}
	if !result.OK() {
		a.postForm(w, r, http.StatusUnprocessableEntity, res, current, values, result)
		return
	}

	var saved *models.Post
	if current == nil {
		saved, err = a.stories.CreatePost(ctx, in)
	} else {
		saved, err = a.stories.UpdatePost(ctx, current.ID, in)
	}
	if fields := validationFields(err); fields != nil {
		result.Errors = fields
		a.postForm(w, r, http.StatusUnprocessableEntity, res, current, values, result)
		return
	}
	if err != nil {
		a.serverError(w, "save post failed", err)
		return
	}

	if uploadErrs := a.attachUploads(ctx, r, saved, values); len(uploadErrs) > 0 {
		setFlash(w, "warning", fmt.Sprintf("Story %q saved, but some images were rejected: %s", saved.Title, strings.Join(uploadErrs, "; ")))
	} else {
		setFlash(w, "success", fmt.Sprintf("Story %q saved.", saved.Title))
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/posts/%d/edit", saved.ID), http.StatusSeeOther)
}

func (a *Admin) postForm(w http.ResponseWriter, r *http.Request, status int, res resource.Resource, p *models.Post, values resource.Values, result resource.Result) {
	title, action := "New Web Story", "/admin/posts"
	images := map[string]string{}
	if p != nil {
		title, action = "Edit Web Story", fmt.Sprintf("/admin/posts/%d", p.ID)
		library := a.stories.Library()
		if p.Cover != nil {
			images["cover"] = library.URLs(p.Cover).Thumb
		}
		for i := range p.Slides {
			if img := p.Slides[i].Image; img != nil {
				images[resource.ItemKey("slides", i, "image")] = library.URLs(img).Thumb
			}
		}
	}
	a.pageStatus(w, r, status, "post_form", title, "posts", map[string]any{
		"Resource": res,
		"Values":   values,
		"Errors":   nonNil(result.Errors),
		"Warnings": nonNil(result.Warnings),
		"Images":   images,
		"Blank":    resource.Defaults(resource.SlideFields()),
		"Post":     p,
		"Action":   action,
	})
}

// attachUploads stores the cover and slide images submitted with the
// wizard. Rejected files are reported by field label.
func (a *Admin) attachUploads(ctx context.Context, r *http.Request, p *models.Post, values resource.Values) []string {
	if r.MultipartForm == nil {
		return nil
	}
	rows := values.Items("slides")
	order := resource.RowOrder("slides", r.PostForm)

	var problems []string
	for key, headers := range r.MultipartForm.File {
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		data, err := readUpload(headers[0])
		if err != nil {
			problems = append(problems, "could not read "+headers[0].Filename)
			continue
		}
		name := headers[0].Filename

		if key == "cover" {
			if _, err := a.stories.AttachCover(ctx, p.ID, name, data); err != nil {
				problems = append(problems, "cover "+uploadMessage(err))
			}
			continue
		}
		rep, idx, field, ok := resource.ParseItemName(key)
		if !ok || rep != "slides" || field != "image" {
			continue
		}
		pos, ok := order[idx]
		if !ok || pos >= len(p.Slides) || pos >= len(rows) || !rows[pos].Bool("image_active") {
			continue
		}
		if _, err := a.stories.AttachSlideImage(ctx, p.Slides[pos].ID, name, data); err != nil {
			problems = append(problems, fmt.Sprintf("slide %d image %s", pos+1, uploadMessage(err)))
		}
	}
	return problems
}

// PostDelete removes a story.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := a.stories.DeletePost(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, "delete post failed", err)
		return
	}
	deleted(w, r, "/admin/posts")
}

// PostToggle flips is_active and returns the new switch.
func (a *Admin) PostToggle(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	p, err := a.stories.SetPostActive(r.Context(), p.ID, !p.IsActive)
	if err != nil {
		a.serverError(w, "toggle post failed", err)
		return
	}
	a.renderer.Fragment(w, "posts_list", "toggle", postToggle(p))
}

// PostsBulk applies a bulk action to the selected stories.
func (a *Admin) PostsBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ids := parseIDs(r.PostForm["ids"])
	back := "/admin/posts"
	if len(ids) == 1 && r.PostForm.Get("action") == "generate_seo" {
		back = fmt.Sprintf("/admin/posts/%d/edit", ids[0])
	}
	if len(ids) == 0 {
		setFlash(w, "warning", "No stories selected.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	var msg string
	switch action := r.PostForm.Get("action"); action {
	case "publish":
		n, err := a.stories.Publish(ctx, ids)
		if err != nil {
			a.serverError(w, "bulk publish failed", err)
			return
		}
		msg = fmt.Sprintf("%d stories published.", n)
	case "unpublish":
		n, err := a.stories.Unpublish(ctx, ids)
		if err != nil {
			a.serverError(w, "bulk unpublish failed", err)
			return
		}
		msg = fmt.Sprintf("%d stories moved to draft.", n)
	case "delete":
		n, err := a.stories.BulkDelete(ctx, ids)
		if err != nil {
			a.serverError(w, "bulk delete failed", err)
			return
		}
		msg = fmt.Sprintf("%d stories deleted.", n)
	case "generate_seo":
		n, err := a.stories.GenerateSEO(ctx, ids)
		if err != nil {
			a.serverError(w, "generate seo failed", err)
			return
		}
		msg = fmt.Sprintf("SEO generated for %d stories.", n)
	default:
		slog.Warn("unknown bulk action", "action", action)
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	setFlash(w, "success", msg)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// --- Slides ---

type slideResponse struct {
	ID       int64  `json:"id"`
	PostID   int64  `json:"post_id"`
	Position int    `json:"position"`
	Warning  string `json:"warning,omitempty"`
}

// SlideAdd appends a slide to a story.
func (a *Admin) SlideAdd(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r)
	if !ok {
		return
	}
	a.writeSlide(w, r, func(ctx context.Context, in stories.SlideInput) (*models.Slide, error) {
		return a.stories.AddSlide(ctx, postID, in)
	}, http.StatusCreated)
}

// SlideUpdate saves one slide.
func (a *Admin) SlideUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a.writeSlide(w, r, func(ctx context.Context, in stories.SlideInput) (*models.Slide, error) {
		return a.stories.UpdateSlide(ctx, id, in)
	}, http.StatusOK)
}

func (a *Admin) writeSlide(w http.ResponseWriter, r *http.Request, save func(context.Context, stories.SlideInput) (*models.Slide, error), status int) {
	if err := r.ParseForm(); err != nil {
		writeMediaError(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	row := resource.FromForm(resource.Form{Steps: []resource.Step{{Fields: resource.SlideFields()}}}, r.PostForm)
	// The slide editor has no image toggle of its own; an absent field
	// means the image is shown so zoom_effect is kept.
	if _, ok := r.PostForm["image_active"]; !ok {
		row["image_active"] = true
	}
	in, _ := slideInput(row)

	sl, err := save(r.Context(), in)
	if errors.Is(err, stories.ErrNotFound) {
		writeMediaError(w, "Not found.", http.StatusNotFound)
		return
	}
	if fields := validationFields(err); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
		return
	}
	if err != nil {
		slog.Error("save slide failed", "error", err)
		writeMediaError(w, "Failed to save slide.", http.StatusInternalServerError)
		return
	}

	resp := slideResponse{ID: sl.ID, PostID: sl.PostID, Position: sl.Position}
	if sl.CTAButtonShow && sl.CTALink != nil && !sl.IsValidCTALink() {
		resp.Warning = "This CTA link does not look like a valid URL."
	}
	writeJSON(w, status, resp)
}

// SlideDuplicate copies a slide into the position after it.
func (a *Admin) SlideDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	sl, err := a.stories.DuplicateSlide(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		writeMediaError(w, "Not found.", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("duplicate slide failed", "slide_id", id, "error", err)
		writeMediaError(w, "Failed to duplicate slide.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, slideResponse{ID: sl.ID, PostID: sl.PostID, Position: sl.Position})
}

// SlideDelete removes one slide.
func (a *Admin) SlideDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := a.stories.DeleteSlide(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, "delete slide failed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SlidesReorder sets the display order from the posted "order" IDs.
func (a *Admin) SlidesReorder(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	err := a.stories.ReorderSlides(r.Context(), postID, parseIDs(r.PostForm["order"]))
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if fields := validationFields(err); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
		return
	}
	if err != nil {
		a.serverError(w, "reorder slides failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Admin) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	p, err := a.stories.GetPost(r.Context(), id)
	if errors.Is(err, stories.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		a.serverError(w, "load post failed", err)
		return nil, false
	}
	return p, true
}

func postToggle(p *models.Post) toggleView {
	return toggleView{URL: fmt.Sprintf("/admin/posts/%d/toggle", p.ID), Active: p.IsActive}
}

// maxFormSize bounds a wizard submission with all of its images.
const maxFormSize = 64 << 20

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	err := r.ParseMultipartForm(imaging.MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// parseIDs keeps the positive integers of raw, in order.
func parseIDs(raw []string) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// readUpload reads at most one byte past the upload limit so oversized
// files still fail imaging.Inspect.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, imaging.MaxUploadSize+1))
}
