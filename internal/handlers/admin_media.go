// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"webstories/internal/imaging"
	"webstories/internal/models"
	"webstories/internal/stories"
)

// uploadResponse describes a stored image.
type uploadResponse struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	StoryURL string `json:"story_url"`
	ThumbURL string `json:"thumb_url"`
	Filename string `json:"filename"`
	Size     string `json:"size"`
	Type     string `json:"type"`
}

// CoverUpload replaces the cover image of a story.
func (a *Admin) CoverUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a.upload(w, r, func(ctx context.Context, name string, data []byte) (*models.Media, error) {
		return a.stories.AttachCover(ctx, id, name, data)
	})
}

// SlideImageUpload replaces the image of a slide.
func (a *Admin) SlideImageUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a.upload(w, r, func(ctx context.Context, name string, data []byte) (*models.Media, error) {
		return a.stories.AttachSlideImage(ctx, id, name, data)
	})
}

func (a *Admin) upload(w http.ResponseWriter, r *http.Request, attach func(context.Context, string, []byte) (*models.Media, error)) {
	// Limit request body to the upload limit plus some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1024)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		writeMediaError(w, "The file "+uploadMessage(imaging.ErrTooLarge), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMediaError(w, "No file provided.", http.StatusBadRequest)
		return
	}
	file.Close()
	data, err := readUpload(header)
	if err != nil {
		writeMediaError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}

	m, err := attach(r.Context(), header.Filename, data)
	switch {
	case errors.Is(err, stories.ErrNotFound):
		writeMediaError(w, "Not found.", http.StatusNotFound)
		return
	case isUploadRejection(err):
		writeMediaError(w, "The file "+uploadMessage(err), http.StatusUnprocessableEntity)
		return
	case err != nil:
		slog.Error("image upload failed", "error", err, "filename", header.Filename)
		writeMediaError(w, "Failed to upload file.", http.StatusInternalServerError)
		return
	}

	urls := a.stories.Library().URLs(m)
	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       m.ID,
		URL:      urls.Original,
		StoryURL: urls.Story,
		ThumbURL: urls.Thumb,
		Filename: m.OriginalName,
		Size:     m.HumanSize(),
		Type:     m.MimeType,
	})
}

func isUploadRejection(err error) bool {
	return errors.Is(err, imaging.ErrUnsupportedType) ||
		errors.Is(err, imaging.ErrTooLarge) ||
		errors.Is(err, imaging.ErrTooManyPixels)
}

// uploadMessage completes "The <field> ..." for a rejected upload.
func uploadMessage(err error) string {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedType):
		return "must be a file of type: jpeg, png, webp."
	case errors.Is(err, imaging.ErrTooLarge):
		return fmt.Sprintf("must not be greater than %d kilobytes.", imaging.MaxUploadSize/1024)
	case errors.Is(err, imaging.ErrTooManyPixels):
		return "has dimensions that are too large."
	default:
		return "failed to upload."
	}
}

// writeMediaError writes a JSON error response for media operations.
func writeMediaError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
