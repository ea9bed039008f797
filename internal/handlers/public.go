// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"webstories/internal/render"
)

// Public groups handlers for the public-facing pages.
type Public struct {
	renderer *render.Renderer
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer) *Public {
	return &Public{renderer: renderer}
}

// Welcome renders the static landing page.
func (p *Public) Welcome(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "welcome", &render.PageData{Title: "Web Stories"})
}
