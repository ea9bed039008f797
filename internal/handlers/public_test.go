package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	env := newTestEnv(t)
	pub := NewPublic(env.renderer)

	w := httptest.NewRecorder()
	pub.Welcome(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}
