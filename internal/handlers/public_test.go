package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrolandas/burburiuok/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicRouter(env *testEnv) *gin.Engine {
	h := NewPublicHandler(env.concepts, env.search, env.responder)

	r := newHandlerRouter()
	r.GET("/api/concepts", h.ListConcepts)
	r.GET("/api/concepts/:slug", h.ConceptBySlug)
	r.GET("/api/search", h.Search)
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPublicHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	_, err := env.concepts.Create(ctx, services.ConceptInput{
		Slug:      "pointers",
		Title:     "Pointers",
		Published: true,
	}, "admin-1")
	require.NoError(t, err)
	_, err = env.concepts.Create(ctx, services.ConceptInput{
		Slug:  "draft",
		Title: "Draft",
	}, "admin-1")
	require.NoError(t, err)

	r := publicRouter(env)

	w := get(t, r, "/api/concepts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pointers")
	assert.NotContains(t, w.Body.String(), "draft")

	w = get(t, r, "/api/concepts/pointers")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, r, "/api/concepts/draft")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicHandler_SearchQueryTooShort(t *testing.T) {
	env := newTestEnv(t, true)
	r := publicRouter(env)

	w := get(t, r, "/api/search?q=ab")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 3 characters")
}

func TestPublicHandler_Search(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	_, err := env.concepts.Create(ctx, services.ConceptInput{
		Slug:      "goroutines",
		Title:     "Goroutines",
		Summary:   "Lightweight concurrency",
		Published: true,
	}, "admin-1")
	require.NoError(t, err)

	r := publicRouter(env)

	w := get(t, r, "/api/search?q=concurrency")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines")
}

func TestPublicHandler_UnmigratedSchemaIsPlainError(t *testing.T) {
	// A missing concepts table is not an auth-schema signal, so the public
	// surface reports an ordinary server error.
	env := newTestEnv(t, false)
	r := publicRouter(env)

	w := get(t, r, "/api/search?q=concurrency")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "AUTH_MIGRATION_REQUIRED")
}
