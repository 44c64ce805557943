package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mrolandas/burburiuok/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(env *testEnv) *testRouterWithAuth {
	h := NewAuthHandler(env.profiles, env.responder, metrics.NewNoopMetrics(), "http://localhost:8080")

	r := newHandlerRouter()
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/register", h.Register)

	return &testRouterWithAuth{r: r}
}

type testRouterWithAuth struct {
	r http.Handler
}

func (tr *testRouterWithAuth) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(
		context.Background(), http.MethodPost, path, strings.NewReader(form.Encode()),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tr.r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.profiles.Register(context.Background(), "alice@example.test", "s3cret-pass", "Alice", "")
	require.NoError(t, err)

	tr := authRouter(env)
	w := tr.postForm(t, "/login", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"), "login must establish a session")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.test", body["email"])
}

func TestAuthHandler_LoginRedirect(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.profiles.Register(context.Background(), "alice@example.test", "s3cret-pass", "Alice", "")
	require.NoError(t, err)

	tr := authRouter(env)

	w := tr.postForm(t, "/login", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
		"redirect": {"/admin/concepts"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/concepts", w.Header().Get("Location"))

	// Unsafe targets fall back to the JSON response
	w = tr.postForm(t, "/login", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
		"redirect": {"//evil.com/phish"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	env := newTestEnv(t, true)

	tr := authRouter(env)
	w := tr.postForm(t, "/login", url.Values{
		"email":    {"nobody@example.test"},
		"password": {"whatever1"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LoginAgainstUnmigratedSchema(t *testing.T) {
	// store.New without Migrate: the profiles table does not exist
	env := newTestEnv(t, false)

	tr := authRouter(env)
	w := tr.postForm(t, "/login", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_MIGRATION_REQUIRED")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	env := newTestEnv(t, true)
	tr := authRouter(env)

	// Short password rejected
	w := tr.postForm(t, "/register", url.Values{
		"email":    {"alice@example.test"},
		"password": {"short"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid registration
	w = tr.postForm(t, "/register", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Duplicate email conflicts
	w = tr.postForm(t, "/register", url.Values{
		"email":    {"alice@example.test"},
		"password": {"s3cret-pass"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t, true)
	tr := authRouter(env)

	w := tr.postForm(t, "/logout", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)
}
