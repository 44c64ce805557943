package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// csrfRouter mirrors the production admin chain: session, logged-in admin,
// AdminGuard, then CSRFMiddleware.
func csrfRouter() *gin.Engine {
	r := setupTestRouter()

	r.Use(func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserID, "user-1")
		session.Set(SessionEmail, "admin@example.test")
		_ = session.Save()
		c.Next()
	})

	profiles := &fakeProfileSource{profile: &models.Profile{
		ID:      "user-1",
		Email:   "admin@example.test",
		AppRole: models.AppRoleAdmin,
	}}
	recorder := metrics.NewNoopMetrics()
	responder := NewMigrationResponder(recorder)
	r.Use(AdminGuard(profiles, &captureSink{}, recorder, responder, 0))
	r.Use(CSRFMiddleware())

	r.GET("/admin/concepts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"concepts": []string{}})
	})
	r.POST("/admin/concepts", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"created": true})
	})

	return r
}

// passCookies copies response cookies onto the next request. Later
// Set-Cookie headers win so the request carries the final session state.
func passCookies(t *testing.T, from *httptest.ResponseRecorder, to *http.Request) {
	t.Helper()
	latest := map[string]*http.Cookie{}
	var names []string
	for _, c := range from.Result().Cookies() {
		if _, seen := latest[c.Name]; !seen {
			names = append(names, c.Name)
		}
		latest[c.Name] = c
	}
	for _, name := range names {
		to.AddCookie(latest[name])
	}
}

func TestCSRF_TokenExposedOnRead(t *testing.T) {
	r := csrfRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/concepts", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-CSRF-Token"))
}

func TestCSRF_MutationWithEchoedTokenSucceeds(t *testing.T) {
	r := csrfRouter()

	read := httptest.NewRecorder()
	r.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/admin/concepts", nil))
	require.Equal(t, http.StatusOK, read.Code)
	token := read.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/concepts", strings.NewReader(`{"title":"Fractions"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)
	passCookies(t, read, req)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCSRF_MutationWithoutTokenRejected(t *testing.T) {
	r := csrfRouter()

	read := httptest.NewRecorder()
	r.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/admin/concepts", nil))
	require.Equal(t, http.StatusOK, read.Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/concepts", strings.NewReader(`{"title":"Fractions"}`))
	req.Header.Set("Content-Type", "application/json")
	passCookies(t, read, req)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF token validation failed")
	// The rejection still carries the token so the client can retry.
	assert.NotEmpty(t, w.Header().Get("X-CSRF-Token"))
}

func TestCSRF_MutationWithFormFieldTokenSucceeds(t *testing.T) {
	r := csrfRouter()

	read := httptest.NewRecorder()
	r.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/admin/concepts", nil))
	token := read.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	form := url.Values{"csrf_token": {token}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/concepts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	passCookies(t, read, req)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}
