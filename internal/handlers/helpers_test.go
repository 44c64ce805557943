package handlers

import (
	"testing"
	"time"

	"github.com/mrolandas/burburiuok/internal/cache"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/services"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the wiring every handler test needs.
type testEnv struct {
	store     *store.Store
	profiles  *services.ProfileService
	invites   *services.InviteService
	concepts  *services.ConceptService
	search    *services.SearchService
	responder *middleware.MigrationResponder
}

func newTestEnv(t *testing.T, migrate bool) *testEnv {
	t.Helper()

	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	if migrate {
		require.NoError(t, s.Migrate())
	}

	recorder := metrics.NewNoopMetrics()
	invites := services.NewInviteService(s, time.Hour)

	return &testEnv{
		store:     s,
		profiles:  services.NewProfileService(s, invites),
		invites:   invites,
		concepts: services.NewConceptService(
			s, cache.NewMemoryCache[[]models.Concept](), time.Minute, recorder,
		),
		search:    services.NewSearchService(s, 50, recorder),
		responder: middleware.NewMigrationResponder(recorder),
	}
}

func newHandlerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	return r
}

// asAdmin injects a session as if the guard had admitted an admin.
func asAdmin(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserID, userID)
		session.Set(middleware.SessionEmail, "admin@example.test")
		_ = session.Save()
		c.Next()
	}
}
