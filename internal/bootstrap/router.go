package bootstrap

import (
	"log"
	"net/http"

	"github.com/mrolandas/burburiuok/internal/config"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/services"
	"github.com/mrolandas/burburiuok/internal/store"
	"github.com/mrolandas/burburiuok/internal/telemetry"
	"github.com/mrolandas/burburiuok/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder metrics.Recorder,
	profiles *services.ProfileService,
	sink telemetry.Sink,
	responder *middleware.MigrationResponder,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters := setupRateLimiting(cfg)

	// Setup all routes
	setupAllRoutes(r, cfg, h, recorder, profiles, sink, responder, rateLimiters)

	logServerStartup(cfg)

	return r
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("burburiuok_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

type rateLimitMiddlewares struct {
	login  gin.HandlerFunc
	search gin.HandlerFunc
}

// setupRateLimiting builds the per-surface rate limiters. When disabled,
// pass-through handlers are returned so the route wiring stays uniform.
func setupRateLimiting(cfg *config.Config) rateLimitMiddlewares {
	passthrough := func(c *gin.Context) { c.Next() }

	if !cfg.RateLimitEnabled {
		return rateLimitMiddlewares{login: passthrough, search: passthrough}
	}

	build := func(requestsPerMinute int) gin.HandlerFunc {
		var limiter gin.HandlerFunc
		var err error

		if cfg.RateLimitStore == config.RateLimitStoreRedis {
			limiter, err = middleware.NewRedisRateLimiter(
				requestsPerMinute, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			)
		} else {
			limiter, err = middleware.NewMemoryRateLimiter(requestsPerMinute)
		}
		if err != nil {
			log.Fatalf("Failed to create rate limiter: %v", err)
		}
		return limiter
	}

	return rateLimitMiddlewares{
		login:  build(cfg.LoginRateLimit),
		search: build(cfg.SearchRateLimit),
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	recorder metrics.Recorder,
	profiles *services.ProfileService,
	sink telemetry.Sink,
	responder *middleware.MigrationResponder,
	rateLimiters rateLimitMiddlewares,
) {
	// Public browsing and search
	api := r.Group("/api")
	{
		api.GET("/concepts", h.public.ListConcepts)
		api.GET("/concepts/:slug", h.public.ConceptBySlug)
		api.GET("/search", rateLimiters.search, h.public.Search)
	}

	// Authentication
	r.POST("/login", rateLimiters.login, h.auth.Login)
	r.POST("/logout", h.auth.Logout)
	r.POST("/register", rateLimiters.login, h.auth.Register)

	// Schema state, reachable without a session
	r.GET("/migration/status", h.migration.Status)

	// Admin surface (requires the admin role, CSRF-protected)
	admin := r.Group("/admin")
	admin.Use(
		middleware.AdminGuard(profiles, sink, recorder, responder, cfg.GuardTimeout),
		middleware.CSRFMiddleware(),
	)
	{
		admin.GET("/concepts", h.admin.ListConcepts)
		admin.POST("/concepts", h.admin.CreateConcept)
		admin.PUT("/concepts/:id", h.admin.UpdateConcept)
		admin.DELETE("/concepts/:id", h.admin.DeleteConcept)
		admin.POST("/concepts/reorder", h.admin.ReorderConcepts)
		admin.GET("/concepts/:id/versions", h.admin.ConceptVersions)

		admin.POST("/invites", h.admin.CreateInvite)
		admin.GET("/invites", h.admin.ListInvites)

		admin.GET("/access-events", h.admin.ListAccessEvents)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Server starting on %s", cfg.ServerAddr)
	log.Printf("Public API: %s/api/concepts", cfg.BaseURL)
	log.Printf("Migration status: %s/migration/status", cfg.BaseURL)
	log.Printf("  (Run with -migrate to apply the schema on a fresh database)")
}
