package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mrolandas/burburiuok/internal/cache"
	"github.com/mrolandas/burburiuok/internal/config"
	"github.com/mrolandas/burburiuok/internal/handlers"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/middleware"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/services"
	"github.com/mrolandas/burburiuok/internal/store"
	"github.com/mrolandas/burburiuok/internal/telemetry"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	Recorder        metrics.Recorder
	ConceptCache    cache.Cache[[]models.Concept]
	Telemetry       *telemetry.Service
	Responder       *middleware.MigrationResponder

	// Services
	ProfileService *services.ProfileService
	InviteService  *services.InviteService
	ConceptService *services.ConceptService
	SearchService  *services.SearchService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

type handlerSet struct {
	auth      *handlers.AuthHandler
	admin     *handlers.AdminHandler
	public    *handlers.PublicHandler
	migration *handlers.MigrationHandler
}

// Run initializes and starts the application, blocking until shutdown.
func Run(cfg *config.Config, db *store.Store) error {
	app := &Application{
		Config: cfg,
		DB:     db,
	}

	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	app.initializeBusinessLayer()
	app.initializeHTTPLayer()
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up metrics, telemetry, and the concept cache
func (app *Application) initializeInfrastructure() error {
	app.Recorder = metrics.Init(app.Config.MetricsEnabled)
	app.Responder = middleware.NewMigrationResponder(app.Recorder)
	app.Telemetry = telemetry.NewService(
		app.DB,
		app.Config.TelemetryEnabled,
		app.Config.TelemetryBufferSize,
	)

	conceptCache, err := initializeConceptCache(app.Config)
	if err != nil {
		return err
	}
	app.ConceptCache = conceptCache

	return nil
}

func initializeConceptCache(cfg *config.Config) (cache.Cache[[]models.Concept], error) {
	if cfg.CacheBackend != config.CacheBackendRedis {
		log.Printf("Concept cache: in-memory")
		return cache.NewMemoryCache[[]models.Concept](), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisCache, err := cache.NewRueidisCache[[]models.Concept](
		ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "burburiuok:",
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Concept cache: redis at %s", cfg.RedisAddr)
	return redisCache, nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	app.InviteService = services.NewInviteService(app.DB, app.Config.InviteCodeTTL)
	app.ProfileService = services.NewProfileService(app.DB, app.InviteService)
	app.ConceptService = services.NewConceptService(
		app.DB,
		app.ConceptCache,
		app.Config.CacheTTL,
		app.Recorder,
	)
	app.SearchService = services.NewSearchService(
		app.DB,
		app.Config.SearchResultLimit,
		app.Recorder,
	)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = handlerSet{
		auth: handlers.NewAuthHandler(
			app.ProfileService, app.Responder, app.Recorder, app.Config.BaseURL,
		),
		admin: handlers.NewAdminHandler(
			app.ConceptService, app.InviteService, app.DB, app.Responder,
		),
		public: handlers.NewPublicHandler(
			app.ConceptService, app.SearchService, app.Responder,
		),
		migration: handlers.NewMigrationHandler(app.DB),
	}

	app.Router = setupRouter(app.Config, app.DB, app.HandlerSet, app.Recorder,
		app.ProfileService, app.Telemetry, app.Responder)
	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addTelemetryShutdownJob(m, app.Telemetry)
	addTelemetryCleanupJob(m, app.Config, app.Telemetry)
	addCacheShutdownJob(m, app.ConceptCache)

	<-m.Done()
}
