package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mrolandas/burburiuok/internal/cache"
	"github.com/mrolandas/burburiuok/internal/config"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/telemetry"

	"github.com/appleboy/graceful"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addTelemetryShutdownJob drains buffered access events before exit
func addTelemetryShutdownJob(m *graceful.Manager, svc *telemetry.Service) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down telemetry...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := svc.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
			return err
		}
		return nil
	})
}

// addTelemetryCleanupJob adds periodic access event cleanup
func addTelemetryCleanupJob(m *graceful.Manager, cfg *config.Config, svc *telemetry.Service) {
	if !cfg.TelemetryEnabled || cfg.TelemetryRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		cleanup := func() {
			if deleted, err := svc.CleanupOldEvents(cfg.TelemetryRetention); err != nil {
				log.Printf("Failed to cleanup old access events: %v", err)
			} else if deleted > 0 {
				log.Printf("Cleaned up %d old access events", deleted)
			}
		}

		// Run cleanup immediately on startup
		cleanup()

		for {
			select {
			case <-ticker.C:
				cleanup()
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addCacheShutdownJob closes the concept cache connection on exit
func addCacheShutdownJob(m *graceful.Manager, c cache.Cache[[]models.Concept]) {
	if c == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := c.Close(); err != nil {
			log.Printf("Error closing concept cache: %v", err)
			return err
		}
		return nil
	})
}
