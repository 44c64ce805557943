package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mrolandas/burburiuok/internal/access"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/telemetry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys shared by the login handlers and the guard.
const (
	SessionUserID = "user_id"
	SessionEmail  = "email"

	// ContextAppRole is where the guard stores the resolved role for
	// downstream handlers.
	ContextAppRole = "app_role"
)

// AdminGuard decides, for every navigation into the admin area, whether the
// caller may proceed. Each request re-resolves from scratch: role and schema
// state can change between navigations. Exactly one telemetry event is
// emitted per navigation.
func AdminGuard(
	profiles access.ProfileSource,
	sink telemetry.Sink,
	recorder metrics.Recorder,
	responder *MigrationResponder,
	timeout time.Duration,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolver := access.NewResolver(cookieSessionSource{c}, profiles, timeout)

		start := time.Now()
		outcome := resolver.Resolve(c.Request.Context(), c.Request.URL.Path)

		status := models.AccessStatusDenied
		if outcome.Allowed {
			status = models.AccessStatusGranted
		}
		sink.Emit(telemetry.Event{
			Status:  status,
			Reason:  string(outcome.Reason),
			AppRole: outcome.AppRole,
			Email:   outcome.Email,
			Path:    c.Request.URL.Path,
		})
		recorder.RecordGuardDecision(string(outcome.Reason), outcome.Allowed, time.Since(start))

		if outcome.Allowed {
			c.Set(ContextAppRole, outcome.AppRole)
			c.Next()
			return
		}

		switch outcome.Reason {
		case access.ReasonNoSession:
			// Redirect to login with return URL
			redirectURL := url.QueryEscape(c.Request.URL.String())
			c.Redirect(http.StatusFound, "/login?redirect="+redirectURL)
			c.Abort()

		case access.ReasonMigrationRequired:
			responder.writeMigrationRequired(c)

		default:
			// NO_PROFILE, INSUFFICIENT_ROLE, RESOLUTION_ERROR: deny without
			// revealing which step failed.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":  "access_denied",
				"reason": string(outcome.Reason),
			})
		}
	}
}

// cookieSessionSource adapts the gin cookie session to access.SessionSource.
type cookieSessionSource struct {
	c *gin.Context
}

func (s cookieSessionSource) Session(ctx context.Context) (*access.Session, error) {
	session := sessions.Default(s.c)

	userID := session.Get(SessionUserID)
	if userID == nil {
		return nil, nil
	}

	id, ok := userID.(string)
	if !ok {
		return nil, fmt.Errorf("invalid session user id type %T", userID)
	}

	email, _ := session.Get(SessionEmail).(string)
	return &access.Session{UserID: id, Email: email}, nil
}
