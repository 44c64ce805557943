// Package access decides, for one admin navigation at a time, whether the
// caller may proceed. Every resolution produces exactly one Outcome with one
// Reason; resolution is stateless and re-runs from scratch per navigation,
// since role and schema state can change between navigations.
package access

import (
	"context"
	"strings"
	"time"

	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/schemacheck"
)

// Reason is the closed set of resolution outcomes.
type Reason string

const (
	ReasonOK                Reason = "OK"
	ReasonNoSession         Reason = "NO_SESSION"
	ReasonNoProfile         Reason = "NO_PROFILE"
	ReasonInsufficientRole  Reason = "INSUFFICIENT_ROLE"
	ReasonMigrationRequired Reason = "MIGRATION_REQUIRED"
	ReasonResolutionError   Reason = "RESOLUTION_ERROR"
)

// Outcome is the value produced once per navigation attempt. Allowed is true
// iff Reason is ReasonOK. AppRole and Email are empty when the resolution
// never reached the corresponding data.
type Outcome struct {
	Allowed bool
	Reason  Reason
	AppRole string
	Email   string
}

// Session is the proof of authentication as far as the resolver cares:
// who the caller is, and optionally their email.
type Session struct {
	UserID string
	Email  string
}

// SessionSource yields the current session. A nil session with a nil error
// means "not logged in". Errors are opaque and routed through schemacheck.
type SessionSource interface {
	Session(ctx context.Context) (*Session, error)
}

// ProfileSource looks up the stored profile for a user. A nil profile with a
// nil error means the row does not exist.
type ProfileSource interface {
	ProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// Resolver composes session and profile lookups into a single allow/deny
// decision with fixed precedence. Resolvers are cheap; one may be built per
// navigation.
type Resolver struct {
	sessions     SessionSource
	profiles     ProfileSource
	timeout      time.Duration
	allowedPaths []string
}

// NewResolver creates a resolver requiring the admin role. A timeout of zero
// disables the lookup deadline.
func NewResolver(sessions SessionSource, profiles ProfileSource, timeout time.Duration) *Resolver {
	return &Resolver{
		sessions: sessions,
		profiles: profiles,
		timeout:  timeout,
	}
}

// AllowPaths registers path prefixes that resolve to an allowed outcome
// without any session or role proof. Entry points such as the login and
// migration-status pages must stay reachable even when access would
// otherwise be denied. Because no lookup runs, the resulting Outcome carries
// an empty AppRole and Email: it records that the path was exempt, not that
// the caller proved a role.
func (r *Resolver) AllowPaths(prefixes ...string) {
	r.allowedPaths = append(r.allowedPaths, prefixes...)
}

// Resolve decides whether the caller may navigate to targetPath. It
// short-circuits on the first matching condition, in strict order:
// always-allowed paths, migration-missing on session retrieval, no session,
// migration-missing on profile lookup, no profile row, insufficient role.
// Any unclassified failure fails closed as ReasonResolutionError.
func (r *Resolver) Resolve(ctx context.Context, targetPath string) Outcome {
	for _, prefix := range r.allowedPaths {
		if strings.HasPrefix(targetPath, prefix) {
			return Outcome{Allowed: true, Reason: ReasonOK}
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sess, err := r.sessions.Session(ctx)
	if err != nil {
		// A missing schema must never be reported as "no session": the fix
		// is applying the migration, not logging in again.
		if _, ok := schemacheck.AnyMissingTable(err); ok {
			return Outcome{Reason: ReasonMigrationRequired}
		}
		return Outcome{Reason: ReasonResolutionError}
	}
	if sess == nil {
		return Outcome{Reason: ReasonNoSession}
	}

	profile, err := r.profiles.ProfileByUserID(ctx, sess.UserID)
	if err != nil {
		if _, ok := schemacheck.AnyMissingTable(err); ok {
			return Outcome{Reason: ReasonMigrationRequired}
		}
		return Outcome{Reason: ReasonResolutionError}
	}
	if profile == nil {
		return Outcome{Reason: ReasonNoProfile, Email: sess.Email}
	}

	if !profile.IsAdmin() {
		return Outcome{
			Reason:  ReasonInsufficientRole,
			AppRole: profile.AppRole,
			Email:   sess.Email,
		}
	}

	return Outcome{
		Allowed: true,
		Reason:  ReasonOK,
		AppRole: profile.AppRole,
		Email:   sess.Email,
	}
}
