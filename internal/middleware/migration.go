package middleware

import (
	"log"
	"net/http"

	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/schemacheck"

	"github.com/gin-gonic/gin"
)

// MigrationErrorCode is the machine-readable code clients key on when the
// backing schema has not been migrated yet.
const MigrationErrorCode = "AUTH_MIGRATION_REQUIRED"

// migrationRemediation tells an operator exactly what is missing and how to
// fix it. The wording is stable: dashboards and runbooks grep for it.
const migrationRemediation = "database schema is not migrated: expected tables " +
	"burburiuok.profiles and burburiuok.admin_invites are missing; " +
	"run the server with -migrate to apply the schema"

// MigrationResponder converts missing-table database errors into a stable
// 503 payload instead of a generic 500. Handlers call Handled on any error
// that came out of the store; when it returns true the response has been
// written and the handler must return immediately.
type MigrationResponder struct {
	recorder metrics.Recorder
}

func NewMigrationResponder(recorder metrics.Recorder) *MigrationResponder {
	return &MigrationResponder{recorder: recorder}
}

// Handled reports whether err is a missing-table signal for one of the
// guarded tables. If so it writes the migration-required response and
// returns true. A nil or unrelated error returns false and writes nothing.
func (r *MigrationResponder) Handled(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	table, ok := schemacheck.AnyMissingTable(err)
	if !ok {
		return false
	}

	log.Printf("migration required: missing table %s (%v)", table.Qualified(), err)
	r.recorder.RecordMigrationSignal(string(table))
	r.writeMigrationRequired(c)
	return true
}

func (r *MigrationResponder) writeMigrationRequired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
		"error": gin.H{
			"code":    MigrationErrorCode,
			"message": migrationRemediation,
		},
	})
}
