package handlers

import (
	"net/http"

	"github.com/mrolandas/burburiuok/internal/schemacheck"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/gin-gonic/gin"
)

// MigrationHandler reports whether the guarded schema is in place. The
// endpoint stays reachable without a session so operators can check state
// while the admin surface is locked out.
type MigrationHandler struct {
	store *store.Store
}

func NewMigrationHandler(s *store.Store) *MigrationHandler {
	return &MigrationHandler{store: s}
}

// Status probes every guarded table and reports the missing ones.
func (h *MigrationHandler) Status(c *gin.Context) {
	missing := []string{}
	for _, table := range schemacheck.GuardedTables {
		err := h.store.ProbeTable(table)
		if err == nil {
			continue
		}
		if schemacheck.MissingTable(err, table) {
			missing = append(missing, table.Qualified())
			continue
		}
		// Probe failed for some other reason; report the schema state as
		// unknown rather than guessing.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration status unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"migrated":      len(missing) == 0,
		"missingTables": missing,
	})
}
