// Package schemacheck classifies data-access failures that indicate the
// backend schema has not been migrated yet. The store does not surface a
// structured "relation does not exist" code at this layer, so classification
// is a substring match against the driver's error text. Both the resolver and
// the HTTP responder share this single matcher so the two sides cannot drift.
package schemacheck

import "strings"

// SchemaName is the schema every application table lives in. The qualified
// identifier must match the store's actual table naming or classification
// silently stops recognizing missing tables.
const SchemaName = "burburiuok"

// Table identifies one of the tables the guard tracks.
type Table string

const (
	TableProfiles     Table = "profiles"
	TableAdminInvites Table = "admin_invites"
)

// GuardedTables lists every table whose absence is treated as a
// migration-required condition.
var GuardedTables = []Table{TableProfiles, TableAdminInvites}

// Qualified returns the schema-qualified identifier, e.g. "burburiuok.profiles".
func (t Table) Qualified() string {
	return SchemaName + "." + string(t)
}

// Match reports which of the given tables, if any, the failure message refers
// to as missing. An empty message never matches.
func Match(message string, tables ...Table) (Table, bool) {
	if message == "" {
		return "", false
	}
	for _, table := range tables {
		if strings.Contains(message, table.Qualified()) {
			return table, true
		}
	}
	return "", false
}

// MissingTable reports whether err indicates the given table is absent.
// Safe to call with a nil error.
func MissingTable(err error, table Table) bool {
	if err == nil {
		return false
	}
	_, ok := Match(err.Error(), table)
	return ok
}

// AnyMissingTable classifies err against every guarded table and returns the
// first match. Safe to call with a nil error.
func AnyMissingTable(err error) (Table, bool) {
	if err == nil {
		return "", false
	}
	return Match(err.Error(), GuardedTables...)
}
