package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Access guard
	RecordGuardDecision(reason string, allowed bool, duration time.Duration)
	RecordMigrationSignal(table string)

	// Authentication
	RecordLogin(success bool)
	RecordLogout()

	// Content
	RecordSearch(result string)
	RecordConceptMutation(action string, success bool)
	SetPublishedConceptsCount(count int)

	// Database
	RecordDatabaseQueryError(operation string)
}
