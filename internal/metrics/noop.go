package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder.
// All methods are empty, providing zero overhead when metrics are disabled.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordGuardDecision(reason string, allowed bool, duration time.Duration) {}
func (n *NoopMetrics) RecordMigrationSignal(table string)                                     {}
func (n *NoopMetrics) RecordLogin(success bool)                                               {}
func (n *NoopMetrics) RecordLogout()                                                          {}
func (n *NoopMetrics) RecordSearch(result string)                                             {}
func (n *NoopMetrics) RecordConceptMutation(action string, success bool)                      {}
func (n *NoopMetrics) SetPublishedConceptsCount(count int)                                    {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)                              {}
