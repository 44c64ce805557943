package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Access Guard Metrics
	GuardDecisionsTotal     *prometheus.CounterVec
	GuardResolutionDuration prometheus.Histogram
	MigrationSignalsTotal   *prometheus.CounterVec

	// Authentication Metrics
	LoginsTotal  *prometheus.CounterVec
	LogoutsTotal prometheus.Counter

	// Content Metrics
	SearchRequestsTotal   *prometheus.CounterVec
	ConceptMutationsTotal *prometheus.CounterVec
	ConceptsPublished     prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// If enabled=true, returns Prometheus-based Metrics; otherwise NoopMetrics.
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		GuardDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_guard_decisions_total",
				Help: "Total number of admin access guard decisions",
			},
			[]string{"reason", "result"}, // result: granted, denied
		),
		GuardResolutionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "admin_guard_resolution_duration_seconds",
				Help:    "Duration of session/role resolution per admin navigation",
				Buckets: prometheus.DefBuckets,
			},
		),
		MigrationSignalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schema_migration_signals_total",
				Help: "Total number of failures classified as missing a guarded table",
			},
			[]string{"table"},
		),

		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),
		LogoutsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "logouts_total",
				Help: "Total number of logouts",
			},
		),

		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_requests_total",
				Help: "Total number of concept search requests",
			},
			[]string{"result"}, // success, too_short, error
		),
		ConceptMutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concept_mutations_total",
				Help: "Total number of concept create/update/delete/reorder operations",
			},
			[]string{"action", "result"},
		),
		ConceptsPublished: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "concepts_published",
				Help: "Current number of published concepts",
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}
}

// RecordGuardDecision records one admin guard decision
func (m *Metrics) RecordGuardDecision(reason string, allowed bool, duration time.Duration) {
	result := "denied"
	if allowed {
		result = "granted"
	}
	m.GuardDecisionsTotal.WithLabelValues(reason, result).Inc()
	m.GuardResolutionDuration.Observe(duration.Seconds())
}

// RecordMigrationSignal records a failure classified as a missing guarded table
func (m *Metrics) RecordMigrationSignal(table string) {
	m.MigrationSignalsTotal.WithLabelValues(table).Inc()
}

// RecordLogin records a login attempt
func (m *Metrics) RecordLogin(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// RecordLogout records a logout
func (m *Metrics) RecordLogout() {
	m.LogoutsTotal.Inc()
}

// RecordSearch records a search request result
func (m *Metrics) RecordSearch(result string) {
	// result: success, too_short, error
	m.SearchRequestsTotal.WithLabelValues(result).Inc()
}

// RecordConceptMutation records a concept mutation
func (m *Metrics) RecordConceptMutation(action string, success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.ConceptMutationsTotal.WithLabelValues(action, result).Inc()
}

// SetPublishedConceptsCount sets the current count of published concepts
func (m *Metrics) SetPublishedConceptsCount(count int) {
	m.ConceptsPublished.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
