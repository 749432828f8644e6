// Package metrics provides Prometheus metrics for the bakeboard scoring service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Scoring and mutation metrics.
	scoresSubmitted prometheus.Counter
	scoresRejected  *prometheus.CounterVec
	mutations       *prometheus.CounterVec

	// Snapshot and broadcast metrics.
	snapshotBuildDuration prometheus.Histogram
	broadcasts            prometheus.Counter
	observersConnected    prometheus.Gauge
	observersDropped      prometheus.Counter

	// Store metrics.
	storeTxDuration *prometheus.HistogramVec

	// Event log metrics.
	eventsAppended     prometheus.Counter
	eventAppendFailure prometheus.Counter

	// Import/export metrics.
	importEntries *prometheus.CounterVec

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithBuckets overrides the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry overrides the Prometheus registry collectors register against.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "bakeboard",
		subsystem: "scoring",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.scoresSubmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scores_submitted_total",
		Help: "Score submissions accepted and committed.",
	})
	m.scoresRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scores_rejected_total",
		Help: "Score submissions rejected before commit, by reason.",
	}, []string{"reason"})
	m.mutations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "mutations_total",
		Help: "Committed state mutations, by action.",
	}, []string{"action"})

	m.snapshotBuildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "snapshot_build_duration_seconds",
		Help:    "Time spent assembling a full state snapshot.",
		Buckets: m.buckets,
	})
	m.broadcasts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "broadcasts_total",
		Help: "Snapshot fan-outs pushed to observers.",
	})
	m.observersConnected = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "observers_connected",
		Help: "Currently subscribed observers.",
	})
	m.observersDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "observers_dropped_total",
		Help: "Observers dropped after a failed delivery.",
	})

	m.storeTxDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_tx_duration_seconds",
		Help:    "SQLite transaction duration, by kind (update or view).",
		Buckets: m.buckets,
	}, []string{"kind"})

	m.eventsAppended = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "audit_events_appended_total",
		Help: "Audit events appended to the event log.",
	})
	m.eventAppendFailure = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "audit_event_append_failures_total",
		Help: "Audit event appends that failed and were swallowed.",
	})

	m.importEntries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "import_entries_total",
		Help: "Import entries processed, by section and outcome.",
	}, []string{"section", "outcome"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests served, by endpoint and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request duration, by endpoint.",
		Buckets: m.buckets,
	}, []string{"endpoint"})

	return m
}

// Handler exposes the manager's registry for scraping.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var global = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Default returns the process-wide manager.
func Default() *Manager { return global }

// Handler exposes the global registry for scraping.
func Handler() http.Handler { return global.Handler() }

// RecordScoreSubmitted counts an accepted score submission.
func RecordScoreSubmitted() { global.scoresSubmitted.Inc() }

// RecordScoreRejected counts a rejected submission with its reason.
func RecordScoreRejected(reason string) { global.scoresRejected.WithLabelValues(reason).Inc() }

// RecordMutation counts a committed mutation by action name.
func RecordMutation(action string) { global.mutations.WithLabelValues(action).Inc() }

// ObserveSnapshotBuild records the time spent assembling a snapshot.
func ObserveSnapshotBuild(d time.Duration) { global.snapshotBuildDuration.Observe(d.Seconds()) }

// RecordBroadcast counts a snapshot fan-out.
func RecordBroadcast() { global.broadcasts.Inc() }

// SetObserversConnected updates the subscribed-observers gauge.
func SetObserversConnected(n int) { global.observersConnected.Set(float64(n)) }

// RecordObserverDropped counts an observer removed after a delivery failure.
func RecordObserverDropped() { global.observersDropped.Inc() }

// ObserveStoreTx records a transaction duration by kind.
func ObserveStoreTx(kind string, d time.Duration) {
	global.storeTxDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordEventAppended counts a successful audit event append.
func RecordEventAppended() { global.eventsAppended.Inc() }

// RecordEventAppendFailure counts a swallowed audit event append failure.
func RecordEventAppendFailure() { global.eventAppendFailure.Inc() }

// RecordImportEntry counts an import entry by section and outcome.
func RecordImportEntry(section, outcome string) {
	global.importEntries.WithLabelValues(section, outcome).Inc()
}

// RecordHTTPRequest counts a served request.
func RecordHTTPRequest(endpoint, method, status string) {
	global.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPRequest records a request duration by endpoint.
func ObserveHTTPRequest(endpoint string, d time.Duration) {
	global.httpRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
