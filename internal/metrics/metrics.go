// Package metrics exposes Prometheus counters for lifecycle, backup and store events.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/celerix-dev/firmdesk/internal/documents"
)

// Values of the result label, shared with documents.Result.
const (
	ResultOK       = string(documents.ResultOK)
	ResultRejected = string(documents.ResultRejected)
	ResultError    = string(documents.ResultError)
)

// Metrics holds the collectors registered on a single Registerer.
type Metrics struct {
	transitions    *prometheus.CounterVec
	backups        *prometheus.CounterVec
	backupSize     prometheus.Gauge
	backupDuration *prometheus.HistogramVec
	decodeFailures *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to keep them isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "firmdesk_document_transitions_total",
			Help: "Document lifecycle transitions by transition and result",
		}, []string{"transition", "result"}),
		backups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "firmdesk_backup_operations_total",
			Help: "Backup operations by operation and result",
		}, []string{"operation", "result"}),
		backupSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "firmdesk_backup_size_bytes",
			Help: "Size of the most recent backup document in bytes",
		}),
		backupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "firmdesk_backup_duration_seconds",
			Help:    "Time spent creating or restoring a backup",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
		decodeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "firmdesk_store_decode_failures_total",
			Help: "Stored collections that failed to decode and were read as empty",
		}, []string{"key"}),
	}
}

// ObserveTransition implements documents.Observer.
func (m *Metrics) ObserveTransition(t documents.Transition, result documents.Result) {
	m.transitions.WithLabelValues(string(t), string(result)).Inc()
}

// ObserveBackup records one create/restore/push/pull operation.
func (m *Metrics) ObserveBackup(operation string, size int, started time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.backups.WithLabelValues(operation, result).Inc()
	m.backupDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err == nil && size > 0 {
		m.backupSize.Set(float64(size))
	}
}

// DecodeFailure is suitable for sdk.WithDecodeFailureHook.
func (m *Metrics) DecodeFailure(key string, _ error) {
	m.decodeFailures.WithLabelValues(key).Inc()
}
