// Package prometheus implements the client metrics interfaces with
// Prometheus collectors. Importing it registers the constructors used by
// pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittocifs/pkg/metrics"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

func init() {
	metrics.RegisterTrans2MetricsConstructor(NewTrans2Metrics)
	metrics.RegisterStatCacheMetricsConstructor(NewStatCacheMetrics)
}

// trans2Metrics is the Prometheus implementation of trans2.Metrics.
type trans2Metrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	frames            *prometheus.HistogramVec
	bytes             *prometheus.HistogramVec
	pageEntries       prometheus.Histogram
	enumerations      *prometheus.CounterVec
}

// NewTrans2Metrics creates a Prometheus-backed trans2.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewTrans2Metrics() trans2.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &trans2Metrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcifs_trans2_operations_total",
				Help: "Total number of client operations by operation and result",
			},
			[]string{"op", "result"}, // result: "ok" or the error code
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dcifs_trans2_operation_duration_milliseconds",
				Help: "Duration of client operations in milliseconds, all round trips included",
				Buckets: []float64{
					0.5,   // replay and loopback
					1,     // 1ms
					5,     // 5ms - LAN single round trip
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms - WAN or multi-page listing
					500,   // 500ms
					1000,  // 1s
					5000,  // 5s - very large directories
					30000, // 30s
				},
			},
			[]string{"op"},
		),
		frames: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dcifs_trans2_transaction_frames",
				Help:    "Number of frames reassembled per TRANS2 response",
				Buckets: []float64{1, 2, 3, 4, 8, 16, 32},
			},
			[]string{"subcommand"},
		),
		bytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dcifs_trans2_transaction_bytes",
				Help: "Reassembled TRANS2 data block size in bytes",
				Buckets: []float64{
					0,
					512,     // a handful of entries
					4096,    // 4KB
					16384,   // 16KB
					65535,   // one full FIND page
					262144,  // 256KB
					1048576, // 1MB
				},
			},
			[]string{"subcommand"},
		),
		pageEntries: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dcifs_trans2_find_page_entries",
				Help:    "Directory entries decoded per FIND page",
				Buckets: []float64{0, 1, 10, 50, 100, 255, 500, 1366},
			},
		),
		enumerations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcifs_trans2_enumerations_total",
				Help: "Completed directory enumerations by termination reason",
			},
			[]string{"reason"}, // "eos", "ea_error", "stalled"
		),
	}
}

func (m *trans2Metrics) ObserveOperation(op string, duration time.Duration, code string) {
	if m == nil {
		return
	}
	result := code
	if result == "" {
		result = "ok"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *trans2Metrics) ObserveTransaction(subcommand string, frames int, bytes int) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(subcommand).Observe(float64(frames))
	m.bytes.WithLabelValues(subcommand).Observe(float64(bytes))
}

func (m *trans2Metrics) ObservePage(entries int) {
	if m == nil {
		return
	}
	m.pageEntries.Observe(float64(entries))
}

func (m *trans2Metrics) RecordEnumerationEnd(reason string) {
	if m == nil {
		return
	}
	m.enumerations.WithLabelValues(reason).Inc()
}
