package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittocifs/pkg/metrics"
	"github.com/marmos91/dittocifs/pkg/statcache"
)

// statCacheMetrics is the Prometheus implementation of statcache.Metrics.
type statCacheMetrics struct {
	lookups     *prometheus.CounterVec
	storedBytes *prometheus.CounterVec
}

// NewStatCacheMetrics creates a Prometheus-backed statcache.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStatCacheMetrics() statcache.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &statCacheMetrics{
		lookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcifs_statcache_lookups_total",
				Help: "Stat cache lookups by kind and result",
			},
			[]string{"kind", "result"}, // kind: "find", "stat"; result: "hit", "miss"
		),
		storedBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcifs_statcache_stored_bytes_total",
				Help: "Encoded bytes written to the stat cache by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *statCacheMetrics) RecordHit(kind string) {
	m.lookups.WithLabelValues(kind, "hit").Inc()
}

func (m *statCacheMetrics) RecordMiss(kind string) {
	m.lookups.WithLabelValues(kind, "miss").Inc()
}

func (m *statCacheMetrics) RecordStore(kind string, bytes int) {
	m.storedBytes.WithLabelValues(kind).Add(float64(bytes))
}
