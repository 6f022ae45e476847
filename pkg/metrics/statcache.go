package metrics

import (
	"github.com/marmos91/dittocifs/pkg/statcache"
)

// NewStatCacheMetrics returns the Prometheus-backed statcache.Metrics, or
// nil if metrics are not enabled.
func NewStatCacheMetrics() statcache.Metrics {
	if !IsEnabled() || newStatCacheMetrics == nil {
		return nil
	}
	return newStatCacheMetrics()
}

var newStatCacheMetrics func() statcache.Metrics

// RegisterStatCacheMetricsConstructor registers the stat cache metrics
// constructor.
func RegisterStatCacheMetricsConstructor(constructor func() statcache.Metrics) {
	newStatCacheMetrics = constructor
}
