package metrics

import (
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// NewTrans2Metrics returns the Prometheus-backed trans2.Metrics, or nil if
// metrics are not enabled or no implementation has been registered.
//
// The result must be stored as a trans2.Metrics only when non-nil: a typed
// nil would defeat the nil check in the client.
func NewTrans2Metrics() trans2.Metrics {
	if !IsEnabled() || newTrans2Metrics == nil {
		return nil
	}
	return newTrans2Metrics()
}

// newTrans2Metrics is set by pkg/metrics/prometheus.
var newTrans2Metrics func() trans2.Metrics

// RegisterTrans2MetricsConstructor registers the trans2 metrics constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterTrans2MetricsConstructor(constructor func() trans2.Metrics) {
	newTrans2Metrics = constructor
}
