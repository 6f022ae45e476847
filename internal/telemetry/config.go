package telemetry

import sdktrace "go.opentelemetry.io/otel/sdk/trace"

// Config controls span export. Spans cover TRANS2 round trips and cache
// lookups; with Enabled false a no-op tracer is installed.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string  // OTLP gRPC collector, host:port
	Insecure       bool    // plaintext gRPC
	SampleRate     float64 // fraction of root spans kept, clamped to [0,1]
}

// DefaultConfig returns tracing disabled with a local collector endpoint.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "dcifs",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// sampler honours the parent decision so one enumeration is kept or dropped
// as a whole.
func (c Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRate <= 0.0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRate))
	}
}
