package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittocifs/internal/bytesize"
	"github.com/marmos91/dittocifs/pkg/session"
	"github.com/marmos91/dittocifs/pkg/statcache"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyClientDefaults(&cfg.Client)
	applyCacheDefaults(&cfg.Cache)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// stdout carries command output, so logs default to stderr.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyClientDefaults sets TRANS2 client and transport defaults.
func applyClientDefaults(cfg *ClientConfig) {
	if cfg.FindFirstCount == 0 {
		cfg.FindFirstCount = trans2.DefaultFindFirstCount
	}
	if cfg.FindNextCount == 0 {
		cfg.FindNextCount = trans2.DefaultFindNextCount
	}
	if cfg.MaxTransactionSize == 0 {
		cfg.MaxTransactionSize = bytesize.ByteSize(trans2.DefaultMaxTransactionSize)
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = bytesize.ByteSize(session.DefaultMaxMessageSize)
	}
	if cfg.Reassembly == "" {
		cfg.Reassembly = trans2.ReassembleByDisplacement.String()
	}
	cfg.Reassembly = strings.ToLower(cfg.Reassembly)

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
}

// applyCacheDefaults sets cache defaults.
// Dir has no default: an empty Dir keeps the cache in memory.
func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = statcache.DefaultTTL
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
