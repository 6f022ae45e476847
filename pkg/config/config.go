package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/dittocifs/internal/bytesize"
	"github.com/marmos91/dittocifs/pkg/session"
	"github.com/marmos91/dittocifs/pkg/trans2"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the dcifs client configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DCIFS_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus instrumentation of the TRANS2 client
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Client tunes the TRANS2 client and its session transport
	Client ClientConfig `mapstructure:"client" yaml:"client"`

	// Cache configures the optional listing/stat cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, one span is exported per Find, QueryPathInfo and Fstat.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus instrumentation.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics are collected
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Output is where the text exposition is written when a command exits
	// Valid values: stdout, stderr, or a file path
	// Default: stderr
	Output string `mapstructure:"output" yaml:"output"`
}

// ClientConfig tunes the TRANS2 client.
type ClientConfig struct {
	// FindFirstCount is the SearchCount sent in FIND_FIRST2
	// Default: 1366
	FindFirstCount uint16 `mapstructure:"find_first_count" validate:"omitempty,min=1" yaml:"find_first_count"`

	// FindNextCount is the SearchCount sent in FIND_NEXT2
	// Default: 255
	FindNextCount uint16 `mapstructure:"find_next_count" validate:"omitempty,min=1" yaml:"find_next_count"`

	// MaxTransactionSize bounds the total data a response may declare
	// Supports human-readable formats: "16Mi", "1MB"
	// Default: 16Mi
	MaxTransactionSize bytesize.ByteSize `mapstructure:"max_transaction_size" yaml:"max_transaction_size"`

	// MaxMessageSize bounds a single NetBIOS frame
	// Default: 128Ki
	MaxMessageSize bytesize.ByteSize `mapstructure:"max_message_size" yaml:"max_message_size"`

	// Reassembly selects how continuation frames are placed
	// Valid values: displacement, sequential
	// Default: displacement
	Reassembly string `mapstructure:"reassembly" validate:"required,oneof=displacement sequential" yaml:"reassembly"`

	// ReadTimeout and WriteTimeout bound each frame; 0 disables them
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0" yaml:"write_timeout"`
}

// Options converts the client settings into trans2.Options.
func (c ClientConfig) Options() (trans2.Options, error) {
	mode, err := trans2.ParseReassemblyMode(c.Reassembly)
	if err != nil {
		return trans2.Options{}, err
	}
	return trans2.Options{
		FindFirstCount:     c.FindFirstCount,
		FindNextCount:      c.FindNextCount,
		MaxTransactionSize: c.MaxTransactionSize.Int(),
		Reassembly:         mode,
	}, nil
}

// SessionConfig returns the transport settings for a session.Conn. The
// negotiated identifiers are supplied by the caller.
func (c ClientConfig) SessionConfig(uid uint16, ntSMB bool, timeZone time.Duration) session.Config {
	return session.Config{
		UserID:         uid,
		NTSMB:          ntSMB,
		TimeZone:       timeZone,
		MaxMessageSize: c.MaxMessageSize.Int(),
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
	}
}

// CacheConfig configures the badger-backed listing/stat cache.
type CacheConfig struct {
	// Enabled controls whether Find and Fstat results are cached
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Dir is the badger directory; empty keeps the cache in memory
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`

	// TTL is how long a cached result stays valid
	// Default: 30s
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0" yaml:"ttl"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DCIFS_*)
//  2. Configuration file
//  3. Default values
//
// A missing configuration file is not an error: the defaults are returned.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)
	bindDefaults(v)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DCIFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DCIFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// bindDefaults registers every key with a zero default so AutomaticEnv can
// override keys that the config file does not mention. Unmarshal only
// consults the environment for keys viper already knows about. Real
// defaults are applied afterwards by ApplyDefaults.
func bindDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.output", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_rate", 0)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.endpoint", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.output", "")
	v.SetDefault("client.find_first_count", 0)
	v.SetDefault("client.find_next_count", 0)
	v.SetDefault("client.max_transaction_size", 0)
	v.SetDefault("client.max_message_size", 0)
	v.SetDefault("client.reassembly", "")
	v.SetDefault("client.read_timeout", 0)
	v.SetDefault("client.write_timeout", 0)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", 0)
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// An explicit config path that does not exist surfaces as a PathError.
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for ByteSize and
// time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize so
// config files can use sizes like "16Mi", "128Ki" or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" or "5m" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/dcifs, ~/.config/dcifs, or "." when
// no home directory can be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dcifs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dcifs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
