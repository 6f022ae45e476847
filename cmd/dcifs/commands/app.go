package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/dittocifs/internal/cli/output"
	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/telemetry"
	"github.com/marmos91/dittocifs/pkg/config"
	"github.com/marmos91/dittocifs/pkg/metrics"
	"github.com/marmos91/dittocifs/pkg/session"
	"github.com/marmos91/dittocifs/pkg/statcache"
	"github.com/marmos91/dittocifs/pkg/trans2"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/dittocifs/pkg/metrics/prometheus"
)

// lookupClient is satisfied by both trans2.Client and statcache.Client.
type lookupClient interface {
	Find(ctx context.Context, pattern string) ([]trans2.FileRecord, error)
	Fstat(ctx context.Context, path string) (*trans2.FileRecord, error)
}

// app bundles everything a lookup command needs.
type app struct {
	cfg     *config.Config
	printer *output.Printer
	client  *trans2.Client
	lookups lookupClient

	closers []func() error
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if Flags.LogLevel != "" {
		cfg.Logging.Level = Flags.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	if Flags.Metrics {
		cfg.Metrics.Enabled = true
	}
	if Flags.Cache {
		cfg.Cache.Enabled = true
	}
	return cfg, nil
}

// newApp loads configuration, starts the ambient services and opens the
// replay session. Callers must call close.
func newApp(ctx context.Context, cmd *cobra.Command) (_ *app, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}

	rt := &app{
		cfg:     cfg,
		printer: output.NewPrinter(cmd.OutOrStdout(), format, !Flags.NoColor),
	}
	defer func() {
		if err != nil {
			rt.close()
		}
	}()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dcifs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	rt.onClose(func() error { return telemetryShutdown(context.Background()) })

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dcifs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}
	rt.onClose(profilingShutdown)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		rt.onClose(func() error { return dumpMetrics(cfg.Metrics.Output, cmd.ErrOrStderr()) })
	}

	if Flags.Capture == "" {
		return nil, errors.New("no session: pass --capture with a recorded capture file")
	}
	replay, err := session.LoadReplay(Flags.Capture)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Client.Options()
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		if m := metrics.NewTrans2Metrics(); m != nil {
			opts.Metrics = m
		}
	}
	rt.client = trans2.NewClient(replay, Flags.TreeID, opts)
	rt.lookups = rt.client

	if cfg.Cache.Enabled {
		cacheCfg := statcache.Config{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}
		if cfg.Metrics.Enabled {
			if m := metrics.NewStatCacheMetrics(); m != nil {
				cacheCfg.Metrics = m
			}
		}
		cache, err := statcache.Open(cacheCfg)
		if err != nil {
			return nil, err
		}
		rt.onClose(cache.Close)
		rt.lookups = statcache.NewClient(cache, rt.client)
	}

	logger.Debug("session ready",
		"capture", Flags.Capture,
		logger.TreeID(Flags.TreeID),
		"nt_smb", replay.SupportsNTSMB(),
		"cache", cfg.Cache.Enabled,
		"reassembly", cfg.Client.Reassembly)

	return rt, nil
}

func (rt *app) onClose(fn func() error) {
	rt.closers = append(rt.closers, fn)
}

// close runs the registered closers in reverse order.
func (rt *app) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			logger.Warn("shutdown error", logger.Err(err))
		}
	}
	rt.closers = nil
}

// dumpMetrics writes the metrics text exposition to dest: "stdout",
// "stderr" (written to stderr) or a file path.
func dumpMetrics(dest string, stderr io.Writer) error {
	switch dest {
	case "", "stderr":
		return metrics.WriteText(stderr)
	case "stdout":
		return metrics.WriteText(os.Stdout)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create metrics output: %w", err)
	}
	if err := metrics.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
