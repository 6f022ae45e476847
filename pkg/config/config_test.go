package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/dittocifs/internal/bytesize"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "info"

client:
  find_next_count: 100
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Client.FindNextCount != 100 {
		t.Errorf("Expected find_next_count 100, got %d", cfg.Client.FindNextCount)
	}
	if cfg.Client.FindFirstCount != trans2.DefaultFindFirstCount {
		t.Errorf("Expected default find_first_count, got %d", cfg.Client.FindFirstCount)
	}
	if cfg.Client.Reassembly != "displacement" {
		t.Errorf("Expected default reassembly 'displacement', got %q", cfg.Client.Reassembly)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Expected default cache TTL 30s, got %v", cfg.Cache.TTL)
	}
}

func TestLoad_HumanReadableValues(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
client:
  max_transaction_size: 4Mi
  max_message_size: 64Ki
  reassembly: Sequential
  read_timeout: 5s
cache:
  enabled: true
  ttl: 2m
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Client.MaxTransactionSize != 4*bytesize.MiB {
		t.Errorf("Expected max_transaction_size 4Mi, got %v", cfg.Client.MaxTransactionSize)
	}
	if cfg.Client.MaxMessageSize != 64*bytesize.KiB {
		t.Errorf("Expected max_message_size 64Ki, got %v", cfg.Client.MaxMessageSize)
	}
	if cfg.Client.Reassembly != "sequential" {
		t.Errorf("Expected reassembly 'sequential', got %q", cfg.Client.Reassembly)
	}
	if cfg.Client.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read_timeout 5s, got %v", cfg.Client.ReadTimeout)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("Expected enabled cache with TTL 2m, got %+v", cfg.Cache)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_InvalidReassembly(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
client:
  reassembly: random
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for unknown reassembly mode")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DCIFS_LOGGING_LEVEL", "ERROR")
	t.Setenv("DCIFS_CLIENT_FIND_FIRST_COUNT", "42")
	t.Setenv("DCIFS_CACHE_TTL", "90s")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Client.FindFirstCount != 42 {
		t.Errorf("Expected find_first_count 42 from env var, got %d", cfg.Client.FindFirstCount)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Expected cache TTL 90s from env var, got %v", cfg.Cache.TTL)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Client.FindNextCount = 64
	cfg.Cache.Enabled = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Client.FindNextCount != 64 {
		t.Errorf("Expected find_next_count 64 after reload, got %d", loaded.Client.FindNextCount)
	}
	if !loaded.Cache.Enabled {
		t.Error("Expected cache to stay enabled after reload")
	}
	if loaded.Client.MaxTransactionSize != cfg.Client.MaxTransactionSize {
		t.Errorf("Expected max_transaction_size %v, got %v", cfg.Client.MaxTransactionSize, loaded.Client.MaxTransactionSize)
	}
}

func TestClientConfig_Options(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Client.Reassembly = "sequential"

	opts, err := cfg.Client.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.Reassembly != trans2.ReassembleSequential {
		t.Errorf("Expected sequential reassembly, got %v", opts.Reassembly)
	}
	if opts.MaxTransactionSize != trans2.DefaultMaxTransactionSize {
		t.Errorf("Expected default max transaction size, got %d", opts.MaxTransactionSize)
	}
	if opts.FindFirstCount != trans2.DefaultFindFirstCount {
		t.Errorf("Expected default find_first_count, got %d", opts.FindFirstCount)
	}
}

func TestClientConfig_SessionConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	sc := cfg.Client.SessionConfig(7, true, -2*time.Hour)
	if sc.UserID != 7 || !sc.NTSMB || sc.TimeZone != -2*time.Hour {
		t.Errorf("Negotiated values not carried over: %+v", sc)
	}
	if sc.MaxMessageSize != cfg.Client.MaxMessageSize.Int() {
		t.Errorf("Expected max message size %d, got %d", cfg.Client.MaxMessageSize.Int(), sc.MaxMessageSize)
	}
	if sc.ReadTimeout != 30*time.Second {
		t.Errorf("Expected read timeout 30s, got %v", sc.ReadTimeout)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := GetDefaultConfigPath()
	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if dir := GetConfigDir(); dir != filepath.Join(xdg, "dcifs") {
		t.Errorf("Expected %q, got %q", filepath.Join(xdg, "dcifs"), dir)
	}
}

func TestDefaultConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if DefaultConfigExists() {
		t.Fatal("Expected no config in an empty config home")
	}
	if err := SaveConfig(GetDefaultConfig(), GetDefaultConfigPath()); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if !DefaultConfigExists() {
		t.Error("Expected config to exist after SaveConfig")
	}
}
