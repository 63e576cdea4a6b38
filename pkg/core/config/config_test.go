package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	frgerror "github.com/msto63/frege/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"hours", 2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	// General defaults
	if cfg.General.Name != "frege" {
		t.Errorf("General.Name = %v, want frege", cfg.General.Name)
	}
	if cfg.General.Environment != "development" {
		t.Errorf("General.Environment = %v, want development", cfg.General.Environment)
	}
	if cfg.General.DataDir != "./data" {
		t.Errorf("General.DataDir = %v, want ./data", cfg.General.DataDir)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}

	// Lang defaults
	if cfg.Lang.MaxDepth != 256 {
		t.Errorf("Lang.MaxDepth = %v, want 256", cfg.Lang.MaxDepth)
	}
	if cfg.Lang.MaxCallDepth != 200 {
		t.Errorf("Lang.MaxCallDepth = %v, want 200", cfg.Lang.MaxCallDepth)
	}
	if cfg.Lang.EvalTimeout.Duration != 5*time.Second {
		t.Errorf("Lang.EvalTimeout = %v, want 5s", cfg.Lang.EvalTimeout.Duration)
	}

	// History defaults
	if cfg.History.Path != filepath.Join("./data", "history.db") {
		t.Errorf("History.Path = %v", cfg.History.Path)
	}
	if cfg.History.RetentionDays != 30 {
		t.Errorf("History.RetentionDays = %v, want 30", cfg.History.RetentionDays)
	}

	// Server defaults
	if cfg.Server.GRPCPort != 9310 {
		t.Errorf("Server.GRPCPort = %v, want 9310", cfg.Server.GRPCPort)
	}
	if cfg.Server.HTTPPort != 9311 {
		t.Errorf("Server.HTTPPort = %v, want 9311", cfg.Server.HTTPPort)
	}
	if cfg.Server.CacheTTL.Duration != 10*time.Minute {
		t.Errorf("Server.CacheTTL = %v, want 10m", cfg.Server.CacheTTL.Duration)
	}
}

func TestConfig_Addresses(t *testing.T) {
	cfg := Default()

	if got := cfg.GRPCAddress(); got != "0.0.0.0:9310" {
		t.Errorf("GRPCAddress() = %v", got)
	}
	if got := cfg.HTTPAddress(); got != "0.0.0.0:9311" {
		t.Errorf("HTTPAddress() = %v", got)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if !frgerror.HasCode(err, frgerror.CodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[general]
name = "test-frege"
environment = "test"

[lang]
max_depth = 64
separate_namespaces = true
eval_timeout = "250ms"

[server]
grpc_port = 9999
host = "127.0.0.1"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "test-frege" {
		t.Errorf("General.Name = %v, want test-frege", cfg.General.Name)
	}
	if cfg.Lang.MaxDepth != 64 || !cfg.Lang.SeparateNamespaces {
		t.Errorf("Lang = %+v", cfg.Lang)
	}
	if cfg.Lang.EvalTimeout.Duration != 250*time.Millisecond {
		t.Errorf("Lang.EvalTimeout = %v", cfg.Lang.EvalTimeout.Duration)
	}
	if cfg.GRPCAddress() != "127.0.0.1:9999" {
		t.Errorf("GRPCAddress() = %v", cfg.GRPCAddress())
	}

	// Check defaults were applied for missing values
	if cfg.Server.HTTPPort != 9311 {
		t.Errorf("Server.HTTPPort = %v, want 9311 (default)", cfg.Server.HTTPPort)
	}
}

func TestLoad_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "frege.yaml")
	configContent := `
general:
  log_level: debug
lang:
  max_call_depth: 50
  eval_timeout: 2s
repl:
  show_ast: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("General.LogLevel = %v", cfg.General.LogLevel)
	}
	if cfg.Lang.MaxCallDepth != 50 || cfg.Lang.EvalTimeout.Duration != 2*time.Second {
		t.Errorf("Lang = %+v", cfg.Lang)
	}
	if !cfg.REPL.ShowAST {
		t.Error("REPL.ShowAST not set")
	}
	if cfg.Lang.MaxDepth != 256 {
		t.Errorf("Lang.MaxDepth = %v, want 256 (default)", cfg.Lang.MaxDepth)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	broken := filepath.Join(tmpDir, "broken.toml")
	os.WriteFile(broken, []byte("[general\nname ="), 0644)
	if _, err := Load(broken); !frgerror.HasCode(err, frgerror.CodeInvalidConfig) {
		t.Errorf("Load(broken) error = %v", err)
	}

	badPort := filepath.Join(tmpDir, "port.toml")
	os.WriteFile(badPort, []byte("[server]\nhttp_port = 70000\n"), 0644)
	if _, err := Load(badPort); !frgerror.HasCode(err, frgerror.CodeInvalidConfig) {
		t.Errorf("Load(badPort) error = %v", err)
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("FREGE_TEST_DIR", "/tmp/frege-test")

	cfg := &Config{
		General: GeneralConfig{DataDir: "$FREGE_TEST_DIR"},
		History: HistoryConfig{Path: "${FREGE_TEST_DIR}/runs.db"},
	}

	cfg.expandEnvVars()

	if cfg.General.DataDir != "/tmp/frege-test" {
		t.Errorf("DataDir = %v", cfg.General.DataDir)
	}
	if cfg.History.Path != "/tmp/frege-test/runs.db" {
		t.Errorf("History.Path = %v", cfg.History.Path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FREGE_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	// Change to a temp directory without config files
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "frege" {
		t.Errorf("expected defaults, got %+v", cfg.General)
	}

	os.WriteFile(filepath.Join(tmpDir, "frege.yaml"), []byte("general:\n  name: local\n"), 0644)
	cfg, err = LoadFromEnv()
	if err != nil || cfg.General.Name != "local" {
		t.Errorf("LoadFromEnv() = %+v, %v", cfg, err)
	}

	t.Setenv("FREGE_CONFIG", filepath.Join(tmpDir, "missing.toml"))
	if _, err := LoadFromEnv(); err == nil {
		t.Error("LoadFromEnv() expected error for a missing explicit file")
	}
}
