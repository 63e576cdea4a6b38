package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	frglog "github.com/msto63/frege/foundation/core/log"
)

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.name != "test-service" {
		t.Errorf("name = %v, want test-service", logger.name)
	}
}

func TestLogger_LogMethods(t *testing.T) {
	// Test that log methods don't panic
	logger := New("test")

	// These should not panic
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")
}

func TestLogger_MultipleKeyValues(t *testing.T) {
	logger := New("test")

	// Should not panic with multiple key-value pairs
	logger.Info("message", "key1", "value1", "key2", 42, "key3", true)
}

func TestLogger_EmptyKeyValues(t *testing.T) {
	logger := New("test")

	// Should not panic without key-values
	logger.Info("message without key-values")
}

func TestLogger_OddKeyValues(t *testing.T) {
	logger := New("test")

	// Should not panic with odd number of key-values
	logger.Info("message", "key1", "value1", "orphan")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected frglog.Level
	}{
		{"trace", frglog.LevelTrace},
		{"debug", frglog.LevelDebug},
		{"info", frglog.LevelInfo},
		{"warn", frglog.LevelWarn},
		{"warning", frglog.LevelWarn},
		{"error", frglog.LevelError},
		{"invalid", frglog.LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			cfg := DefaultLoggerConfig("test")
			cfg.Level = tt.input
			cfg.Output = &bytes.Buffer{}
			if got := NewLogger(cfg).GetLevel(); got != tt.expected {
				t.Errorf("NewLogger level = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestNewSimpleLogger(t *testing.T) {
	logger := NewSimpleLogger("test-service")

	if logger == nil {
		t.Fatal("NewSimpleLogger() returned nil")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := LoggerConfig{
		ServiceName: "test-service",
		Level:       "debug",
		Format:      "json",
	}

	logger := NewLogger(cfg)

	if logger == nil {
		t.Fatal("NewLogger() returned nil")
	}
}

func TestToFields(t *testing.T) {
	// Empty input
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	// Valid key-value pairs
	fields = toFields("key1", "value1", "key2", 42)
	if fields == nil {
		t.Fatal("toFields() returned nil")
	}
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	// Non-string key (should be skipped)
	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func TestNewLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "frege-test",
		Level:       "info",
		Format:      "json",
		Output:      &buf,
	})

	Wrap(logger, "service").Info("evaluated", "value", 42.0, "cached", true)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "evaluated" || entry["component"] != "service" || entry["logger"] != "frege-test" {
		t.Errorf("entry = %v", entry)
	}
	if entry["value"] != 42.0 || entry["cached"] != true {
		t.Errorf("fields = %v", entry)
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "frege.log")
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "file-test",
		Format:      "logfmt",
		Output:      &buf,
		File:        path,
	})
	logger.Warn("written twice")
	if err := CloseFiles(); err != nil {
		t.Fatalf("CloseFiles() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if !strings.Contains(string(data), `message="written twice"`) || !strings.Contains(buf.String(), "written twice") {
		t.Errorf("file = %q, output = %q", data, buf.String())
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := New("benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
