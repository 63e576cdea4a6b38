// ============================================================================
// frege - small language front end
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	frglog "github.com/msto63/frege/foundation/core/log"
)

var (
	// Log files opened by NewLogger, closed by CloseFiles
	openFiles   []*os.File
	openFilesMu sync.Mutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: json, text, console or logfmt (default: json)
	Format string

	// Output defaults to stderr so stdout stays free for results
	Output io.Writer

	// File additionally receives every entry when set (appended)
	File string

	// Additional outputs
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *frglog.Logger {
	level := parseLevel(cfg.Level)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	writers := []io.Writer{output}
	if cfg.File != "" {
		if f, err := openLogFile(cfg.File); err == nil {
			writers = append(writers, f)
		}
	}
	writers = append(writers, cfg.AdditionalOutputs...)
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}

	format, err := frglog.ParseFormat(cfg.Format)
	if err != nil {
		format = frglog.FormatJSON
	}

	return frglog.NewWithConfig(frglog.Config{
		Level:        level,
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: level <= frglog.LevelDebug,
	})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	openFilesMu.Lock()
	openFiles = append(openFiles, f)
	openFilesMu.Unlock()
	return f, nil
}

// CloseFiles closes every log file opened by NewLogger
func CloseFiles() error {
	openFilesMu.Lock()
	defer openFilesMu.Unlock()

	var first error
	for _, f := range openFiles {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	openFiles = nil
	return first
}

// NewSimpleLogger creates a simple logger with the default configuration
func NewSimpleLogger(serviceName string) *frglog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// parseLevel converts a config level to frglog.Level, falling back to info
func parseLevel(level string) frglog.Level {
	lvl, err := frglog.ParseLevel(level)
	if err != nil {
		return frglog.LevelInfo
	}
	return lvl
}

// Compatibility layer for code using key/value logging

// Logger wraps the Foundation logger with key/value methods
type Logger struct {
	*frglog.Logger
	name string
}

// New creates a new simple logger
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing Foundation logger
func Wrap(logger *frglog.Logger, name string) *Logger {
	if logger == nil {
		logger = frglog.GetDefault()
	}
	return &Logger{
		Logger: logger.WithField("component", name),
		name:   name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to frglog.Fields
func toFields(keysAndValues ...interface{}) frglog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(frglog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
