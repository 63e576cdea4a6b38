// File: timer.go
// Title: Performance Timer
// Description: Measures operation duration and logs it on completion.
//              Used around lexing, parsing and evaluation of a run.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-17 v0.2.0: Single completion path, durations recorded on the entry
// - 2026-10-17 v0.3.0: Checkpoints carry the run fields, unused controls removed

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	stopped   bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
	}
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop stops the timer and logs the elapsed time at debug level.
// A stopped timer returns 0.
func (t *Timer) Stop() time.Duration {
	return t.finish(LevelDebug, t.operation+" completed", nil, nil)
}

// StopWithError stops the timer and logs err at error level
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(LevelError, t.operation+" failed", err, Fields{"success": false})
}

// StopWithResult stops the timer and logs the outcome. Failures are logged
// at warn level.
func (t *Timer) StopWithResult(success bool, result interface{}) time.Duration {
	level := LevelDebug
	message := t.operation + " completed successfully"
	if !success {
		level = LevelWarn
		message = t.operation + " completed with errors"
	}

	extra := Fields{"success": success}
	if result != nil {
		extra["result"] = result
	}
	return t.finish(level, message, nil, extra)
}

func (t *Timer) finish(level Level, message string, err error, extra Fields) time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.Elapsed()
	t.stopped = true

	if t.logger == nil {
		return elapsed
	}

	fields := t.fields.Merge(extra)
	fields["operation"] = t.operation
	fields["duration_ms"] = float64(elapsed.Nanoseconds()) / 1e6

	t.logger.log(level, message, err, fields)
	return elapsed
}

// Checkpoint logs an intermediate timing checkpoint at debug level
func (t *Timer) Checkpoint(name string, fields Fields) {
	if t.stopped || t.logger == nil {
		return
	}

	combined := t.fields.Merge(fields)
	combined["operation"] = t.operation
	combined["checkpoint"] = name
	combined["elapsed_ms"] = float64(t.Elapsed().Nanoseconds()) / 1e6

	t.logger.Debug(t.operation+" checkpoint: "+name, combined)
}
