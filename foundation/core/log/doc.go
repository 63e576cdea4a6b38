// Package log provides structured logging for the frege toolchain.
//
// Package: log
// Title: frege Structured Logging Framework
// Description: Structured logger with levels, contextual fields, JSON,
//              text, console and logfmt output, and integration with the
//              structured error type. Used by the language core (parser,
//              solver, engine) and by the service layer.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-17 v0.2.0: Run/session context, lipgloss console colours, removed async mode
//
// Usage:
//   import frglog "github.com/msto63/frege/foundation/core/log"
//
//   logger := frglog.New().
//     WithLevel(frglog.LevelDebug).
//     WithField("component", "lang-parser")
//
//   logger.Debug("statement parsed", frglog.Fields{"kind": "let"})
//
//   timer := logger.StartTimer("evaluate")
//   // ... evaluate a unit
//   timer.Stop()
package log
