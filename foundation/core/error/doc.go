// Package error provides structured error handling for the frege toolchain.
//
// Package: error
// Title: frege Error Handling Framework
// Description: Structured errors with codes, severities, details and stack
//              traces. Evaluation faults raised by the solver, engine level
//              failures and infrastructure errors (store, config, transport)
//              all use this type so hosts can branch on a Code instead of
//              matching message text.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-17 v0.2.0: Language fault codes, errors.As based helpers, gRPC mapping
//
// Usage:
//   import frgerror "github.com/msto63/frege/foundation/core/error"
//
//   err := frgerror.New("undefined variable 'x'").
//     WithCode(frgerror.CodeUndefinedVariable).
//     WithDetail("name", "x")
//
//   if frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
//     // report to the user, keep the session alive
//   }
package error
