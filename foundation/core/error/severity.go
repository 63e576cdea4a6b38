// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels for structured errors and the default
//              severity derived from an error code.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial severity levels
// - 2026-10-17 v0.2.0: Severity mapping for language faults

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers user input problems such as syntax errors or
	// undefined names. The session stays usable.
	SeverityLow Severity = iota

	// SeverityMedium covers failures with a workaround
	SeverityMedium

	// SeverityHigh covers failures of a dependency (database, transport)
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical

	case CodeDatabaseError, CodeConnectionFailed, CodeServiceUnavailable, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeRecursionLimit, CodeTimeout, CodeNetworkError:
		return SeverityMedium

	case CodeInvalidInput, CodeNotFound, CodeSyntax, CodeCanceled,
		CodeUndefinedVariable, CodeUndefinedFunction, CodeNotCallable, CodeUnevaluable:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
