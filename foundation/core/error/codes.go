// File: codes.go
// Title: Error Codes
// Description: Structured error codes used across the frege toolchain,
//              grouped into categories for the language core, the engine
//              and the surrounding infrastructure.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial error code set
// - 2026-10-17 v0.2.0: Language fault codes replace command language codes

package error

import "google.golang.org/grpc/codes"

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Language: parse stage
	CodeSyntax Code = "SYNTAX"

	// Language: evaluation faults
	CodeUndefinedVariable Code = "UNDEFINED_VARIABLE"
	CodeUndefinedFunction Code = "UNDEFINED_FUNCTION"
	CodeNotCallable       Code = "NOT_CALLABLE"
	CodeUnevaluable       Code = "UNEVALUABLE"
	CodeRecursionLimit    Code = "RECURSION_LIMIT"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntax:
		return "syntax"
	case CodeUndefinedVariable, CodeUndefinedFunction, CodeNotCallable, CodeUnevaluable, CodeRecursionLimit:
		return "evaluation"
	case CodeDatabaseError, CodeConnectionFailed:
		return "database"
	case CodeServiceUnavailable, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// IsEvaluationFault reports whether the code is raised by the solver
func (c Code) IsEvaluationFault() bool {
	return c.Category() == "evaluation"
}

// GRPCCode returns the gRPC status code for transport level errors
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeNotFound:
		return codes.NotFound
	case CodeInvalidInput, CodeSyntax:
		return codes.InvalidArgument
	case CodeUndefinedVariable, CodeUndefinedFunction, CodeNotCallable, CodeUnevaluable:
		return codes.FailedPrecondition
	case CodeRecursionLimit:
		return codes.ResourceExhausted
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeCanceled:
		return codes.Canceled
	case CodeServiceUnavailable, CodeConnectionFailed, CodeNetworkError:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
