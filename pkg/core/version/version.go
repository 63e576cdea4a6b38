// ============================================================================
// frege - small language front end
// ============================================================================
//
// Package:     version
// Description: Central version management for the frege components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for all frege components
const (
	// Release version
	Platform = "0.1.0"

	// Component versions
	Lang    = "0.1.0"
	Server  = "0.1.0"
	Handler = "0.1.0"
	Store   = "0.1.0"
	REPL    = "0.1.0"
)

// Set at link time via -ldflags "-X github.com/msto63/frege/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "lang":
		return Lang
	case "server", "grpc":
		return Server
	case "handler", "websocket":
		return Handler
	case "store", "history":
		return Store
	case "repl":
		return REPL
	default:
		return Platform
	}
}

// String renders the release line printed by "frege version"
func String() string {
	return fmt.Sprintf("frege %s (commit %s, built %s)", Platform, Commit, BuildDate)
}
