// Package util provides common utility functions and constants used across the
// wg-manager application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
//
// Examples:
//
//	DefaultString("wg0", "none")  → "wg0"
//	DefaultString("",    "none")  → "none"
//	DefaultString("  ",  "none")  → "none"
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" if s is empty or consists entirely of whitespace;
// otherwise it returns s unchanged.
//
// Call sites:
//   - internal/cli/root.go: the ENDPOINT and HANDSHAKE columns of `status`
//     and the NAME column of `events`.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}
