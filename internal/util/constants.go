// Package util provides common utility functions and constants used across the
// wg-manager application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

const (
	// AppName names the binary and the application config directory.
	AppName = "wg-manager"

	// DefaultConfigDir is where wg-quick looks up <name>.conf files.
	DefaultConfigDir = "/etc/wireguard"

	// DefaultQuickBinary is resolved through PATH when no absolute path is configured.
	DefaultQuickBinary = "wg-quick"

	// ConfigExt is the suffix every tunnel configuration file carries.
	ConfigExt = ".conf"

	// BlankBuffer is the content an emptied editor reports. Writing it would
	// truncate a configuration to a single newline, so the store skips it.
	BlankBuffer = "\n"

	// DefaultRefreshSeconds is the fallback interval (in seconds) for the TUI
	// status marker refresh. Used when config.yaml has an invalid or missing
	// refresh_seconds value.
	// Used by: internal/ui/ui.go (tickCmd) and internal/appconfig/config.go.
	DefaultRefreshSeconds = 3

	// PrivilegeNotice replaces the whole editing surface for unprivileged users.
	PrivilegeNotice = "Run wg-manager as root or with sudo!"
)
