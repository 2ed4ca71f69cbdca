// Package main is the entry point for the wg-manager binary.
//
// wg-manager is a terminal application that combines a TUI dashboard (built with
// Bubble Tea) and a CLI (built with Cobra) for editing WireGuard tunnel
// configurations and bringing tunnels up and down through wg-quick.
//
// When invoked without arguments, it launches the interactive TUI dashboard.
// When invoked with subcommands (e.g. "list", "up", "status"), it runs the
// corresponding CLI operation and exits.
//
// Usage:
//
//	sudo wg-manager          # launch the TUI dashboard
//	wg-manager list          # list <name>.conf files in /etc/wireguard
//	sudo wg-manager up wg0   # run wg-quick up wg0
//
// The CLI is constructed in internal/cli and the TUI in internal/ui. This file
// simply wires them together and handles top-level error reporting.
package main

import (
	"fmt"
	"os"

	"github.com/treykane/wg-manager/internal/cli"
)

func main() {
	// With no subcommand the root command launches the dashboard. Execute
	// closes the log file before returning, on success or failure.
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
