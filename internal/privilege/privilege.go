// Package privilege answers whether the process may manage WireGuard
// interfaces and write under /etc/wireguard.
package privilege

import "os"

var geteuid = os.Geteuid

// Elevated reports whether the process runs with an effective UID of 0.
// The answer is computed once at startup and never re-evaluated.
func Elevated() bool {
	return geteuid() == 0
}
