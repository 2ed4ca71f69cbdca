// Package core holds the tunnel editor state and its transition function.
//
// The state is a plain value owned by whoever drives the loop (the TUI).
// Every user action arrives as an Intent; Transition mutates the state in
// place and may return an Effect for the host to run asynchronously. The
// effect's outcome comes back as an OutcomeArrived intent. Nothing in this
// package blocks on a process or touches a UI toolkit.
package core

import (
	"slices"
	"strings"

	"github.com/treykane/wg-manager/internal/util"
)

// Store is the configuration storage the machine reads and writes.
// *store.Store satisfies it.
type Store interface {
	List() []string
	Read(name string) string
	Write(name, text string)
}

// State is the whole editor state.
//
// Selected is either empty or equal to ActiveName. When it is set, the name
// was in Known at the moment it was selected; a later Refresh does not
// revisit the selection.
type State struct {
	Privileged bool
	Known      []string
	ActiveName string
	Selected   string
	Buffer     string
	Console    string
}

// HasSelection reports whether ActiveName matched a known configuration.
func (s *State) HasSelection() bool {
	return s.Selected != ""
}

// IsKnown reports whether name is in the last refreshed list.
func (s *State) IsKnown(name string) bool {
	return slices.Contains(s.Known, name)
}

// ConsoleLines splits the console into its lines, without the trailing empty one.
func (s *State) ConsoleLines() []string {
	trimmed := strings.TrimSuffix(s.Console, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// View is the read-only projection handed to the renderer.
type View struct {
	Privileged bool
	Notice     string
	Known      []string
	ActiveName string
	Selected   string
	Buffer     string
	Console    string
}

// Render projects the state for drawing. Without privileges only the notice
// is exposed, whatever the other fields hold.
func (s *State) Render() View {
	if !s.Privileged {
		return View{Notice: util.PrivilegeNotice}
	}
	return View{
		Privileged: true,
		Known:      slices.Clone(s.Known),
		ActiveName: s.ActiveName,
		Selected:   s.Selected,
		Buffer:     s.Buffer,
		Console:    s.Console,
	}
}
