package core

import (
	"log/slog"

	"github.com/treykane/wg-manager/internal/model"
)

// Intent is one discrete user or system action.
type Intent interface {
	intent()
}

// SelectName picks a configuration from the list (or any name).
type SelectName struct{ Name string }

// TypeName is the name field changing; the list is refreshed first.
type TypeName struct{ Name string }

// EditBuffer carries the editor's text after an edit.
type EditBuffer struct{ Text string }

// Refresh re-reads the configuration list.
type Refresh struct{}

// Save writes the buffer under the active name.
type Save struct{}

// Start requests `wg-quick up` for the active name.
type Start struct{}

// Stop requests `wg-quick down` for the active name.
type Stop struct{}

// OutcomeArrived delivers a finished start/stop message.
type OutcomeArrived struct{ Message string }

// ConsoleAction is any interaction with the console pane. It is ignored.
type ConsoleAction struct{}

func (SelectName) intent()     {}
func (TypeName) intent()       {}
func (EditBuffer) intent()     {}
func (Refresh) intent()        {}
func (Save) intent()           {}
func (Start) intent()          {}
func (Stop) intent()           {}
func (OutcomeArrived) intent() {}
func (ConsoleAction) intent()  {}

// Effect is an asynchronous operation the host must run. The zero value
// means nothing to do.
type Effect struct {
	Action model.Action
	Name   string
}

// None reports whether the effect is empty.
func (e Effect) None() bool {
	return e.Action == ""
}

// Machine applies intents to a State using a Store.
type Machine struct {
	store Store
}

// NewMachine creates a machine backed by store.
func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

// NewState builds the startup state with the list populated eagerly.
func (m *Machine) NewState(privileged bool) *State {
	s := &State{Privileged: privileged}
	m.refresh(s)
	return s
}

// Transition applies in to s and returns the effect to schedule, if any.
func (m *Machine) Transition(s *State, in Intent) Effect {
	switch in := in.(type) {
	case SelectName:
		m.selectName(s, in.Name)
	case TypeName:
		m.refresh(s)
		m.selectName(s, in.Name)
	case EditBuffer:
		s.Buffer = in.Text
	case Refresh:
		m.refresh(s)
	case Save:
		m.store.Write(s.ActiveName, s.Buffer)
		m.refresh(s)
	case Start:
		return m.schedule(s, model.ActionUp)
	case Stop:
		return m.schedule(s, model.ActionDown)
	case OutcomeArrived:
		s.Console += in.Message + "\n"
	case ConsoleAction:
	default:
		slog.Debug("ignoring unknown intent", "intent", in)
	}
	return Effect{}
}

func (m *Machine) refresh(s *State) {
	s.Known = m.store.List()
}

// selectName discards unsaved edits without asking.
func (m *Machine) selectName(s *State, name string) {
	s.ActiveName = name
	if s.IsKnown(name) {
		s.Selected = name
		s.Buffer = m.store.Read(name)
		return
	}
	s.Selected = ""
	s.Buffer = ""
}

func (m *Machine) schedule(s *State, action model.Action) Effect {
	m.refresh(s)
	if !s.IsKnown(s.ActiveName) {
		slog.Debug("dropping request for unknown tunnel", "action", action, "name", s.ActiveName)
		return Effect{}
	}
	return Effect{Action: action, Name: s.ActiveName}
}
