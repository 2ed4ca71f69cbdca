// Package ui is the Bubble Tea dashboard.
//
// The dashboard owns a core.State and feeds every key press through
// core.Machine as an intent. Start/stop effects run as tea.Cmds and their
// outcomes come back as messages, so the update loop never waits on wg-quick.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/treykane/wg-manager/internal/appconfig"
	"github.com/treykane/wg-manager/internal/core"
	"github.com/treykane/wg-manager/internal/model"
	"github.com/treykane/wg-manager/internal/util"
)

// Controller runs wg-quick for an effect. *tunnel.Controller satisfies it.
type Controller interface {
	Do(ctx context.Context, action model.Action, name string) model.Outcome
}

// StatusSource reports live interface state. *tunnel.Inspector satisfies it.
type StatusSource interface {
	Snapshot(names []string) []model.TunnelStatus
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Config     appconfig.Config
	Store      core.Store
	Controller Controller
	Status     StatusSource
	Privileged bool
}

type focusArea int

const (
	focusList focusArea = iota
	focusName
	focusEditor
	focusConsole
	focusCount
)

func (f focusArea) String() string {
	switch f {
	case focusList:
		return "list"
	case focusName:
		return "name"
	case focusEditor:
		return "editor"
	default:
		return "console"
	}
}

type tickMsg time.Time

type statusMsg string

type outcomeMsg struct {
	outcome model.Outcome
}

type modelUI struct {
	machine  *core.Machine
	state    *core.State
	ctrl     Controller
	statuses StatusSource
	cfg      appconfig.Config

	focus   focusArea
	sel     int
	name    textinput.Model
	editor  textarea.Model
	console viewport.Model

	live     map[string]model.TunnelStatus
	status   string
	showHelp bool
	width    int
	height   int

	copyText func(string) error
}

func newModel(opts Options) modelUI {
	machine := core.NewMachine(opts.Store)

	name := textinput.New()
	name.Placeholder = "tunnel name (e.g. wg0)"
	name.Prompt = "Name: "
	name.Width = 32

	editor := textarea.New()
	editor.Placeholder = "[Interface]"
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = true
	editor.SetWidth(60)
	editor.SetHeight(14)

	m := modelUI{
		machine:  machine,
		state:    machine.NewState(opts.Privileged),
		ctrl:     opts.Controller,
		statuses: opts.Status,
		cfg:      opts.Config,
		name:     name,
		editor:   editor,
		console:  viewport.New(60, 6),
		live:     map[string]model.TunnelStatus{},
		copyText: clipboard.WriteAll,
	}
	m.status = "Ready. Enter selects a tunnel, tab moves between panes."
	m.refreshLive()
	m.sync()
	return m
}

func tickCmd(seconds int) tea.Cmd {
	if seconds <= 0 {
		seconds = util.DefaultRefreshSeconds
	}
	return tea.Tick(time.Duration(seconds)*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m modelUI) Init() tea.Cmd {
	if !m.state.Privileged {
		return nil
	}
	return tickCmd(m.cfg.UI.RefreshSeconds)
}

func (m modelUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refreshLive()
		return m, tickCmd(m.cfg.UI.RefreshSeconds)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case outcomeMsg:
		cmd := m.dispatch(core.OutcomeArrived{Message: msg.outcome.Message})
		m.refreshLive()
		return m, cmd
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		if !m.state.Privileged {
			switch msg.String() {
			case "q", "ctrl+c", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m modelUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		cmd := m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case "shift+tab":
		cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case "ctrl+s":
		m.status = "Saved " + util.DefaultString(m.state.ActiveName, "(no name)")
		cmd := m.dispatch(core.Save{})
		return m, cmd
	case "ctrl+r":
		m.status = "Refreshed tunnel list"
		cmd := m.dispatch(core.Refresh{})
		m.refreshLive()
		return m, cmd
	case "ctrl+t":
		cmd := m.dispatch(core.Start{})
		return m, cmd
	case "ctrl+x":
		cmd := m.dispatch(core.Stop{})
		return m, cmd
	case "ctrl+y":
		if err := m.copyText(m.state.Console); err != nil {
			m.status = "Copy console failed: " + err.Error()
		} else {
			m.status = "Console copied to clipboard"
		}
		return m, nil
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusName:
		var cmd tea.Cmd
		before := m.name.Value()
		m.name, cmd = m.name.Update(msg)
		if v := m.name.Value(); v != before {
			cmd = tea.Batch(cmd, m.dispatch(core.TypeName{Name: v}))
		}
		return m, cmd
	case focusEditor:
		var cmd tea.Cmd
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		after := m.editor.Value()
		if after == before {
			return m, cmd
		}
		text, ok := applyEdit(m.state.Buffer, before, after)
		if !ok {
			m.editor.SetValue(m.state.Buffer)
			m.status = "Editor was out of step with the buffer; edit discarded"
			return m, cmd
		}
		cmd = tea.Batch(cmd, m.dispatch(core.EditBuffer{Text: text}))
		return m, cmd
	default:
		var cmd tea.Cmd
		m.console, cmd = m.console.Update(msg)
		cmd = tea.Batch(cmd, m.dispatch(core.ConsoleAction{}))
		return m, cmd
	}
}

func (m modelUI) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.sel < len(m.state.Known)-1 {
			m.sel++
		}
	case "k", "up":
		if m.sel > 0 {
			m.sel--
		}
	case "?":
		m.showHelp = !m.showHelp
	case "enter":
		if len(m.state.Known) == 0 {
			break
		}
		cmd := m.dispatch(core.SelectName{Name: m.state.Known[m.sel]})
		return m, cmd
	}
	return m, nil
}

// dispatch applies one intent and turns a scheduled effect into a command.
func (m *modelUI) dispatch(in core.Intent) tea.Cmd {
	eff := m.machine.Transition(m.state, in)
	m.sync()
	if eff.None() || m.ctrl == nil {
		return nil
	}
	m.status = fmt.Sprintf("Running wg-quick %s %s ...", eff.Action, eff.Name)
	ctrl := m.ctrl
	return func() tea.Msg {
		return outcomeMsg{outcome: ctrl.Do(context.Background(), eff.Action, eff.Name)}
	}
}

// sync copies the state into the widgets. Values are only set when they
// differ so the cursor of the widget being typed in stays put. The editor is
// compared against what it would show for the buffer, not the raw bytes.
func (m *modelUI) sync() {
	if m.name.Value() != m.state.ActiveName {
		m.name.SetValue(m.state.ActiveName)
	}
	if m.editor.Value() != editorText(m.state.Buffer) {
		m.editor.SetValue(m.state.Buffer)
		if !lossless(m.state.Buffer) {
			m.status = "Tabs and carriage returns are shown as spaces and newlines; lines you do not edit are saved unchanged"
		}
	}
	m.console.SetContent(m.state.Console)
	m.console.GotoBottom()

	if m.state.HasSelection() {
		for i, n := range m.state.Known {
			if n == m.state.Selected {
				m.sel = i
				break
			}
		}
	}
	if m.sel >= len(m.state.Known) {
		m.sel = len(m.state.Known) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

// refreshLive updates the status markers only; the known list is left to
// explicit refreshes.
func (m *modelUI) refreshLive() {
	if m.statuses == nil || !m.state.Privileged {
		return
	}
	live := make(map[string]model.TunnelStatus, len(m.state.Known))
	for _, st := range m.statuses.Snapshot(m.state.Known) {
		live[st.Name] = st
	}
	m.live = live
}

func (m *modelUI) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.editor.Blur()
	switch f {
	case focusName:
		return m.name.Focus()
	case focusEditor:
		return m.editor.Focus()
	}
	return nil
}

func (m *modelUI) resize() {
	width := m.effectiveWidth()
	editorWidth := width - 4
	if width >= 96 {
		editorWidth = width - width/3 - 4
	}
	if editorWidth < 20 {
		editorWidth = 20
	}
	m.editor.SetWidth(editorWidth)
	m.name.Width = editorWidth - len(m.name.Prompt)

	consoleHeight := 6
	editorHeight := 14
	if m.height > 0 {
		editorHeight = m.height - consoleHeight - 16
		if editorHeight < 5 {
			editorHeight = 5
		}
	}
	m.editor.SetHeight(editorHeight)
	m.console.Width = width - 4
	m.console.Height = consoleHeight
}

func (m modelUI) View() string {
	view := m.state.Render()
	if !view.Privileged {
		return m.renderPanel("wg-manager", view.Notice+"\n\nPress q to quit.", m.effectiveWidth(), lipgloss.Color("205"))
	}

	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("WireGuard Manager")
	subhead := fmt.Sprintf("tunnels=%d up=%d dir=%s refresh=%ds focus=%s",
		len(view.Known), m.upCount(), m.cfg.WireGuard.ConfigDir, clampRefresh(m.cfg.UI.RefreshSeconds), m.focus)

	list := strings.Builder{}
	list.WriteString("j/k to navigate; [U] means interface up.\n")
	for i, n := range view.Known {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		selected := " "
		if n == view.Selected {
			selected = "*"
		}
		list.WriteString(fmt.Sprintf("%s[%s]%s %s\n", cursor, m.marker(n), selected, n))
	}
	if len(view.Known) == 0 {
		list.WriteString("  (no configurations found)\n")
	}

	editor := m.name.View() + "\n" + m.editor.View()

	quickHelp := "Keys: tab focus | Enter select | ctrl+s save | ctrl+t up | ctrl+x down | ctrl+r refresh | ctrl+y copy console | ctrl+c quit"
	main := m.renderMainPanels(list.String(), editor)
	console := m.renderPanel("Console", m.console.View(), m.effectiveWidth(), lipgloss.Color("63"))
	status := m.renderPanel("Status", m.status, m.effectiveWidth(), lipgloss.Color("205"))
	help := ""
	if m.showHelp {
		help = m.renderPanel("Help", m.helpBlock(), m.effectiveWidth(), lipgloss.Color("244"))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		subhead,
		quickHelp,
		main,
		console,
		help,
		status,
	)
}

// Run starts the dashboard and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func clampRefresh(seconds int) int {
	if seconds <= 0 {
		return util.DefaultRefreshSeconds
	}
	return seconds
}

func (m modelUI) marker(name string) string {
	st, ok := m.live[name]
	if !ok {
		return " "
	}
	switch st.State {
	case model.TunnelUp:
		return "U"
	case model.TunnelDown:
		return " "
	default:
		return "?"
	}
}

func (m modelUI) upCount() int {
	n := 0
	for _, st := range m.live {
		if st.State == model.TunnelUp {
			n++
		}
	}
	return n
}

func (m modelUI) renderMainPanels(listPanel, editorPanel string) string {
	width := m.effectiveWidth()
	if width < 96 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderPanel("Tunnels", listPanel, width, lipgloss.Color("39")),
			m.renderPanel("Configuration", editorPanel, width, lipgloss.Color("69")),
		)
	}
	leftWidth := width / 3
	rightWidth := width - leftWidth
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPanel("Tunnels", listPanel, leftWidth, lipgloss.Color("39")),
		m.renderPanel("Configuration", editorPanel, rightWidth, lipgloss.Color("69")),
	)
}

func (m modelUI) helpBlock() string {
	return strings.Join([]string{
		"  Navigation: j/k or arrow keys move the cursor, Enter loads the tunnel.",
		"  Name: typing a name re-reads the directory and loads it if it exists.",
		"  Editor: edits stay in memory until ctrl+s writes <name>.conf.",
		"  Switching tunnels discards unsaved edits.",
		"  Up/Down: ctrl+t and ctrl+x run wg-quick for the name in the Name field.",
		"  Quit: press q in the list (or ctrl+c anywhere).",
	}, "\n")
}

func (m modelUI) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m modelUI) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}
