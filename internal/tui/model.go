// Package tui is the terminal front-end of poketrader: a port picker, the
// storage list, and the status and raw protocol logs of a session.Session.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luhtfiimanal/go-poketrader/serial"
	"github.com/luhtfiimanal/go-poketrader/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Options configures a Model.
type Options struct {
	Session  *session.Session
	Recorder *session.Recorder // must be the Session's observer

	// ListPorts enumerates ports for the picker. Defaults to serial.ListPorts.
	ListPorts func() ([]serial.PortInfo, error)

	// Port is preselected, and offered even when enumeration misses it.
	Port string

	PollInterval time.Duration
}

type tickMsg time.Time

type portsMsg struct {
	ports []serial.PortInfo
	err   error
}

// Model is the bubbletea model of the trader UI.
type Model struct {
	sess      *session.Session
	rec       *session.Recorder
	listPorts func() ([]serial.PortInfo, error)
	poll      time.Duration

	preferred string
	ports     []serial.PortInfo
	portIdx   int

	cursor int
	notice string

	keys   KeyMap
	help   help.Model
	width  int
	height int
}

// New creates the model. The session must not be connected yet.
func New(opts Options) Model {
	if opts.ListPorts == nil {
		opts.ListPorts = serial.ListPorts
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = session.DefaultPollInterval
	}
	m := Model{
		sess:      opts.Session,
		rec:       opts.Recorder,
		listPorts: opts.ListPorts,
		poll:      opts.PollInterval,
		preferred: opts.Port,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.setPorts(nil)
	return m
}

// Init starts the drain ticker and the first port scan.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.poll), scanPortsCmd(m.listPorts))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func scanPortsCmd(list func() ([]serial.PortInfo, error)) tea.Cmd {
	return func() tea.Msg {
		ports, err := list()
		return portsMsg{ports: ports, err: err}
	}
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.sess.Drain()
		m.clampCursor()
		return m, tickCmd(m.poll)

	case portsMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Could not list serial ports: %v", msg.err)
		}
		m.setPorts(msg.ports)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.NextPort):
		if m.sess.State() == session.Connected {
			m.notice = "Disconnect before switching ports."
		} else if len(m.ports) > 0 {
			m.portIdx = (m.portIdx + 1) % len(m.ports)
		}

	case key.Matches(msg, m.keys.Ports):
		return m, scanPortsCmd(m.listPorts)

	case key.Matches(msg, m.keys.Connect):
		if m.sess.State() == session.Connected {
			m.sess.Disconnect()
		} else {
			m.report(m.sess.Connect(m.selectedPort()))
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Refresh):
		m.report(m.sess.Refresh())
		m.cursor = 0

	case key.Matches(msg, m.keys.Mark):
		if err := m.sess.Highlight(m.cursor); err != nil {
			m.report(err)
			break
		}
		m.report(m.sess.MarkForTrade())

	case key.Matches(msg, m.keys.Trade):
		m.report(m.sess.InitiateTrade())

	case key.Matches(msg, m.keys.Cancel):
		m.report(m.sess.CancelTrade())

	case key.Matches(msg, m.keys.Status):
		m.report(m.sess.GetStatus())
	}
	return m, nil
}

// report turns an operation error into the notice line.
func (m *Model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotConnected):
		m.notice = "Serial port is not connected."
	default:
		m.notice = err.Error()
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	if err := m.sess.Highlight(m.cursor); err != nil {
		m.sess.ClearHighlight()
	}
}

func (m *Model) clampCursor() {
	n := len(m.rec.Entities())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setPorts(ports []serial.PortInfo) {
	current := m.selectedPort()
	if current == "" {
		current = m.preferred
	}
	found := false
	for _, p := range ports {
		if p.Name == m.preferred {
			found = true
			break
		}
	}
	if m.preferred != "" && !found {
		ports = append([]serial.PortInfo{{Name: m.preferred}}, ports...)
	}
	m.ports = ports
	m.portIdx = 0
	for i, p := range ports {
		if p.Name == current {
			m.portIdx = i
			break
		}
	}
}

func (m Model) selectedPort() string {
	if m.portIdx < len(m.ports) {
		return m.ports[m.portIdx].Name
	}
	return ""
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Pokémon Trader"))
	b.WriteString("  ")
	b.WriteString(m.connectionView())
	b.WriteString("\n")

	paneWidth := m.width/2 - 2
	if paneWidth < 30 {
		paneWidth = 30
	}
	paneLines := (m.height - 10) / 2
	if paneLines < 4 {
		paneLines = 4
	}

	listLines := paneLines*2 + 1
	list := m.pane("Pokémon in storage", window(m.entityLines(), m.cursor, listLines), paneWidth, listLines+1)
	status := m.pane("Device status", m.statusLines(paneLines), paneWidth, paneLines)
	raw := m.pane("Raw serial log", m.rawLines(paneLines), paneWidth, paneLines)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, lipgloss.JoinVertical(lipgloss.Left, status, raw)))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(NoticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) connectionView() string {
	port := m.selectedPort()
	if port == "" {
		port = "(no ports found)"
	}
	if m.sess.State() == session.Connected {
		return ConnectedStyle.Render("Status: Connected to " + m.sess.Port())
	}
	pos := ""
	if len(m.ports) > 1 {
		pos = fmt.Sprintf(" [%d/%d]", m.portIdx+1, len(m.ports))
	}
	return DisconnectedStyle.Render("Status: Not Connected") + "  Port: " + PortStyle.Render(port+pos)
}

func (m Model) entityLines() []string {
	entities := m.rec.Entities()
	marked, hasMarked := m.sess.MarkedIndex()
	lines := make([]string, 0, len(entities))
	for i, e := range entities {
		if e.Placeholder {
			lines = append(lines, PlaceholderStyle.Render(e.Label()))
			continue
		}
		prefix := "  "
		if hasMarked && e.Index == marked {
			prefix = MarkedStyle.Render("★ ")
		}
		label := e.Label()
		if i == m.cursor {
			label = CursorStyle.Render(label)
		}
		lines = append(lines, prefix+label)
	}
	return lines
}

func (m Model) statusLines(n int) []string {
	log := tail(m.rec.StatusLog(), n)
	lines := make([]string, 0, len(log))
	for _, msg := range log {
		style := StatusInfoStyle
		if msg.IsError {
			style = StatusErrorStyle
		}
		lines = append(lines, style.Render(msg.Format()))
	}
	return lines
}

func (m Model) rawLines(n int) []string {
	log := tail(m.rec.RawLog(), n)
	lines := make([]string, 0, len(log))
	for _, e := range log {
		lines = append(lines, rawStyles[e.Kind.String()].Render(e.Format()))
	}
	return lines
}

// pane renders a bordered box of height rows below the border: the title,
// then the last height-1 lines, each cut to the inner width so nothing wraps.
func (m Model) pane(title string, lines []string, width, height int) string {
	clip := lipgloss.NewStyle().MaxWidth(width - PaneStyle.GetHorizontalPadding())
	rows := make([]string, 0, height)
	rows = append(rows, PaneTitleStyle.Render(title))
	for _, l := range tail(lines, height-1) {
		rows = append(rows, clip.Render(l))
	}
	return PaneStyle.
		Width(width).
		Height(height).
		MaxHeight(height + PaneStyle.GetVerticalBorderSize()).
		Render(strings.Join(rows, "\n"))
}

// window returns at most n lines of s, scrolled so that line cursor shows.
func window(s []string, cursor, n int) []string {
	if len(s) <= n {
		return s
	}
	start := cursor - n + 1
	if start < 0 {
		start = 0
	}
	return s[start : start+n]
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
