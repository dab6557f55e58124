package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luhtfiimanal/go-poketrader/serial"
	"github.com/luhtfiimanal/go-poketrader/session"
)

// scriptedPort answers LIST_POKEMON with a fixed listing and records writes.
type scriptedPort struct {
	mu      sync.Mutex
	written []string
	listing []string
	lines   chan string
	closed  chan struct{}
	once    sync.Once
}

func newScriptedPort(listing ...string) *scriptedPort {
	return &scriptedPort{listing: listing, lines: make(chan string, 64), closed: make(chan struct{})}
}

func (p *scriptedPort) WriteLine(line, newline string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, line)
	if line == "LIST_POKEMON" {
		for _, l := range p.listing {
			p.lines <- l
		}
	}
	return nil
}

func (p *scriptedPort) ReadLinesLoop(onLine func(string), onError func(error)) {
	for {
		select {
		case <-p.closed:
			return
		case l := <-p.lines:
			onLine(l)
		}
	}
}

func (p *scriptedPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *scriptedPort) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

func newTestModel(t *testing.T, port serial.Port, ports ...string) (Model, *session.Session) {
	t.Helper()
	rec := session.NewRecorder(50)
	s := session.New(session.Config{
		Open: func(cfg serial.Config) (serial.Port, error) {
			if port == nil {
				return nil, errors.New("no such device")
			}
			return port, nil
		},
		Observer: rec,
	})
	t.Cleanup(s.Disconnect)

	infos := make([]serial.PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, serial.PortInfo{Name: p})
	}
	m := New(Options{
		Session:   s,
		Recorder:  rec,
		ListPorts: func() ([]serial.PortInfo, error) { return infos, nil },
	})
	m = update(t, m, portsMsg{ports: infos})
	return m, s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm
}

func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

// settle ticks the model until cond holds.
func settle(t *testing.T, m Model, cond func(Model) bool) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m = update(t, m, tickMsg(time.Now()))
		if cond(m) {
			return m
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
	return m
}

func TestPortCycling(t *testing.T) {
	m, _ := newTestModel(t, nil, "/dev/ttyACM0", "/dev/ttyUSB0")

	if got := m.selectedPort(); got != "/dev/ttyACM0" {
		t.Errorf("selectedPort() = %q, want /dev/ttyACM0", got)
	}
	m = press(t, m, "p")
	if got := m.selectedPort(); got != "/dev/ttyUSB0" {
		t.Errorf("after next: selectedPort() = %q, want /dev/ttyUSB0", got)
	}
	m = press(t, m, "p")
	if got := m.selectedPort(); got != "/dev/ttyACM0" {
		t.Errorf("after wrap: selectedPort() = %q, want /dev/ttyACM0", got)
	}
}

func TestPreferredPortKept(t *testing.T) {
	rec := session.NewRecorder(0)
	m := New(Options{Session: session.New(session.Config{Observer: rec}), Recorder: rec, Port: "/dev/pts/7"})
	m = update(t, m, portsMsg{ports: []serial.PortInfo{{Name: "/dev/ttyACM0"}}})

	if got := m.selectedPort(); got != "/dev/pts/7" {
		t.Errorf("selectedPort() = %q, want /dev/pts/7", got)
	}
	if len(m.ports) != 2 {
		t.Errorf("len(ports) = %d, want 2", len(m.ports))
	}
}

func TestConnectFailureShowsNotice(t *testing.T) {
	m, s := newTestModel(t, nil, "/dev/ttyACM0")
	m = press(t, m, "c")

	if s.State() != session.Disconnected {
		t.Errorf("state = %v, want disconnected", s.State())
	}
	if !strings.Contains(m.notice, "no such device") {
		t.Errorf("notice = %q, want connection error", m.notice)
	}
}

func TestTradeFlow(t *testing.T) {
	port := newScriptedPort("POKEMON_LIST_START", "POKEMON 0 PIKA 25", "POKEMON 4 ONIX 95", "POKEMON_LIST_END")
	m, s := newTestModel(t, port, "/dev/ttyACM0")

	m = press(t, m, "c")
	if s.State() != session.Connected {
		t.Fatalf("state = %v, want connected", s.State())
	}
	m = settle(t, m, func(m Model) bool { return len(m.rec.Entities()) == 2 })

	// trading before marking is refused locally
	m = press(t, m, "t")
	if m.notice == "" {
		t.Error("expected a notice when trading before marking")
	}

	m = press(t, m, "j")
	if _, pos, ok := s.Highlighted(); !ok || pos != 1 {
		t.Errorf("Highlighted() pos = %d ok = %v, want 1 true", pos, ok)
	}
	m = press(t, m, "m")
	if idx, ok := s.MarkedIndex(); !ok || idx != 4 {
		t.Errorf("MarkedIndex() = %d, %v, want 4, true", idx, ok)
	}
	m = press(t, m, "t")
	if m.notice != "" {
		t.Errorf("unexpected notice %q", m.notice)
	}

	want := []string{"LIST_POKEMON", "SELECT_POKEMON 4", "INITIATE_TRADE"}
	got := port.Written()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("written = %v, want %v", got, want)
	}

	view := m.View()
	for _, s := range []string{"ONIX (Species ID: 95, Index: 4)", "Connected to /dev/ttyACM0", "INITIATE_TRADE"} {
		if !strings.Contains(view, s) {
			t.Errorf("View() missing %q", s)
		}
	}

	m = press(t, m, "c")
	if s.State() != session.Disconnected {
		t.Errorf("state = %v, want disconnected", s.State())
	}
}

func TestNotConnectedNotice(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = press(t, m, "s")
	if m.notice != "Serial port is not connected." {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestWindow(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		cursor int
		n      int
		want   string
	}{
		{0, 3, "abc"},
		{2, 3, "abc"},
		{4, 3, "cde"},
		{1, 10, "abcde"},
	}
	for _, tt := range tests {
		if got := strings.Join(window(lines, tt.cursor, tt.n), ""); got != tt.want {
			t.Errorf("window(cursor=%d, n=%d) = %q, want %q", tt.cursor, tt.n, got, tt.want)
		}
	}
}

func TestPaneKeepsNewestRows(t *testing.T) {
	m, _ := newTestModel(t, nil)

	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("[12:30:45] [RECV] ACK_SELECT %d", i))
	}
	lines = append(lines, "[12:30:45] [INFO] Marked Pokémon at storage index 9 for trade.")

	out := m.pane("Raw serial log", lines, 48, 10)

	if h := lipgloss.Height(out); h != 12 {
		t.Errorf("pane height = %d, want 12", h)
	}
	if w := lipgloss.Width(out); w != 50 {
		t.Errorf("pane width = %d, want 50", w)
	}
	for _, want := range []string{"Raw serial log", "ACK_SELECT 2", "ACK_SELECT 9", "[12:30:45] [INFO] Marked"} {
		if !strings.Contains(out, want) {
			t.Errorf("pane missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ACK_SELECT 1") {
		t.Errorf("pane kept an old row:\n%s", out)
	}
}
