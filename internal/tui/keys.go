package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the trader UI
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Connection
	NextPort key.Binding
	Ports    key.Binding
	Connect  key.Binding

	// Device actions
	Refresh key.Binding
	Mark    key.Binding
	Trade   key.Binding
	Cancel  key.Binding
	Status  key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPort: key.NewBinding(
			key.WithKeys("tab", "p"),
			key.WithHelp("tab/p", "next port"),
		),
		Ports: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "rescan ports"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect/disconnect"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh list"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m", "enter"),
			key.WithHelp("m", "mark for trade"),
		),
		Trade: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "initiate trade"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel trade"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "device status"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Mark, k.Trade, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPort, k.Ports},
		{k.Connect, k.Refresh, k.Status},
		{k.Mark, k.Trade, k.Cancel},
		{k.Help, k.Quit},
	}
}
