package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console-level shortcuts. Row navigation and row actions
// live in the grid's own KeyMap.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	New     key.Binding
	Publish key.Binding
	Detail  key.Binding
	Copy    key.Binding
	Refresh key.Binding
	Theme   key.Binding
	Help    key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Switch sidebar/grid"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/⏎", "Edit record"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "Delete record"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New record"),
		),
		Publish: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Toggle published"),
		),
		Detail: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle preview pane"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy record ID"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Delete, k.New, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Tab, k.Detail, k.Refresh},
		{k.Edit, k.Delete, k.New, k.Publish, k.Copy},
		{k.Theme, k.Help, k.Escape, k.Quit},
	}
}
