package grid

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the grid's bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

// DefaultKeyMap returns the standard grid bindings.
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
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/G", "First/last row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("g/G", "First/last row"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "Edit row"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "Delete row"),
		),
	}
}
