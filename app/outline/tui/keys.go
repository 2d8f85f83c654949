package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the outline panel bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Parent    key.Binding
	Toggle    key.Binding
	Goto      key.Binding
	Deeper    key.Binding
	Shallower key.Binding
	Follow    key.Binding
	Filter    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// Keys is the default key map.
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Parent: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "parent"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "tab"),
		key.WithHelp("space", "toggle"),
	),
	Goto: key.NewBinding(
		key.WithKeys("enter", "l", "right"),
		key.WithHelp("enter", "go to symbol"),
	),
	Deeper: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "depth +1"),
	),
	Shallower: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "depth -1"),
	),
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "follow focus"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
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

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Goto, k.Deeper, k.Shallower, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Parent, k.Toggle, k.Goto, k.Follow},
		{k.Deeper, k.Shallower, k.Filter, k.Help, k.Quit},
	}
}
