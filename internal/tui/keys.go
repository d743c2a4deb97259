package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Enter    key.Binding
	Tab      key.Binding
	Review   key.Binding
	Copy     key.Binding
	History  key.Binding
	Open     key.Binding
	Reload   key.Binding
	Settings key.Binding
	Escape   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k/up", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/down", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("h/left", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("l/right", "expand"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "open/select"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Review: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "review file"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy review"),
	),
	History: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "past reviews"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open repository"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
	Settings: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close review"),
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

// helpKeyMap hides bindings that do nothing in the current state.
type helpKeyMap struct {
	KeyMap
	hasSelection bool
	canCopy      bool
	hasHistory   bool
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{k.Enter, k.Open}
	if k.hasSelection {
		bindings = append(bindings, k.Review)
	}
	if k.canCopy {
		bindings = append(bindings, k.Copy)
	}
	return append(bindings, k.Help, k.Quit)
}

func (k helpKeyMap) FullHelp() [][]key.Binding {
	navigation := []key.Binding{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Tab}

	actions := []key.Binding{k.Enter, k.Open, k.Reload, k.Settings}
	if k.hasSelection {
		actions = append(actions, k.Review)
	}
	if k.canCopy {
		actions = append(actions, k.Copy)
	}
	if k.hasHistory {
		actions = append(actions, k.History)
	}

	return [][]key.Binding{navigation, actions, {k.Escape, k.Help, k.Quit}}
}
