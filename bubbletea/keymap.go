package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the report browser.
type KeyMap struct {
	// Navigation
	Up           key.Binding
	Down         key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding
	SwitchPane   key.Binding

	// Activation of the row under the cursor
	Select key.Binding
	Toggle key.Binding

	// Toolbar
	ViewFlat      key.Binding
	ViewOutlines  key.Binding
	ViewFeatures  key.Binding
	ViewException key.Binding
	TogglePassed  key.Binding
	ToggleFailed  key.Binding
	ToggleSkipped key.Binding

	// Scenario panel
	ExpandAll   key.Binding
	ShowRepeats key.Binding
	ShowLog     key.Binding

	// Attachment modal
	Close key.Binding
	Save  key.Binding

	CopyLink key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "fold"),
		),
		ViewFlat: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "flat"),
		),
		ViewOutlines: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "outlines"),
		),
		ViewFeatures: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "features"),
		),
		ViewException: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "exceptions"),
		),
		TogglePassed: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "passed"),
		),
		ToggleFailed: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "failed"),
		),
		ToggleSkipped: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skipped"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "expand all"),
		),
		ShowRepeats: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "repeats"),
		),
		ShowLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Save: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy link"),
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

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Toggle, k.SwitchPane, k.CopyLink, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.HalfPageUp, k.HalfPageDown, k.GotoTop, k.GotoBottom},
		{k.ViewFlat, k.ViewOutlines, k.ViewFeatures, k.ViewException},
		{k.TogglePassed, k.ToggleFailed, k.ToggleSkipped},
		{k.Select, k.Toggle, k.ExpandAll, k.ShowRepeats, k.ShowLog},
		{k.Close, k.Save, k.CopyLink, k.SwitchPane, k.Help, k.Quit},
	}
}
