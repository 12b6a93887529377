package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts. Printable keys always go to the
// search input, so every binding here is a control or navigation key.
type KeyMap struct {
	// Suggestions
	Up     key.Binding
	Down   key.Binding
	Accept key.Binding

	// Search
	Submit   key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Scope
	TogglePayments key.Binding
	ToggleDeposits key.Binding
	ToggleLoans    key.Binding

	// Application
	Quit        key.Binding
	ForceQuit   key.Binding
	ClearScreen key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next suggestion"),
		),
		Accept: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "use suggestion"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "search"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "next page"),
		),

		TogglePayments: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("Ctrl+P", "payments"),
		),
		ToggleDeposits: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("Ctrl+D", "deposits"),
		),
		ToggleLoans: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("Ctrl+O", "loans"),
		),

		Quit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
		ClearScreen: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("Ctrl+L", "clear screen"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Accept, k.PrevPage, k.NextPage, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Accept},
		{k.Submit, k.PrevPage, k.NextPage},
		{k.TogglePayments, k.ToggleDeposits, k.ToggleLoans},
		{k.Quit, k.ForceQuit, k.ClearScreen},
	}
}
