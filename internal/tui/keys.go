package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Dashboard key.Binding
	Clients   key.Binding
	Projects  key.Binding
	Payments  key.Binding
	Reports   key.Binding
	Campaign  key.Binding
	Settings  key.Binding

	// Actions
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Status key.Binding
	Filter key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Dashboard: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dashboard")),
	Clients:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clients")),
	Projects:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "projects")),
	Payments:  key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "payments")),
	Reports:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reports")),
	Campaign:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "campaign")),
	Settings:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
}
