package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenNewClientFormMsg tells the clients screen to open the new client form
type OpenNewClientFormMsg struct{}

// savedMsg reports the outcome of a store mutation started by a screen.
// warning is set when the mutation committed but a follow-up step failed.
type savedMsg struct {
	status  string
	warning string
	err     error
}
