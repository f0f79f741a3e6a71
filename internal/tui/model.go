package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenClients
	ScreenProjects
	ScreenPayments
	ScreenReports
	ScreenCampaign
	ScreenSettings
	screenCount
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Dashboard"
	case ScreenClients:
		return "Clients"
	case ScreenProjects:
		return "Projects"
	case ScreenPayments:
		return "Payments"
	case ScreenReports:
		return "Reports"
	case ScreenCampaign:
		return "Campaign Panel"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models, lazily created on first visit
	screens [screenCount]tea.Model

	checkedFirstRun bool
	err             error
}

// New creates a new root model
func New(a *app.App) Model {
	m := Model{app: a, currentScreen: ScreenDashboard}
	m.screens[ScreenDashboard] = NewDashboardModel(a)
	return m
}

func newScreen(a *app.App, s Screen) tea.Model {
	switch s {
	case ScreenDashboard:
		return NewDashboardModel(a)
	case ScreenClients:
		return NewClientsModel(a)
	case ScreenProjects:
		return NewProjectsModel(a)
	case ScreenPayments:
		return NewPaymentsModel(a)
	case ScreenReports:
		return NewReportsModel(a)
	case ScreenCampaign:
		return NewCampaignModel(a)
	case ScreenSettings:
		return NewSettingsModel(a)
	}
	return nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkFirstRun(), m.screens[ScreenDashboard].Init())
}

// checkFirstRun opens the new client form when the account has no clients yet
func (m *Model) checkFirstRun() tea.Cmd {
	return func() tea.Msg {
		return firstRunCheckMsg{hasClients: len(m.app.Store.Clients()) > 0}
	}
}

type firstRunCheckMsg struct {
	hasClients bool
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	if m.screens[screen] == nil {
		m.screens[screen] = newScreen(m.app, screen)
		return m.screens[screen].Init()
	}
	return func() tea.Msg { return RefreshDataMsg{} }
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	m.err = nil
	return m.initScreen(screen)
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

var navigation = []struct {
	binding key.Binding
	screen  Screen
}{
	{DefaultKeyMap.Dashboard, ScreenDashboard},
	{DefaultKeyMap.Clients, ScreenClients},
	{DefaultKeyMap.Projects, ScreenProjects},
	{DefaultKeyMap.Payments, ScreenPayments},
	{DefaultKeyMap.Reports, ScreenReports},
	{DefaultKeyMap.Campaign, ScreenCampaign},
	{DefaultKeyMap.Settings, ScreenSettings},
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			if key.Matches(msg, DefaultKeyMap.Quit) {
				return m, tea.Quit
			}
			for _, nav := range navigation {
				if key.Matches(msg, nav.binding) {
					return m, m.switchTo(nav.screen)
				}
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasClients {
			m.checkedFirstRun = true
			initCmd := m.switchTo(ScreenClients)
			openFormCmd := func() tea.Msg { return OpenNewClientFormMsg{} }
			return m, tea.Batch(initCmd, openFormCmd)
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if s := m.screens[m.currentScreen]; s != nil {
		m.screens[m.currentScreen], cmd = s.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := fmt.Sprintf("freelancedesk - %s", m.currentScreen)
	if id := m.app.Store.Identity(); id != nil && id.Phone != "" {
		title += subtitleStyle.Render("  " + id.Phone)
	}
	header := headerStyle.Render(title)

	footer := footerStyle.Render("[D]ashboard  [C]lients  [P]rojects  [M]oney in  [R]eports  c[A]mpaign  [,] Settings  [q]uit")

	content := "Loading..."
	if s := m.screens[m.currentScreen]; s != nil {
		content = s.View()
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = "\n" + errorText(m.err)
	}

	innerWidth := max(m.width-6, 20) // border (2) + padding (4)
	dividerWidth := max(innerWidth-12, 10)
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat("─", dividerWidth))

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// mutate runs fn against the store and reports the outcome as a savedMsg.
// A failed status reconciliation is a warning, the payment itself was saved.
func mutate(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		switch {
		case errors.Is(err, domain.ErrReconcile):
			return savedMsg{status: status, warning: "Project status could not be updated: " + err.Error()}
		case err != nil:
			return savedMsg{err: err}
		}
		return savedMsg{status: status}
	}
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
