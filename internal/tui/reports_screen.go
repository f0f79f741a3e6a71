package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/finance"
)

// ReportsModel shows the monthly report for a selectable month
type ReportsModel struct {
	app   *app.App
	month time.Time // first of the selected month

	report    finance.MonthlyReport
	loading   bool
	err       error
	statusMsg string
}

type reportsDataMsg struct {
	report finance.MonthlyReport
}

type reportExportedMsg struct {
	path string
	err  error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	now := a.Store.Now()
	return &ReportsModel{
		app:     a,
		month:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	year, month := m.month.Year(), m.month.Month()
	return func() tea.Msg {
		return reportsDataMsg{report: m.app.ReportService.MonthlyReport(year, month)}
	}
}

func (m *ReportsModel) export() tea.Cmd {
	year, month := m.month.Year(), m.month.Month()
	path := filepath.Join(m.app.Config.Invoice.OutputDir, fmt.Sprintf("report-%d-%02d.xlsx", year, month))
	reports := m.app.ReportService
	return func() tea.Msg {
		return reportExportedMsg{path: path, err: reports.ExportMonthlyReport(path, year, month)}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		m.report = msg.report
		return m, nil

	case reportExportedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.statusMsg = "Exported to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Left):
			m.month = m.month.AddDate(0, -1, 0)
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.Right):
			m.month = m.month.AddDate(0, 1, 0)
			m.loading = true
			return m, m.loadData()

		case msg.String() == "x":
			return m, m.export()
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return titleStyle.Render("Reports") + "\n\n  Loading..."
	}

	r := m.report
	s := titleStyle.Render("Reports") + "\n"
	s += fmt.Sprintf("  %s\n\n", m.month.Format("January 2006"))

	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}

	bold := lipgloss.NewStyle().Bold(true)
	row := func(label, value string) string {
		return fmt.Sprintf("    %s %s\n", figureLabelStyle.Width(28).Render(label), value)
	}

	s += bold.Render("  New Projects") + "\n"
	s += row("Started this month", fmt.Sprintf("%d", r.NewProjectsCount))
	s += row("Value", formatMoney(r.NewProjectsValue))
	s += "\n"

	s += bold.Render("  Payments") + "\n"
	s += row("From new projects", formatMoney(r.PaymentsFromNewProjects))
	s += row("From earlier projects", formatMoney(r.PaymentsFromOtherProjects))
	s += row("Total received", incomeStyle.Render(formatMoney(r.PaymentsReceived)))
	s += "\n"

	s += bold.Render("  Due This Month") + "\n"
	s += row("Pending", pendingStyle.Render(formatMoney(r.PendingForMonth)))
	s += row("Completed", formatMoney(r.CompletedForMonth))
	for _, p := range r.DueProjects {
		s += fmt.Sprintf("      %-10s %-28s %s %14s\n",
			formatDate(p.DueDate),
			truncateStr(p.Title, 28),
			statusStyle(p.Status).Width(10).Render(string(p.Status)),
			formatMoney(p.PendingAmount),
		)
	}
	if len(r.DueProjects) == 0 {
		s += subtitleStyle.Render("      Nothing due") + "\n"
	}

	if len(r.NewProjects) > 0 {
		s += "\n" + bold.Render("  Started This Month") + "\n"
		for _, p := range r.NewProjects {
			s += fmt.Sprintf("      %-10s %-28s %-18s %14s\n",
				formatDate(p.StartDate),
				truncateStr(p.Title, 28),
				truncateStr(clientName(m.app, p.ClientID), 18),
				formatMoney(p.TotalAmount),
			)
		}
	}

	s += "\n" + helpStyle.Render("  h/l: prev/next month  x: export .xlsx")
	return s
}

