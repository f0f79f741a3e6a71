package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/finance"
	"github.com/andy/freelancedesk/internal/service"
)

const dashboardIncomeMonths = 6

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	dashboard service.Dashboard
	income    []finance.MonthIncome
	loading   bool
}

type dashboardDataMsg struct {
	dashboard service.Dashboard
	income    []finance.MonthIncome
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{app: a, loading: true}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{
			dashboard: m.app.ReportService.Dashboard(),
			income:    m.app.ReportService.IncomeByMonth(dashboardIncomeMonths),
		}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.dashboard = msg.dashboard
		m.income = msg.income
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading || m.app.Store.Loading() {
		return "Loading dashboard..."
	}

	d := m.dashboard
	s := fmt.Sprintf("  %s %s\n  %s %s\n  %s %d\n",
		figureLabelStyle.Render("Income this month"), incomeStyle.Render(formatMoney(d.IncomeThisMonth)),
		figureLabelStyle.Render("Pending overall"), pendingStyle.Render(formatMoney(d.PendingOverall)),
		figureLabelStyle.Render("Active projects"), d.ActiveProjects,
	)

	s += "\n" + m.renderOverdue()
	s += "\n" + m.renderRecentPayments()
	s += "\n" + m.renderIncome()
	return s
}

func (m *DashboardModel) renderOverdue() string {
	header := "  Overdue Projects\n"
	if len(m.dashboard.Overdue) == 0 {
		return header + subtitleStyle.Render("  Nothing overdue") + "\n"
	}

	s := header
	for _, p := range m.dashboard.Overdue {
		s += overdueStyle.Render(fmt.Sprintf("  %-10s %-28s %-18s %14s",
			formatDate(p.DueDate),
			truncateStr(p.Title, 28),
			truncateStr(clientName(m.app, p.ClientID), 18),
			formatMoney(p.PendingAmount),
		)) + "\n"
	}
	return s
}

func (m *DashboardModel) renderRecentPayments() string {
	header := "  Recent Payments\n"
	if len(m.dashboard.RecentPayments) == 0 {
		return header + subtitleStyle.Render("  No payments yet") + "\n"
	}

	s := header
	for _, p := range m.dashboard.RecentPayments {
		s += fmt.Sprintf("  %-7s %-30s %14s\n",
			p.PaymentDate.Format("Jan 2"),
			truncateStr(projectTitle(m.app, p.ProjectID), 30),
			formatMoney(p.Amount),
		)
	}
	return s
}

func (m *DashboardModel) renderIncome() string {
	s := fmt.Sprintf("  Income, last %d months\n", dashboardIncomeMonths)
	peak := decimal.Zero
	for _, mi := range m.income {
		peak = decimal.Max(peak, mi.Income)
	}
	for _, mi := range m.income {
		s += fmt.Sprintf("  %-8s %14s  %s\n", mi.Label(), formatMoney(mi.Income), barStyle.Render(bar(mi.Income, peak, 30)))
	}
	return s
}
