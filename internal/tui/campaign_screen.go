package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
)

type campaignTab int

const (
	campaignTabReports campaignTab = iota
	campaignTabAudit
)

// campaign report form field indices
const (
	reportFieldCampaignID = iota
	reportFieldName
	reportFieldPanel
	reportFieldUser
	reportFieldCredential
	reportFieldRemarks
)

// CampaignModel shows campaign reports and the audit log
type CampaignModel struct {
	app       *app.App
	tab       campaignTab
	reports   []domain.CampaignReport
	audit     []domain.AuditLog
	cursor    int
	loading   bool
	err       error
	statusMsg string

	form          *form
	confirmDelete bool
}

type campaignDataMsg struct {
	reports []domain.CampaignReport
	audit   []domain.AuditLog
}

// NewCampaignModel creates a new campaign panel screen model
func NewCampaignModel(a *app.App) tea.Model {
	return &CampaignModel{app: a, loading: true}
}

func (m *CampaignModel) IsCapturingInput() bool {
	return m.form != nil || m.confirmDelete
}

func (m *CampaignModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *CampaignModel) loadData() tea.Cmd {
	return func() tea.Msg {
		return campaignDataMsg{
			reports: m.app.Campaign.Reports(),
			audit:   m.app.Campaign.AuditLogs(),
		}
	}
}

func (m *CampaignModel) selected() (domain.CampaignReport, bool) {
	if m.tab == campaignTabReports && m.cursor < len(m.reports) {
		return m.reports[m.cursor], true
	}
	return domain.CampaignReport{}, false
}

func (m *CampaignModel) rows() int {
	if m.tab == campaignTabAudit {
		return len(m.audit)
	}
	return len(m.reports)
}

func (m *CampaignModel) openForm() tea.Cmd {
	panel := ""
	if panels := m.app.Campaign.Panels(); len(panels) == 1 {
		panel = panels[0].Name
	}
	m.form = newForm("New Campaign Report",
		formField{label: "Campaign ID:", placeholder: "External campaign id", width: 20},
		formField{label: "Campaign name:", placeholder: "Diwali promo"},
		formField{label: "Panel:", placeholder: "Panel name", value: panel},
		formField{label: "Assigned user:", placeholder: "Panel username"},
		formField{label: "Panel 3 login:", placeholder: "Optional, required by some panels", width: 30},
		formField{label: "Remarks:", placeholder: "Optional", width: 60},
	)
	return m.form.Focus()
}

func (m *CampaignModel) findPanel(ref string) (domain.Panel, error) {
	for _, p := range m.app.Campaign.Panels() {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return domain.Panel{}, fmt.Errorf("no panel named %q", ref)
}

func (m *CampaignModel) saveReport() (tea.Cmd, error) {
	f := m.form
	c := m.app.Campaign

	panel, err := m.findPanel(strings.TrimSpace(f.value(reportFieldPanel)))
	if err != nil {
		return nil, err
	}

	in := domain.CampaignReportInput{
		CampaignIDExternal: f.value(reportFieldCampaignID),
		CampaignName:       f.value(reportFieldName),
		PanelID:            panel.ID,
	}

	username := strings.TrimSpace(f.value(reportFieldUser))
	for _, u := range c.UsersForPanel(panel.ID) {
		if strings.EqualFold(u.Username, username) {
			in.AssignedPanelUserID = u.ID
		}
	}
	if in.AssignedPanelUserID == "" {
		return nil, fmt.Errorf("%s has no user named %q", panel.Name, username)
	}

	if login := strings.TrimSpace(f.value(reportFieldCredential)); login != "" {
		for _, cred := range c.Credentials() {
			cred := cred
			if cred.LoginID == login {
				in.Panel3CredentialID = &cred.ID
			}
		}
		if in.Panel3CredentialID == nil {
			return nil, fmt.Errorf("no Panel 3 credential %q", login)
		}
	} else if panel.RequiresPanel3Credentials {
		return nil, fmt.Errorf("%s requires a Panel 3 login", panel.Name)
	}

	if remarks := f.value(reportFieldRemarks); remarks != "" {
		in.Remarks = &remarks
	}

	return mutate("Saved: "+in.CampaignName, func(ctx context.Context) error {
		_, err := c.AddReport(ctx, in)
		return err
	}), nil
}

func (m *CampaignModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case campaignDataMsg:
		m.loading = false
		m.reports = msg.reports
		m.audit = msg.audit
		m.cursor = moveCursor(m.cursor, 0, m.rows())
		return m, nil

	case savedMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.err = msg.err
			} else {
				m.err = msg.err
			}
			return m, nil
		}
		m.form = nil
		m.statusMsg = msg.status
		m.loading = true
		return m, m.loadData()
	}

	if m.form != nil {
		switch res, cmd := m.form.Update(msg); res {
		case formSubmitted:
			save, err := m.saveReport()
			m.form.err = err
			return m, save
		case formCancelled:
			m.form = nil
			return m, nil
		default:
			return m, cmd
		}
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	if m.confirmDelete {
		m.confirmDelete = false
		r, ok := m.selected()
		if !ok || keyMsg.String() != "y" {
			m.statusMsg = "Delete cancelled"
			return m, nil
		}
		c := m.app.Campaign
		return m, mutate("Deleted: "+r.CampaignName, func(ctx context.Context) error {
			return c.DeleteReport(ctx, r.ID)
		})
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case keyMsg.String() == "tab":
		if m.tab == campaignTabReports {
			m.tab = campaignTabAudit
		} else {
			m.tab = campaignTabReports
		}
		m.cursor = 0
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		m.cursor = moveCursor(m.cursor, -1, m.rows())
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		m.cursor = moveCursor(m.cursor, 1, m.rows())
	case key.Matches(keyMsg, DefaultKeyMap.New):
		if m.tab != campaignTabReports {
			return m, nil
		}
		if len(m.app.Campaign.Panels()) == 0 {
			m.err = fmt.Errorf("add a panel first: freelancedesk campaign panels add <name>")
			return m, nil
		}
		return m, m.openForm()
	case key.Matches(keyMsg, DefaultKeyMap.Status):
		if r, ok := m.selected(); ok {
			next := r.Status.Next()
			c := m.app.Campaign
			return m, mutate(fmt.Sprintf("%s is now %s", r.CampaignName, next), func(ctx context.Context) error {
				_, err := c.SetReportStatus(ctx, r.ID, next)
				return err
			})
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}
	}

	return m, nil
}

func (m *CampaignModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.loading {
		return "Loading campaign data..."
	}

	tabs := []string{"Reports", "Audit Log"}
	for i := range tabs {
		if campaignTab(i) == m.tab {
			tabs[i] = selectedStyle.Render("[" + tabs[i] + "]")
		} else {
			tabs[i] = subtitleStyle.Render(" " + tabs[i] + " ")
		}
	}
	s := titleStyle.Render("Campaign Panel") + "  " + strings.Join(tabs, " ") + "\n\n"

	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}

	if m.tab == campaignTabAudit {
		return s + m.viewAudit()
	}
	return s + m.viewReports()
}

func (m *CampaignModel) viewReports() string {
	if len(m.reports) == 0 {
		return subtitleStyle.Render("  No campaign reports. Press 'n' to add one.") + "\n"
	}

	c := m.app.Campaign
	s := subtitleStyle.Render(fmt.Sprintf("    %-12s %-22s %-14s %-14s %-14s %s",
		"Campaign", "Name", "Panel", "Assigned", "Panel 3", "Status")) + "\n"
	for i, r := range m.reports {
		indicator := "  "
		if i == m.cursor {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%-12s %-22s %-14s %-14s %-14s",
			indicator,
			truncateStr(r.CampaignIDExternal, 12),
			truncateStr(r.CampaignName, 22),
			truncateStr(c.PanelName(r.PanelID), 14),
			truncateStr(c.PanelUserName(r.AssignedPanelUserID), 14),
			truncateStr(c.Panel3LoginID(r.Panel3CredentialID), 14),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + " " + campaignStatusStyle(r.Status).Render(string(r.Status)) + "\n"
	}

	if m.confirmDelete {
		r, _ := m.selected()
		s += "\n" + warningText(fmt.Sprintf("Delete campaign report %s? (y/N)", r.CampaignName))
		return s
	}

	s += "\n" + helpStyle.Render("  tab: audit log  j/k: navigate  n: new  s: advance status  d: delete")
	return s
}

func (m *CampaignModel) viewAudit() string {
	if len(m.audit) == 0 {
		return subtitleStyle.Render("  No audit entries yet") + "\n"
	}

	var s string
	for i, l := range m.audit {
		indicator := "  "
		if i == m.cursor {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%s  %-6s %-18s %s",
			indicator,
			l.Timestamp.Local().Format("Jan 02 15:04:05"),
			l.Action,
			l.TableName,
			truncateStr(l.RecordID, 8),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}

	// Show the change behind the highlighted entry.
	if m.cursor < len(m.audit) {
		l := m.audit[m.cursor]
		if l.OldValue != nil {
			s += "\n" + subtitleStyle.Render("  before: "+truncateStr(*l.OldValue, 100))
		}
		if l.NewValue != nil {
			s += "\n" + subtitleStyle.Render("  after:  "+truncateStr(*l.NewValue, 100))
		}
		s += "\n"
	}

	s += "\n" + helpStyle.Render("  tab: reports  j/k: navigate")
	return s
}

func campaignStatusStyle(s domain.CampaignStatus) lipgloss.Style {
	switch s {
	case domain.CampaignStatusCompleted:
		return lipgloss.NewStyle().Foreground(successColor)
	case domain.CampaignStatusCancelled:
		return lipgloss.NewStyle().Foreground(mutedColor)
	case domain.CampaignStatusVerification:
		return lipgloss.NewStyle().Foreground(accentColor)
	case domain.CampaignStatusInProgress:
		return lipgloss.NewStyle().Foreground(primaryColor)
	}
	return lipgloss.NewStyle().Foreground(warningColor)
}
