package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
)

// project form field indices
const (
	projectFieldClient = iota
	projectFieldTitle
	projectFieldTotal
	projectFieldStart
	projectFieldDue
	projectFieldStatus
	projectFieldDescription
	projectFieldNotes
)

// ProjectsModel lists projects with their paid and pending amounts
type ProjectsModel struct {
	app       *app.App
	projects  []domain.ProjectWithCalculations
	overdue   map[string]bool
	filter    domain.ProjectStatus // empty shows all
	cursor    int
	loading   bool
	err       error
	statusMsg string
	warning   string

	form          *form
	editingID     string
	confirmDelete bool
}

type projectsDataMsg struct {
	projects []domain.ProjectWithCalculations
	overdue  map[string]bool
}

// NewProjectsModel creates a new projects screen model
func NewProjectsModel(a *app.App) tea.Model {
	return &ProjectsModel{app: a, loading: true}
}

func (m *ProjectsModel) IsCapturingInput() bool {
	return m.form != nil || m.confirmDelete
}

func (m *ProjectsModel) Init() tea.Cmd {
	return m.loadProjects()
}

func (m *ProjectsModel) loadProjects() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		msg := projectsDataMsg{overdue: make(map[string]bool)}
		for _, p := range m.app.Store.OverdueProjects() {
			msg.overdue[p.ID] = true
		}
		for _, p := range m.app.Store.ProjectsWithCalculations() {
			if filter == "" || p.Status == filter {
				msg.projects = append(msg.projects, p)
			}
		}
		return msg
	}
}

func (m *ProjectsModel) selected() (domain.ProjectWithCalculations, bool) {
	if m.cursor < len(m.projects) {
		return m.projects[m.cursor], true
	}
	return domain.ProjectWithCalculations{}, false
}

// nextFilter cycles all -> proposal -> active -> completed -> cancelled -> all
func nextFilter(f domain.ProjectStatus) domain.ProjectStatus {
	i := slices.Index(domain.ProjectStatuses, f)
	if i == len(domain.ProjectStatuses)-1 {
		return ""
	}
	return domain.ProjectStatuses[i+1]
}

func (m *ProjectsModel) openForm(editing *domain.Project) tea.Cmd {
	title := "New Project"
	p := domain.Project{Status: domain.ProjectStatusActive, StartDate: m.app.Store.Now()}
	client := ""
	m.editingID = ""
	if editing != nil {
		title = "Edit Project"
		p = *editing
		client = clientName(m.app, p.ClientID)
		m.editingID = p.ID
	} else if c, ok := m.app.Store.Client(m.lastClientID()); ok {
		client = c.Name
	}

	total, due := "", ""
	if editing != nil {
		total = p.TotalAmount.StringFixed(2)
		due = formatDate(p.DueDate)
	}

	m.form = newForm(title,
		formField{label: "Client:", placeholder: "Client name", value: client},
		formField{label: "Title:", placeholder: "Website redesign", value: p.Title},
		formField{label: "Total amount:", placeholder: "50000", value: total, width: 15},
		formField{label: "Start date:", placeholder: "YYYY-MM-DD", value: formatDate(p.StartDate), width: 12},
		formField{label: "Due date:", placeholder: "YYYY-MM-DD", value: due, width: 12},
		formField{label: "Status:", placeholder: "proposal, active, completed, cancelled", value: string(p.Status), width: 12},
		formField{label: "Description:", placeholder: "Optional", value: domain.Value(p.Description, ""), width: 60},
		formField{label: "Notes:", placeholder: "Optional", value: domain.Value(p.Notes, ""), width: 60},
	)
	return m.form.Focus()
}

// lastClientID preselects the client of the highlighted project for new projects
func (m *ProjectsModel) lastClientID() string {
	if p, ok := m.selected(); ok {
		return p.ClientID
	}
	return ""
}

func (m *ProjectsModel) saveProject() (tea.Cmd, error) {
	f := m.form
	c, err := findClient(m.app, f.value(projectFieldClient))
	if err != nil {
		return nil, err
	}
	total, err := parseAmount(f.value(projectFieldTotal))
	if err != nil {
		return nil, err
	}
	start, err := parseDateOr(f.value(projectFieldStart), domain.Date(m.app.Store.Now()))
	if err != nil {
		return nil, err
	}
	due, err := domain.ParseDate(f.value(projectFieldDue))
	if err != nil {
		return nil, fmt.Errorf("due date is required (YYYY-MM-DD)")
	}
	status := domain.ProjectStatus(strings.TrimSpace(f.value(projectFieldStatus)))
	title := f.value(projectFieldTitle)
	description, notes := f.value(projectFieldDescription), f.value(projectFieldNotes)
	store := m.app.Store

	if m.editingID != "" {
		id := m.editingID
		patch := domain.ProjectPatch{
			ClientID:    &c.ID,
			Title:       &title,
			Description: &description,
			Notes:       &notes,
			TotalAmount: &total,
			StartDate:   &start,
			DueDate:     &due,
		}
		// A blank status keeps the current one.
		if status != "" {
			patch.Status = &status
		}
		return mutate("Saved: "+title, func(ctx context.Context) error {
			_, err := store.UpdateProject(ctx, id, patch)
			return err
		}), nil
	}

	in := domain.ProjectInput{
		ClientID:    c.ID,
		Title:       title,
		Description: &description,
		Notes:       &notes,
		TotalAmount: total,
		StartDate:   start,
		DueDate:     due,
		Status:      status,
	}
	return mutate("Saved: "+title, func(ctx context.Context) error {
		_, err := store.AddProject(ctx, in)
		return err
	}), nil
}

func (m *ProjectsModel) cycleStatus(p domain.ProjectWithCalculations) tea.Cmd {
	next := p.Status.Next()
	store := m.app.Store
	return mutate(fmt.Sprintf("%s is now %s", p.Title, next), func(ctx context.Context) error {
		_, err := store.UpdateProject(ctx, p.ID, domain.ProjectPatch{Status: &next})
		return err
	})
}

func (m *ProjectsModel) writeInvoice(p domain.ProjectWithCalculations) tea.Cmd {
	invoices := m.app.InvoiceService
	now := m.app.Store.Now()
	return func() tea.Msg {
		inv, err := invoices.Build(p.ID, now)
		if err != nil {
			return savedMsg{err: err}
		}
		path, err := invoices.WriteText(inv)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{status: fmt.Sprintf("Invoice %s written to %s", inv.InvoiceNumber, path)}
	}
}

func (m *ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadProjects()

	case projectsDataMsg:
		m.loading = false
		m.projects = msg.projects
		m.overdue = msg.overdue
		m.cursor = moveCursor(m.cursor, 0, len(m.projects))
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
		m.warning = msg.warning
		m.loading = true
		return m, m.loadProjects()
	}

	if m.form != nil {
		switch res, cmd := m.form.Update(msg); res {
		case formSubmitted:
			save, err := m.saveProject()
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
		p, ok := m.selected()
		if !ok || keyMsg.String() != "y" {
			m.statusMsg = "Delete cancelled"
			return m, nil
		}
		store := m.app.Store
		return m, mutate("Deleted: "+p.Title, func(ctx context.Context) error {
			return store.DeleteProject(ctx, p.ID)
		})
	}

	m.statusMsg = ""
	m.warning = ""
	m.err = nil

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.projects))
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.projects))
	case key.Matches(keyMsg, DefaultKeyMap.New):
		if len(m.app.Store.Clients()) == 0 {
			m.err = fmt.Errorf("add a client first")
			return m, nil
		}
		return m, m.openForm(nil)
	case key.Matches(keyMsg, DefaultKeyMap.Select):
		if p, ok := m.selected(); ok {
			return m, m.openForm(&p.Project)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Status):
		if p, ok := m.selected(); ok {
			return m, m.cycleStatus(p)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Filter):
		m.filter = nextFilter(m.filter)
		m.cursor = 0
		m.loading = true
		return m, m.loadProjects()
	case keyMsg.String() == "i":
		if p, ok := m.selected(); ok {
			return m, m.writeInvoice(p)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}
	}

	return m, nil
}

func (m *ProjectsModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.loading {
		return "Loading projects..."
	}

	header := "Projects"
	if m.filter != "" {
		header += subtitleStyle.Render("  (" + string(m.filter) + " only)")
	}
	s := titleStyle.Render(header) + "\n\n"

	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n"
		if m.warning != "" {
			s += warningText(m.warning) + "\n"
		}
		s += "\n"
	}

	if len(m.projects) == 0 {
		s += subtitleStyle.Render("  No projects. Press 'n' to add one, 'f' to change the filter.") + "\n"
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf("    %-26s %-16s %-10s %-11s %13s %13s %13s",
		"Title", "Client", "Status", "Due", "Total", "Paid", "Pending")) + "\n"
	for i, p := range m.projects {
		s += m.renderProject(i, p) + "\n"
	}

	if m.confirmDelete {
		p, _ := m.selected()
		payments := len(m.app.Store.PaymentsForProject(p.ID))
		s += "\n" + warningText(fmt.Sprintf("Delete %s and its %d payment(s)? (y/N)", p.Title, payments))
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  s: cycle status  f: filter  i: invoice  d: delete")
	return s
}

func (m *ProjectsModel) renderProject(index int, p domain.ProjectWithCalculations) string {
	indicator := "  "
	if index == m.cursor {
		indicator = "> "
	}

	due := formatDate(p.DueDate)
	if m.overdue[p.ID] {
		due = overdueStyle.Render(due + "!")
	}

	title := fmt.Sprintf("%s%-26s", indicator, truncateStr(p.Title, 26))
	if index == m.cursor {
		title = selectedStyle.Render(title)
	}

	return fmt.Sprintf("%s %-16s %s %s %13s %13s %s",
		title,
		truncateStr(clientName(m.app, p.ClientID), 16),
		statusStyle(p.Status).Width(10).Render(string(p.Status)),
		lipgloss.NewStyle().Width(11).Render(due),
		formatMoney(p.TotalAmount),
		formatMoney(p.PaidAmount),
		pendingStyle.Width(13).Align(lipgloss.Right).Render(formatMoney(p.PendingAmount)),
	)
}
