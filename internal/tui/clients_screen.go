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

// client form field indices
const (
	clientFieldName = iota
	clientFieldCompany
	clientFieldEmail
	clientFieldPhone
	clientFieldAddress
	clientFieldTags
	clientFieldNotes
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	clients   []domain.Client
	cursor    int
	loading   bool
	err       error
	statusMsg string

	form          *form
	editingID     string // empty for a new client
	confirmDelete bool
	autoNewClient bool // open new client form after data loads
}

type clientsDataMsg struct {
	clients []domain.Client
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{app: a, loading: true}
}

// IsCapturingInput returns true when the form is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.form != nil || m.confirmDelete
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	return func() tea.Msg {
		return clientsDataMsg{clients: m.app.Store.Clients()}
	}
}

func (m *ClientsModel) selected() (domain.Client, bool) {
	if m.cursor < len(m.clients) {
		return m.clients[m.cursor], true
	}
	return domain.Client{}, false
}

func (m *ClientsModel) openForm(editing *domain.Client) tea.Cmd {
	title := "New Client"
	var c domain.Client
	if len(m.clients) == 0 {
		title = "Welcome to freelancedesk! Add your first client"
	}
	m.editingID = ""
	if editing != nil {
		title = "Edit Client"
		c = *editing
		m.editingID = c.ID
	}

	m.form = newForm(title,
		formField{label: "Name:", placeholder: "Client name", value: c.Name},
		formField{label: "Company:", placeholder: "Optional", value: domain.Value(c.Company, "")},
		formField{label: "Email:", placeholder: "email@example.com", value: domain.Value(c.Email, "")},
		formField{label: "Phone:", placeholder: "+91 98765 43210", value: domain.Value(c.Phone, ""), width: 20},
		formField{label: "Address:", placeholder: "Optional", value: domain.Value(c.Address, ""), width: 60},
		formField{label: "Tags:", placeholder: "design, retainer", value: strings.Join(c.Tags, ", ")},
		formField{label: "Notes:", placeholder: "Optional notes", value: domain.Value(c.Notes, ""), width: 60},
	)
	return m.form.Focus()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	f := m.form
	text := func(i int) *string { v := f.value(i); return &v }
	tags := domain.SplitTags(f.value(clientFieldTags))
	name := strings.TrimSpace(f.value(clientFieldName))
	store := m.app.Store

	if m.editingID != "" {
		id := m.editingID
		patch := domain.ClientPatch{
			Name:    text(clientFieldName),
			Company: text(clientFieldCompany),
			Email:   text(clientFieldEmail),
			Phone:   text(clientFieldPhone),
			Address: text(clientFieldAddress),
			Tags:    &tags,
			Notes:   text(clientFieldNotes),
		}
		return mutate("Saved: "+name, func(ctx context.Context) error {
			_, err := store.UpdateClient(ctx, id, patch)
			return err
		})
	}

	in := domain.ClientInput{
		Name:    name,
		Company: text(clientFieldCompany),
		Email:   text(clientFieldEmail),
		Phone:   text(clientFieldPhone),
		Address: text(clientFieldAddress),
		Tags:    tags,
		Notes:   text(clientFieldNotes),
	}
	return mutate("Saved: "+name, func(ctx context.Context) error {
		_, err := store.AddClient(ctx, in)
		return err
	})
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			// Data hasn't loaded yet; open the form when it does
			m.autoNewClient = true
			return m, nil
		}
		return m, m.openForm(nil)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.clients = msg.clients
		m.cursor = moveCursor(m.cursor, 0, len(m.clients))
		if m.autoNewClient {
			m.autoNewClient = false
			return m, m.openForm(nil)
		}
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
		return m, m.loadClients()
	}

	if m.form != nil {
		switch res, cmd := m.form.Update(msg); res {
		case formSubmitted:
			return m, m.saveClient()
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
		c, ok := m.selected()
		if !ok || keyMsg.String() != "y" {
			m.statusMsg = "Delete cancelled"
			return m, nil
		}
		store := m.app.Store
		return m, mutate("Deleted: "+c.Name, func(ctx context.Context) error {
			return store.DeleteClient(ctx, c.ID)
		})
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.clients))
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.clients))
	case key.Matches(keyMsg, DefaultKeyMap.New):
		return m, m.openForm(nil)
	case key.Matches(keyMsg, DefaultKeyMap.Select):
		if c, ok := m.selected(); ok {
			return m, m.openForm(&c)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}
	}

	return m, nil
}

func (m *ClientsModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	return m.viewList()
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	s := titleStyle.Render("Clients") + "\n\n"

	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, c := range m.clients {
		s += m.renderClient(i, c) + "\n"
	}

	if m.confirmDelete {
		c, _ := m.selected()
		projects := len(m.app.Store.ProjectsForClient(c.ID))
		s += "\n" + warningText(fmt.Sprintf("Delete %s and its %d project(s) with their payments? (y/N)", c.Name, projects))
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  d: delete")
	return s
}

func (m *ClientsModel) renderClient(index int, c domain.Client) string {
	selected := index == m.cursor

	indicator := "  "
	if selected {
		indicator = "> "
	}

	name := c.Name
	if c.Company != nil {
		name += " (" + *c.Company + ")"
	}
	line1 := indicator + name
	line2 := fmt.Sprintf("    Paid: %s  |  Pending: %s  |  Projects: %d",
		formatMoney(m.app.Store.PaidAmountForClient(c.ID)),
		formatMoney(m.app.Store.PendingAmountForClient(c.ID)),
		len(m.app.Store.ProjectsForClient(c.ID)),
	)

	var contact []string
	for _, v := range []*string{c.Email, c.Phone} {
		if v != nil {
			contact = append(contact, *v)
		}
	}
	if len(c.Tags) > 0 {
		contact = append(contact, "#"+strings.Join(c.Tags, " #"))
	}

	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = selectedStyle
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if len(contact) > 0 {
		result += "\n" + subtitleStyle.Render("    "+truncateStr(strings.Join(contact, "  |  "), 80))
	}
	return result
}
