package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
)

type settingsForm int

const (
	settingsFormNone settingsForm = iota
	settingsFormProfile
	settingsFormMethod
	settingsFormInvoice
)

// profile form field indices
const (
	profileFieldName = iota
	profileFieldEmail
	profileFieldPhone
	profileFieldAddress
	profileFieldWebsite
)

// SettingsModel edits the business profile, payment methods and invoice settings
type SettingsModel struct {
	app       *app.App
	profile   *domain.BusinessProfile
	methods   []domain.PaymentMethod
	cursor    int
	err       error
	statusMsg string

	form    *form
	editing settingsForm
}

type settingsDataMsg struct {
	profile *domain.BusinessProfile
	methods []domain.PaymentMethod
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{app: a}
}

// IsCapturingInput returns true when a form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.form != nil
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *SettingsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{
			profile: m.app.Store.BusinessProfile(),
			methods: m.app.Store.PaymentMethods(),
		}
	}
}

func (m *SettingsModel) openProfileForm() tea.Cmd {
	var b domain.BusinessProfile
	if m.profile != nil {
		b = *m.profile
	}
	m.editing = settingsFormProfile
	m.form = newForm("Business Profile",
		formField{label: "Business name:", placeholder: "Shown on invoices", value: domain.Value(b.BusinessName, "")},
		formField{label: "Contact email:", placeholder: "billing@example.com", value: domain.Value(b.ContactEmail, "")},
		formField{label: "Phone:", placeholder: "+91 98765 43210", value: domain.Value(b.PhoneNumber, ""), width: 20},
		formField{label: "Address:", placeholder: "Optional", value: domain.Value(b.Address, ""), width: 60},
		formField{label: "Website:", placeholder: "https://example.com", value: domain.Value(b.Website, "")},
	)
	return m.form.Focus()
}

func (m *SettingsModel) openMethodForm() tea.Cmd {
	m.editing = settingsFormMethod
	m.form = newForm("New Payment Method",
		formField{label: "Name:", placeholder: "UPI"},
		formField{label: "Details:", placeholder: "name@bank", width: 60},
	)
	return m.form.Focus()
}

func (m *SettingsModel) openInvoiceForm() tea.Cmd {
	cfg := m.app.Config.Invoice
	m.editing = settingsFormInvoice
	m.form = newForm("Invoice Settings",
		formField{label: "Output directory:", placeholder: "/path/to/invoices", value: cfg.OutputDir, width: 60},
		formField{label: "Number prefix:", placeholder: "INV", value: cfg.NumberPrefix, width: 20},
	)
	return m.form.Focus()
}

func (m *SettingsModel) save() (tea.Cmd, error) {
	f := m.form
	text := func(i int) *string { v := f.value(i); return &v }
	store := m.app.Store

	switch m.editing {
	case settingsFormProfile:
		patch := domain.BusinessProfilePatch{
			BusinessName: text(profileFieldName),
			ContactEmail: text(profileFieldEmail),
			PhoneNumber:  text(profileFieldPhone),
			Address:      text(profileFieldAddress),
			Website:      text(profileFieldWebsite),
		}
		return mutate("Business profile saved", func(ctx context.Context) error {
			_, err := store.SaveBusinessProfile(ctx, patch)
			return err
		}), nil

	case settingsFormMethod:
		in := domain.PaymentMethodInput{
			Name:      f.value(0),
			Details:   text(1),
			IsDefault: len(m.methods) == 0,
		}
		return mutate("Payment method added: "+in.Name, func(ctx context.Context) error {
			_, err := store.AddPaymentMethod(ctx, in)
			return err
		}), nil

	case settingsFormInvoice:
		outputDir, prefix := f.value(0), f.value(1)
		if outputDir == "" {
			return nil, fmt.Errorf("output directory is required")
		}
		if prefix == "" {
			return nil, fmt.Errorf("invoice prefix is required")
		}
		m.app.Config.Invoice.OutputDir = outputDir
		m.app.Config.Invoice.NumberPrefix = prefix
		a := m.app
		return func() tea.Msg {
			if err := a.SaveConfig(); err != nil {
				return savedMsg{err: fmt.Errorf("failed to save config: %w", err)}
			}
			return savedMsg{status: "Invoice settings saved, they apply from the next start"}
		}, nil
	}
	return nil, nil
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.loadData()

	case settingsDataMsg:
		m.profile = msg.profile
		m.methods = msg.methods
		m.cursor = moveCursor(m.cursor, 0, len(m.methods))
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
		m.editing = settingsFormNone
		m.statusMsg = msg.status
		return m, m.loadData()
	}

	if m.form != nil {
		switch res, cmd := m.form.Update(msg); res {
		case formSubmitted:
			save, err := m.save()
			m.form.err = err
			return m, save
		case formCancelled:
			m.form = nil
			m.editing = settingsFormNone
			return m, nil
		default:
			return m, cmd
		}
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	m.statusMsg = ""

	store := m.app.Store
	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Select):
		return m, m.openProfileForm()
	case keyMsg.String() == "i":
		return m, m.openInvoiceForm()
	case key.Matches(keyMsg, DefaultKeyMap.New):
		return m, m.openMethodForm()
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.methods))
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.methods))
	case keyMsg.String() == "*":
		if m.cursor < len(m.methods) {
			pm := m.methods[m.cursor]
			return m, mutate(pm.Name+" is now the default", func(ctx context.Context) error {
				_, err := store.SetDefaultPaymentMethod(ctx, pm.ID)
				return err
			})
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if m.cursor < len(m.methods) {
			pm := m.methods[m.cursor]
			return m, mutate("Payment method deleted: "+pm.Name, func(ctx context.Context) error {
				return store.DeletePaymentMethod(ctx, pm.ID)
			})
		}
	}

	return m, nil
}

func (m *SettingsModel) View() string {
	if m.form != nil {
		return m.form.View()
	}

	s := titleStyle.Render("Settings") + "\n\n"
	if m.err != nil {
		s += errorText(m.err) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusText(m.statusMsg) + "\n\n"
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Width(20)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	field := func(label string, v *string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(domain.Value(v, "-")))
	}

	var b domain.BusinessProfile
	if m.profile != nil {
		b = *m.profile
	}
	s += subtitleStyle.Render("  Business Profile") + "\n\n"
	s += field("Business name:", b.BusinessName)
	s += field("Contact email:", b.ContactEmail)
	s += field("Phone:", b.PhoneNumber)
	s += field("Address:", b.Address)
	s += field("Website:", b.Website)

	s += "\n" + subtitleStyle.Render("  Payment Methods") + "\n\n"
	if len(m.methods) == 0 {
		s += subtitleStyle.Render("  None yet, press 'n' to add one") + "\n"
	}
	for i, pm := range m.methods {
		indicator := "  "
		if i == m.cursor {
			indicator = "> "
		}
		def := " "
		if pm.IsDefault {
			def = "*"
		}
		line := fmt.Sprintf("%s%s %-20s %s", indicator, def, pm.Name, domain.Value(pm.Details, ""))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}

	cfg := m.app.Config.Invoice
	s += "\n" + subtitleStyle.Render("  Invoices") + "\n\n"
	s += field("Output directory:", &cfg.OutputDir)
	s += field("Number prefix:", &cfg.NumberPrefix)

	s += "\n" + helpStyle.Render("  enter: edit profile  n: new method  *: make default  d: delete method  i: invoice settings")
	return s
}
