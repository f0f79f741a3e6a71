package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
)

// payment form field indices
const (
	paymentFieldProject = iota
	paymentFieldAmount
	paymentFieldDate
	paymentFieldMethod
	paymentFieldReference
	paymentFieldNotes
)

// PaymentsModel lists payments, newest first, and records new ones
type PaymentsModel struct {
	app       *app.App
	payments  []domain.Payment
	cursor    int
	loading   bool
	err       error
	statusMsg string
	warning   string

	form          *form
	editingID     string
	confirmDelete bool
}

type paymentsDataMsg struct {
	payments []domain.Payment
}

// NewPaymentsModel creates a new payments screen model
func NewPaymentsModel(a *app.App) tea.Model {
	return &PaymentsModel{app: a, loading: true}
}

func (m *PaymentsModel) IsCapturingInput() bool {
	return m.form != nil || m.confirmDelete
}

func (m *PaymentsModel) Init() tea.Cmd {
	return m.loadPayments()
}

func (m *PaymentsModel) loadPayments() tea.Cmd {
	return func() tea.Msg {
		return paymentsDataMsg{payments: m.app.Store.Payments()}
	}
}

func (m *PaymentsModel) selected() (domain.Payment, bool) {
	if m.cursor < len(m.payments) {
		return m.payments[m.cursor], true
	}
	return domain.Payment{}, false
}

func (m *PaymentsModel) openForm(editing *domain.Payment) tea.Cmd {
	title := "Record Payment"
	p := domain.Payment{PaymentDate: m.app.Store.Now()}
	project, amount := "", ""
	m.editingID = ""
	if editing != nil {
		title = "Edit Payment"
		p = *editing
		project = projectTitle(m.app, p.ProjectID)
		amount = p.Amount.StringFixed(2)
		m.editingID = p.ID
	} else if def, ok := m.app.Store.Snapshot().DefaultPaymentMethod(); ok {
		p.PaymentMethod = &def.Name
	}

	m.form = newForm(title,
		formField{label: "Project:", placeholder: "Project title", value: project},
		formField{label: "Amount:", placeholder: "10000", value: amount, width: 15},
		formField{label: "Date:", placeholder: "YYYY-MM-DD", value: formatDate(p.PaymentDate), width: 12},
		formField{label: "Method:", placeholder: "UPI, bank transfer...", value: domain.Value(p.PaymentMethod, "")},
		formField{label: "Reference:", placeholder: "Transaction ID", value: domain.Value(p.ReferenceID, "")},
		formField{label: "Notes:", placeholder: "Optional", value: domain.Value(p.Notes, ""), width: 60},
	)
	return m.form.Focus()
}

func (m *PaymentsModel) savePayment() (tea.Cmd, error) {
	f := m.form
	project, err := findProject(m.app, f.value(paymentFieldProject))
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(f.value(paymentFieldAmount))
	if err != nil {
		return nil, err
	}
	date, err := parseDateOr(f.value(paymentFieldDate), domain.Date(m.app.Store.Now()))
	if err != nil {
		return nil, err
	}
	method, ref, notes := f.value(paymentFieldMethod), f.value(paymentFieldReference), f.value(paymentFieldNotes)
	status := fmt.Sprintf("Saved: %s for %s", formatMoney(amount), project.Title)
	store := m.app.Store

	if m.editingID != "" {
		id := m.editingID
		patch := domain.PaymentPatch{
			ProjectID:     &project.ID,
			Amount:        &amount,
			PaymentDate:   &date,
			PaymentMethod: &method,
			ReferenceID:   &ref,
			Notes:         &notes,
		}
		return mutate(status, func(ctx context.Context) error {
			_, err := store.UpdatePayment(ctx, id, patch)
			return err
		}), nil
	}

	in := domain.PaymentInput{
		ProjectID:     project.ID,
		Amount:        amount,
		PaymentDate:   date,
		PaymentMethod: &method,
		ReferenceID:   &ref,
		Notes:         &notes,
	}
	return mutate(status, func(ctx context.Context) error {
		_, err := store.AddPayment(ctx, in)
		return err
	}), nil
}

func (m *PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadPayments()

	case paymentsDataMsg:
		m.loading = false
		m.payments = msg.payments
		m.cursor = moveCursor(m.cursor, 0, len(m.payments))
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
		return m, m.loadPayments()
	}

	if m.form != nil {
		switch res, cmd := m.form.Update(msg); res {
		case formSubmitted:
			save, err := m.savePayment()
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
		return m, mutate("Payment deleted", func(ctx context.Context) error {
			return store.DeletePayment(ctx, p.ID)
		})
	}

	m.statusMsg = ""
	m.warning = ""
	m.err = nil

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.payments))
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.payments))
	case key.Matches(keyMsg, DefaultKeyMap.New):
		if len(m.app.Store.Projects()) == 0 {
			m.err = fmt.Errorf("add a project first")
			return m, nil
		}
		return m, m.openForm(nil)
	case key.Matches(keyMsg, DefaultKeyMap.Select):
		if p, ok := m.selected(); ok {
			return m, m.openForm(&p)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}
	}

	return m, nil
}

func (m *PaymentsModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.loading {
		return "Loading payments..."
	}

	s := titleStyle.Render("Payments") + "\n\n"

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

	if len(m.payments) == 0 {
		s += subtitleStyle.Render("  No payments yet. Press 'n' to record one.") + "\n"
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf("    %-10s %-26s %-18s %14s  %s",
		"Date", "Project", "Client", "Amount", "Method")) + "\n"
	for i, p := range m.payments {
		indicator := "  "
		if i == m.cursor {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%-10s %-26s %-18s %14s  %s",
			indicator,
			formatDate(p.PaymentDate),
			truncateStr(projectTitle(m.app, p.ProjectID), 26),
			truncateStr(clientName(m.app, p.ClientID), 18),
			formatMoney(p.Amount),
			strings.TrimSpace(domain.Value(p.PaymentMethod, "")),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}

	if m.confirmDelete {
		p, _ := m.selected()
		s += "\n" + warningText(fmt.Sprintf("Delete payment of %s? (y/N)", formatMoney(p.Amount)))
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: record payment  enter: edit  d: delete")
	return s
}
