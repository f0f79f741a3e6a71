package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/config"
	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

var ErrProjectNotFound = errors.New("project not found")

// InvoiceService renders invoices for single projects. Invoices are views and are never stored.
type InvoiceService interface {
	// Build assembles the invoice for a project as of date
	Build(projectID string, date time.Time) (*domain.Invoice, error)

	// WriteText renders inv as a plain-text file in the output dir and returns its path
	WriteText(inv *domain.Invoice) (string, error)
}

type invoiceService struct {
	ledger Ledger
	cfg    config.InvoiceConfig
	biz    config.BusinessConfig
	log    logrus.FieldLogger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(ledger Ledger, cfg config.InvoiceConfig, biz config.BusinessConfig, log logrus.FieldLogger) InvoiceService {
	return &invoiceService{ledger: ledger, cfg: cfg, biz: biz, log: log.WithField("module", "invoices")}
}

// InvoiceNumber derives a stable number from the prefix, year and project id
func InvoiceNumber(prefix string, date time.Time, projectID string) string {
	short := projectID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, date.Year(), short)
}

func (s *invoiceService) Build(projectID string, date time.Time) (*domain.Invoice, error) {
	snap := s.ledger.Snapshot()
	project, ok := snap.Project(projectID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	var client *domain.Client
	if c, ok := snap.Client(project.ClientID); ok {
		client = &c
	}

	inv := domain.NewInvoice(InvoiceNumber(s.cfg.NumberPrefix, date, project.ID), date, project, client, s.business(snap))
	inv.ApplyPaid(finance.PaidAmount(snap, project.ID))
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// business prefers the saved profile and fills gaps from config
func (s *invoiceService) business(snap domain.Snapshot) domain.BusinessProfile {
	var b domain.BusinessProfile
	if snap.BusinessProfile != nil {
		b = snap.BusinessProfile.Clone()
	}
	fill := func(field **string, fallback string) {
		if domain.Value(*field, "") == "" && fallback != "" {
			*field = domain.Ptr(fallback)
		}
	}
	fill(&b.BusinessName, s.biz.Name)
	fill(&b.ContactEmail, s.biz.Email)
	fill(&b.PhoneNumber, s.biz.Phone)
	fill(&b.Address, s.biz.Address)
	return b
}

func (s *invoiceService) WriteText(inv *domain.Invoice) (string, error) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(s.cfg.OutputDir, inv.InvoiceNumber+".txt")
	if err := os.WriteFile(path, []byte(RenderText(inv)), 0644); err != nil {
		return "", fmt.Errorf("failed to write invoice: %w", err)
	}
	s.log.WithFields(logrus.Fields{"op": "write_invoice", "number": inv.InvoiceNumber, "path": path}).Info("invoice written")
	return path, nil
}

// RenderText lays the invoice out as fixed-width text
func RenderText(inv *domain.Invoice) string {
	var b strings.Builder
	rule := strings.Repeat("=", 72)
	thin := strings.Repeat("-", 72)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "INVOICE %s\n", inv.InvoiceNumber)
	fmt.Fprintln(&b, rule)

	if name := domain.Value(inv.Business.BusinessName, ""); name != "" {
		fmt.Fprintln(&b, name)
	}
	for _, line := range []*string{inv.Business.Address, inv.Business.ContactEmail, inv.Business.PhoneNumber, inv.Business.Website} {
		if v := domain.Value(line, ""); v != "" {
			fmt.Fprintln(&b, v)
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Date:     %s\n", inv.InvoiceDate.Format(domain.DateLayout))
	fmt.Fprintf(&b, "Due:      %s\n", inv.Project.DueDate.Format(domain.DateLayout))
	if inv.Client != nil {
		fmt.Fprintf(&b, "Bill to:  %s\n", inv.Client.Name)
		if c := domain.Value(inv.Client.Company, ""); c != "" {
			fmt.Fprintf(&b, "          %s\n", c)
		}
		if e := domain.Value(inv.Client.Email, ""); e != "" {
			fmt.Fprintf(&b, "          %s\n", e)
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "%-40s %6s %11s %11s\n", "Description", "Qty", "Unit", "Amount")
	fmt.Fprintln(&b, thin)
	for _, item := range inv.LineItems {
		fmt.Fprintf(&b, "%-40s %6s %11s %11s\n",
			truncate(item.Description, 40), item.Quantity.String(), item.UnitPrice.StringFixed(2), item.Amount.StringFixed(2))
	}
	fmt.Fprintln(&b, thin)

	fmt.Fprintf(&b, "%58s %13s\n", "Subtotal:", inv.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "%58s %13s\n", "Tax:", inv.TaxAmount.StringFixed(2))
	fmt.Fprintf(&b, "%58s %13s\n", "Total:", inv.Total.StringFixed(2))
	fmt.Fprintf(&b, "%58s %13s\n", "Paid:", inv.Paid.StringFixed(2))
	fmt.Fprintf(&b, "%58s %13s\n", "Balance due:", inv.BalanceDue.StringFixed(2))
	fmt.Fprintln(&b, rule)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
