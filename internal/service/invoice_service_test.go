package service

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/config"
	"github.com/andy/freelancedesk/internal/domain"
)

// mock implementation
type mockLedger struct {
	snap domain.Snapshot
	now  time.Time
}

func (m *mockLedger) Snapshot() domain.Snapshot { return m.snap }
func (m *mockLedger) Now() time.Time           { return m.now }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleLedger() *mockLedger {
	return &mockLedger{
		now: day(2024, 5, 20),
		snap: domain.Snapshot{
			Clients: []domain.Client{{ID: "c1", Name: "Acme", Email: domain.Ptr("ap@acme.test")}},
			Projects: []domain.Project{
				{ID: "0f3a9c21-aaaa-bbbb", ClientID: "c1", Title: "Website", TotalAmount: decimal.NewFromInt(5000),
					StartDate: day(2024, 5, 1), DueDate: day(2024, 5, 10), Status: domain.ProjectStatusActive},
				{ID: "p2", ClientID: "c1", Title: "Logo", TotalAmount: decimal.NewFromInt(800),
					StartDate: day(2024, 4, 1), DueDate: day(2024, 6, 30), Status: domain.ProjectStatusActive},
			},
			Payments: []domain.Payment{
				{ID: "x1", ProjectID: "0f3a9c21-aaaa-bbbb", ClientID: "c1", Amount: decimal.NewFromInt(2000), PaymentDate: day(2024, 5, 3)},
				{ID: "x2", ProjectID: "p2", ClientID: "c1", Amount: decimal.NewFromInt(300), PaymentDate: day(2024, 5, 12)},
			},
		},
	}
}

func TestInvoiceService_Build(t *testing.T) {
	svc := NewInvoiceService(sampleLedger(), config.InvoiceConfig{NumberPrefix: "INV"},
		config.BusinessConfig{Name: "Studio", Email: "hi@studio.test"}, quietLogger())

	inv, err := svc.Build("0f3a9c21-aaaa-bbbb", day(2024, 5, 20))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if inv.InvoiceNumber != "INV-2024-0f3a9c21" {
		t.Errorf("expected INV-2024-0f3a9c21, got %s", inv.InvoiceNumber)
	}
	if len(inv.LineItems) != 1 || !inv.LineItems[0].Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected one line item for the project total, got %+v", inv.LineItems)
	}
	if !inv.Total.Equal(decimal.NewFromInt(5000)) || !inv.TaxAmount.IsZero() {
		t.Errorf("expected total 5000 with no tax, got %s / %s", inv.Total, inv.TaxAmount)
	}
	if !inv.Paid.Equal(decimal.NewFromInt(2000)) || !inv.BalanceDue.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected paid 2000 balance 3000, got %s / %s", inv.Paid, inv.BalanceDue)
	}
	if inv.Client == nil || inv.Client.Name != "Acme" {
		t.Errorf("expected client Acme, got %+v", inv.Client)
	}
	if domain.Value(inv.Business.BusinessName, "") != "Studio" {
		t.Errorf("expected config business fallback, got %+v", inv.Business)
	}
}

func TestInvoiceService_BusinessProfileWins(t *testing.T) {
	ledger := sampleLedger()
	ledger.snap.BusinessProfile = &domain.BusinessProfile{BusinessName: domain.Ptr("Saved Co")}
	svc := NewInvoiceService(ledger, config.InvoiceConfig{NumberPrefix: "INV"},
		config.BusinessConfig{Name: "Studio", Email: "hi@studio.test"}, quietLogger())

	inv, err := svc.Build("p2", day(2024, 5, 20))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if domain.Value(inv.Business.BusinessName, "") != "Saved Co" {
		t.Errorf("expected saved name, got %v", inv.Business.BusinessName)
	}
	if domain.Value(inv.Business.ContactEmail, "") != "hi@studio.test" {
		t.Errorf("expected email filled from config, got %v", inv.Business.ContactEmail)
	}
	if inv.InvoiceNumber != "INV-2024-p2" {
		t.Errorf("short id should be used whole, got %s", inv.InvoiceNumber)
	}
}

func TestInvoiceService_UnknownProject(t *testing.T) {
	svc := NewInvoiceService(sampleLedger(), config.InvoiceConfig{NumberPrefix: "INV"}, config.BusinessConfig{}, quietLogger())
	if _, err := svc.Build("ghost", day(2024, 5, 20)); err == nil {
		t.Fatal("expected error for unknown project")
	}
}

func TestInvoiceService_WriteText(t *testing.T) {
	dir := t.TempDir()
	svc := NewInvoiceService(sampleLedger(), config.InvoiceConfig{NumberPrefix: "INV", OutputDir: dir},
		config.BusinessConfig{Name: "Studio"}, quietLogger())

	inv, err := svc.Build("0f3a9c21-aaaa-bbbb", day(2024, 5, 20))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path, err := svc.WriteText(inv)
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{"INVOICE INV-2024-0f3a9c21", "Studio", "Bill to:  Acme", "Website", "5000.00", "3000.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in invoice:\n%s", want, text)
		}
	}
}
