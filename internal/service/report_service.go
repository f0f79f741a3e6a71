package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

// Ledger is the read side of the entity store
type Ledger interface {
	Snapshot() domain.Snapshot
	Now() time.Time
}

// Dashboard holds the headline figures shown on the dashboard
type Dashboard struct {
	IncomeThisMonth decimal.Decimal
	PendingOverall  decimal.Decimal
	ActiveProjects  int
	Overdue         []domain.ProjectWithCalculations
	RecentPayments  []domain.Payment
}

// ReportService provides aggregations over the current ledger
type ReportService interface {
	Dashboard() Dashboard
	IncomeByMonth(months int) []finance.MonthIncome
	MonthlyReport(year int, month time.Month) finance.MonthlyReport

	// ExportMonthlyReport writes the month as an .xlsx workbook
	ExportMonthlyReport(path string, year int, month time.Month) error
}

type reportService struct {
	ledger Ledger
	log    logrus.FieldLogger
}

// NewReportService creates a new report service
func NewReportService(ledger Ledger, log logrus.FieldLogger) ReportService {
	return &reportService{ledger: ledger, log: log.WithField("module", "reports")}
}

const recentPayments = 5

func (s *reportService) Dashboard() Dashboard {
	snap := s.ledger.Snapshot()
	now := s.ledger.Now()

	d := Dashboard{
		IncomeThisMonth: finance.TotalIncomeThisMonth(snap, now),
		PendingOverall:  finance.TotalPendingOverall(snap),
		ActiveProjects:  finance.TotalActiveProjects(snap),
	}
	for _, p := range finance.OverdueProjects(snap, now) {
		if pc, ok := finance.ProjectWithCalculations(snap, p.ID); ok {
			d.Overdue = append(d.Overdue, pc)
		}
	}

	payments := slices.Clone(snap.Payments)
	slices.SortStableFunc(payments, func(a, b domain.Payment) int {
		if c := b.PaymentDate.Compare(a.PaymentDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(payments) > recentPayments {
		payments = payments[:recentPayments]
	}
	d.RecentPayments = payments
	return d
}

func (s *reportService) IncomeByMonth(months int) []finance.MonthIncome {
	return finance.IncomeByMonth(s.ledger.Snapshot(), s.ledger.Now(), months)
}

func (s *reportService) MonthlyReport(year int, month time.Month) finance.MonthlyReport {
	return finance.MonthlyReportSummary(s.ledger.Snapshot(), year, month)
}

func (s *reportService) ExportMonthlyReport(path string, year int, month time.Month) error {
	snap := s.ledger.Snapshot()
	r := finance.MonthlyReportSummary(snap, year, month)

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, r); err != nil {
		return err
	}
	if err := writeProjectsSheet(f, snap, r); err != nil {
		return err
	}
	if err := writePaymentsSheet(f, snap, r); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	s.log.WithFields(logrus.Fields{"op": "export_monthly_report", "path": path}).Info("monthly report exported")
	return nil
}

func writeSummarySheet(f *excelize.File, r finance.MonthlyReport) error {
	// A new file starts with Sheet1
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}
	rows := [][]any{
		{"Monthly Report", monthLabel(r.Year, r.Month)},
		{},
		{"New projects", r.NewProjectsCount},
		{"New projects value", money(r.NewProjectsValue)},
		{"Payments from new projects", money(r.PaymentsFromNewProjects)},
		{"Payments from other projects", money(r.PaymentsFromOtherProjects)},
		{"Payments received", money(r.PaymentsReceived)},
		{"Pending for month", money(r.PendingForMonth)},
		{"Completed for month", money(r.CompletedForMonth)},
	}
	return writeRows(f, "Summary", rows)
}

func writeProjectsSheet(f *excelize.File, snap domain.Snapshot, r finance.MonthlyReport) error {
	if _, err := f.NewSheet("Projects"); err != nil {
		return err
	}
	rows := [][]any{{"Project", "Client", "Status", "Start", "Due", "Total", "Paid", "Pending"}}
	for _, p := range r.DueProjects {
		rows = append(rows, []any{
			p.Title, clientName(snap, p.ClientID), string(p.Status),
			p.StartDate.Format(domain.DateLayout), p.DueDate.Format(domain.DateLayout),
			money(p.TotalAmount), money(p.PaidAmount), money(p.PendingAmount),
		})
	}
	return writeRows(f, "Projects", rows)
}

func writePaymentsSheet(f *excelize.File, snap domain.Snapshot, r finance.MonthlyReport) error {
	if _, err := f.NewSheet("Payments"); err != nil {
		return err
	}
	rows := [][]any{{"Date", "Project", "Client", "Amount", "Method", "Reference", "Source"}}
	add := func(payments []domain.Payment, source string) {
		for _, p := range payments {
			title := "Unknown project"
			if pr, ok := snap.Project(p.ProjectID); ok {
				title = pr.Title
			}
			rows = append(rows, []any{
				p.PaymentDate.Format(domain.DateLayout), title, clientName(snap, p.ClientID),
				money(p.Amount), domain.Value(p.PaymentMethod, ""), domain.Value(p.ReferenceID, ""), source,
			})
		}
	}
	add(r.NewProjectPayments, "new project")
	add(r.OtherProjectPayments, "other project")
	return writeRows(f, "Payments", rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// money keeps two decimals as a float so spreadsheet formulas work on the cell
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func monthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func clientName(snap domain.Snapshot, id string) string {
	if c, ok := snap.Client(id); ok {
		return c.Name
	}
	return "Unknown client"
}
