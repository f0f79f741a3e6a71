package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/domain"
)

// MonthlyReport summarises one calendar month. New-project figures use start dates, pending and
// completed figures use due dates, and the month's payments are attributed by their project's
// start month.
type MonthlyReport struct {
	Year  int
	Month time.Month

	// Projects that started in the month.
	NewProjects      []domain.Project
	NewProjectsCount int
	NewProjectsValue decimal.Decimal

	// Payments dated in the month, split by whether their project started in the month.
	NewProjectPayments        []domain.Payment
	PaymentsFromNewProjects   decimal.Decimal
	OtherProjectPayments      []domain.Payment
	PaymentsFromOtherProjects decimal.Decimal
	PaymentsReceived          decimal.Decimal

	// Projects due in the month.
	DueProjects []domain.ProjectWithCalculations
	// PendingForMonth sums pending amounts of due projects that are active or proposals.
	PendingForMonth decimal.Decimal
	// CompletedForMonth sums total amounts of due projects that are completed.
	CompletedForMonth decimal.Decimal
}

// MonthlyReportSummary builds the report for year/month from s.
func MonthlyReportSummary(s domain.Snapshot, year int, month time.Month) MonthlyReport {
	r := MonthlyReport{
		Year:                      year,
		Month:                     month,
		NewProjectsValue:          decimal.Zero,
		PaymentsFromNewProjects:   decimal.Zero,
		PaymentsFromOtherProjects: decimal.Zero,
		PaymentsReceived:          decimal.Zero,
		PendingForMonth:           decimal.Zero,
		CompletedForMonth:         decimal.Zero,
	}

	startedInMonth := make(map[string]bool, len(s.Projects))
	paid := paidByProject(s)

	for _, p := range s.Projects {
		if domain.SameMonth(p.StartDate, year, month) {
			startedInMonth[p.ID] = true
			r.NewProjects = append(r.NewProjects, p)
			r.NewProjectsValue = r.NewProjectsValue.Add(p.TotalAmount)
		}

		if !domain.SameMonth(p.DueDate, year, month) {
			continue
		}
		pc := withCalculations(p, paid[p.ID])
		r.DueProjects = append(r.DueProjects, pc)
		switch p.Status {
		case domain.ProjectStatusActive, domain.ProjectStatusProposal:
			r.PendingForMonth = r.PendingForMonth.Add(pc.PendingAmount)
		case domain.ProjectStatusCompleted:
			r.CompletedForMonth = r.CompletedForMonth.Add(p.TotalAmount)
		}
	}
	r.NewProjectsCount = len(r.NewProjects)

	for _, pay := range s.Payments {
		if !domain.SameMonth(pay.PaymentDate, year, month) {
			continue
		}
		// A payment whose project is gone counts as "other".
		if startedInMonth[pay.ProjectID] {
			r.NewProjectPayments = append(r.NewProjectPayments, pay)
			r.PaymentsFromNewProjects = r.PaymentsFromNewProjects.Add(pay.Amount)
		} else {
			r.OtherProjectPayments = append(r.OtherProjectPayments, pay)
			r.PaymentsFromOtherProjects = r.PaymentsFromOtherProjects.Add(pay.Amount)
		}
	}
	r.PaymentsReceived = r.PaymentsFromNewProjects.Add(r.PaymentsFromOtherProjects)

	return r
}
