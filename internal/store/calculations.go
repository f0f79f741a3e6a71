package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

// Calculator views over the current snapshot, using the store's clock for "now".

func (s *Store) PaidAmount(projectID string) decimal.Decimal {
	return finance.PaidAmount(s.Snapshot(), projectID)
}

func (s *Store) PendingAmount(projectID string) decimal.Decimal {
	return finance.PendingAmount(s.Snapshot(), projectID)
}

func (s *Store) ProjectWithCalculations(projectID string) (domain.ProjectWithCalculations, bool) {
	return finance.ProjectWithCalculations(s.Snapshot(), projectID)
}

func (s *Store) ProjectsWithCalculations() []domain.ProjectWithCalculations {
	return finance.ProjectsWithCalculations(s.Snapshot())
}

func (s *Store) PendingAmountForClient(clientID string) decimal.Decimal {
	return finance.PendingAmountForClient(s.Snapshot(), clientID)
}

func (s *Store) PaidAmountForClient(clientID string) decimal.Decimal {
	return finance.PaidAmountForClient(s.Snapshot(), clientID)
}

func (s *Store) TotalIncomeThisMonth() decimal.Decimal {
	return finance.TotalIncomeThisMonth(s.Snapshot(), s.now())
}

func (s *Store) TotalPendingOverall() decimal.Decimal {
	return finance.TotalPendingOverall(s.Snapshot())
}

func (s *Store) TotalActiveProjects() int {
	return finance.TotalActiveProjects(s.Snapshot())
}

func (s *Store) OverdueProjects() []domain.Project {
	return finance.OverdueProjects(s.Snapshot(), s.now())
}

func (s *Store) IncomeByMonth(months int) []finance.MonthIncome {
	return finance.IncomeByMonth(s.Snapshot(), s.now(), months)
}

func (s *Store) MonthlyReportSummary(year int, month time.Month) finance.MonthlyReport {
	return finance.MonthlyReportSummary(s.Snapshot(), year, month)
}

// Now is the store's clock
func (s *Store) Now() time.Time {
	return s.now()
}
