// Package finance derives paid, pending and monthly figures from a snapshot. Every function is
// pure: it reads the snapshot and never fails, falling back to zero or "not found".
package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/domain"
)

// PaidAmount sums the payments recorded against a project.
func PaidAmount(s domain.Snapshot, projectID string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		if p.ProjectID == projectID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// PendingAmount is total minus paid, and may be negative on overpayment. Unknown projects
// have nothing pending.
func PendingAmount(s domain.Snapshot, projectID string) decimal.Decimal {
	project, ok := s.Project(projectID)
	if !ok {
		return decimal.Zero
	}
	return project.TotalAmount.Sub(PaidAmount(s, projectID))
}

// paidByProject indexes paid totals so aggregate functions stay linear.
func paidByProject(s domain.Snapshot) map[string]decimal.Decimal {
	paid := make(map[string]decimal.Decimal, len(s.Projects))
	for _, p := range s.Payments {
		paid[p.ProjectID] = paid[p.ProjectID].Add(p.Amount)
	}
	return paid
}

func withCalculations(p domain.Project, paid decimal.Decimal) domain.ProjectWithCalculations {
	return domain.ProjectWithCalculations{
		Project:       p,
		PaidAmount:    paid,
		PendingAmount: p.TotalAmount.Sub(paid),
	}
}

// ProjectWithCalculations returns the project with its derived amounts, or false when the
// project does not exist.
func ProjectWithCalculations(s domain.Snapshot, projectID string) (domain.ProjectWithCalculations, bool) {
	project, ok := s.Project(projectID)
	if !ok {
		return domain.ProjectWithCalculations{}, false
	}
	return withCalculations(project, PaidAmount(s, projectID)), true
}

// ProjectsWithCalculations returns every project in store order.
func ProjectsWithCalculations(s domain.Snapshot) []domain.ProjectWithCalculations {
	paid := paidByProject(s)
	out := make([]domain.ProjectWithCalculations, 0, len(s.Projects))
	for _, p := range s.Projects {
		out = append(out, withCalculations(p, paid[p.ID]))
	}
	return out
}

func PendingAmountForClient(s domain.Snapshot, clientID string) decimal.Decimal {
	paid := paidByProject(s)
	total := decimal.Zero
	for _, p := range s.Projects {
		if p.ClientID == clientID {
			total = total.Add(p.TotalAmount.Sub(paid[p.ID]))
		}
	}
	return total
}

func PaidAmountForClient(s domain.Snapshot, clientID string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		if p.ClientID == clientID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TotalIncomeThisMonth sums payments dated in now's calendar month.
func TotalIncomeThisMonth(s domain.Snapshot, now time.Time) decimal.Decimal {
	return incomeInMonth(s, now.Year(), now.Month())
}

func incomeInMonth(s domain.Snapshot, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		if domain.SameMonth(p.PaymentDate, year, month) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

func TotalPendingOverall(s domain.Snapshot) decimal.Decimal {
	paid := paidByProject(s)
	total := decimal.Zero
	for _, p := range s.Projects {
		total = total.Add(p.TotalAmount.Sub(paid[p.ID]))
	}
	return total
}

func TotalActiveProjects(s domain.Snapshot) int {
	n := 0
	for _, p := range s.Projects {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// OverdueProjects returns active projects, in store order, that are due before today and
// still have money pending.
func OverdueProjects(s domain.Snapshot, now time.Time) []domain.Project {
	today := domain.Date(now)
	paid := paidByProject(s)
	var out []domain.Project
	for _, p := range s.Projects {
		if p.IsActive() && p.DueDate.Before(today) && p.TotalAmount.Sub(paid[p.ID]).IsPositive() {
			out = append(out, p)
		}
	}
	return out
}

// MonthIncome is one bar of the income chart.
type MonthIncome struct {
	Year   int
	Month  time.Month
	Income decimal.Decimal
}

// Label renders the month as "Jan 2024".
func (m MonthIncome) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// IncomeByMonth returns the last n calendar months up to and including now's month, oldest
// first. Months without payments are present with zero income.
func IncomeByMonth(s domain.Snapshot, now time.Time, n int) []MonthIncome {
	if n <= 0 {
		return []MonthIncome{}
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthIncome, n)
	index := make(map[[2]int]int, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, -(n - 1 - i), 0)
		out[i] = MonthIncome{Year: m.Year(), Month: m.Month(), Income: decimal.Zero}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}
	for _, p := range s.Payments {
		if i, ok := index[[2]int{p.PaymentDate.Year(), int(p.PaymentDate.Month())}]; ok {
			out[i].Income = out[i].Income.Add(p.Amount)
		}
	}
	return out
}
