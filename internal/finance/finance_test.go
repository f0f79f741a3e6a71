package finance

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func project(id, client string, total string, start, due time.Time, status domain.ProjectStatus) domain.Project {
	return domain.Project{
		ID:          id,
		ClientID:    client,
		Title:       id,
		TotalAmount: d(total),
		StartDate:   start,
		DueDate:     due,
		Status:      status,
	}
}

func payment(id, projectID, client, amount string, on time.Time) domain.Payment {
	return domain.Payment{ID: id, ProjectID: projectID, ClientID: client, Amount: d(amount), PaymentDate: on}
}

// now is mid-month so "due this month" can fall on either side of today.
var now = time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)

func acmeSnapshot(due time.Time) domain.Snapshot {
	return domain.Snapshot{
		Clients:  []domain.Client{{ID: "acme", Name: "Acme"}},
		Projects: []domain.Project{project("website", "acme", "5000", date(2024, 5, 1), due, domain.ProjectStatusActive)},
		Payments: []domain.Payment{payment("p1", "website", "acme", "2500", date(2024, 5, 3))},
	}
}

func TestScenario_Website(t *testing.T) {
	s := acmeSnapshot(date(2024, 5, 20))

	if got := PaidAmount(s, "website"); !got.Equal(d("2500")) {
		t.Errorf("expected paid 2500, got %s", got)
	}
	if got := PendingAmount(s, "website"); !got.Equal(d("2500")) {
		t.Errorf("expected pending 2500, got %s", got)
	}
	if got := TotalIncomeThisMonth(s, now); got.LessThan(d("2500")) {
		t.Errorf("expected income >= 2500, got %s", got)
	}
	if got := OverdueProjects(s, now); len(got) != 0 {
		t.Errorf("expected no overdue projects while due >= today, got %d", len(got))
	}

	// Due today is not overdue.
	if got := OverdueProjects(acmeSnapshot(date(2024, 5, 15)), now); len(got) != 0 {
		t.Errorf("expected project due today not overdue, got %d", len(got))
	}

	past := acmeSnapshot(date(2024, 5, 10))
	if got := OverdueProjects(past, now); len(got) != 1 || got[0].ID != "website" {
		t.Errorf("expected website overdue, got %+v", got)
	}
}

func TestOverdue_RequiresActiveAndPending(t *testing.T) {
	past := date(2024, 4, 1)
	s := domain.Snapshot{
		Projects: []domain.Project{
			project("paid", "c", "100", past, past, domain.ProjectStatusActive),
			project("proposal", "c", "100", past, past, domain.ProjectStatusProposal),
			project("done", "c", "100", past, past, domain.ProjectStatusCompleted),
			project("late", "c", "100", past, past, domain.ProjectStatusActive),
		},
		Payments: []domain.Payment{payment("x", "paid", "c", "100", past)},
	}
	got := OverdueProjects(s, now)
	if len(got) != 1 || got[0].ID != "late" {
		t.Errorf("expected only late, got %+v", got)
	}
}

func TestPendingPlusPaidEqualsTotal(t *testing.T) {
	s := domain.Snapshot{
		Projects: []domain.Project{
			project("a", "c1", "1000", now, now, domain.ProjectStatusActive),
			project("b", "c1", "300", now, now, domain.ProjectStatusActive),
			project("c", "c2", "50.25", now, now, domain.ProjectStatusCompleted),
		},
		Payments: []domain.Payment{
			payment("1", "a", "c1", "400", now),
			payment("2", "a", "c1", "100.10", now),
			payment("3", "b", "c1", "500", now), // overpaid
			payment("4", "c", "c2", "50.25", now),
		},
	}
	for _, p := range s.Projects {
		sum := PendingAmount(s, p.ID).Add(PaidAmount(s, p.ID))
		if !sum.Equal(p.TotalAmount) {
			t.Errorf("%s: pending+paid=%s, total=%s", p.ID, sum, p.TotalAmount)
		}
	}
	if got := PendingAmount(s, "b"); !got.Equal(d("-200")) {
		t.Errorf("expected negative pending on overpayment, got %s", got)
	}
}

func TestPendingAmountForClient_SumsProjects(t *testing.T) {
	s := domain.Snapshot{
		Projects: []domain.Project{
			project("a", "c1", "1000", now, now, domain.ProjectStatusActive),
			project("b", "c1", "300", now, now, domain.ProjectStatusActive),
			project("c", "c2", "700", now, now, domain.ProjectStatusActive),
		},
		Payments: []domain.Payment{payment("1", "a", "c1", "250", now)},
	}
	for _, client := range []string{"c1", "c2", "nobody"} {
		want := decimal.Zero
		for _, p := range s.ProjectsForClient(client) {
			want = want.Add(PendingAmount(s, p.ID))
		}
		if got := PendingAmountForClient(s, client); !got.Equal(want) {
			t.Errorf("%s: expected %s, got %s", client, want, got)
		}
	}
	if got := PendingAmountForClient(s, "c1"); !got.Equal(d("1050")) {
		t.Errorf("expected 1050, got %s", got)
	}
	if got := PaidAmountForClient(s, "c1"); !got.Equal(d("250")) {
		t.Errorf("expected 250 paid, got %s", got)
	}
	if got := TotalPendingOverall(s); !got.Equal(d("1750")) {
		t.Errorf("expected 1750 overall, got %s", got)
	}
}

func TestMissingProjectDefaults(t *testing.T) {
	s := acmeSnapshot(now)
	if got := PendingAmount(s, "ghost"); !got.IsZero() {
		t.Errorf("expected 0 pending for unknown project, got %s", got)
	}
	if _, ok := ProjectWithCalculations(s, "ghost"); ok {
		t.Error("expected not found for unknown project")
	}
	pc, ok := ProjectWithCalculations(s, "website")
	if !ok || !pc.PaidAmount.Equal(d("2500")) || !pc.PendingAmount.Equal(d("2500")) {
		t.Errorf("unexpected calculations %+v", pc)
	}
}

func TestIncomeByMonth_ZeroFilledChronological(t *testing.T) {
	got := IncomeByMonth(domain.Snapshot{}, now, 6)
	if len(got) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(got))
	}
	wantMonths := []time.Month{time.December, time.January, time.February, time.March, time.April, time.May}
	for i, m := range got {
		if !m.Income.IsZero() {
			t.Errorf("entry %d: expected zero income, got %s", i, m.Income)
		}
		if m.Month != wantMonths[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantMonths[i], m.Month)
		}
	}
	if got[0].Year != 2023 || got[5].Year != 2024 {
		t.Errorf("expected Dec 2023 .. May 2024, got %s .. %s", got[0].Label(), got[5].Label())
	}
}

func TestIncomeByMonth_Buckets(t *testing.T) {
	s := domain.Snapshot{
		Payments: []domain.Payment{
			payment("1", "p", "c", "100", date(2024, 5, 1)),
			payment("2", "p", "c", "50", date(2024, 5, 31)),
			payment("3", "p", "c", "75", date(2024, 3, 10)),
			payment("4", "p", "c", "999", date(2023, 5, 10)), // outside the window
		},
	}
	got := IncomeByMonth(s, now, 3)
	if !got[0].Income.Equal(d("75")) || !got[1].Income.IsZero() || !got[2].Income.Equal(d("150")) {
		t.Errorf("unexpected buckets %+v", got)
	}
	if got := IncomeByMonth(s, now, 0); len(got) != 0 {
		t.Errorf("expected no entries for n=0")
	}
}

func TestMonthlyReportSummary(t *testing.T) {
	may := func(day int) time.Time { return date(2024, 5, day) }
	s := domain.Snapshot{
		Projects: []domain.Project{
			// started in May, due June
			project("new", "c", "1000", may(2), date(2024, 6, 30), domain.ProjectStatusActive),
			// started in March, due in May, active
			project("old-active", "c", "800", date(2024, 3, 1), may(20), domain.ProjectStatusActive),
			// started in March, due in May, completed
			project("old-done", "c", "600", date(2024, 3, 1), may(10), domain.ProjectStatusCompleted),
			// due in May, cancelled: ignored by pending and completed
			project("cancelled", "c", "999", date(2024, 2, 1), may(5), domain.ProjectStatusCancelled),
			// started and due in May, proposal
			project("prop", "c", "200", may(7), may(25), domain.ProjectStatusProposal),
		},
		Payments: []domain.Payment{
			payment("a", "new", "c", "300", may(10)),
			payment("b", "old-active", "c", "100", may(11)),
			payment("c", "old-active", "c", "50", date(2024, 4, 11)), // not in May
			payment("e", "gone", "c", "5", may(12)),                   // project deleted
			payment("f", "old-done", "c", "600", date(2024, 4, 1)),
		},
	}

	r := MonthlyReportSummary(s, 2024, time.May)

	if r.NewProjectsCount != 2 || !r.NewProjectsValue.Equal(d("1200")) {
		t.Errorf("new projects: count=%d value=%s", r.NewProjectsCount, r.NewProjectsValue)
	}
	if !r.PaymentsFromNewProjects.Equal(d("300")) || len(r.NewProjectPayments) != 1 {
		t.Errorf("payments from new projects: %s (%d)", r.PaymentsFromNewProjects, len(r.NewProjectPayments))
	}
	if !r.PaymentsFromOtherProjects.Equal(d("105")) || len(r.OtherProjectPayments) != 2 {
		t.Errorf("payments from other projects: %s (%d)", r.PaymentsFromOtherProjects, len(r.OtherProjectPayments))
	}
	if !r.PaymentsReceived.Equal(d("405")) {
		t.Errorf("payments received: %s", r.PaymentsReceived)
	}
	// old-active pending 800-150=650, prop pending 200.
	if !r.PendingForMonth.Equal(d("850")) {
		t.Errorf("pending for month: %s", r.PendingForMonth)
	}
	if !r.CompletedForMonth.Equal(d("600")) {
		t.Errorf("completed for month: %s", r.CompletedForMonth)
	}
	if len(r.DueProjects) != 4 {
		t.Errorf("expected 4 due projects, got %d", len(r.DueProjects))
	}

	again := MonthlyReportSummary(s, 2024, time.May)
	if !reflect.DeepEqual(r, again) {
		t.Error("expected identical results for repeated calls")
	}
}

func TestTotalActiveProjects(t *testing.T) {
	s := domain.Snapshot{Projects: []domain.Project{
		project("a", "c", "1", now, now, domain.ProjectStatusActive),
		project("b", "c", "1", now, now, domain.ProjectStatusCompleted),
		project("c", "c", "1", now, now, domain.ProjectStatusActive),
	}}
	if got := TotalActiveProjects(s); got != 2 {
		t.Errorf("expected 2 active, got %d", got)
	}
	if got := ProjectsWithCalculations(s); len(got) != 3 || got[1].ID != "b" {
		t.Errorf("expected store order, got %+v", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(decimal.RequireFromString("1234.5")); got != "₹1234.50" {
		t.Errorf("expected ₹1234.50, got %s", got)
	}
	if got := FormatCurrency(decimal.NewFromInt(-20)); got != "₹-20.00" {
		t.Errorf("expected ₹-20.00, got %s", got)
	}
}
