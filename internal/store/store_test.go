package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/crypto"
	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/session"
)

var testNow = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, f *fakeDB, user string) *Store {
	t.Helper()
	s := New(f.gateways(), testLogger(), WithClock(func() time.Time { return testNow }))
	if user != "" {
		if err := s.SetIdentity(context.Background(), &session.Identity{UserID: user}); err != nil {
			t.Fatalf("SetIdentity: %v", err)
		}
	}
	return s
}

func mustClient(t *testing.T, s *Store, name string) domain.Client {
	t.Helper()
	c, err := s.AddClient(context.Background(), domain.ClientInput{Name: name})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	return c
}

func mustProject(t *testing.T, s *Store, clientID, total string) domain.Project {
	t.Helper()
	p, err := s.AddProject(context.Background(), domain.ProjectInput{
		ClientID:    clientID,
		Title:       "Website",
		TotalAmount: decimal.RequireFromString(total),
		StartDate:   testNow,
		DueDate:     testNow.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	return p
}

func mustPayment(t *testing.T, s *Store, projectID, amount string) domain.Payment {
	t.Helper()
	p, err := s.AddPayment(context.Background(), domain.PaymentInput{
		ProjectID:   projectID,
		Amount:      decimal.RequireFromString(amount),
		PaymentDate: testNow,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	return p
}

func TestStore_MutatorsRequireIdentity(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "")
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["AddClient"] = s.AddClient(ctx, domain.ClientInput{Name: "Acme"})
	_, checks["UpdateClient"] = s.UpdateClient(ctx, "c", domain.ClientPatch{})
	checks["DeleteClient"] = s.DeleteClient(ctx, "c")
	_, checks["AddProject"] = s.AddProject(ctx, domain.ProjectInput{})
	_, checks["UpdateProject"] = s.UpdateProject(ctx, "p", domain.ProjectPatch{})
	checks["DeleteProject"] = s.DeleteProject(ctx, "p")
	_, checks["AddPayment"] = s.AddPayment(ctx, domain.PaymentInput{})
	_, checks["UpdatePayment"] = s.UpdatePayment(ctx, "x", domain.PaymentPatch{})
	checks["DeletePayment"] = s.DeletePayment(ctx, "x")
	_, checks["AddPaymentMethod"] = s.AddPaymentMethod(ctx, domain.PaymentMethodInput{})
	_, checks["SetDefaultPaymentMethod"] = s.SetDefaultPaymentMethod(ctx, "m")
	_, checks["SaveBusinessProfile"] = s.SaveBusinessProfile(ctx, domain.BusinessProfilePatch{})

	for name, err := range checks {
		if !errors.Is(err, domain.ErrAuthenticationRequired) {
			t.Errorf("%s: expected ErrAuthenticationRequired, got %v", name, err)
		}
	}
	for op, n := range f.calls {
		if n > 0 && op != "" {
			t.Errorf("expected no gateway calls, got %s x%d", op, n)
		}
	}
}

func TestStore_AddAndUpdateClient(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	ctx := context.Background()

	c, err := s.AddClient(ctx, domain.ClientInput{Name: "  Acme ", Email: domain.Ptr(""), Tags: []string{"a", "a"}})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if c.Name != "Acme" || c.Email != nil || len(c.Tags) != 1 {
		t.Errorf("expected normalized client, got %+v", c)
	}
	if c.UserID != "u1" || !c.CreatedAt.Equal(testNow) {
		t.Errorf("expected owner and timestamps from gateway, got %+v", c)
	}
	if got := s.Clients(); len(got) != 1 || got[0].ID != c.ID {
		t.Fatalf("expected client appended, got %+v", got)
	}

	updated, err := s.UpdateClient(ctx, c.ID, domain.ClientPatch{Company: domain.Ptr("Acme Inc")})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.Name != "Acme" || domain.Value(updated.Company, "") != "Acme Inc" {
		t.Errorf("expected merged patch, got %+v", updated)
	}
	got, _ := s.Client(c.ID)
	if domain.Value(got.Company, "") != "Acme Inc" {
		t.Errorf("expected mirror updated, got %+v", got)
	}
}

func TestStore_ValidationRejectedBeforeGateway(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	ctx := context.Background()

	_, err := s.AddClient(ctx, domain.ClientInput{Name: "A"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short name, got %v", err)
	}
	_, err = s.AddClient(ctx, domain.ClientInput{Name: "Acme", Email: domain.Ptr("not-an-email")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for email, got %v", err)
	}
	if f.calls["clients.insert"] != 0 {
		t.Errorf("expected no insert, got %d", f.calls["clients.insert"])
	}

	c := mustClient(t, s, "Acme")
	_, err = s.AddProject(ctx, domain.ProjectInput{
		ClientID: c.ID, Title: "Zero", TotalAmount: decimal.Zero, StartDate: testNow, DueDate: testNow,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for zero total, got %v", err)
	}
}

func TestStore_NewProjectDefaultsActive(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "100")
	if p.Status != domain.ProjectStatusActive {
		t.Errorf("expected active, got %s", p.Status)
	}
}

func TestStore_UpdateUnknownIsNotFound(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	_, err := s.UpdateClient(context.Background(), "missing", domain.ClientPatch{Name: domain.Ptr("New name")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}

func TestStore_DeleteClientCascades(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	ctx := context.Background()

	acme := mustClient(t, s, "Acme")
	other := mustClient(t, s, "Globex")
	p1 := mustProject(t, s, acme.ID, "1000")
	p2 := mustProject(t, s, acme.ID, "2000")
	keep := mustProject(t, s, other.ID, "500")
	mustPayment(t, s, p1.ID, "10")
	mustPayment(t, s, p1.ID, "20")
	mustPayment(t, s, p2.ID, "30")
	mustPayment(t, s, keep.ID, "40")

	if err := s.DeleteClient(ctx, acme.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	for _, p := range s.Projects() {
		if p.ClientID == acme.ID {
			t.Errorf("project %s still references deleted client", p.ID)
		}
	}
	for _, p := range s.Payments() {
		if p.ClientID == acme.ID {
			t.Errorf("payment %s still references deleted client", p.ID)
		}
	}
	if len(s.Projects()) != 1 || len(s.Payments()) != 1 || len(s.Clients()) != 1 {
		t.Errorf("expected only Globex data left, got %d clients %d projects %d payments",
			len(s.Clients()), len(s.Projects()), len(s.Payments()))
	}
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "1000")
	mustPayment(t, s, p.ID, "10")

	if err := s.DeleteProject(context.Background(), p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if len(s.Projects()) != 0 || len(s.Payments()) != 0 {
		t.Errorf("expected project and payments removed")
	}
	if len(s.Clients()) != 1 {
		t.Errorf("expected client kept")
	}
}

func TestStore_GatewayFailureLeavesMemoryUnchanged(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	ctx := context.Background()
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "1000")
	mustPayment(t, s, p.ID, "10")

	boom := errors.New("network down")
	f.fail["clients.insert"] = boom
	f.fail["clients.delete"] = boom
	f.fail["payments.update"] = boom

	if _, err := s.AddClient(ctx, domain.ClientInput{Name: "Globex"}); !errors.Is(err, boom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if err := s.DeleteClient(ctx, c.ID); !errors.Is(err, boom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	pay := s.Payments()[0]
	if _, err := s.UpdatePayment(ctx, pay.ID, domain.PaymentPatch{Amount: domain.Ptr(decimal.NewFromInt(999))}); !errors.Is(err, boom) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	if len(s.Clients()) != 1 || len(s.Projects()) != 1 || len(s.Payments()) != 1 {
		t.Errorf("expected no partial changes")
	}
	if got := s.Payments()[0].Amount; !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected amount unchanged, got %s", got)
	}
}

func TestStore_AddPaymentDerivesClient(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	ctx := context.Background()
	c := mustClient(t, s, "Acme")
	other := mustClient(t, s, "Globex")
	p := mustProject(t, s, c.ID, "1000")

	pay := mustPayment(t, s, p.ID, "10")
	if pay.ClientID != c.ID {
		t.Errorf("expected client %s, got %s", c.ID, pay.ClientID)
	}

	_, err := s.AddPayment(ctx, domain.PaymentInput{
		ProjectID: p.ID, ClientID: other.ID, Amount: decimal.NewFromInt(1), PaymentDate: testNow,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for mismatched client, got %v", err)
	}
	_, err = s.AddPayment(ctx, domain.PaymentInput{
		ProjectID: "ghost", Amount: decimal.NewFromInt(1), PaymentDate: testNow,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown project, got %v", err)
	}
}

func TestStore_UpdatePaymentFollowsProjectClient(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	a := mustClient(t, s, "Acme")
	b := mustClient(t, s, "Globex")
	pa := mustProject(t, s, a.ID, "1000")
	pb := mustProject(t, s, b.ID, "1000")
	pay := mustPayment(t, s, pa.ID, "10")

	moved, err := s.UpdatePayment(context.Background(), pay.ID, domain.PaymentPatch{ProjectID: &pb.ID})
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	if moved.ProjectID != pb.ID || moved.ClientID != b.ID {
		t.Errorf("expected payment on %s/%s, got %s/%s", pb.ID, b.ID, moved.ProjectID, moved.ClientID)
	}
}

func TestStore_UpdateProjectClientRepointsPayments(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	a := mustClient(t, s, "Acme")
	b := mustClient(t, s, "Globex")
	p := mustProject(t, s, a.ID, "1000")
	mustPayment(t, s, p.ID, "10")

	if _, err := s.UpdateProject(context.Background(), p.ID, domain.ProjectPatch{ClientID: &b.ID}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	for _, pay := range s.Payments() {
		if pay.ClientID != b.ID {
			t.Errorf("expected payment re-pointed to %s, got %s", b.ID, pay.ClientID)
		}
	}
}

func TestReconcile_ExactTotalCompletes(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "1000")

	mustPayment(t, s, p.ID, "400")
	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusActive {
		t.Fatalf("expected still active after partial payment, got %s", got.Status)
	}
	mustPayment(t, s, p.ID, "600")

	got, _ := s.Project(p.ID)
	if got.Status != domain.ProjectStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !got.UpdatedAt.Equal(testNow) {
		t.Errorf("expected updated_at stamped, got %v", got.UpdatedAt)
	}
}

func TestReconcile_ShortByOneStaysActive(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "1000")

	mustPayment(t, s, p.ID, "500")
	mustPayment(t, s, p.ID, "499")

	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusActive {
		t.Errorf("expected active at 999 of 1000, got %s", got.Status)
	}
}

func TestReconcile_NeverDemotes(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "1000")
	mustPayment(t, s, p.ID, "500")
	last := mustPayment(t, s, p.ID, "500")

	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if err := s.DeletePayment(context.Background(), last.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusCompleted {
		t.Errorf("expected completed to stick, got %s", got.Status)
	}
}

func TestReconcile_OnlyActiveProjects(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	ctx := context.Background()
	c := mustClient(t, s, "Acme")
	p, err := s.AddProject(ctx, domain.ProjectInput{
		ClientID: c.ID, Title: "Pitch", TotalAmount: decimal.NewFromInt(100),
		StartDate: testNow, DueDate: testNow, Status: domain.ProjectStatusProposal,
	})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	mustPayment(t, s, p.ID, "150")

	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusProposal {
		t.Errorf("expected proposal untouched, got %s", got.Status)
	}
}

func TestReconcile_ManualStatusEditIsNotOverridden(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	ctx := context.Background()
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "100")
	mustPayment(t, s, p.ID, "100")

	// Manual reopen is allowed and does not itself trigger the rule.
	active := domain.ProjectStatusActive
	got, err := s.UpdateProject(ctx, p.ID, domain.ProjectPatch{Status: &active})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if got.Status != domain.ProjectStatusActive {
		t.Errorf("expected manual edit to active, got %s", got.Status)
	}
}

func TestReconcile_FailureReportedAfterCommit(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "100")

	f.fail["projects.update:"+p.ID] = errors.New("write refused")
	pay, err := s.AddPayment(context.Background(), domain.PaymentInput{
		ProjectID: p.ID, Amount: decimal.NewFromInt(100), PaymentDate: testNow,
	})
	if !errors.Is(err, domain.ErrReconcile) {
		t.Fatalf("expected ErrReconcile, got %v", err)
	}
	if pay.ID == "" {
		t.Fatal("expected committed payment to be returned")
	}
	if _, ok := s.Payment(pay.ID); !ok {
		t.Error("expected payment mirrored despite reconcile failure")
	}
	if got, _ := s.Project(p.ID); got.Status != domain.ProjectStatusActive {
		t.Errorf("expected project left active, got %s", got.Status)
	}

	// Next payment mutation retries the transition.
	delete(f.fail, "projects.update:"+p.ID)
	changed, err := s.Reconcile(context.Background())
	if err != nil || len(changed) != 1 {
		t.Fatalf("expected retry to complete project, got %v %v", changed, err)
	}
}

func TestLoadAll_ReplacesAndReconciles(t *testing.T) {
	f := newFakeDB()
	f.clients = []domain.Client{{ID: "c1", UserID: "u1", Name: "Acme"}, {ID: "c2", UserID: "u2", Name: "Other"}}
	f.projects = []domain.Project{{
		ID: "p1", UserID: "u1", ClientID: "c1", Title: "Paid up", TotalAmount: decimal.NewFromInt(100),
		StartDate: testNow, DueDate: testNow, Status: domain.ProjectStatusActive,
	}}
	f.payments = []domain.Payment{{ID: "x", UserID: "u1", ProjectID: "p1", ClientID: "c1", Amount: decimal.NewFromInt(100), PaymentDate: testNow}}

	s := newTestStore(t, f, "u1")

	if len(s.Clients()) != 1 {
		t.Errorf("expected only u1's clients, got %d", len(s.Clients()))
	}
	if got, _ := s.Project("p1"); got.Status != domain.ProjectStatusCompleted {
		t.Errorf("expected load to reconcile p1, got %s", got.Status)
	}
}

func TestLoadAll_FailureEmptiesCollections(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	mustClient(t, s, "Acme")

	boom := errors.New("offline")
	f.fail["payments.list"] = boom
	if err := s.LoadAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if len(s.Clients()) != 0 || len(s.Projects()) != 0 || len(s.Payments()) != 0 {
		t.Error("expected collections emptied after failed load")
	}
	if s.Loading() {
		t.Error("expected loading flag cleared")
	}
}

func TestStore_FollowsSession(t *testing.T) {
	f := newFakeDB()
	f.clients = []domain.Client{{ID: "c1", UserID: "u1", Name: "Acme"}}
	s := New(f.gateways(), testLogger(), WithClock(func() time.Time { return testNow }))
	mgr := session.NewManager(crypto.NewMemoryKeyring(), testLogger())
	ctx := context.Background()

	if err := s.Bind(ctx, mgr); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer s.Close()
	if f.calls["clients.list"] != 0 {
		t.Fatal("expected no load while session is loading")
	}

	if err := mgr.SignIn(ctx, session.Identity{UserID: "u1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(s.Clients()) != 1 {
		t.Fatalf("expected clients loaded on sign in, got %d", len(s.Clients()))
	}

	if err := mgr.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(s.Clients()) != 0 || s.Identity() != nil {
		t.Error("expected store emptied on sign out")
	}
}

func TestSetDefaultPaymentMethod_BestEffort(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	ctx := context.Background()

	a, _ := s.AddPaymentMethod(ctx, domain.PaymentMethodInput{Name: "Bank", IsDefault: true})
	b, _ := s.AddPaymentMethod(ctx, domain.PaymentMethodInput{Name: "UPI", IsDefault: true})
	c, _ := s.AddPaymentMethod(ctx, domain.PaymentMethodInput{Name: "Cash"})

	f.fail["payment_methods.update:"+b.ID] = errors.New("flaky")
	if _, err := s.SetDefaultPaymentMethod(ctx, c.ID); err != nil {
		t.Fatalf("SetDefaultPaymentMethod: %v", err)
	}

	defaults := map[string]bool{}
	for _, m := range s.PaymentMethods() {
		defaults[m.ID] = m.IsDefault
	}
	if defaults[a.ID] {
		t.Error("expected Bank cleared")
	}
	if !defaults[b.ID] {
		t.Error("expected UPI left default after failed clear")
	}
	if !defaults[c.ID] {
		t.Error("expected Cash default")
	}
}

func TestSaveBusinessProfile_InsertThenUpdate(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(t, f, "u1")
	ctx := context.Background()

	first, err := s.SaveBusinessProfile(ctx, domain.BusinessProfilePatch{BusinessName: domain.Ptr("Studio")})
	if err != nil {
		t.Fatalf("SaveBusinessProfile: %v", err)
	}
	second, err := s.SaveBusinessProfile(ctx, domain.BusinessProfilePatch{ContactEmail: domain.Ptr("hi@studio.test")})
	if err != nil {
		t.Fatalf("SaveBusinessProfile: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same profile updated")
	}
	if f.calls["business_profiles.insert"] != 1 || f.calls["business_profiles.update"] != 1 {
		t.Errorf("expected one insert and one update, got %v", f.calls)
	}
	b := s.BusinessProfile()
	if b == nil || domain.Value(b.BusinessName, "") != "Studio" || domain.Value(b.ContactEmail, "") != "hi@studio.test" {
		t.Errorf("unexpected profile %+v", b)
	}
}

func TestStore_CalculatorPassThroughs(t *testing.T) {
	s := newTestStore(t, newFakeDB(), "u1")
	c := mustClient(t, s, "Acme")
	p := mustProject(t, s, c.ID, "5000")
	mustPayment(t, s, p.ID, "2500")

	if got := s.PaidAmount(p.ID); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("paid: %s", got)
	}
	if got := s.PendingAmount(p.ID); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("pending: %s", got)
	}
	if got := s.PendingAmount("ghost"); !got.IsZero() {
		t.Errorf("pending for unknown project: %s", got)
	}
	if got := s.TotalIncomeThisMonth(); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("income this month: %s", got)
	}
	if got := s.IncomeByMonth(6); len(got) != 6 || !got[5].Income.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("income by month: %+v", got)
	}
}
