package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/repository"
)

// fakeDB is an in-memory gateway backend. Failures are injected per "table.op" or
// "table.op:id" key.
type fakeDB struct {
	clients  []domain.Client
	projects []domain.Project
	payments []domain.Payment
	methods  []domain.PaymentMethod
	profile  *domain.BusinessProfile

	fail  map[string]error
	calls map[string]int
	seq   int
}

func newFakeDB() *fakeDB {
	return &fakeDB{fail: make(map[string]error), calls: make(map[string]int)}
}

func (f *fakeDB) gateways() repository.Gateways {
	return repository.Gateways{
		Clients:         fakeClients{f},
		Projects:        fakeProjects{f},
		Payments:        fakePayments{f},
		PaymentMethods:  fakeMethods{f},
		BusinessProfile: fakeProfile{f},
	}
}

func (f *fakeDB) call(op, id string) error {
	f.calls[op]++
	if err, ok := f.fail[op+":"+id]; ok {
		return err
	}
	return f.fail[op]
}

func (f *fakeDB) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func notFound(table string) error {
	return domain.NewPersistenceError("update", table, domain.ErrNotFound)
}

type fakeClients struct{ f *fakeDB }

func (g fakeClients) List(_ context.Context, owner string) ([]domain.Client, error) {
	if err := g.f.call("clients.list", ""); err != nil {
		return nil, err
	}
	var out []domain.Client
	for _, c := range g.f.clients {
		if c.UserID == owner {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (g fakeClients) Insert(_ context.Context, owner string, in domain.ClientInput, at time.Time) (domain.Client, error) {
	if err := g.f.call("clients.insert", ""); err != nil {
		return domain.Client{}, err
	}
	c := domain.Client{
		ID: g.f.nextID("client"), UserID: owner, Name: in.Name, Company: in.Company, Email: in.Email,
		Phone: in.Phone, Address: in.Address, Tags: in.Tags, Notes: in.Notes, CreatedAt: at, UpdatedAt: at,
	}
	g.f.clients = append(g.f.clients, c)
	return c.Clone(), nil
}

func (g fakeClients) Update(_ context.Context, id, owner string, patch domain.ClientPatch, at time.Time) (domain.Client, error) {
	if err := g.f.call("clients.update", id); err != nil {
		return domain.Client{}, err
	}
	for i, c := range g.f.clients {
		if c.ID == id && c.UserID == owner {
			g.f.clients[i] = c.Apply(patch, at)
			return g.f.clients[i].Clone(), nil
		}
	}
	return domain.Client{}, notFound("clients")
}

func (g fakeClients) Delete(_ context.Context, id, owner string) error {
	if err := g.f.call("clients.delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(g.f.clients, func(c domain.Client) bool { return c.ID == id && c.UserID == owner })
	if i < 0 {
		return notFound("clients")
	}
	g.f.clients = slices.Delete(g.f.clients, i, i+1)
	g.f.projects = slices.DeleteFunc(g.f.projects, func(p domain.Project) bool { return p.ClientID == id })
	g.f.payments = slices.DeleteFunc(g.f.payments, func(p domain.Payment) bool { return p.ClientID == id })
	return nil
}

type fakeProjects struct{ f *fakeDB }

func (g fakeProjects) List(_ context.Context, owner string) ([]domain.Project, error) {
	if err := g.f.call("projects.list", ""); err != nil {
		return nil, err
	}
	var out []domain.Project
	for _, p := range g.f.projects {
		if p.UserID == owner {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (g fakeProjects) Insert(_ context.Context, owner string, in domain.ProjectInput, at time.Time) (domain.Project, error) {
	if err := g.f.call("projects.insert", ""); err != nil {
		return domain.Project{}, err
	}
	p := domain.Project{
		ID: g.f.nextID("project"), UserID: owner, ClientID: in.ClientID, Title: in.Title,
		Description: in.Description, Notes: in.Notes, TotalAmount: in.TotalAmount,
		StartDate: in.StartDate, DueDate: in.DueDate, Status: in.Status, CreatedAt: at, UpdatedAt: at,
	}
	g.f.projects = append(g.f.projects, p)
	return p.Clone(), nil
}

func (g fakeProjects) Update(_ context.Context, id, owner string, patch domain.ProjectPatch, at time.Time) (domain.Project, error) {
	if err := g.f.call("projects.update", id); err != nil {
		return domain.Project{}, err
	}
	for i, p := range g.f.projects {
		if p.ID == id && p.UserID == owner {
			g.f.projects[i] = p.Apply(patch, at)
			if patch.ClientID != nil {
				for j := range g.f.payments {
					if g.f.payments[j].ProjectID == id {
						g.f.payments[j].ClientID = *patch.ClientID
					}
				}
			}
			return g.f.projects[i].Clone(), nil
		}
	}
	return domain.Project{}, notFound("projects")
}

func (g fakeProjects) Delete(_ context.Context, id, owner string) error {
	if err := g.f.call("projects.delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(g.f.projects, func(p domain.Project) bool { return p.ID == id && p.UserID == owner })
	if i < 0 {
		return notFound("projects")
	}
	g.f.projects = slices.Delete(g.f.projects, i, i+1)
	g.f.payments = slices.DeleteFunc(g.f.payments, func(p domain.Payment) bool { return p.ProjectID == id })
	return nil
}

type fakePayments struct{ f *fakeDB }

func (g fakePayments) List(_ context.Context, owner string) ([]domain.Payment, error) {
	if err := g.f.call("payments.list", ""); err != nil {
		return nil, err
	}
	var out []domain.Payment
	for _, p := range g.f.payments {
		if p.UserID == owner {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (g fakePayments) Insert(_ context.Context, owner string, in domain.PaymentInput, at time.Time) (domain.Payment, error) {
	if err := g.f.call("payments.insert", ""); err != nil {
		return domain.Payment{}, err
	}
	p := domain.Payment{
		ID: g.f.nextID("payment"), UserID: owner, ProjectID: in.ProjectID, ClientID: in.ClientID,
		Amount: in.Amount, PaymentDate: in.PaymentDate, PaymentMethod: in.PaymentMethod,
		ReferenceID: in.ReferenceID, Notes: in.Notes, CreatedAt: at, UpdatedAt: at,
	}
	g.f.payments = append(g.f.payments, p)
	return p.Clone(), nil
}

func (g fakePayments) Update(_ context.Context, id, owner string, patch domain.PaymentPatch, at time.Time) (domain.Payment, error) {
	if err := g.f.call("payments.update", id); err != nil {
		return domain.Payment{}, err
	}
	for i, p := range g.f.payments {
		if p.ID == id && p.UserID == owner {
			g.f.payments[i] = p.Apply(patch, at)
			return g.f.payments[i].Clone(), nil
		}
	}
	return domain.Payment{}, notFound("payments")
}

func (g fakePayments) Delete(_ context.Context, id, owner string) error {
	if err := g.f.call("payments.delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(g.f.payments, func(p domain.Payment) bool { return p.ID == id && p.UserID == owner })
	if i < 0 {
		return notFound("payments")
	}
	g.f.payments = slices.Delete(g.f.payments, i, i+1)
	return nil
}

type fakeMethods struct{ f *fakeDB }

func (g fakeMethods) List(_ context.Context, owner string) ([]domain.PaymentMethod, error) {
	if err := g.f.call("payment_methods.list", ""); err != nil {
		return nil, err
	}
	var out []domain.PaymentMethod
	for _, m := range g.f.methods {
		if m.UserID == owner {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (g fakeMethods) Insert(_ context.Context, owner string, in domain.PaymentMethodInput, at time.Time) (domain.PaymentMethod, error) {
	if err := g.f.call("payment_methods.insert", ""); err != nil {
		return domain.PaymentMethod{}, err
	}
	m := domain.PaymentMethod{
		ID: g.f.nextID("method"), UserID: owner, Name: in.Name, Details: in.Details,
		IsDefault: in.IsDefault, CreatedAt: at, UpdatedAt: at,
	}
	g.f.methods = append(g.f.methods, m)
	return m.Clone(), nil
}

func (g fakeMethods) Update(_ context.Context, id, owner string, patch domain.PaymentMethodPatch, at time.Time) (domain.PaymentMethod, error) {
	if err := g.f.call("payment_methods.update", id); err != nil {
		return domain.PaymentMethod{}, err
	}
	for i, m := range g.f.methods {
		if m.ID == id && m.UserID == owner {
			g.f.methods[i] = m.Apply(patch, at)
			return g.f.methods[i].Clone(), nil
		}
	}
	return domain.PaymentMethod{}, notFound("payment_methods")
}

func (g fakeMethods) Delete(_ context.Context, id, owner string) error {
	if err := g.f.call("payment_methods.delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(g.f.methods, func(m domain.PaymentMethod) bool { return m.ID == id && m.UserID == owner })
	if i < 0 {
		return notFound("payment_methods")
	}
	g.f.methods = slices.Delete(g.f.methods, i, i+1)
	return nil
}

type fakeProfile struct{ f *fakeDB }

func (g fakeProfile) Get(_ context.Context, owner string) (*domain.BusinessProfile, error) {
	if err := g.f.call("business_profiles.get", ""); err != nil {
		return nil, err
	}
	if g.f.profile == nil || g.f.profile.UserID != owner {
		return nil, nil
	}
	b := g.f.profile.Clone()
	return &b, nil
}

func (g fakeProfile) Insert(_ context.Context, owner string, in domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error) {
	if err := g.f.call("business_profiles.insert", ""); err != nil {
		return domain.BusinessProfile{}, err
	}
	b := domain.BusinessProfile{ID: g.f.nextID("profile"), UserID: owner, CreatedAt: at}.Apply(in, at)
	g.f.profile = &b
	return b.Clone(), nil
}

func (g fakeProfile) Update(_ context.Context, id, owner string, patch domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error) {
	if err := g.f.call("business_profiles.update", id); err != nil {
		return domain.BusinessProfile{}, err
	}
	if g.f.profile == nil || g.f.profile.ID != id || g.f.profile.UserID != owner {
		return domain.BusinessProfile{}, notFound("business_profiles")
	}
	b := g.f.profile.Apply(patch, at)
	g.f.profile = &b
	return b.Clone(), nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
