package campaign

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

type fakeDB struct {
	panels  []domain.Panel
	users   []domain.PanelUser
	creds   []domain.Panel3Credential
	reports []domain.CampaignReport
	audit   []domain.AuditLog

	fail map[string]error
	seq  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{fail: make(map[string]error)}
}

func (f *fakeDB) gateways() repository.CampaignGateways {
	return repository.CampaignGateways{
		Panels:      fakePanels{f},
		PanelUsers:  fakeUsers{f},
		Credentials: fakeCreds{f},
		Reports:     fakeReports{f},
		Audit:       fakeAudit{f},
	}
}

func (f *fakeDB) id(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func missing(table string) error {
	return domain.NewPersistenceError("update", table, domain.ErrNotFound)
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakePanels struct{ f *fakeDB }

func (g fakePanels) List(_ context.Context, owner string) ([]domain.Panel, error) {
	if err := g.f.fail["panels.list"]; err != nil {
		return nil, err
	}
	var out []domain.Panel
	for _, p := range g.f.panels {
		if p.AdminUserID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g fakePanels) Insert(_ context.Context, owner string, in domain.PanelInput, at time.Time) (domain.Panel, error) {
	if err := g.f.fail["panels.insert"]; err != nil {
		return domain.Panel{}, err
	}
	p := domain.Panel{ID: g.f.id("panel"), AdminUserID: owner, Name: in.Name, Description: in.Description,
		RequiresPanel3Credentials: in.RequiresPanel3Credentials, CreatedAt: at, UpdatedAt: at}
	g.f.panels = append(g.f.panels, p)
	return p, nil
}

func (g fakePanels) Update(_ context.Context, id, owner string, patch domain.PanelPatch, at time.Time) (domain.Panel, error) {
	for i, p := range g.f.panels {
		if p.ID == id && p.AdminUserID == owner {
			g.f.panels[i] = p.Apply(patch, at)
			return g.f.panels[i], nil
		}
	}
	return domain.Panel{}, missing("panels")
}

func (g fakePanels) Delete(_ context.Context, id, owner string) error {
	if err := g.f.fail["panels.delete"]; err != nil {
		return err
	}
	g.f.panels = slices.DeleteFunc(g.f.panels, func(p domain.Panel) bool { return p.ID == id })
	g.f.users = slices.DeleteFunc(g.f.users, func(u domain.PanelUser) bool { return u.PanelID == id })
	g.f.reports = slices.DeleteFunc(g.f.reports, func(r domain.CampaignReport) bool { return r.PanelID == id })
	return nil
}

type fakeUsers struct{ f *fakeDB }

func (g fakeUsers) List(_ context.Context, owner string) ([]domain.PanelUser, error) {
	var out []domain.PanelUser
	for _, u := range g.f.users {
		if u.AdminUserID == owner {
			out = append(out, u)
		}
	}
	return out, nil
}

func (g fakeUsers) Insert(_ context.Context, owner string, in domain.PanelUserInput, at time.Time) (domain.PanelUser, error) {
	u := domain.PanelUser{ID: g.f.id("user"), AdminUserID: owner, PanelID: in.PanelID, Username: in.Username,
		Email: in.Email, IsActive: in.IsActive, CreatedAt: at, UpdatedAt: at}
	g.f.users = append(g.f.users, u)
	return u, nil
}

func (g fakeUsers) Update(_ context.Context, id, owner string, patch domain.PanelUserPatch, at time.Time) (domain.PanelUser, error) {
	for i, u := range g.f.users {
		if u.ID == id && u.AdminUserID == owner {
			g.f.users[i] = u.Apply(patch, at)
			return g.f.users[i], nil
		}
	}
	return domain.PanelUser{}, missing("panel_users")
}

func (g fakeUsers) Delete(_ context.Context, id, owner string) error {
	g.f.users = slices.DeleteFunc(g.f.users, func(u domain.PanelUser) bool { return u.ID == id })
	g.f.reports = slices.DeleteFunc(g.f.reports, func(r domain.CampaignReport) bool { return r.AssignedPanelUserID == id })
	return nil
}

type fakeCreds struct{ f *fakeDB }

func (g fakeCreds) List(_ context.Context, owner string) ([]domain.Panel3Credential, error) {
	var out []domain.Panel3Credential
	for _, c := range g.f.creds {
		if c.AdminUserID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g fakeCreds) Insert(_ context.Context, owner string, in domain.Panel3CredentialInput, at time.Time) (domain.Panel3Credential, error) {
	if in.Password != "" {
		return domain.Panel3Credential{}, fmt.Errorf("plain password reached the gateway")
	}
	c := domain.Panel3Credential{ID: g.f.id("cred"), AdminUserID: owner, LoginID: in.LoginID,
		PasswordHash: in.PasswordHash, CreatedAt: at, UpdatedAt: at}
	g.f.creds = append(g.f.creds, c)
	return c, nil
}

func (g fakeCreds) Update(_ context.Context, id, owner string, patch domain.Panel3CredentialPatch, at time.Time) (domain.Panel3Credential, error) {
	if patch.Password != nil {
		return domain.Panel3Credential{}, fmt.Errorf("plain password reached the gateway")
	}
	for i, c := range g.f.creds {
		if c.ID == id && c.AdminUserID == owner {
			g.f.creds[i] = c.Apply(patch, at)
			return g.f.creds[i], nil
		}
	}
	return domain.Panel3Credential{}, missing("panel3_credentials")
}

func (g fakeCreds) Delete(_ context.Context, id, owner string) error {
	g.f.creds = slices.DeleteFunc(g.f.creds, func(c domain.Panel3Credential) bool { return c.ID == id })
	for i, r := range g.f.reports {
		if r.Panel3CredentialID != nil && *r.Panel3CredentialID == id {
			g.f.reports[i].Panel3CredentialID = nil
		}
	}
	return nil
}

type fakeReports struct{ f *fakeDB }

func (g fakeReports) List(_ context.Context, owner string) ([]domain.CampaignReport, error) {
	var out []domain.CampaignReport
	for _, r := range g.f.reports {
		if r.AdminUserID == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g fakeReports) Insert(_ context.Context, owner string, in domain.CampaignReportInput, at time.Time) (domain.CampaignReport, error) {
	r := domain.CampaignReport{ID: g.f.id("report"), AdminUserID: owner, CampaignIDExternal: in.CampaignIDExternal,
		CampaignName: in.CampaignName, PanelID: in.PanelID, AssignedPanelUserID: in.AssignedPanelUserID,
		Panel3CredentialID: in.Panel3CredentialID, Status: domain.CampaignStatusPending, Remarks: in.Remarks,
		CreatedAt: at, UpdatedAt: at}
	g.f.reports = append(g.f.reports, r)
	return r, nil
}

func (g fakeReports) Update(_ context.Context, id, owner string, patch domain.CampaignReportPatch, at time.Time) (domain.CampaignReport, error) {
	for i, r := range g.f.reports {
		if r.ID == id && r.AdminUserID == owner {
			g.f.reports[i] = r.Apply(patch, at)
			return g.f.reports[i], nil
		}
	}
	return domain.CampaignReport{}, missing("campaign_reports")
}

func (g fakeReports) Delete(_ context.Context, id, owner string) error {
	g.f.reports = slices.DeleteFunc(g.f.reports, func(r domain.CampaignReport) bool { return r.ID == id })
	return nil
}

type fakeAudit struct{ f *fakeDB }

func (g fakeAudit) Insert(_ context.Context, entry domain.AuditLog) (domain.AuditLog, error) {
	if err := g.f.fail["audit.insert"]; err != nil {
		return domain.AuditLog{}, err
	}
	entry.ID = g.f.id("audit")
	g.f.audit = append(g.f.audit, entry)
	return entry, nil
}

func (g fakeAudit) ListRecent(_ context.Context, user string, limit int) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	for i := len(g.f.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if e := g.f.audit[i]; e.UserID != nil && *e.UserID == user {
			out = append(out, e)
		}
	}
	return out, nil
}
