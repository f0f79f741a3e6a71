package campaign

import (
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

func clonePanel(p domain.Panel) domain.Panel {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}

func cloneReport(r domain.CampaignReport) domain.CampaignReport {
	if r.Panel3CredentialID != nil {
		c := *r.Panel3CredentialID
		r.Panel3CredentialID = &c
	}
	if r.Remarks != nil {
		m := *r.Remarks
		r.Remarks = &m
	}
	return r
}

func find[T any](in []T, match func(T) bool) (T, bool) {
	if i := slices.IndexFunc(in, match); i >= 0 {
		return in[i], true
	}
	var zero T
	return zero, false
}

func (s *Store) Panels() []domain.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Panel, len(s.panels))
	for i, p := range s.panels {
		out[i] = clonePanel(p)
	}
	return out
}

func (s *Store) PanelUsers() []domain.PanelUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

func (s *Store) Credentials() []domain.Panel3Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.credentials)
}

func (s *Store) Reports() []domain.CampaignReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CampaignReport, len(s.reports))
	for i, r := range s.reports {
		out[i] = cloneReport(r)
	}
	return out
}

func (s *Store) Panel(id string) (domain.Panel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := find(s.panels, func(p domain.Panel) bool { return p.ID == id })
	return clonePanel(p), ok
}

func (s *Store) PanelUser(id string) (domain.PanelUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.users, func(u domain.PanelUser) bool { return u.ID == id })
}

func (s *Store) Credential(id string) (domain.Panel3Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.credentials, func(c domain.Panel3Credential) bool { return c.ID == id })
}

func (s *Store) Report(id string) (domain.CampaignReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := find(s.reports, func(r domain.CampaignReport) bool { return r.ID == id })
	return cloneReport(r), ok
}

// UsersForPanel lists the panel's users in load order
func (s *Store) UsersForPanel(panelID string) []domain.PanelUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PanelUser
	for _, u := range s.users {
		if u.PanelID == panelID {
			out = append(out, u)
		}
	}
	return out
}

// Display helpers fall back to a placeholder when the id is unknown.

func (s *Store) PanelName(id string) string {
	if p, ok := s.Panel(id); ok {
		return p.Name
	}
	return "Unknown Panel"
}

func (s *Store) PanelUserName(id string) string {
	if u, ok := s.PanelUser(id); ok {
		return u.Username
	}
	return "Unknown User"
}

func (s *Store) Panel3LoginID(id *string) string {
	if id == nil {
		return "N/A"
	}
	if c, ok := s.Credential(*id); ok {
		return c.LoginID
	}
	return "N/A"
}
