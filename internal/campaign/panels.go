package campaign

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

const (
	tablePanels      = "panels"
	tablePanelUsers  = "panel_users"
	tableCredentials = "panel3_credentials"
	tableReports     = "campaign_reports"
)

func (s *Store) AddPanel(ctx context.Context, in domain.PanelInput) (domain.Panel, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Panel{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Panel{}, err
	}

	p, err := s.gw.Panels.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.Panel{}, s.fail("add_panel", "", err)
	}
	s.apply(gen, func() {
		s.panels = append(s.panels, clonePanel(p))
	})
	s.record(ctx, gen, owner, tablePanels, p.ID, domain.AuditCreate, nil, p)
	return p, nil
}

func (s *Store) UpdatePanel(ctx context.Context, id string, patch domain.PanelPatch) (domain.Panel, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Panel{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Panel{}, err
	}
	old, known := s.Panel(id)

	p, err := s.gw.Panels.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.Panel{}, s.fail("update_panel", id, err)
	}
	s.apply(gen, func() {
		if i := slices.IndexFunc(s.panels, func(x domain.Panel) bool { return x.ID == id }); i >= 0 {
			s.panels[i] = clonePanel(p)
		}
	})
	s.record(ctx, gen, owner, tablePanels, id, domain.AuditUpdate, orNil(old, known), p)
	return p, nil
}

// DeletePanel removes the panel along with its users and their reports
func (s *Store) DeletePanel(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}
	old, known := s.Panel(id)

	if err := s.gw.Panels.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_panel", id, err)
	}
	s.apply(gen, func() {
		removed := make(map[string]bool)
		s.users = slices.DeleteFunc(s.users, func(u domain.PanelUser) bool {
			if u.PanelID == id {
				removed[u.ID] = true
				return true
			}
			return false
		})
		s.reports = slices.DeleteFunc(s.reports, func(r domain.CampaignReport) bool {
			return r.PanelID == id || removed[r.AssignedPanelUserID]
		})
		s.panels = slices.DeleteFunc(s.panels, func(p domain.Panel) bool { return p.ID == id })
	})
	s.record(ctx, gen, owner, tablePanels, id, domain.AuditDelete, orNil(old, known), nil)
	return nil
}

// orNil keeps a missing mirror row out of the audit payload
func orNil[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}
