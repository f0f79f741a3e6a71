package campaign

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

func (s *Store) AddPanelUser(ctx context.Context, in domain.PanelUserInput) (domain.PanelUser, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.PanelUser{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.PanelUser{}, err
	}
	if _, ok := s.Panel(in.PanelID); !ok {
		return domain.PanelUser{}, domain.NewValidationError("unknown panel %q", in.PanelID)
	}

	u, err := s.gw.PanelUsers.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.PanelUser{}, s.fail("add_panel_user", "", err)
	}
	s.apply(gen, func() {
		s.users = append(s.users, u)
	})
	s.record(ctx, gen, owner, tablePanelUsers, u.ID, domain.AuditCreate, nil, u)
	return u, nil
}

func (s *Store) UpdatePanelUser(ctx context.Context, id string, patch domain.PanelUserPatch) (domain.PanelUser, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.PanelUser{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.PanelUser{}, err
	}
	if patch.PanelID != nil {
		if _, ok := s.Panel(*patch.PanelID); !ok {
			return domain.PanelUser{}, domain.NewValidationError("unknown panel %q", *patch.PanelID)
		}
	}
	old, known := s.PanelUser(id)

	u, err := s.gw.PanelUsers.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.PanelUser{}, s.fail("update_panel_user", id, err)
	}
	s.apply(gen, func() {
		if i := slices.IndexFunc(s.users, func(x domain.PanelUser) bool { return x.ID == id }); i >= 0 {
			s.users[i] = u
		}
	})
	s.record(ctx, gen, owner, tablePanelUsers, id, domain.AuditUpdate, orNil(old, known), u)
	return u, nil
}

// DeletePanelUser removes the user and the reports assigned to them
func (s *Store) DeletePanelUser(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}
	old, known := s.PanelUser(id)

	if err := s.gw.PanelUsers.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_panel_user", id, err)
	}
	s.apply(gen, func() {
		s.reports = slices.DeleteFunc(s.reports, func(r domain.CampaignReport) bool {
			return r.AssignedPanelUserID == id
		})
		s.users = slices.DeleteFunc(s.users, func(u domain.PanelUser) bool { return u.ID == id })
	})
	s.record(ctx, gen, owner, tablePanelUsers, id, domain.AuditDelete, orNil(old, known), nil)
	return nil
}
