package store

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

// AddProject creates a project under one of the owner's clients. Status defaults to active.
func (s *Store) AddProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Project{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Project{}, err
	}
	if _, ok := s.Client(in.ClientID); !ok {
		return domain.Project{}, domain.NewValidationError("unknown client %q", in.ClientID)
	}

	p, err := s.gw.Projects.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.Project{}, s.fail("add_project", "", err)
	}

	s.apply(gen, func() {
		s.projects = append(s.projects, p.Clone())
	})
	return p, nil
}

// UpdateProject applies patch. Any status may be set by hand. Moving the project to another
// client moves its payments too. It never triggers reconciliation.
func (s *Store) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Project{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Project{}, err
	}
	if patch.ClientID != nil {
		if _, ok := s.Client(*patch.ClientID); !ok {
			return domain.Project{}, domain.NewValidationError("unknown client %q", *patch.ClientID)
		}
	}

	p, err := s.gw.Projects.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.Project{}, s.fail("update_project", id, err)
	}

	s.apply(gen, func() {
		if i := indexOf(s.projects, id, projectID); i >= 0 {
			s.projects[i] = p.Clone()
		}
		for i := range s.payments {
			if s.payments[i].ProjectID == id {
				s.payments[i].ClientID = p.ClientID
			}
		}
	})
	return p, nil
}

// DeleteProject removes the project and its payments
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.gw.Projects.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_project", id, err)
	}

	s.apply(gen, func() {
		s.payments = slices.DeleteFunc(s.payments, func(p domain.Payment) bool {
			return p.ProjectID == id
		})
		s.projects = slices.DeleteFunc(s.projects, func(p domain.Project) bool {
			return p.ID == id
		})
	})
	return nil
}
