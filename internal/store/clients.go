package store

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

// AddClient creates a client for the bound owner
func (s *Store) AddClient(ctx context.Context, in domain.ClientInput) (domain.Client, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Client{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Client{}, err
	}

	c, err := s.gw.Clients.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.Client{}, s.fail("add_client", "", err)
	}

	s.apply(gen, func() {
		s.clients = append(s.clients, c.Clone())
	})
	return c, nil
}

// UpdateClient applies patch and mirrors the row the gateway returns
func (s *Store) UpdateClient(ctx context.Context, id string, patch domain.ClientPatch) (domain.Client, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Client{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Client{}, err
	}

	c, err := s.gw.Clients.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.Client{}, s.fail("update_client", id, err)
	}

	s.apply(gen, func() {
		if i := indexOf(s.clients, id, clientID); i >= 0 {
			s.clients[i] = c.Clone()
		}
	})
	return c, nil
}

// DeleteClient removes the client together with its projects and payments
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.gw.Clients.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_client", id, err)
	}

	s.apply(gen, func() {
		removed := make(map[string]bool)
		s.projects = slices.DeleteFunc(s.projects, func(p domain.Project) bool {
			if p.ClientID == id {
				removed[p.ID] = true
				return true
			}
			return false
		})
		s.payments = slices.DeleteFunc(s.payments, func(p domain.Payment) bool {
			return p.ClientID == id || removed[p.ProjectID]
		})
		s.clients = slices.DeleteFunc(s.clients, func(c domain.Client) bool {
			return c.ID == id
		})
	})
	return nil
}
