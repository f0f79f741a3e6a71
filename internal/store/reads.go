package store

import (
	"github.com/andy/freelancedesk/internal/domain"
)

// Reads return copies; callers may keep or modify them freely.

func (s *Store) Clients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.clients, domain.Client.Clone)
}

func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.projects, domain.Project.Clone)
}

func (s *Store) Payments() []domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.payments, domain.Payment.Clone)
}

func (s *Store) PaymentMethods() []domain.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.methods, domain.PaymentMethod.Clone)
}

// BusinessProfile returns nil when none has been saved
func (s *Store) BusinessProfile() *domain.BusinessProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	b := s.profile.Clone()
	return &b
}

// Snapshot copies all collections at once, consistent with each other.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{
		Clients:        cloneAll(s.clients, domain.Client.Clone),
		Projects:       cloneAll(s.projects, domain.Project.Clone),
		Payments:       cloneAll(s.payments, domain.Payment.Clone),
		PaymentMethods: cloneAll(s.methods, domain.PaymentMethod.Clone),
	}
	if s.profile != nil {
		b := s.profile.Clone()
		snap.BusinessProfile = &b
	}
	return snap
}

func (s *Store) Client(id string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.clients, id, clientID); i >= 0 {
		return s.clients[i].Clone(), true
	}
	return domain.Client{}, false
}

func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.projects, id, projectID); i >= 0 {
		return s.projects[i].Clone(), true
	}
	return domain.Project{}, false
}

func (s *Store) Payment(id string) (domain.Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.payments, id, paymentID); i >= 0 {
		return s.payments[i].Clone(), true
	}
	return domain.Payment{}, false
}

func (s *Store) ProjectsForClient(clientID string) []domain.Project {
	return s.Snapshot().ProjectsForClient(clientID)
}

func (s *Store) PaymentsForProject(projectID string) []domain.Payment {
	return s.Snapshot().PaymentsForProject(projectID)
}

func (s *Store) PaymentsForClient(clientID string) []domain.Payment {
	return s.Snapshot().PaymentsForClient(clientID)
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

func indexOf[T any](in []T, id string, key func(T) string) int {
	for i, v := range in {
		if key(v) == id {
			return i
		}
	}
	return -1
}

func clientID(c domain.Client) string               { return c.ID }
func projectID(p domain.Project) string             { return p.ID }
func paymentID(p domain.Payment) string             { return p.ID }
func paymentMethodID(m domain.PaymentMethod) string { return m.ID }
