package store

import (
	"context"
	"slices"

	"github.com/andy/freelancedesk/internal/domain"
)

// Every payment mutation is followed by Reconcile. If the mutation commits but reconciliation
// fails, the committed payment is returned together with an error wrapping domain.ErrReconcile.

// AddPayment records a payment. The client is taken from the project; an explicit client that
// disagrees is rejected.
func (s *Store) AddPayment(ctx context.Context, in domain.PaymentInput) (domain.Payment, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Payment{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Payment{}, err
	}
	project, ok := s.Project(in.ProjectID)
	if !ok {
		return domain.Payment{}, domain.NewValidationError("unknown project %q", in.ProjectID)
	}
	if in.ClientID != "" && in.ClientID != project.ClientID {
		return domain.Payment{}, domain.NewValidationError("payment client %q does not match the project's client", in.ClientID)
	}
	in.ClientID = project.ClientID

	p, err := s.gw.Payments.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.Payment{}, s.fail("add_payment", "", err)
	}

	s.apply(gen, func() {
		s.payments = append(s.payments, p.Clone())
	})
	_, err = s.Reconcile(ctx)
	return p, err
}

// UpdatePayment applies patch. Moving the payment to another project moves it to that
// project's client.
func (s *Store) UpdatePayment(ctx context.Context, id string, patch domain.PaymentPatch) (domain.Payment, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Payment{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Payment{}, err
	}
	current, ok := s.Payment(id)
	if !ok {
		return domain.Payment{}, domain.NewPersistenceError("update", "payments", domain.ErrNotFound)
	}

	projectID := current.ProjectID
	if patch.ProjectID != nil {
		projectID = *patch.ProjectID
	}
	project, ok := s.Project(projectID)
	if !ok {
		return domain.Payment{}, domain.NewValidationError("unknown project %q", projectID)
	}
	if patch.ClientID != nil && *patch.ClientID != project.ClientID {
		return domain.Payment{}, domain.NewValidationError("payment client %q does not match the project's client", *patch.ClientID)
	}
	if patch.ProjectID != nil {
		patch.ClientID = &project.ClientID
	}

	p, err := s.gw.Payments.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.Payment{}, s.fail("update_payment", id, err)
	}

	s.apply(gen, func() {
		if i := indexOf(s.payments, id, paymentID); i >= 0 {
			s.payments[i] = p.Clone()
		}
	})
	_, err = s.Reconcile(ctx)
	return p, err
}

// DeletePayment removes a payment. A completed project stays completed.
func (s *Store) DeletePayment(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.gw.Payments.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_payment", id, err)
	}

	s.apply(gen, func() {
		s.payments = slices.DeleteFunc(s.payments, func(p domain.Payment) bool {
			return p.ID == id
		})
	})
	_, err = s.Reconcile(ctx)
	return err
}
