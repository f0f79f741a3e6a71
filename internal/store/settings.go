package store

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/andy/freelancedesk/internal/domain"
)

func (s *Store) AddPaymentMethod(ctx context.Context, in domain.PaymentMethodInput) (domain.PaymentMethod, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.PaymentMethod{}, err
	}

	m, err := s.gw.PaymentMethods.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.PaymentMethod{}, s.fail("add_payment_method", "", err)
	}

	s.apply(gen, func() {
		s.methods = append(s.methods, m.Clone())
	})
	return m, nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, id string, patch domain.PaymentMethodPatch) (domain.PaymentMethod, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.PaymentMethod{}, err
	}

	m, err := s.gw.PaymentMethods.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.PaymentMethod{}, s.fail("update_payment_method", id, err)
	}

	s.apply(gen, func() {
		if i := indexOf(s.methods, id, paymentMethodID); i >= 0 {
			s.methods[i] = m.Clone()
		}
	})
	return m, nil
}

func (s *Store) DeletePaymentMethod(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.gw.PaymentMethods.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_payment_method", id, err)
	}

	s.apply(gen, func() {
		s.methods = slices.DeleteFunc(s.methods, func(m domain.PaymentMethod) bool {
			return m.ID == id
		})
	})
	return nil
}

// SetDefaultPaymentMethod clears the flag on every other default method one update at a
// time, then sets it on id. This is not atomic: a failed clear is logged and skipped, so two
// defaults can coexist.
func (s *Store) SetDefaultPaymentMethod(ctx context.Context, id string) (domain.PaymentMethod, error) {
	if _, _, err := s.owner(); err != nil {
		return domain.PaymentMethod{}, err
	}

	off, on := false, true
	for _, m := range s.PaymentMethods() {
		if m.ID == id || !m.IsDefault {
			continue
		}
		if _, err := s.UpdatePaymentMethod(ctx, m.ID, domain.PaymentMethodPatch{IsDefault: &off}); err != nil {
			s.log.WithFields(logrus.Fields{"op": "set_default_payment_method", "id": m.ID}).
				WithError(err).Warn("failed to clear previous default")
		}
	}
	return s.UpdatePaymentMethod(ctx, id, domain.PaymentMethodPatch{IsDefault: &on})
}

// SaveBusinessProfile creates the owner's profile on first save and updates it afterwards
func (s *Store) SaveBusinessProfile(ctx context.Context, patch domain.BusinessProfilePatch) (domain.BusinessProfile, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.BusinessProfile{}, err
	}

	var b domain.BusinessProfile
	if existing := s.BusinessProfile(); existing != nil {
		b, err = s.gw.BusinessProfile.Update(ctx, existing.ID, owner, patch, s.now())
	} else {
		b, err = s.gw.BusinessProfile.Insert(ctx, owner, patch, s.now())
	}
	if err != nil {
		return domain.BusinessProfile{}, s.fail("save_business_profile", "", err)
	}

	s.apply(gen, func() {
		cp := b.Clone()
		s.profile = &cp
	})
	return b, nil
}
