package campaign

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/andy/freelancedesk/internal/domain"
)

func (s *Store) hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// AddCredential stores a third-party panel login. The plain password never leaves this call.
func (s *Store) AddCredential(ctx context.Context, in domain.Panel3CredentialInput) (domain.Panel3Credential, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Panel3Credential{}, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Panel3Credential{}, err
	}
	if in.Password != "" {
		if in.PasswordHash, err = s.hashPassword(in.Password); err != nil {
			return domain.Panel3Credential{}, err
		}
		in.Password = ""
	}

	c, err := s.gw.Credentials.Insert(ctx, owner, in, s.now())
	if err != nil {
		return domain.Panel3Credential{}, s.fail("add_credential", "", err)
	}
	s.apply(gen, func() {
		s.credentials = append(s.credentials, c)
	})
	s.record(ctx, gen, owner, tableCredentials, c.ID, domain.AuditCreate, nil, c)
	return c, nil
}

func (s *Store) UpdateCredential(ctx context.Context, id string, patch domain.Panel3CredentialPatch) (domain.Panel3Credential, error) {
	owner, gen, err := s.owner()
	if err != nil {
		return domain.Panel3Credential{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Panel3Credential{}, err
	}
	if patch.Password != nil {
		h, err := s.hashPassword(*patch.Password)
		if err != nil {
			return domain.Panel3Credential{}, err
		}
		patch.PasswordHash = &h
		patch.Password = nil
	}
	old, known := s.Credential(id)

	c, err := s.gw.Credentials.Update(ctx, id, owner, patch, s.now())
	if err != nil {
		return domain.Panel3Credential{}, s.fail("update_credential", id, err)
	}
	s.apply(gen, func() {
		if i := slices.IndexFunc(s.credentials, func(x domain.Panel3Credential) bool { return x.ID == id }); i >= 0 {
			s.credentials[i] = c
		}
	})
	s.record(ctx, gen, owner, tableCredentials, id, domain.AuditUpdate, orNil(old, known), c)
	return c, nil
}

// DeleteCredential removes the credential; reports that used it keep going without one
func (s *Store) DeleteCredential(ctx context.Context, id string) error {
	owner, gen, err := s.owner()
	if err != nil {
		return err
	}
	old, known := s.Credential(id)

	if err := s.gw.Credentials.Delete(ctx, id, owner); err != nil {
		return s.fail("delete_credential", id, err)
	}
	s.apply(gen, func() {
		for i, r := range s.reports {
			if r.Panel3CredentialID != nil && *r.Panel3CredentialID == id {
				s.reports[i].Panel3CredentialID = nil
			}
		}
		s.credentials = slices.DeleteFunc(s.credentials, func(c domain.Panel3Credential) bool { return c.ID == id })
	})
	s.record(ctx, gen, owner, tableCredentials, id, domain.AuditDelete, orNil(old, known), nil)
	return nil
}

// CheckCredentialPassword reports whether password matches the stored hash
func (s *Store) CheckCredentialPassword(id, password string) bool {
	c, ok := s.Credential(id)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}
