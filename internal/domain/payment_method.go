package domain

import (
	"strings"
	"time"
)

type PaymentMethod struct {
	ID        string
	UserID    string
	Name      string
	Details   *string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m PaymentMethod) Clone() PaymentMethod {
	m.Details = cloneString(m.Details)
	return m
}

type PaymentMethodInput struct {
	Name      string `validate:"required,min=2"`
	Details   *string
	IsDefault bool
}

func (in *PaymentMethodInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Details = optionalString(in.Details)
}

// Validate returns an error if the input is invalid
func (in PaymentMethodInput) Validate() error {
	return validateStruct(in)
}

type PaymentMethodPatch struct {
	Name      *string
	Details   *string
	IsDefault *bool
}

func (p PaymentMethodPatch) IsEmpty() bool {
	return p == PaymentMethodPatch{}
}

func (p PaymentMethodPatch) Validate() error {
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) < 2 {
		return invalid("payment method name must be at least 2 characters")
	}
	return nil
}

func (m PaymentMethod) Apply(p PaymentMethodPatch, at time.Time) PaymentMethod {
	out := m.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	out.Details = applyOptional(m.Details, p.Details)
	if p.IsDefault != nil {
		out.IsDefault = *p.IsDefault
	}
	out.UpdatedAt = at
	return out
}
