package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money received against a project. ClientID is denormalized and always equals the
// project's client.
type Payment struct {
	ID            string
	UserID        string
	ProjectID     string
	ClientID      string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod *string
	ReferenceID   *string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Payment) Clone() Payment {
	p.PaymentMethod = cloneString(p.PaymentMethod)
	p.ReferenceID = cloneString(p.ReferenceID)
	p.Notes = cloneString(p.Notes)
	return p
}

// PaymentInput is a new payment. ClientID may be left empty; the store derives it from the
// project.
type PaymentInput struct {
	ProjectID     string `validate:"required"`
	ClientID      string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod *string
	ReferenceID   *string
	Notes         *string
}

func (in *PaymentInput) Normalize() {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.PaymentDate = Date(in.PaymentDate)
	in.PaymentMethod = optionalString(in.PaymentMethod)
	in.ReferenceID = optionalString(in.ReferenceID)
	in.Notes = optionalString(in.Notes)
}

// Validate returns an error if the input is invalid
func (in PaymentInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return invalid("amount must be a positive number")
	}
	if in.PaymentDate.IsZero() {
		return invalid("payment date is required")
	}
	return nil
}

// PaymentPatch is a partial payment update. ClientID is not patchable directly; it follows
// ProjectID.
type PaymentPatch struct {
	ProjectID     *string
	ClientID      *string
	Amount        *decimal.Decimal
	PaymentDate   *time.Time
	PaymentMethod *string
	ReferenceID   *string
	Notes         *string
}

func (p PaymentPatch) IsEmpty() bool {
	return p == PaymentPatch{}
}

func (p PaymentPatch) Validate() error {
	if p.ProjectID != nil && strings.TrimSpace(*p.ProjectID) == "" {
		return invalid("project is required")
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return invalid("amount must be a positive number")
	}
	if p.PaymentDate != nil && p.PaymentDate.IsZero() {
		return invalid("payment date is required")
	}
	return nil
}

// Apply returns p with the patch merged in.
func (p Payment) Apply(patch PaymentPatch, at time.Time) Payment {
	out := p.Clone()
	if patch.ProjectID != nil {
		out.ProjectID = strings.TrimSpace(*patch.ProjectID)
	}
	if patch.ClientID != nil {
		out.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if patch.Amount != nil {
		out.Amount = *patch.Amount
	}
	if patch.PaymentDate != nil {
		out.PaymentDate = Date(*patch.PaymentDate)
	}
	out.PaymentMethod = applyOptional(p.PaymentMethod, patch.PaymentMethod)
	out.ReferenceID = applyOptional(p.ReferenceID, patch.ReferenceID)
	out.Notes = applyOptional(p.Notes, patch.Notes)
	out.UpdatedAt = at
	return out
}
