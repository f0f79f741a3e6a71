package domain

import "time"

// BusinessProfile holds the owner's letterhead for invoices. At most one exists per owner.
type BusinessProfile struct {
	ID           string
	UserID       string
	BusinessName *string
	ContactEmail *string
	PhoneNumber  *string
	Address      *string
	Website      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b BusinessProfile) Clone() BusinessProfile {
	b.BusinessName = cloneString(b.BusinessName)
	b.ContactEmail = cloneString(b.ContactEmail)
	b.PhoneNumber = cloneString(b.PhoneNumber)
	b.Address = cloneString(b.Address)
	b.Website = cloneString(b.Website)
	return b
}

// BusinessProfilePatch is used both to create and to update the profile.
type BusinessProfilePatch struct {
	BusinessName *string
	ContactEmail *string
	PhoneNumber  *string
	Address      *string
	Website      *string
}

func (p BusinessProfilePatch) IsEmpty() bool {
	return p == BusinessProfilePatch{}
}

func (p BusinessProfilePatch) Validate() error {
	if err := validateEmail("contact email", p.ContactEmail); err != nil {
		return err
	}
	if p.Website != nil && *p.Website != "" {
		if err := validate.Var(*p.Website, "url"); err != nil {
			return invalid("website %q is not a valid URL", *p.Website)
		}
	}
	return nil
}

func (b BusinessProfile) Apply(p BusinessProfilePatch, at time.Time) BusinessProfile {
	out := b.Clone()
	out.BusinessName = applyOptional(b.BusinessName, p.BusinessName)
	out.ContactEmail = applyOptional(b.ContactEmail, p.ContactEmail)
	out.PhoneNumber = applyOptional(b.PhoneNumber, p.PhoneNumber)
	out.Address = applyOptional(b.Address, p.Address)
	out.Website = applyOptional(b.Website, p.Website)
	out.UpdatedAt = at
	return out
}
