package domain

import (
	"slices"
	"strings"
	"time"
)

type Client struct {
	ID        string
	UserID    string
	Name      string
	Company   *string
	Email     *string
	Phone     *string
	Address   *string
	Tags      []string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no memory with c.
func (c Client) Clone() Client {
	c.Company = cloneString(c.Company)
	c.Email = cloneString(c.Email)
	c.Phone = cloneString(c.Phone)
	c.Address = cloneString(c.Address)
	c.Notes = cloneString(c.Notes)
	c.Tags = slices.Clone(c.Tags)
	return c
}

// HasTag reports whether the client carries tag (case-insensitive).
func (c Client) HasTag(tag string) bool {
	return slices.ContainsFunc(c.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// ClientInput is a new client without identity, owner, or timestamps.
type ClientInput struct {
	Name    string `validate:"required,min=2"`
	Company *string
	Email   *string
	Phone   *string
	Address *string
	Tags    []string
	Notes   *string
}

// Normalize trims text fields and maps blank optionals to absent.
func (in *ClientInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Company = optionalString(in.Company)
	in.Email = optionalString(in.Email)
	in.Phone = optionalString(in.Phone)
	in.Address = optionalString(in.Address)
	in.Notes = optionalString(in.Notes)
	in.Tags = NormalizeTags(in.Tags)
}

// Validate returns an error if the input is invalid
func (in ClientInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	return validateEmail("email", in.Email)
}

// ClientPatch carries a partial update. Nil fields keep their value; a pointer to an empty
// string clears an optional field. Tags, when set, replace the whole set.
type ClientPatch struct {
	Name    *string
	Company *string
	Email   *string
	Phone   *string
	Address *string
	Tags    *[]string
	Notes   *string
}

func (p ClientPatch) IsEmpty() bool {
	return p == ClientPatch{}
}

func (p ClientPatch) Validate() error {
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) < 2 {
		return invalid("client name must be at least 2 characters")
	}
	return validateEmail("email", p.Email)
}

// Apply returns c with the patch merged in.
func (c Client) Apply(p ClientPatch, at time.Time) Client {
	out := c.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	out.Company = applyOptional(c.Company, p.Company)
	out.Email = applyOptional(c.Email, p.Email)
	out.Phone = applyOptional(c.Phone, p.Phone)
	out.Address = applyOptional(c.Address, p.Address)
	out.Notes = applyOptional(c.Notes, p.Notes)
	if p.Tags != nil {
		out.Tags = NormalizeTags(*p.Tags)
	}
	out.UpdatedAt = at
	return out
}
