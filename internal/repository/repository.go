package repository

import (
	"context"
	"time"

	"github.com/andy/freelancedesk/internal/domain"
)

// Every gateway scopes its statements to the owner passed in. Update and Delete on a row the
// owner does not have fail with domain.ErrNotFound; all failures are *domain.PersistenceError.

// ClientGateway manages client persistence
type ClientGateway interface {
	List(ctx context.Context, owner string) ([]domain.Client, error)
	Insert(ctx context.Context, owner string, in domain.ClientInput, at time.Time) (domain.Client, error)
	Update(ctx context.Context, id, owner string, patch domain.ClientPatch, at time.Time) (domain.Client, error)
	// Delete removes the client with its projects and payments in one transaction
	Delete(ctx context.Context, id, owner string) error
}

// ProjectGateway manages project persistence
type ProjectGateway interface {
	List(ctx context.Context, owner string) ([]domain.Project, error)
	Insert(ctx context.Context, owner string, in domain.ProjectInput, at time.Time) (domain.Project, error)
	// Update re-points the project's payments when the client changes
	Update(ctx context.Context, id, owner string, patch domain.ProjectPatch, at time.Time) (domain.Project, error)
	// Delete removes the project and its payments in one transaction
	Delete(ctx context.Context, id, owner string) error
}

// PaymentGateway manages payment persistence
type PaymentGateway interface {
	List(ctx context.Context, owner string) ([]domain.Payment, error)
	Insert(ctx context.Context, owner string, in domain.PaymentInput, at time.Time) (domain.Payment, error)
	Update(ctx context.Context, id, owner string, patch domain.PaymentPatch, at time.Time) (domain.Payment, error)
	Delete(ctx context.Context, id, owner string) error
}

// PaymentMethodGateway manages payment method persistence
type PaymentMethodGateway interface {
	List(ctx context.Context, owner string) ([]domain.PaymentMethod, error)
	Insert(ctx context.Context, owner string, in domain.PaymentMethodInput, at time.Time) (domain.PaymentMethod, error)
	Update(ctx context.Context, id, owner string, patch domain.PaymentMethodPatch, at time.Time) (domain.PaymentMethod, error)
	Delete(ctx context.Context, id, owner string) error
}

// BusinessProfileGateway manages the single business profile per owner
type BusinessProfileGateway interface {
	Get(ctx context.Context, owner string) (*domain.BusinessProfile, error) // Returns nil if absent
	Insert(ctx context.Context, owner string, in domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error)
	Update(ctx context.Context, id, owner string, patch domain.BusinessProfilePatch, at time.Time) (domain.BusinessProfile, error)
}

// Gateways bundles the tables backing the entity store.
type Gateways struct {
	Clients         ClientGateway
	Projects        ProjectGateway
	Payments        PaymentGateway
	PaymentMethods  PaymentMethodGateway
	BusinessProfile BusinessProfileGateway
}

type PanelGateway interface {
	List(ctx context.Context, owner string) ([]domain.Panel, error)
	Insert(ctx context.Context, owner string, in domain.PanelInput, at time.Time) (domain.Panel, error)
	Update(ctx context.Context, id, owner string, patch domain.PanelPatch, at time.Time) (domain.Panel, error)
	Delete(ctx context.Context, id, owner string) error
}

type PanelUserGateway interface {
	List(ctx context.Context, owner string) ([]domain.PanelUser, error)
	Insert(ctx context.Context, owner string, in domain.PanelUserInput, at time.Time) (domain.PanelUser, error)
	Update(ctx context.Context, id, owner string, patch domain.PanelUserPatch, at time.Time) (domain.PanelUser, error)
	Delete(ctx context.Context, id, owner string) error
}

type CredentialGateway interface {
	List(ctx context.Context, owner string) ([]domain.Panel3Credential, error)
	Insert(ctx context.Context, owner string, in domain.Panel3CredentialInput, at time.Time) (domain.Panel3Credential, error)
	Update(ctx context.Context, id, owner string, patch domain.Panel3CredentialPatch, at time.Time) (domain.Panel3Credential, error)
	Delete(ctx context.Context, id, owner string) error
}

type CampaignReportGateway interface {
	List(ctx context.Context, owner string) ([]domain.CampaignReport, error)
	Insert(ctx context.Context, owner string, in domain.CampaignReportInput, at time.Time) (domain.CampaignReport, error)
	Update(ctx context.Context, id, owner string, patch domain.CampaignReportPatch, at time.Time) (domain.CampaignReport, error)
	Delete(ctx context.Context, id, owner string) error
}

// AuditLogGateway appends and reads campaign audit entries
type AuditLogGateway interface {
	Insert(ctx context.Context, entry domain.AuditLog) (domain.AuditLog, error)
	ListRecent(ctx context.Context, user string, limit int) ([]domain.AuditLog, error)
}

// CampaignGateways bundles the campaign panel tables.
type CampaignGateways struct {
	Panels      PanelGateway
	PanelUsers  PanelUserGateway
	Credentials CredentialGateway
	Reports     CampaignReportGateway
	Audit       AuditLogGateway
}

// ProfileRepository manages phone-login profiles
type ProfileRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Profile, error) // Returns nil if absent
	Create(ctx context.Context, phone, email string, at time.Time) (domain.Profile, error)
}

// OTPRepository stores one pending code per phone number
type OTPRepository interface {
	Upsert(ctx context.Context, otp domain.OTP) error
	Get(ctx context.Context, phone string) (*domain.OTP, error) // Returns nil if absent
	Delete(ctx context.Context, phone string) error
}
