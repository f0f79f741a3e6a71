package domain

import (
	"strings"
	"time"
)

// Campaign entities are owned by AdminUserID. JSON tags shape the audit log payloads.

type Panel struct {
	ID                        string    `json:"id"`
	AdminUserID               string    `json:"admin_user_id"`
	Name                      string    `json:"name"`
	Description               *string   `json:"description,omitempty"`
	RequiresPanel3Credentials bool      `json:"requires_panel3_credentials"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

type PanelInput struct {
	Name                      string `validate:"required,min=2"`
	Description               *string
	RequiresPanel3Credentials bool
}

func (in *PanelInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = optionalString(in.Description)
}

func (in PanelInput) Validate() error {
	return validateStruct(in)
}

type PanelPatch struct {
	Name                      *string
	Description               *string
	RequiresPanel3Credentials *bool
}

func (p PanelPatch) Validate() error {
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) < 2 {
		return invalid("panel name must be at least 2 characters")
	}
	return nil
}

func (pn Panel) Apply(p PanelPatch, at time.Time) Panel {
	out := pn
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	out.Description = applyOptional(pn.Description, p.Description)
	if p.RequiresPanel3Credentials != nil {
		out.RequiresPanel3Credentials = *p.RequiresPanel3Credentials
	}
	out.UpdatedAt = at
	return out
}

type PanelUser struct {
	ID          string    `json:"id"`
	AdminUserID string    `json:"admin_user_id"`
	PanelID     string    `json:"panel_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PanelUserInput struct {
	PanelID  string `validate:"required"`
	Username string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	IsActive bool
}

func (in *PanelUserInput) Normalize() {
	in.PanelID = strings.TrimSpace(in.PanelID)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in PanelUserInput) Validate() error {
	return validateStruct(in)
}

type PanelUserPatch struct {
	PanelID  *string
	Username *string
	Email    *string
	IsActive *bool
}

func (p PanelUserPatch) Validate() error {
	if p.PanelID != nil && strings.TrimSpace(*p.PanelID) == "" {
		return invalid("panel is required")
	}
	if p.Username != nil && len(strings.TrimSpace(*p.Username)) < 2 {
		return invalid("username must be at least 2 characters")
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		return invalid("email is required")
	}
	return validateEmail("email", p.Email)
}

func (u PanelUser) Apply(p PanelUserPatch, at time.Time) PanelUser {
	out := u
	if p.PanelID != nil {
		out.PanelID = strings.TrimSpace(*p.PanelID)
	}
	if p.Username != nil {
		out.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		out.Email = strings.TrimSpace(*p.Email)
	}
	if p.IsActive != nil {
		out.IsActive = *p.IsActive
	}
	out.UpdatedAt = at
	return out
}

// Panel3Credential is a third-party panel login. The secret is only ever held as a bcrypt hash.
type Panel3Credential struct {
	ID           string    `json:"id"`
	AdminUserID  string    `json:"admin_user_id"`
	LoginID      string    `json:"panel3_login_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Panel3CredentialInput carries the plain Password from the caller. The campaign store replaces
// it with PasswordHash before the gateway sees it; gateways persist PasswordHash only.
type Panel3CredentialInput struct {
	LoginID      string `validate:"required"`
	Password     string
	PasswordHash string
}

func (in *Panel3CredentialInput) Normalize() {
	in.LoginID = strings.TrimSpace(in.LoginID)
}

func (in Panel3CredentialInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Password == "" && in.PasswordHash == "" {
		return invalid("password is required")
	}
	return nil
}

type Panel3CredentialPatch struct {
	LoginID      *string
	Password     *string
	PasswordHash *string
}

func (p Panel3CredentialPatch) Validate() error {
	if p.LoginID != nil && strings.TrimSpace(*p.LoginID) == "" {
		return invalid("login id is required")
	}
	if p.Password != nil && *p.Password == "" {
		return invalid("password is required")
	}
	return nil
}

func (c Panel3Credential) Apply(p Panel3CredentialPatch, at time.Time) Panel3Credential {
	out := c
	if p.LoginID != nil {
		out.LoginID = strings.TrimSpace(*p.LoginID)
	}
	if p.PasswordHash != nil {
		out.PasswordHash = *p.PasswordHash
	}
	out.UpdatedAt = at
	return out
}

type CampaignStatus string

const (
	CampaignStatusPending      CampaignStatus = "pending"
	CampaignStatusInProgress   CampaignStatus = "in-progress"
	CampaignStatusVerification CampaignStatus = "verification"
	CampaignStatusCompleted    CampaignStatus = "completed"
	CampaignStatusCancelled    CampaignStatus = "cancelled"
)

var CampaignStatuses = []CampaignStatus{
	CampaignStatusPending,
	CampaignStatusInProgress,
	CampaignStatusVerification,
	CampaignStatusCompleted,
	CampaignStatusCancelled,
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusPending, CampaignStatusInProgress, CampaignStatusVerification,
		CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	}
	return false
}

// Next follows the workflow order, wrapping from cancelled back to pending.
func (s CampaignStatus) Next() CampaignStatus {
	for i, st := range CampaignStatuses {
		if st == s {
			return CampaignStatuses[(i+1)%len(CampaignStatuses)]
		}
	}
	return CampaignStatusPending
}

type CampaignReport struct {
	ID                  string         `json:"id"`
	AdminUserID         string         `json:"admin_user_id"`
	CampaignIDExternal  string         `json:"campaign_id_external"`
	CampaignName        string         `json:"campaign_name"`
	PanelID             string         `json:"panel_id"`
	AssignedPanelUserID string         `json:"assigned_panel_user_id"`
	Panel3CredentialID  *string        `json:"panel3_credential_id,omitempty"`
	Status              CampaignStatus `json:"status"`
	Remarks             *string        `json:"remarks,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// CampaignReportInput has no status: new reports always start pending.
type CampaignReportInput struct {
	CampaignIDExternal  string `validate:"required"`
	CampaignName        string `validate:"required,min=2"`
	PanelID             string `validate:"required"`
	AssignedPanelUserID string `validate:"required"`
	Panel3CredentialID  *string
	Remarks             *string
}

func (in *CampaignReportInput) Normalize() {
	in.CampaignIDExternal = strings.TrimSpace(in.CampaignIDExternal)
	in.CampaignName = strings.TrimSpace(in.CampaignName)
	in.PanelID = strings.TrimSpace(in.PanelID)
	in.AssignedPanelUserID = strings.TrimSpace(in.AssignedPanelUserID)
	in.Panel3CredentialID = optionalString(in.Panel3CredentialID)
	in.Remarks = optionalString(in.Remarks)
}

func (in CampaignReportInput) Validate() error {
	return validateStruct(in)
}

type CampaignReportPatch struct {
	CampaignIDExternal  *string
	CampaignName        *string
	PanelID             *string
	AssignedPanelUserID *string
	Panel3CredentialID  *string
	Status              *CampaignStatus
	Remarks             *string
}

func (p CampaignReportPatch) Validate() error {
	for name, v := range map[string]*string{
		"campaign id": p.CampaignIDExternal,
		"panel":       p.PanelID,
		"panel user":  p.AssignedPanelUserID,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return invalid("%s is required", name)
		}
	}
	if p.CampaignName != nil && len(strings.TrimSpace(*p.CampaignName)) < 2 {
		return invalid("campaign name must be at least 2 characters")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown campaign status %q", *p.Status)
	}
	return nil
}

func (r CampaignReport) Apply(p CampaignReportPatch, at time.Time) CampaignReport {
	out := r
	if p.CampaignIDExternal != nil {
		out.CampaignIDExternal = strings.TrimSpace(*p.CampaignIDExternal)
	}
	if p.CampaignName != nil {
		out.CampaignName = strings.TrimSpace(*p.CampaignName)
	}
	if p.PanelID != nil {
		out.PanelID = strings.TrimSpace(*p.PanelID)
	}
	if p.AssignedPanelUserID != nil {
		out.AssignedPanelUserID = strings.TrimSpace(*p.AssignedPanelUserID)
	}
	out.Panel3CredentialID = applyOptional(r.Panel3CredentialID, p.Panel3CredentialID)
	if p.Status != nil {
		out.Status = *p.Status
	}
	out.Remarks = applyOptional(r.Remarks, p.Remarks)
	out.UpdatedAt = at
	return out
}

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog records one campaign mutation. OldValue and NewValue hold JSON documents.
type AuditLog struct {
	ID        string
	UserID    *string
	RecordID  string
	TableName string
	Action    AuditAction
	OldValue  *string
	NewValue  *string
	Timestamp time.Time
}
