package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusProposal  ProjectStatus = "proposal"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every status in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusProposal,
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusProposal, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Next cycles through the statuses; used by the TUI for manual edits.
func (s ProjectStatus) Next() ProjectStatus {
	for i, st := range ProjectStatuses {
		if st == s {
			return ProjectStatuses[(i+1)%len(ProjectStatuses)]
		}
	}
	return ProjectStatusActive
}

type Project struct {
	ID          string
	UserID      string
	ClientID    string
	Title       string
	Description *string
	Notes       *string
	TotalAmount decimal.Decimal
	StartDate   time.Time
	DueDate     time.Time
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Project) Clone() Project {
	p.Description = cloneString(p.Description)
	p.Notes = cloneString(p.Notes)
	return p
}

func (p Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}

// ProjectWithCalculations is a project plus its derived amounts. Never persisted.
type ProjectWithCalculations struct {
	Project
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
}

// ProjectInput is a new project. Status defaults to active.
type ProjectInput struct {
	ClientID    string `validate:"required"`
	Title       string `validate:"required,min=2"`
	Description *string
	Notes       *string
	TotalAmount decimal.Decimal
	StartDate   time.Time
	DueDate     time.Time
	Status      ProjectStatus
}

func (in *ProjectInput) Normalize() {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = optionalString(in.Description)
	in.Notes = optionalString(in.Notes)
	in.StartDate = Date(in.StartDate)
	in.DueDate = Date(in.DueDate)
	if in.Status == "" {
		in.Status = ProjectStatusActive
	}
}

// Validate returns an error if the input is invalid
func (in ProjectInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if !in.TotalAmount.IsPositive() {
		return invalid("total amount must be a positive number")
	}
	if in.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if in.DueDate.IsZero() {
		return invalid("due date is required")
	}
	if !in.Status.Valid() {
		return invalid("unknown project status %q", in.Status)
	}
	return nil
}

type ProjectPatch struct {
	ClientID    *string
	Title       *string
	Description *string
	Notes       *string
	TotalAmount *decimal.Decimal
	StartDate   *time.Time
	DueDate     *time.Time
	Status      *ProjectStatus
}

func (p ProjectPatch) IsEmpty() bool {
	return p == ProjectPatch{}
}

func (p ProjectPatch) Validate() error {
	if p.ClientID != nil && strings.TrimSpace(*p.ClientID) == "" {
		return invalid("client is required")
	}
	if p.Title != nil && len(strings.TrimSpace(*p.Title)) < 2 {
		return invalid("project title must be at least 2 characters")
	}
	if p.TotalAmount != nil && !p.TotalAmount.IsPositive() {
		return invalid("total amount must be a positive number")
	}
	if p.StartDate != nil && p.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return invalid("due date is required")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown project status %q", *p.Status)
	}
	return nil
}

// Apply returns p with the patch merged in.
func (p Project) Apply(patch ProjectPatch, at time.Time) Project {
	out := p.Clone()
	if patch.ClientID != nil {
		out.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if patch.Title != nil {
		out.Title = strings.TrimSpace(*patch.Title)
	}
	out.Description = applyOptional(p.Description, patch.Description)
	out.Notes = applyOptional(p.Notes, patch.Notes)
	if patch.TotalAmount != nil {
		out.TotalAmount = *patch.TotalAmount
	}
	if patch.StartDate != nil {
		out.StartDate = Date(*patch.StartDate)
	}
	if patch.DueDate != nil {
		out.DueDate = Date(*patch.DueDate)
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	out.UpdatedAt = at
	return out
}
