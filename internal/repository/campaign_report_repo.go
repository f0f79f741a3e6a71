package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

const campaignReportColumns = `id, admin_user_id, campaign_id_external, campaign_name, panel_id, assigned_panel_user_id, panel3_credential_id, status, remarks, created_at, updated_at`

// CampaignReportRepo is a SQLite implementation of CampaignReportGateway
type CampaignReportRepo struct {
	db *db.DB
}

func NewCampaignReportRepo(database *db.DB) *CampaignReportRepo {
	return &CampaignReportRepo{db: database}
}

func scanCampaignReport(row rowScanner) (domain.CampaignReport, error) {
	var c domain.CampaignReport
	var credentialID, remarks sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.AdminUserID, &c.CampaignIDExternal, &c.CampaignName, &c.PanelID,
		&c.AssignedPanelUserID, &credentialID, &status, &remarks, &createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	c.Panel3CredentialID = stringPtr(credentialID)
	c.Remarks = stringPtr(remarks)
	c.Status = domain.CampaignStatus(status)
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return c, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return c, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}

func (r *CampaignReportRepo) List(ctx context.Context, owner string) ([]domain.CampaignReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+campaignReportColumns+` FROM campaign_reports WHERE admin_user_id = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, persistenceError("list", "campaign_reports", fmt.Errorf("failed to list campaign reports: %w", err))
	}
	defer rows.Close()

	reports := make([]domain.CampaignReport, 0)
	for rows.Next() {
		c, err := scanCampaignReport(rows)
		if err != nil {
			return nil, persistenceError("list", "campaign_reports", fmt.Errorf("failed to scan campaign report: %w", err))
		}
		reports = append(reports, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "campaign_reports", fmt.Errorf("error iterating campaign reports: %w", err))
	}
	return reports, nil
}

// Insert creates a report in pending status
func (r *CampaignReportRepo) Insert(ctx context.Context, owner string, in domain.CampaignReportInput, at time.Time) (domain.CampaignReport, error) {
	c := domain.CampaignReport{
		ID:                  uuid.NewString(),
		AdminUserID:         owner,
		CampaignIDExternal:  in.CampaignIDExternal,
		CampaignName:        in.CampaignName,
		PanelID:             in.PanelID,
		AssignedPanelUserID: in.AssignedPanelUserID,
		Panel3CredentialID:  in.Panel3CredentialID,
		Status:              domain.CampaignStatusPending,
		Remarks:             in.Remarks,
		CreatedAt:           at,
		UpdatedAt:           at,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_reports (`+campaignReportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, owner, c.CampaignIDExternal, c.CampaignName, c.PanelID, c.AssignedPanelUserID,
		nullString(c.Panel3CredentialID), string(c.Status), nullString(c.Remarks),
		formatTime(at), formatTime(at))
	if err != nil {
		return domain.CampaignReport{}, persistenceError("insert", "campaign_reports", fmt.Errorf("failed to create campaign report: %w", err))
	}
	return c, nil
}

func (r *CampaignReportRepo) Update(ctx context.Context, id, owner string, patch domain.CampaignReportPatch, at time.Time) (domain.CampaignReport, error) {
	var s setList
	if patch.CampaignIDExternal != nil {
		s.set("campaign_id_external", *patch.CampaignIDExternal)
	}
	if patch.CampaignName != nil {
		s.set("campaign_name", *patch.CampaignName)
	}
	if patch.PanelID != nil {
		s.set("panel_id", *patch.PanelID)
	}
	if patch.AssignedPanelUserID != nil {
		s.set("assigned_panel_user_id", *patch.AssignedPanelUserID)
	}
	s.optional("panel3_credential_id", patch.Panel3CredentialID)
	if patch.Status != nil {
		s.set("status", string(*patch.Status))
	}
	s.optional("remarks", patch.Remarks)
	s.set("updated_at", formatTime(at))

	result, err := r.db.ExecContext(ctx,
		`UPDATE campaign_reports SET `+s.clause()+` WHERE id = ? AND admin_user_id = ?`, append(s.args, id, owner)...)
	if err != nil {
		return domain.CampaignReport{}, persistenceError("update", "campaign_reports", fmt.Errorf("failed to update campaign report: %w", err))
	}
	if err := checkAffected(result, "campaign report "+id); err != nil {
		return domain.CampaignReport{}, persistenceError("update", "campaign_reports", err)
	}

	c, err := scanCampaignReport(r.db.QueryRowContext(ctx,
		`SELECT `+campaignReportColumns+` FROM campaign_reports WHERE id = ? AND admin_user_id = ?`, id, owner))
	if err != nil {
		return domain.CampaignReport{}, persistenceError("update", "campaign_reports", fmt.Errorf("failed to get campaign report: %w", err))
	}
	return c, nil
}

func (r *CampaignReportRepo) Delete(ctx context.Context, id, owner string) error {
	return deleteOwned(ctx, r.db, "campaign_reports", "admin_user_id", id, owner)
}
