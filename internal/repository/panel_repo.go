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

const panelColumns = `id, admin_user_id, name, description, requires_panel3_credentials, created_at, updated_at`

// PanelRepo is a SQLite implementation of PanelGateway
type PanelRepo struct {
	db *db.DB
}

func NewPanelRepo(database *db.DB) *PanelRepo {
	return &PanelRepo{db: database}
}

func scanPanel(row rowScanner) (domain.Panel, error) {
	var p domain.Panel
	var description sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.AdminUserID, &p.Name, &description, &p.RequiresPanel3Credentials, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.Description = stringPtr(description)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}

func (r *PanelRepo) List(ctx context.Context, owner string) ([]domain.Panel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+panelColumns+` FROM panels WHERE admin_user_id = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, persistenceError("list", "panels", fmt.Errorf("failed to list panels: %w", err))
	}
	defer rows.Close()

	panels := make([]domain.Panel, 0)
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, persistenceError("list", "panels", fmt.Errorf("failed to scan panel: %w", err))
		}
		panels = append(panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "panels", fmt.Errorf("error iterating panels: %w", err))
	}
	return panels, nil
}

func (r *PanelRepo) Insert(ctx context.Context, owner string, in domain.PanelInput, at time.Time) (domain.Panel, error) {
	p := domain.Panel{
		ID:                        uuid.NewString(),
		AdminUserID:               owner,
		Name:                      in.Name,
		Description:               in.Description,
		RequiresPanel3Credentials: in.RequiresPanel3Credentials,
		CreatedAt:                 at,
		UpdatedAt:                 at,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO panels (`+panelColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, owner, p.Name, nullString(p.Description), p.RequiresPanel3Credentials,
		formatTime(at), formatTime(at))
	if err != nil {
		return domain.Panel{}, persistenceError("insert", "panels", fmt.Errorf("failed to create panel: %w", err))
	}
	return p, nil
}

func (r *PanelRepo) Update(ctx context.Context, id, owner string, patch domain.PanelPatch, at time.Time) (domain.Panel, error) {
	var s setList
	if patch.Name != nil {
		s.set("name", *patch.Name)
	}
	s.optional("description", patch.Description)
	if patch.RequiresPanel3Credentials != nil {
		s.set("requires_panel3_credentials", *patch.RequiresPanel3Credentials)
	}
	s.set("updated_at", formatTime(at))

	result, err := r.db.ExecContext(ctx,
		`UPDATE panels SET `+s.clause()+` WHERE id = ? AND admin_user_id = ?`, append(s.args, id, owner)...)
	if err != nil {
		return domain.Panel{}, persistenceError("update", "panels", fmt.Errorf("failed to update panel: %w", err))
	}
	if err := checkAffected(result, "panel "+id); err != nil {
		return domain.Panel{}, persistenceError("update", "panels", err)
	}

	p, err := scanPanel(r.db.QueryRowContext(ctx,
		`SELECT `+panelColumns+` FROM panels WHERE id = ? AND admin_user_id = ?`, id, owner))
	if err != nil {
		return domain.Panel{}, persistenceError("update", "panels", fmt.Errorf("failed to get panel: %w", err))
	}
	return p, nil
}

// Delete removes the panel; its users and reports go with it through the foreign keys
func (r *PanelRepo) Delete(ctx context.Context, id, owner string) error {
	return deleteOwned(ctx, r.db, "panels", "admin_user_id", id, owner)
}
