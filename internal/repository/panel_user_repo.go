package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

const panelUserColumns = `id, admin_user_id, panel_id, username, email, is_active, created_at, updated_at`

// PanelUserRepo is a SQLite implementation of PanelUserGateway
type PanelUserRepo struct {
	db *db.DB
}

func NewPanelUserRepo(database *db.DB) *PanelUserRepo {
	return &PanelUserRepo{db: database}
}

func scanPanelUser(row rowScanner) (domain.PanelUser, error) {
	var u domain.PanelUser
	var createdAt, updatedAt string

	err := row.Scan(&u.ID, &u.AdminUserID, &u.PanelID, &u.Username, &u.Email, &u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return u, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return u, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return u, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return u, nil
}

func (r *PanelUserRepo) List(ctx context.Context, owner string) ([]domain.PanelUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+panelUserColumns+` FROM panel_users WHERE admin_user_id = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, persistenceError("list", "panel_users", fmt.Errorf("failed to list panel users: %w", err))
	}
	defer rows.Close()

	users := make([]domain.PanelUser, 0)
	for rows.Next() {
		u, err := scanPanelUser(rows)
		if err != nil {
			return nil, persistenceError("list", "panel_users", fmt.Errorf("failed to scan panel user: %w", err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "panel_users", fmt.Errorf("error iterating panel users: %w", err))
	}
	return users, nil
}

func (r *PanelUserRepo) Insert(ctx context.Context, owner string, in domain.PanelUserInput, at time.Time) (domain.PanelUser, error) {
	u := domain.PanelUser{
		ID:          uuid.NewString(),
		AdminUserID: owner,
		PanelID:     in.PanelID,
		Username:    in.Username,
		Email:       in.Email,
		IsActive:    in.IsActive,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO panel_users (`+panelUserColumns+`)
		SELECT ?, ?, id, ?, ?, ?, ?, ?
		FROM panels WHERE id = ? AND admin_user_id = ?`,
		u.ID, owner, u.Username, u.Email, u.IsActive, formatTime(at), formatTime(at),
		u.PanelID, owner)
	if err != nil {
		return domain.PanelUser{}, persistenceError("insert", "panel_users", fmt.Errorf("failed to create panel user: %w", err))
	}
	if err := checkAffected(result, "panel "+u.PanelID); err != nil {
		return domain.PanelUser{}, persistenceError("insert", "panel_users", err)
	}
	return u, nil
}

func (r *PanelUserRepo) Update(ctx context.Context, id, owner string, patch domain.PanelUserPatch, at time.Time) (domain.PanelUser, error) {
	var s setList
	if patch.PanelID != nil {
		s.set("panel_id", *patch.PanelID)
	}
	if patch.Username != nil {
		s.set("username", *patch.Username)
	}
	if patch.Email != nil {
		s.set("email", *patch.Email)
	}
	if patch.IsActive != nil {
		s.set("is_active", *patch.IsActive)
	}
	s.set("updated_at", formatTime(at))

	result, err := r.db.ExecContext(ctx,
		`UPDATE panel_users SET `+s.clause()+` WHERE id = ? AND admin_user_id = ?`, append(s.args, id, owner)...)
	if err != nil {
		return domain.PanelUser{}, persistenceError("update", "panel_users", fmt.Errorf("failed to update panel user: %w", err))
	}
	if err := checkAffected(result, "panel user "+id); err != nil {
		return domain.PanelUser{}, persistenceError("update", "panel_users", err)
	}

	u, err := scanPanelUser(r.db.QueryRowContext(ctx,
		`SELECT `+panelUserColumns+` FROM panel_users WHERE id = ? AND admin_user_id = ?`, id, owner))
	if err != nil {
		return domain.PanelUser{}, persistenceError("update", "panel_users", fmt.Errorf("failed to get panel user: %w", err))
	}
	return u, nil
}

func (r *PanelUserRepo) Delete(ctx context.Context, id, owner string) error {
	return deleteOwned(ctx, r.db, "panel_users", "admin_user_id", id, owner)
}
