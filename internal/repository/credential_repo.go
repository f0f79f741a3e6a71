package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

const credentialColumns = `id, admin_user_id, panel3_login_id, password_hash, created_at, updated_at`

// CredentialRepo is a SQLite implementation of CredentialGateway. It persists PasswordHash
// only; a plain Password on the input is never written.
type CredentialRepo struct {
	db *db.DB
}

func NewCredentialRepo(database *db.DB) *CredentialRepo {
	return &CredentialRepo{db: database}
}

func scanCredential(row rowScanner) (domain.Panel3Credential, error) {
	var c domain.Panel3Credential
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.AdminUserID, &c.LoginID, &c.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return c, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return c, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}

func (r *CredentialRepo) List(ctx context.Context, owner string) ([]domain.Panel3Credential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM panel3_credentials WHERE admin_user_id = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, persistenceError("list", "panel3_credentials", fmt.Errorf("failed to list credentials: %w", err))
	}
	defer rows.Close()

	creds := make([]domain.Panel3Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, persistenceError("list", "panel3_credentials", fmt.Errorf("failed to scan credential: %w", err))
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "panel3_credentials", fmt.Errorf("error iterating credentials: %w", err))
	}
	return creds, nil
}

func (r *CredentialRepo) Insert(ctx context.Context, owner string, in domain.Panel3CredentialInput, at time.Time) (domain.Panel3Credential, error) {
	if in.PasswordHash == "" {
		return domain.Panel3Credential{}, persistenceError("insert", "panel3_credentials",
			fmt.Errorf("password hash is required"))
	}
	c := domain.Panel3Credential{
		ID:           uuid.NewString(),
		AdminUserID:  owner,
		LoginID:      in.LoginID,
		PasswordHash: in.PasswordHash,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO panel3_credentials (`+credentialColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, owner, c.LoginID, c.PasswordHash, formatTime(at), formatTime(at))
	if err != nil {
		return domain.Panel3Credential{}, persistenceError("insert", "panel3_credentials", fmt.Errorf("failed to create credential: %w", err))
	}
	return c, nil
}

func (r *CredentialRepo) Update(ctx context.Context, id, owner string, patch domain.Panel3CredentialPatch, at time.Time) (domain.Panel3Credential, error) {
	var s setList
	if patch.LoginID != nil {
		s.set("panel3_login_id", *patch.LoginID)
	}
	if patch.PasswordHash != nil {
		s.set("password_hash", *patch.PasswordHash)
	}
	s.set("updated_at", formatTime(at))

	result, err := r.db.ExecContext(ctx,
		`UPDATE panel3_credentials SET `+s.clause()+` WHERE id = ? AND admin_user_id = ?`, append(s.args, id, owner)...)
	if err != nil {
		return domain.Panel3Credential{}, persistenceError("update", "panel3_credentials", fmt.Errorf("failed to update credential: %w", err))
	}
	if err := checkAffected(result, "credential "+id); err != nil {
		return domain.Panel3Credential{}, persistenceError("update", "panel3_credentials", err)
	}

	c, err := scanCredential(r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM panel3_credentials WHERE id = ? AND admin_user_id = ?`, id, owner))
	if err != nil {
		return domain.Panel3Credential{}, persistenceError("update", "panel3_credentials", fmt.Errorf("failed to get credential: %w", err))
	}
	return c, nil
}

// Delete removes the credential; reports referencing it keep a NULL reference
func (r *CredentialRepo) Delete(ctx context.Context, id, owner string) error {
	return deleteOwned(ctx, r.db, "panel3_credentials", "admin_user_id", id, owner)
}
