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

const clientColumns = `id, user_id, name, company, email, phone, address, tags, notes, created_at, updated_at`

// ClientRepo is a SQLite implementation of ClientGateway
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

func scanClient(row rowScanner) (domain.Client, error) {
	var c domain.Client
	var company, email, phone, address, notes sql.NullString
	var tags, createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &company, &email, &phone, &address, &tags, &notes,
		&createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	c.Company = stringPtr(company)
	c.Email = stringPtr(email)
	c.Phone = stringPtr(phone)
	c.Address = stringPtr(address)
	c.Notes = stringPtr(notes)
	if c.Tags, err = decodeTags(tags); err != nil {
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

// List retrieves all of owner's clients, oldest first
func (r *ClientRepo) List(ctx context.Context, owner string) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, persistenceError("list", "clients", fmt.Errorf("failed to list clients: %w", err))
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, persistenceError("list", "clients", fmt.Errorf("failed to scan client: %w", err))
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "clients", fmt.Errorf("error iterating clients: %w", err))
	}
	return clients, nil
}

func (r *ClientRepo) get(ctx context.Context, id, owner string) (domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ? AND user_id = ?`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if isNoRows(err) {
			return c, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return c, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// Insert creates a client owned by owner and returns the stored row
func (r *ClientRepo) Insert(ctx context.Context, owner string, in domain.ClientInput, at time.Time) (domain.Client, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return domain.Client{}, persistenceError("insert", "clients", err)
	}

	c := domain.Client{
		ID:        uuid.NewString(),
		UserID:    owner,
		Name:      in.Name,
		Company:   in.Company,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Tags:      in.Tags,
		Notes:     in.Notes,
		CreatedAt: at,
		UpdatedAt: at,
	}

	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, owner, c.Name,
		nullString(c.Company), nullString(c.Email), nullString(c.Phone), nullString(c.Address),
		tags, nullString(c.Notes),
		formatTime(at), formatTime(at),
	)
	if err != nil {
		return domain.Client{}, persistenceError("insert", "clients", fmt.Errorf("failed to create client: %w", err))
	}
	return c, nil
}

// Update applies patch to the owner's client and returns the stored row
func (r *ClientRepo) Update(ctx context.Context, id, owner string, patch domain.ClientPatch, at time.Time) (domain.Client, error) {
	var s setList
	if patch.Name != nil {
		s.set("name", *patch.Name)
	}
	s.optional("company", patch.Company)
	s.optional("email", patch.Email)
	s.optional("phone", patch.Phone)
	s.optional("address", patch.Address)
	s.optional("notes", patch.Notes)
	if patch.Tags != nil {
		tags, err := encodeTags(domain.NormalizeTags(*patch.Tags))
		if err != nil {
			return domain.Client{}, persistenceError("update", "clients", err)
		}
		s.set("tags", tags)
	}
	s.set("updated_at", formatTime(at))

	query := `UPDATE clients SET ` + s.clause() + ` WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, append(s.args, id, owner)...)
	if err != nil {
		return domain.Client{}, persistenceError("update", "clients", fmt.Errorf("failed to update client: %w", err))
	}
	if err := checkAffected(result, "client "+id); err != nil {
		return domain.Client{}, persistenceError("update", "clients", err)
	}

	c, err := r.get(ctx, id, owner)
	if err != nil {
		return domain.Client{}, persistenceError("update", "clients", err)
	}
	return c, nil
}

// Delete removes the client, its projects and their payments in one transaction
func (r *ClientRepo) Delete(ctx context.Context, id, owner string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("delete", "clients", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE client_id = ? AND user_id = ?`, id, owner); err != nil {
		return persistenceError("delete", "payments", fmt.Errorf("failed to delete client payments: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE client_id = ? AND user_id = ?`, id, owner); err != nil {
		return persistenceError("delete", "projects", fmt.Errorf("failed to delete client projects: %w", err))
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return persistenceError("delete", "clients", fmt.Errorf("failed to delete client: %w", err))
	}
	if err := checkAffected(result, "client "+id); err != nil {
		return persistenceError("delete", "clients", err)
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("delete", "clients", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}
