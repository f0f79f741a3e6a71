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

const projectColumns = `id, user_id, client_id, title, description, notes, total_amount, start_date, due_date, status, created_at, updated_at`

// ProjectRepo is a SQLite implementation of ProjectGateway
type ProjectRepo struct {
	db *db.DB
}

// NewProjectRepo creates a new ProjectRepo
func NewProjectRepo(database *db.DB) *ProjectRepo {
	return &ProjectRepo{db: database}
}

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	var description, notes sql.NullString
	var total, startDate, dueDate, status, createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserID, &p.ClientID, &p.Title, &description, &notes, &total,
		&startDate, &dueDate, &status, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.Description = stringPtr(description)
	p.Notes = stringPtr(notes)
	p.Status = domain.ProjectStatus(status)
	if p.TotalAmount, err = parseDecimal(total); err != nil {
		return p, fmt.Errorf("failed to parse total_amount: %w", err)
	}
	if p.StartDate, err = parseDate(startDate); err != nil {
		return p, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if p.DueDate, err = parseDate(dueDate); err != nil {
		return p, fmt.Errorf("failed to parse due_date: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}

// List retrieves all of owner's projects, oldest first
func (r *ProjectRepo) List(ctx context.Context, owner string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, persistenceError("list", "projects", fmt.Errorf("failed to list projects: %w", err))
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, persistenceError("list", "projects", fmt.Errorf("failed to scan project: %w", err))
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "projects", fmt.Errorf("error iterating projects: %w", err))
	}
	return projects, nil
}

func (r *ProjectRepo) get(ctx context.Context, id, owner string) (domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND user_id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if isNoRows(err) {
			return p, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return p, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// Insert creates a project owned by owner and returns the stored row
func (r *ProjectRepo) Insert(ctx context.Context, owner string, in domain.ProjectInput, at time.Time) (domain.Project, error) {
	p := domain.Project{
		ID:          uuid.NewString(),
		UserID:      owner,
		ClientID:    in.ClientID,
		Title:       in.Title,
		Description: in.Description,
		Notes:       in.Notes,
		TotalAmount: in.TotalAmount,
		StartDate:   domain.Date(in.StartDate),
		DueDate:     domain.Date(in.DueDate),
		Status:      in.Status,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if p.Status == "" {
		p.Status = domain.ProjectStatusActive
	}

	// The client must belong to the same owner.
	query := `
		INSERT INTO projects (` + projectColumns + `)
		SELECT ?, ?, id, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM clients WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, owner, p.Title, nullString(p.Description), nullString(p.Notes),
		p.TotalAmount.String(), formatDate(p.StartDate), formatDate(p.DueDate), string(p.Status),
		formatTime(at), formatTime(at),
		p.ClientID, owner,
	)
	if err != nil {
		return domain.Project{}, persistenceError("insert", "projects", fmt.Errorf("failed to create project: %w", err))
	}
	if err := checkAffected(result, "client "+p.ClientID); err != nil {
		return domain.Project{}, persistenceError("insert", "projects", err)
	}
	return p, nil
}

// Update applies patch to the owner's project. A client change moves the project's payments
// to the new client in the same transaction.
func (r *ProjectRepo) Update(ctx context.Context, id, owner string, patch domain.ProjectPatch, at time.Time) (domain.Project, error) {
	var s setList
	if patch.ClientID != nil {
		s.set("client_id", *patch.ClientID)
	}
	if patch.Title != nil {
		s.set("title", *patch.Title)
	}
	s.optional("description", patch.Description)
	s.optional("notes", patch.Notes)
	if patch.TotalAmount != nil {
		s.set("total_amount", patch.TotalAmount.String())
	}
	if patch.StartDate != nil {
		s.set("start_date", formatDate(*patch.StartDate))
	}
	if patch.DueDate != nil {
		s.set("due_date", formatDate(*patch.DueDate))
	}
	if patch.Status != nil {
		s.set("status", string(*patch.Status))
	}
	s.set("updated_at", formatTime(at))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, persistenceError("update", "projects", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if patch.ClientID != nil {
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE id = ? AND user_id = ?`,
			*patch.ClientID, owner).Scan(&n)
		if err != nil {
			return domain.Project{}, persistenceError("update", "projects", fmt.Errorf("failed to check client: %w", err))
		}
		if n == 0 {
			return domain.Project{}, persistenceError("update", "projects",
				fmt.Errorf("client %s: %w", *patch.ClientID, domain.ErrNotFound))
		}
	}

	query := `UPDATE projects SET ` + s.clause() + ` WHERE id = ? AND user_id = ?`
	result, err := tx.ExecContext(ctx, query, append(s.args, id, owner)...)
	if err != nil {
		return domain.Project{}, persistenceError("update", "projects", fmt.Errorf("failed to update project: %w", err))
	}
	if err := checkAffected(result, "project "+id); err != nil {
		return domain.Project{}, persistenceError("update", "projects", err)
	}

	if patch.ClientID != nil {
		_, err := tx.ExecContext(ctx,
			`UPDATE payments SET client_id = ?, updated_at = ? WHERE project_id = ? AND user_id = ?`,
			*patch.ClientID, formatTime(at), id, owner)
		if err != nil {
			return domain.Project{}, persistenceError("update", "payments", fmt.Errorf("failed to re-point payments: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Project{}, persistenceError("update", "projects", fmt.Errorf("failed to commit transaction: %w", err))
	}

	p, err := r.get(ctx, id, owner)
	if err != nil {
		return domain.Project{}, persistenceError("update", "projects", err)
	}
	return p, nil
}

// Delete removes the project and its payments in one transaction
func (r *ProjectRepo) Delete(ctx context.Context, id, owner string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("delete", "projects", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE project_id = ? AND user_id = ?`, id, owner); err != nil {
		return persistenceError("delete", "payments", fmt.Errorf("failed to delete project payments: %w", err))
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return persistenceError("delete", "projects", fmt.Errorf("failed to delete project: %w", err))
	}
	if err := checkAffected(result, "project "+id); err != nil {
		return persistenceError("delete", "projects", err)
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("delete", "projects", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}
