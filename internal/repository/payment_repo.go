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

const paymentColumns = `id, user_id, project_id, client_id, amount, payment_date, payment_method, reference_id, notes, created_at, updated_at`

// PaymentRepo is a SQLite implementation of PaymentGateway. The stored client_id is always
// taken from the referenced project.
type PaymentRepo struct {
	db *db.DB
}

// NewPaymentRepo creates a new PaymentRepo
func NewPaymentRepo(database *db.DB) *PaymentRepo {
	return &PaymentRepo{db: database}
}

func scanPayment(row rowScanner) (domain.Payment, error) {
	var p domain.Payment
	var method, reference, notes sql.NullString
	var amount, paymentDate, createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.ClientID, &amount, &paymentDate,
		&method, &reference, &notes, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.PaymentMethod = stringPtr(method)
	p.ReferenceID = stringPtr(reference)
	p.Notes = stringPtr(notes)
	if p.Amount, err = parseDecimal(amount); err != nil {
		return p, fmt.Errorf("failed to parse amount: %w", err)
	}
	if p.PaymentDate, err = parseDate(paymentDate); err != nil {
		return p, fmt.Errorf("failed to parse payment_date: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}

// List retrieves all of owner's payments, oldest first
func (r *PaymentRepo) List(ctx context.Context, owner string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, persistenceError("list", "payments", fmt.Errorf("failed to list payments: %w", err))
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, persistenceError("list", "payments", fmt.Errorf("failed to scan payment: %w", err))
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "payments", fmt.Errorf("error iterating payments: %w", err))
	}
	return payments, nil
}

func (r *PaymentRepo) get(ctx context.Context, id, owner string) (domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ? AND user_id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if isNoRows(err) {
			return p, fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
		}
		return p, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Insert records a payment against one of owner's projects and returns the stored row
func (r *PaymentRepo) Insert(ctx context.Context, owner string, in domain.PaymentInput, at time.Time) (domain.Payment, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		SELECT ?, ?, id, client_id, ?, ?, ?, ?, ?, ?, ?
		FROM projects WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		id, owner, in.Amount.String(), formatDate(in.PaymentDate),
		nullString(in.PaymentMethod), nullString(in.ReferenceID), nullString(in.Notes),
		formatTime(at), formatTime(at),
		in.ProjectID, owner,
	)
	if err != nil {
		return domain.Payment{}, persistenceError("insert", "payments", fmt.Errorf("failed to create payment: %w", err))
	}
	if err := checkAffected(result, "project "+in.ProjectID); err != nil {
		return domain.Payment{}, persistenceError("insert", "payments", err)
	}

	p, err := r.get(ctx, id, owner)
	if err != nil {
		return domain.Payment{}, persistenceError("insert", "payments", err)
	}
	return p, nil
}

// Update applies patch to the owner's payment. Moving it to another project also moves it to
// that project's client; the lookup and the write share one transaction.
func (r *PaymentRepo) Update(ctx context.Context, id, owner string, patch domain.PaymentPatch, at time.Time) (domain.Payment, error) {
	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		var s setList
		if patch.ProjectID != nil {
			var clientID string
			err := tx.QueryRowContext(ctx, `SELECT client_id FROM projects WHERE id = ? AND user_id = ?`,
				*patch.ProjectID, owner).Scan(&clientID)
			if err != nil {
				if isNoRows(err) {
					return fmt.Errorf("project %s: %w", *patch.ProjectID, domain.ErrNotFound)
				}
				return fmt.Errorf("failed to look up project: %w", err)
			}
			s.set("project_id", *patch.ProjectID)
			s.set("client_id", clientID)
		}
		if patch.Amount != nil {
			s.set("amount", patch.Amount.String())
		}
		if patch.PaymentDate != nil {
			s.set("payment_date", formatDate(*patch.PaymentDate))
		}
		s.optional("payment_method", patch.PaymentMethod)
		s.optional("reference_id", patch.ReferenceID)
		s.optional("notes", patch.Notes)
		s.set("updated_at", formatTime(at))

		query := `UPDATE payments SET ` + s.clause() + ` WHERE id = ? AND user_id = ?`
		result, err := tx.ExecContext(ctx, query, append(s.args, id, owner)...)
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return checkAffected(result, "payment "+id)
	})
	if err != nil {
		return domain.Payment{}, persistenceError("update", "payments", err)
	}

	p, err := r.get(ctx, id, owner)
	if err != nil {
		return domain.Payment{}, persistenceError("update", "payments", err)
	}
	return p, nil
}

// Delete removes the owner's payment
func (r *PaymentRepo) Delete(ctx context.Context, id, owner string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return persistenceError("delete", "payments", fmt.Errorf("failed to delete payment: %w", err))
	}
	if err := checkAffected(result, "payment "+id); err != nil {
		return persistenceError("delete", "payments", err)
	}
	return nil
}
