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

const paymentMethodColumns = `id, user_id, name, details, is_default, created_at, updated_at`

// PaymentMethodRepo is a SQLite implementation of PaymentMethodGateway
type PaymentMethodRepo struct {
	db *db.DB
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo
func NewPaymentMethodRepo(database *db.DB) *PaymentMethodRepo {
	return &PaymentMethodRepo{db: database}
}

func scanPaymentMethod(row rowScanner) (domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	var details sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.UserID, &m.Name, &details, &m.IsDefault, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}
	m.Details = stringPtr(details)
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return m, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return m, nil
}

// List retrieves all of owner's payment methods, oldest first
func (r *PaymentMethodRepo) List(ctx context.Context, owner string) ([]domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, persistenceError("list", "payment_methods", fmt.Errorf("failed to list payment methods: %w", err))
	}
	defer rows.Close()

	methods := make([]domain.PaymentMethod, 0)
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, persistenceError("list", "payment_methods", fmt.Errorf("failed to scan payment method: %w", err))
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "payment_methods", fmt.Errorf("error iterating payment methods: %w", err))
	}
	return methods, nil
}

// Insert creates a payment method and returns the stored row
func (r *PaymentMethodRepo) Insert(ctx context.Context, owner string, in domain.PaymentMethodInput, at time.Time) (domain.PaymentMethod, error) {
	m := domain.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    owner,
		Name:      in.Name,
		Details:   in.Details,
		IsDefault: in.IsDefault,
		CreatedAt: at,
		UpdatedAt: at,
	}
	query := `INSERT INTO payment_methods (` + paymentMethodColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, owner, m.Name, nullString(m.Details), m.IsDefault, formatTime(at), formatTime(at))
	if err != nil {
		return domain.PaymentMethod{}, persistenceError("insert", "payment_methods", fmt.Errorf("failed to create payment method: %w", err))
	}
	return m, nil
}

// Update applies patch to the owner's payment method and returns the stored row
func (r *PaymentMethodRepo) Update(ctx context.Context, id, owner string, patch domain.PaymentMethodPatch, at time.Time) (domain.PaymentMethod, error) {
	var s setList
	if patch.Name != nil {
		s.set("name", *patch.Name)
	}
	s.optional("details", patch.Details)
	if patch.IsDefault != nil {
		s.set("is_default", *patch.IsDefault)
	}
	s.set("updated_at", formatTime(at))

	query := `UPDATE payment_methods SET ` + s.clause() + ` WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, append(s.args, id, owner)...)
	if err != nil {
		return domain.PaymentMethod{}, persistenceError("update", "payment_methods", fmt.Errorf("failed to update payment method: %w", err))
	}
	if err := checkAffected(result, "payment method "+id); err != nil {
		return domain.PaymentMethod{}, persistenceError("update", "payment_methods", err)
	}

	m, err := scanPaymentMethod(r.db.QueryRowContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = ? AND user_id = ?`, id, owner))
	if err != nil {
		return domain.PaymentMethod{}, persistenceError("update", "payment_methods", fmt.Errorf("failed to get payment method: %w", err))
	}
	return m, nil
}

// Delete removes the owner's payment method
func (r *PaymentMethodRepo) Delete(ctx context.Context, id, owner string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return persistenceError("delete", "payment_methods", fmt.Errorf("failed to delete payment method: %w", err))
	}
	if err := checkAffected(result, "payment method "+id); err != nil {
		return persistenceError("delete", "payment_methods", err)
	}
	return nil
}
