package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/domain"
)

// AuditLogRepo is a SQLite implementation of AuditLogGateway
type AuditLogRepo struct {
	db *db.DB
}

func NewAuditLogRepo(database *db.DB) *AuditLogRepo {
	return &AuditLogRepo{db: database}
}

// Insert appends an entry, assigning its id
func (r *AuditLogRepo) Insert(ctx context.Context, entry domain.AuditLog) (domain.AuditLog, error) {
	entry.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, record_id, table_name, action, old_value, new_value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, nullString(entry.UserID), entry.RecordID, entry.TableName, string(entry.Action),
		nullString(entry.OldValue), nullString(entry.NewValue), formatTime(entry.Timestamp))
	if err != nil {
		return domain.AuditLog{}, persistenceError("insert", "audit_log", fmt.Errorf("failed to write audit log: %w", err))
	}
	return entry, nil
}

// ListRecent returns the user's newest entries first
func (r *AuditLogRepo) ListRecent(ctx context.Context, user string, limit int) ([]domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, record_id, table_name, action, old_value, new_value, timestamp
		FROM audit_log
		WHERE user_id = ?
		ORDER BY timestamp DESC, id
		LIMIT ?`, user, limit)
	if err != nil {
		return nil, persistenceError("list", "audit_log", fmt.Errorf("failed to list audit log: %w", err))
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0)
	for rows.Next() {
		var l domain.AuditLog
		var userID, oldValue, newValue sql.NullString
		var action, ts string
		if err := rows.Scan(&l.ID, &userID, &l.RecordID, &l.TableName, &action, &oldValue, &newValue, &ts); err != nil {
			return nil, persistenceError("list", "audit_log", fmt.Errorf("failed to scan audit log: %w", err))
		}
		l.UserID = stringPtr(userID)
		l.OldValue = stringPtr(oldValue)
		l.NewValue = stringPtr(newValue)
		l.Action = domain.AuditAction(action)
		if l.Timestamp, err = parseTime(ts); err != nil {
			return nil, persistenceError("list", "audit_log", fmt.Errorf("failed to parse timestamp: %w", err))
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "audit_log", fmt.Errorf("error iterating audit log: %w", err))
	}
	return logs, nil
}
