package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/domain"
)

// timeLayout is a fixed-width RFC3339 format for storing times in SQLite, so that text order
// matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, s)
}

func formatDate(t time.Time) string {
	return domain.Date(t).Format(domain.DateLayout)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// nullString maps an absent optional to SQL NULL.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *db.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// setList collects the assignments of a partial UPDATE.
type setList struct {
	cols []string
	args []any
}

func (s *setList) set(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

// optional assigns an optional text column: nil skips it, blank clears it to NULL.
func (s *setList) optional(col string, p *string) {
	if p == nil {
		return
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		s.set(col, nil)
		return
	}
	s.set(col, v)
}

func (s *setList) clause() string {
	return strings.Join(s.cols, ", ")
}

// persistenceError wraps err with the operation and table it failed on.
func persistenceError(op, table string, err error) error {
	return domain.NewPersistenceError(op, table, err)
}

// checkAffected turns a zero-row update or delete into ErrNotFound.
func checkAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// deleteOwned removes one row of table scoped to ownerCol.
func deleteOwned(ctx context.Context, x execer, table, ownerCol, id, owner string) error {
	result, err := x.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND `+ownerCol+` = ?`, id, owner)
	if err != nil {
		return persistenceError("delete", table, fmt.Errorf("failed to delete from %s: %w", table, err))
	}
	if err := checkAffected(result, table+" "+id); err != nil {
		return persistenceError("delete", table, err)
	}
	return nil
}
