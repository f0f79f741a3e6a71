package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned by every mutator while no identity is bound.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNotFound means the gateway affected zero rows: the id does not exist or belongs to
	// another owner. It always travels inside a PersistenceError.
	ErrNotFound = errors.New("record not found")

	// ErrValidation wraps input that was rejected before reaching the gateway.
	ErrValidation = errors.New("validation failed")

	// ErrReconcile is returned when a payment mutation committed but the automatic
	// project status update that follows it failed.
	ErrReconcile = errors.New("project status reconciliation failed")
)

// PersistenceError reports a failed gateway round trip.
type PersistenceError struct {
	Op    string
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err unless it already is a PersistenceError.
func NewPersistenceError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Table: table, Err: err}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewValidationError reports input rejected by a component outside this package.
func NewValidationError(format string, args ...any) error {
	return invalid(format, args...)
}
