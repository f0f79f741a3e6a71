package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// validateEmail accepts nil and blank (a cleared field).
func validateEmail(field string, email *string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	if err := validate.Var(*email, "email"); err != nil {
		return invalid("%s is not a valid email address", field)
	}
	return nil
}

// DateLayout is the storage and display layout for calendar dates.
const DateLayout = "2006-01-02"

// Date truncates t to its calendar date at UTC midnight. The calendar date is read in t's own
// location so that a local "today" stays today.
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

// SameMonth reports whether the calendar date d falls in year/month.
func SameMonth(d time.Time, year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}
