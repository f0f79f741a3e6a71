package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// parseDate accepts YYYY-MM-DD, 'today' or 'yesterday'
func parseDate(s string) (time.Time, error) {
	switch s {
	case "today":
		return domain.Date(time.Now()), nil
	case "yesterday":
		return domain.Date(time.Now().AddDate(0, 0, -1)), nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
	}
	return t, nil
}

// parseMonth accepts YYYY-MM; blank means the current month
func parseMonth(s string) (int, time.Month, error) {
	if s == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected format: YYYY-MM")
	}
	return t.Year(), t.Month(), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// stringFlag returns a pointer to the flag's value if the user set it
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	s := stringFlag(cmd, name)
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

func amountFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	s := stringFlag(cmd, name)
	if s == nil {
		return nil, nil
	}
	d, err := parseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// resolveClient finds a client by id, id prefix or case-insensitive name
func resolveClient(ref string) (domain.Client, error) {
	clients := appInstance.Store.Clients()
	var matches []domain.Client
	for _, c := range clients {
		if c.ID == ref {
			return c, nil
		}
		if strings.HasPrefix(c.ID, ref) || strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Client{}, fmt.Errorf("client '%s' not found", ref)
	case 1:
		return matches[0], nil
	}
	return domain.Client{}, fmt.Errorf("'%s' matches %d clients, use the id", ref, len(matches))
}

// resolveProject finds a project by id, id prefix or case-insensitive title
func resolveProject(ref string) (domain.Project, error) {
	var matches []domain.Project
	for _, p := range appInstance.Store.Projects() {
		if p.ID == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Title, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Project{}, fmt.Errorf("project '%s' not found", ref)
	case 1:
		return matches[0], nil
	}
	return domain.Project{}, fmt.Errorf("'%s' matches %d projects, use the id", ref, len(matches))
}

func resolvePayment(ref string) (domain.Payment, error) {
	var matches []domain.Payment
	for _, p := range appInstance.Store.Payments() {
		if p.ID == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	if len(matches) != 1 {
		return domain.Payment{}, fmt.Errorf("payment '%s' not found", ref)
	}
	return matches[0], nil
}

func resolveMethod(ref string) (domain.PaymentMethod, error) {
	for _, m := range appInstance.Store.PaymentMethods() {
		if m.ID == ref || strings.HasPrefix(m.ID, ref) || strings.EqualFold(m.Name, ref) {
			return m, nil
		}
	}
	return domain.PaymentMethod{}, fmt.Errorf("payment method '%s' not found", ref)
}

func clientName(id string) string {
	if c, ok := appInstance.Store.Client(id); ok {
		return c.Name
	}
	return "Unknown client"
}

func projectTitle(id string) string {
	if p, ok := appInstance.Store.Project(id); ok {
		return p.Title
	}
	return "Unknown project"
}

// requireLogin explains the error every store call would return
func requireLogin() error {
	if appInstance.Store.Identity() == nil {
		return errors.New("not signed in, run 'freelancedesk auth login <phone>' first")
	}
	return nil
}

// warnReconcile reports a committed payment whose automatic status update failed
func warnReconcile(err error) error {
	if errors.Is(err, domain.ErrReconcile) {
		fmt.Printf("! Payment saved, but project status could not be updated: %v\n", err)
		return nil
	}
	return err
}

func yesFlag(cmd *cobra.Command) bool {
	y, _ := cmd.Flags().GetBool("yes")
	return y
}
