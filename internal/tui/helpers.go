package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/andy/freelancedesk/internal/app"
	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

// formatMoney formats money as "₹12,345.67" with comma separators
func formatMoney(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)

	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := finance.CurrencySymbol
	if amount.IsNegative() {
		prefix = "-" + prefix
	}
	return prefix + string(result) + decPart
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func errorText(err error) string {
	return lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("  Error: %v", err))
}

func statusText(msg string) string {
	return lipgloss.NewStyle().Foreground(successColor).Render("  " + msg)
}

func warningText(msg string) string {
	return lipgloss.NewStyle().Foreground(warningColor).Render("  " + msg)
}

// bar renders v as a share of peak, at most width cells wide
func bar(v, peak decimal.Decimal, width int) string {
	if !peak.IsPositive() || !v.IsPositive() {
		return ""
	}
	n := int(v.Mul(decimal.NewFromInt(int64(width))).Div(peak).IntPart())
	return strings.Repeat("█", max(n, 1))
}

func statusStyle(s domain.ProjectStatus) lipgloss.Style {
	switch s {
	case domain.ProjectStatusCompleted:
		return lipgloss.NewStyle().Foreground(successColor)
	case domain.ProjectStatusCancelled:
		return lipgloss.NewStyle().Foreground(mutedColor)
	case domain.ProjectStatusProposal:
		return lipgloss.NewStyle().Foreground(accentColor)
	}
	return lipgloss.NewStyle().Foreground(primaryColor)
}

// moveCursor clamps cursor+delta into [0, n)
func moveCursor(cursor, delta, n int) int {
	cursor += delta
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func clientName(a *app.App, id string) string {
	if c, ok := a.Store.Client(id); ok {
		return c.Name
	}
	return "Unknown client"
}

func projectTitle(a *app.App, id string) string {
	if p, ok := a.Store.Project(id); ok {
		return p.Title
	}
	return "Unknown project"
}

// findClient resolves a client by id, id prefix or case-insensitive name
func findClient(a *app.App, ref string) (domain.Client, error) {
	ref = strings.TrimSpace(ref)
	for _, c := range a.Store.Clients() {
		if c.ID == ref || strings.EqualFold(c.Name, ref) || (len(ref) >= 4 && strings.HasPrefix(c.ID, ref)) {
			return c, nil
		}
	}
	return domain.Client{}, fmt.Errorf("no client named %q", ref)
}

// findProject resolves a project by id, id prefix or case-insensitive title
func findProject(a *app.App, ref string) (domain.Project, error) {
	ref = strings.TrimSpace(ref)
	for _, p := range a.Store.Projects() {
		if p.ID == ref || strings.EqualFold(p.Title, ref) || (len(ref) >= 4 && strings.HasPrefix(p.ID, ref)) {
			return p, nil
		}
	}
	return domain.Project{}, fmt.Errorf("no project titled %q", ref)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDateOr parses YYYY-MM-DD, returning def for blank input
func parseDateOr(s string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
