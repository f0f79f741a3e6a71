package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Format(domain.DateLayout) != "2024-03-15" {
		t.Fatalf("unexpected date %v", d)
	}

	today, err := parseDate("today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !today.Equal(domain.Date(time.Now())) {
		t.Fatalf("expected today, got %v", today)
	}

	if _, err := parseDate("15/03/2024"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestParseMonth(t *testing.T) {
	y, m, err := parseMonth("2024-02")
	if err != nil || y != 2024 || m != time.February {
		t.Fatalf("unexpected %d %s %v", y, m, err)
	}
	if _, _, err := parseMonth("Feb 2024"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount(" 1500.50 ")
	if err != nil || !d.Equal(decimal.RequireFromString("1500.5")) {
		t.Fatalf("unexpected %s %v", d, err)
	}
	if _, err := parseAmount("1,500"); err == nil {
		t.Fatal("expected an error for a grouped number")
	}
}

func TestStringFlag_OnlyWhenChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("email", "", "")
	cmd.Flags().String("phone", "", "")
	if err := cmd.Flags().Parse([]string{"--email", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if v := stringFlag(cmd, "email"); v == nil || *v != "" {
		t.Fatal("expected a set-but-empty flag to return a pointer to blank")
	}
	if v := stringFlag(cmd, "phone"); v != nil {
		t.Fatal("expected an unset flag to return nil")
	}
}

func TestShortIDAndTruncate(t *testing.T) {
	if got := shortID("0f3a9c21-aaaa-bbbb"); got != "0f3a9c21" {
		t.Fatalf("unexpected %q", got)
	}
	if got := shortID("p2"); got != "p2" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("Website redesign", 10); got != "Website..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestWarnReconcile(t *testing.T) {
	if err := warnReconcile(fmt.Errorf("%w: boom", domain.ErrReconcile)); err != nil {
		t.Fatalf("expected reconcile failures to be downgraded, got %v", err)
	}
	other := errors.New("write failed")
	if err := warnReconcile(other); !errors.Is(err, other) {
		t.Fatalf("expected other errors to pass through, got %v", err)
	}
	if err := warnReconcile(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestBar(t *testing.T) {
	if got := bar(decimal.NewFromInt(25), decimal.NewFromInt(100), 8); got != "██" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := bar(decimal.NewFromInt(5), decimal.Zero, 8); got != "" {
		t.Fatalf("expected empty bar for zero peak, got %q", got)
	}
}
