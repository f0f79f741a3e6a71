package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Record and manage payments",
	Long: `Record payments against projects. A project whose payments reach its total
is marked completed automatically.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRef, _ := cmd.Flags().GetString("project")
		clientRef, _ := cmd.Flags().GetString("client")
		monthStr, _ := cmd.Flags().GetString("month")

		payments := appInstance.Store.Payments()
		switch {
		case projectRef != "":
			p, err := resolveProject(projectRef)
			if err != nil {
				return err
			}
			payments = appInstance.Store.PaymentsForProject(p.ID)
		case clientRef != "":
			c, err := resolveClient(clientRef)
			if err != nil {
				return err
			}
			payments = appInstance.Store.PaymentsForClient(c.ID)
		}

		if monthStr != "" {
			year, month, err := parseMonth(monthStr)
			if err != nil {
				return err
			}
			var inMonth []domain.Payment
			for _, p := range payments {
				if domain.SameMonth(p.PaymentDate, year, month) {
					inMonth = append(inMonth, p)
				}
			}
			payments = inMonth
		}

		if len(payments) == 0 {
			fmt.Println("No payments found")
			return nil
		}

		fmt.Printf("%-9s %-10s %-24s %-18s %12s %-12s\n", "ID", "Date", "Project", "Client", "Amount", "Method")
		fmt.Println(strings.Repeat("-", 90))
		for _, p := range payments {
			fmt.Printf("%-9s %-10s %-24s %-18s %12s %-12s\n",
				shortID(p.ID),
				p.PaymentDate.Format(domain.DateLayout),
				truncate(projectTitle(p.ProjectID), 24),
				truncate(clientName(p.ClientID), 18),
				finance.FormatCurrency(p.Amount),
				truncate(domain.Value(p.PaymentMethod, "-"), 12),
			)
		}

		fmt.Printf("\nTotal: %d payment(s)\n", len(payments))
		return nil
	},
}

var paymentsAddCmd = &cobra.Command{
	Use:   "add [project] [amount]",
	Short: "Record a payment against a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}

		date := domain.Date(time.Now())
		if d, err := dateFlag(cmd, "date"); err != nil {
			return err
		} else if d != nil {
			date = *d
		}

		method := stringFlag(cmd, "method")
		if method == nil {
			if m, ok := appInstance.Store.Snapshot().DefaultPaymentMethod(); ok {
				method = &m.Name
			}
		}

		payment, err := appInstance.Store.AddPayment(context.Background(), domain.PaymentInput{
			ProjectID:     p.ID,
			Amount:        amount,
			PaymentDate:   date,
			PaymentMethod: method,
			ReferenceID:   stringFlag(cmd, "ref"),
			Notes:         stringFlag(cmd, "notes"),
		})
		if err := warnReconcile(err); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		fmt.Printf("✓ Payment recorded: %s for %s (ID: %s)\n",
			finance.FormatCurrency(payment.Amount), p.Title, shortID(payment.ID))
		printProjectBalance(p.ID)
		return nil
	},
}

var paymentsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		existing, err := resolvePayment(args[0])
		if err != nil {
			return err
		}

		patch := domain.PaymentPatch{
			PaymentMethod: stringFlag(cmd, "method"),
			ReferenceID:   stringFlag(cmd, "ref"),
			Notes:         stringFlag(cmd, "notes"),
		}
		if ref := stringFlag(cmd, "project"); ref != nil {
			p, err := resolveProject(*ref)
			if err != nil {
				return err
			}
			patch.ProjectID = &p.ID
		}
		if patch.Amount, err = amountFlag(cmd, "amount"); err != nil {
			return err
		}
		if patch.PaymentDate, err = dateFlag(cmd, "date"); err != nil {
			return err
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change")
		}

		payment, err := appInstance.Store.UpdatePayment(context.Background(), existing.ID, patch)
		if err := warnReconcile(err); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		fmt.Printf("✓ Payment updated: %s on %s\n",
			finance.FormatCurrency(payment.Amount), payment.PaymentDate.Format(domain.DateLayout))
		printProjectBalance(payment.ProjectID)
		return nil
	},
}

var paymentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolvePayment(args[0])
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("Delete payment of %s for %s?", finance.FormatCurrency(p.Amount), projectTitle(p.ProjectID))
		if !yesFlag(cmd) && !confirmPrompt(msg) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := appInstance.Store.DeletePayment(context.Background(), p.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}

		fmt.Println("✓ Payment deleted")
		return nil
	},
}

func printProjectBalance(projectID string) {
	p, ok := appInstance.Store.ProjectWithCalculations(projectID)
	if !ok {
		return
	}
	fmt.Printf("  %s: paid %s of %s, pending %s (%s)\n",
		p.Title,
		finance.FormatCurrency(p.PaidAmount),
		finance.FormatCurrency(p.TotalAmount),
		finance.FormatCurrency(p.PendingAmount),
		p.Status,
	)
}

func init() {
	paymentsCmd.AddCommand(paymentsListCmd)
	paymentsCmd.AddCommand(paymentsAddCmd)
	paymentsCmd.AddCommand(paymentsEditCmd)
	paymentsCmd.AddCommand(paymentsDeleteCmd)

	paymentsListCmd.Flags().String("project", "", "Only payments for this project")
	paymentsListCmd.Flags().String("client", "", "Only payments for this client")
	paymentsListCmd.Flags().String("month", "", "Only payments in this month (YYYY-MM)")

	paymentsAddCmd.Flags().String("date", "", "Payment date (YYYY-MM-DD, today, yesterday)")
	paymentsAddCmd.Flags().String("method", "", "Payment method (default: your default method)")
	paymentsAddCmd.Flags().String("ref", "", "Reference or transaction ID")
	paymentsAddCmd.Flags().String("notes", "", "Notes")

	paymentsEditCmd.Flags().String("project", "", "Move to another project")
	paymentsEditCmd.Flags().String("amount", "", "New amount")
	paymentsEditCmd.Flags().String("date", "", "New payment date")
	paymentsEditCmd.Flags().String("method", "", "Payment method")
	paymentsEditCmd.Flags().String("ref", "", "Reference or transaction ID")
	paymentsEditCmd.Flags().String("notes", "", "Notes")

	paymentsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
