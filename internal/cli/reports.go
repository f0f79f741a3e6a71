package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Dashboard figures and monthly reports",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var reportsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show income, pending amounts and overdue projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := appInstance.ReportService.Dashboard()

		fmt.Printf("Income this month:  %s\n", finance.FormatCurrency(d.IncomeThisMonth))
		fmt.Printf("Pending overall:    %s\n", finance.FormatCurrency(d.PendingOverall))
		fmt.Printf("Active projects:    %d\n", d.ActiveProjects)

		if len(d.Overdue) > 0 {
			fmt.Printf("\nOverdue (%d)\n", len(d.Overdue))
			for _, p := range d.Overdue {
				fmt.Printf("  %-10s %-30s %-18s %12s\n",
					p.DueDate.Format(domain.DateLayout), truncate(p.Title, 30),
					truncate(clientName(p.ClientID), 18), finance.FormatCurrency(p.PendingAmount))
			}
		}

		if len(d.RecentPayments) > 0 {
			fmt.Println("\nRecent payments")
			for _, p := range d.RecentPayments {
				fmt.Printf("  %-10s %-30s %12s\n",
					p.PaymentDate.Format(domain.DateLayout), truncate(projectTitle(p.ProjectID), 30),
					finance.FormatCurrency(p.Amount))
			}
		}
		return nil
	},
}

var reportsIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Show income per month",
	RunE: func(cmd *cobra.Command, args []string) error {
		months, _ := cmd.Flags().GetInt("months")
		rows := appInstance.ReportService.IncomeByMonth(months)

		peak := decimal.Zero
		for _, r := range rows {
			peak = decimal.Max(peak, r.Income)
		}
		for _, r := range rows {
			fmt.Printf("%-8s %14s  %s\n", r.Label(), finance.FormatCurrency(r.Income), bar(r.Income, peak, 40))
		}
		return nil
	},
}

var reportsMonthlyCmd = &cobra.Command{
	Use:   "monthly [YYYY-MM]",
	Short: "Show the report for a month (default: this month)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var monthStr string
		if len(args) == 1 {
			monthStr = args[0]
		}
		year, month, err := parseMonth(monthStr)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("export"); path != "" {
			if err := appInstance.ReportService.ExportMonthlyReport(path, year, month); err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}
			fmt.Printf("✓ Report exported to %s\n", path)
			return nil
		}

		r := appInstance.ReportService.MonthlyReport(year, month)
		fmt.Printf("%s %d\n", r.Month, r.Year)
		fmt.Println(strings.Repeat("=", 40))
		fmt.Printf("New projects:              %d (%s)\n", r.NewProjectsCount, finance.FormatCurrency(r.NewProjectsValue))
		fmt.Printf("Payments from new:         %s\n", finance.FormatCurrency(r.PaymentsFromNewProjects))
		fmt.Printf("Payments from other:       %s\n", finance.FormatCurrency(r.PaymentsFromOtherProjects))
		fmt.Printf("Payments received:         %s\n", finance.FormatCurrency(r.PaymentsReceived))
		fmt.Printf("Pending (due this month):  %s\n", finance.FormatCurrency(r.PendingForMonth))
		fmt.Printf("Completed (due this month): %s\n", finance.FormatCurrency(r.CompletedForMonth))

		if len(r.DueProjects) > 0 {
			fmt.Println("\nDue this month")
			for _, p := range r.DueProjects {
				fmt.Printf("  %-10s %-28s %-10s %12s\n",
					p.DueDate.Format(domain.DateLayout), truncate(p.Title, 28), p.Status,
					finance.FormatCurrency(p.PendingAmount))
			}
		}
		return nil
	},
}

func bar(v, peak decimal.Decimal, width int) string {
	if !peak.IsPositive() || !v.IsPositive() {
		return ""
	}
	n := int(v.Mul(decimal.NewFromInt(int64(width))).Div(peak).IntPart())
	return strings.Repeat("█", max(n, 1))
}

func init() {
	reportsCmd.AddCommand(reportsDashboardCmd)
	reportsCmd.AddCommand(reportsIncomeCmd)
	reportsCmd.AddCommand(reportsMonthlyCmd)

	reportsIncomeCmd.Flags().Int("months", 6, "Number of months to show")
	reportsMonthlyCmd.Flags().String("export", "", "Write the report to this .xlsx file")
}
