package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/service"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Generate project invoices",
	Long:  `Render an invoice for a project from its total, payments and your business profile.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var invoicesGenerateCmd = &cobra.Command{
	Use:   "generate [project]",
	Short: "Generate an invoice for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}

		date := domain.Date(time.Now())
		if d, err := dateFlag(cmd, "date"); err != nil {
			return err
		} else if d != nil {
			date = *d
		}

		inv, err := appInstance.InvoiceService.Build(p.ID, date)
		if err != nil {
			return fmt.Errorf("failed to build invoice: %w", err)
		}

		if toStdout, _ := cmd.Flags().GetBool("print"); toStdout {
			fmt.Print(service.RenderText(inv))
			return nil
		}

		path, err := appInstance.InvoiceService.WriteText(inv)
		if err != nil {
			return fmt.Errorf("failed to write invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s written to %s\n", inv.InvoiceNumber, path)
		return nil
	},
}

func init() {
	invoicesCmd.AddCommand(invoicesGenerateCmd)

	invoicesGenerateCmd.Flags().String("date", "", "Invoice date (YYYY-MM-DD, default today)")
	invoicesGenerateCmd.Flags().Bool("print", false, "Print to stdout instead of writing a file")
}
