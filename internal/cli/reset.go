package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete your data from the local database",
	Long: `Delete data owned by the signed-in account. Other accounts in the same
database are not touched.

Examples:
  freelancedesk reset payments   # Delete all payments
  freelancedesk reset campaign   # Delete panels, panel users, credentials, reports and audit log
  freelancedesk reset all        # Wipe everything you own`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

type ownedTable struct {
	name  string
	owner string
}

// Children first so foreign keys never block a delete.
var (
	ledgerTables = []ownedTable{
		{"payments", "user_id"},
		{"projects", "user_id"},
		{"clients", "user_id"},
		{"payment_methods", "user_id"},
		{"business_profiles", "user_id"},
	}
	campaignTables = []ownedTable{
		{"campaign_reports", "admin_user_id"},
		{"panel3_credentials", "admin_user_id"},
		{"panel_users", "admin_user_id"},
		{"panels", "admin_user_id"},
		{"audit_log", "user_id"},
	}
)

func resetTables(ctx context.Context, tables []ownedTable) error {
	owner := appInstance.Store.Identity().UserID

	err := appInstance.DB.InTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.name, t.owner)
			if _, err := tx.ExecContext(ctx, query, owner); err != nil {
				return fmt.Errorf("failed to clear %s: %w", t.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Stores still hold the deleted rows.
	if err := appInstance.Store.LoadAll(ctx); err != nil {
		return err
	}
	return appInstance.Campaign.LoadAll(ctx)
}

func newResetCmd(use, short, prompt, done string, tables []ownedTable) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yesFlag(cmd) && !confirmPrompt(prompt) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := resetTables(context.Background(), tables); err != nil {
				return err
			}
			fmt.Println(done)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	return cmd
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(newResetCmd("payments",
		"Delete all payments",
		"This will delete ALL your payments. Project statuses are not changed. Continue?",
		"All payments have been deleted.",
		ledgerTables[:1]))
	resetCmd.AddCommand(newResetCmd("campaign",
		"Delete all campaign panel data and the audit log",
		"This will delete ALL panels, panel users, credentials, campaign reports and audit entries. Continue?",
		"All campaign data has been deleted.",
		campaignTables))
	resetCmd.AddCommand(newResetCmd("all",
		"Delete ALL data: clients, projects, payments, campaign data, everything",
		"This will delete ALL your data. Continue?",
		"All data has been deleted.",
		append(append([]ownedTable{}, ledgerTables...), campaignTables...)))
}
