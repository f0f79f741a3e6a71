package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "freelancedesk",
	Short: "A freelancer dashboard for clients, projects and payments",
	Long: `Freelancedesk tracks clients, projects and the payments received against them,
and reports what is earned, pending and overdue.

By default, running freelancedesk without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(campaignCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
