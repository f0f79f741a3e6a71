package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive dashboard for clients, projects, payments and reports.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	return tui.Run(appInstance)
}
