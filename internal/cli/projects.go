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

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
	Long:  `List, add, edit, and delete projects. Payments are tracked against projects.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with paid and pending amounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientRef, _ := cmd.Flags().GetString("client")
		status, _ := cmd.Flags().GetString("status")
		overdue, _ := cmd.Flags().GetBool("overdue")

		var clientID string
		if clientRef != "" {
			c, err := resolveClient(clientRef)
			if err != nil {
				return err
			}
			clientID = c.ID
		}
		overdueIDs := make(map[string]bool)
		for _, p := range appInstance.Store.OverdueProjects() {
			overdueIDs[p.ID] = true
		}

		var rows []domain.ProjectWithCalculations
		for _, p := range appInstance.Store.ProjectsWithCalculations() {
			if clientID != "" && p.ClientID != clientID {
				continue
			}
			if status != "" && string(p.Status) != status {
				continue
			}
			if overdue && !overdueIDs[p.ID] {
				continue
			}
			rows = append(rows, p)
		}
		if len(rows) == 0 {
			fmt.Println("No projects found")
			return nil
		}

		fmt.Printf("%-9s %-26s %-18s %-10s %-10s %12s %12s %12s\n",
			"ID", "Title", "Client", "Status", "Due", "Total", "Paid", "Pending")
		fmt.Println(strings.Repeat("-", 116))
		for _, p := range rows {
			due := p.DueDate.Format(domain.DateLayout)
			if overdueIDs[p.ID] {
				due += "!"
			}
			fmt.Printf("%-9s %-26s %-18s %-10s %-10s %12s %12s %12s\n",
				shortID(p.ID),
				truncate(p.Title, 26),
				truncate(clientName(p.ClientID), 18),
				p.Status,
				due,
				finance.FormatCurrency(p.TotalAmount),
				finance.FormatCurrency(p.PaidAmount),
				finance.FormatCurrency(p.PendingAmount),
			)
		}

		fmt.Printf("\nTotal: %d project(s)\n", len(rows))
		return nil
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add [client] [title]",
	Short: "Add a new project for a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveClient(args[0])
		if err != nil {
			return err
		}
		totalStr, _ := cmd.Flags().GetString("total")
		total, err := parseAmount(totalStr)
		if err != nil {
			return err
		}

		start := domain.Date(time.Now())
		if s, err := dateFlag(cmd, "start"); err != nil {
			return err
		} else if s != nil {
			start = *s
		}
		due, err := dateFlag(cmd, "due")
		if err != nil {
			return err
		}
		if due == nil {
			return fmt.Errorf("--due is required")
		}
		status, _ := cmd.Flags().GetString("status")

		p, err := appInstance.Store.AddProject(context.Background(), domain.ProjectInput{
			ClientID:    c.ID,
			Title:       args[1],
			Description: stringFlag(cmd, "description"),
			Notes:       stringFlag(cmd, "notes"),
			TotalAmount: total,
			StartDate:   start,
			DueDate:     *due,
			Status:      domain.ProjectStatus(status),
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✓ Project created: %s (ID: %s)\n", p.Title, shortID(p.ID))
		fmt.Printf("  Client: %s  Total: %s  Due: %s\n", c.Name, finance.FormatCurrency(p.TotalAmount), p.DueDate.Format(domain.DateLayout))
		return nil
	},
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit [id_or_title]",
	Short: "Edit a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}

		patch := domain.ProjectPatch{
			Title:       stringFlag(cmd, "title"),
			Description: stringFlag(cmd, "description"),
			Notes:       stringFlag(cmd, "notes"),
		}
		if ref := stringFlag(cmd, "client"); ref != nil {
			c, err := resolveClient(*ref)
			if err != nil {
				return err
			}
			patch.ClientID = &c.ID
		}
		if patch.TotalAmount, err = amountFlag(cmd, "total"); err != nil {
			return err
		}
		if patch.StartDate, err = dateFlag(cmd, "start"); err != nil {
			return err
		}
		if patch.DueDate, err = dateFlag(cmd, "due"); err != nil {
			return err
		}
		if s := stringFlag(cmd, "status"); s != nil {
			st := domain.ProjectStatus(*s)
			patch.Status = &st
		}

		updated, err := appInstance.Store.UpdateProject(context.Background(), p.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		fmt.Printf("✓ Project updated: %s (%s)\n", updated.Title, updated.Status)
		return nil
	},
}

var projectsStatusCmd = &cobra.Command{
	Use:   "status [id_or_title] [proposal|active|completed|cancelled]",
	Short: "Set a project's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}
		status := domain.ProjectStatus(args[1])
		updated, err := appInstance.Store.UpdateProject(context.Background(), p.ID, domain.ProjectPatch{Status: &status})
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		fmt.Printf("✓ %s is now %s\n", updated.Title, updated.Status)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_title]",
	Short: "Delete a project and its payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveProject(args[0])
		if err != nil {
			return err
		}

		payments := len(appInstance.Store.PaymentsForProject(p.ID))
		if !yesFlag(cmd) && !confirmPrompt(fmt.Sprintf("Delete %s and its %d payment(s)?", p.Title, payments)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := appInstance.Store.DeleteProject(context.Background(), p.ID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		fmt.Printf("✓ Project deleted: %s\n", p.Title)
		return nil
	},
}

func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("total", "", "Total amount")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("status", "", "proposal, active, completed or cancelled")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("notes", "", "Notes")
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsEditCmd)
	projectsCmd.AddCommand(projectsStatusCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)

	projectsListCmd.Flags().String("client", "", "Only projects for this client")
	projectsListCmd.Flags().String("status", "", "Only projects with this status")
	projectsListCmd.Flags().Bool("overdue", false, "Only overdue projects")

	addProjectFlags(projectsAddCmd)
	projectsAddCmd.MarkFlagRequired("total")
	projectsAddCmd.MarkFlagRequired("due")

	addProjectFlags(projectsEditCmd)
	projectsEditCmd.Flags().String("title", "", "New title")
	projectsEditCmd.Flags().String("client", "", "Move to another client")

	projectsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
