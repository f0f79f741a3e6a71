package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
	"github.com/andy/freelancedesk/internal/finance"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and delete clients.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")

		var clients []domain.Client
		for _, c := range appInstance.Store.Clients() {
			if tag == "" || c.HasTag(tag) {
				clients = append(clients, c)
			}
		}
		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		fmt.Printf("%-9s %-28s %-20s %13s %13s\n", "ID", "Name", "Company", "Paid", "Pending")
		fmt.Println(strings.Repeat("-", 87))
		for _, c := range clients {
			fmt.Printf("%-9s %-28s %-20s %13s %13s\n",
				shortID(c.ID),
				truncate(c.Name, 28),
				truncate(domain.Value(c.Company, "-"), 20),
				finance.FormatCurrency(appInstance.Store.PaidAmountForClient(c.ID)),
				finance.FormatCurrency(appInstance.Store.PendingAmountForClient(c.ID)),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show [id_or_name]",
	Short: "Show a client with its projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveClient(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", c.Name, c.ID)
		for _, f := range []struct {
			label string
			value *string
		}{
			{"Company", c.Company}, {"Email", c.Email}, {"Phone", c.Phone}, {"Address", c.Address}, {"Notes", c.Notes},
		} {
			if v := domain.Value(f.value, ""); v != "" {
				fmt.Printf("  %-8s %s\n", f.label+":", v)
			}
		}
		if len(c.Tags) > 0 {
			fmt.Printf("  Tags:    %s\n", strings.Join(c.Tags, ", "))
		}

		fmt.Println()
		projects := appInstance.Store.ProjectsForClient(c.ID)
		if len(projects) == 0 {
			fmt.Println("No projects")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("  %-9s %-30s %-10s %13s pending\n",
				shortID(p.ID), truncate(p.Title, 30), p.Status,
				finance.FormatCurrency(appInstance.Store.PendingAmount(p.ID)))
		}
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := domain.ClientInput{
			Name:    args[0],
			Company: stringFlag(cmd, "company"),
			Email:   stringFlag(cmd, "email"),
			Phone:   stringFlag(cmd, "phone"),
			Address: stringFlag(cmd, "address"),
			Notes:   stringFlag(cmd, "notes"),
		}
		if tags := stringFlag(cmd, "tags"); tags != nil {
			in.Tags = domain.SplitTags(*tags)
		}

		client, err := appInstance.Store.AddClient(context.Background(), in)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, shortID(client.ID))
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveClient(args[0])
		if err != nil {
			return err
		}

		// Only flags the user passed are changed; an empty value clears the field.
		patch := domain.ClientPatch{
			Name:    stringFlag(cmd, "name"),
			Company: stringFlag(cmd, "company"),
			Email:   stringFlag(cmd, "email"),
			Phone:   stringFlag(cmd, "phone"),
			Address: stringFlag(cmd, "address"),
			Notes:   stringFlag(cmd, "notes"),
		}
		if tags := stringFlag(cmd, "tags"); tags != nil {
			t := domain.SplitTags(*tags)
			patch.Tags = &t
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change")
		}

		updated, err := appInstance.Store.UpdateClient(context.Background(), c.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", updated.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a client with all its projects and payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveClient(args[0])
		if err != nil {
			return err
		}

		projects := len(appInstance.Store.ProjectsForClient(c.ID))
		payments := len(appInstance.Store.PaymentsForClient(c.ID))
		msg := fmt.Sprintf("Delete %s with %d project(s) and %d payment(s)?", c.Name, projects, payments)
		if !yesFlag(cmd) && !confirmPrompt(msg) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.Store.DeleteClient(context.Background(), c.ID); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Printf("✓ Client deleted: %s\n", c.Name)
		return nil
	},
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "Company")
	cmd.Flags().String("email", "", "Email")
	cmd.Flags().String("phone", "", "Phone")
	cmd.Flags().String("address", "", "Address")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().String("notes", "", "Notes about the client")
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsShowCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	clientsListCmd.Flags().String("tag", "", "Only clients with this tag")

	addClientFlags(clientsAddCmd)

	addClientFlags(clientsEditCmd)
	clientsEditCmd.Flags().String("name", "", "New name")

	clientsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
