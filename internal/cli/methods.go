package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
)

var methodsCmd = &cobra.Command{
	Use:     "methods",
	Aliases: []string{"payment-methods"},
	Short:   "Manage payment methods",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var methodsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payment methods",
	RunE: func(cmd *cobra.Command, args []string) error {
		methods := appInstance.Store.PaymentMethods()
		if len(methods) == 0 {
			fmt.Println("No payment methods")
			return nil
		}
		for _, m := range methods {
			marker := " "
			if m.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %-9s %-20s %s\n", marker, shortID(m.ID), m.Name, domain.Value(m.Details, ""))
		}
		return nil
	},
}

var methodsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isDefault, _ := cmd.Flags().GetBool("default")
		m, err := appInstance.Store.AddPaymentMethod(context.Background(), domain.PaymentMethodInput{
			Name:      args[0],
			Details:   stringFlag(cmd, "details"),
			IsDefault: isDefault,
		})
		if err != nil {
			return fmt.Errorf("failed to add payment method: %w", err)
		}

		fmt.Printf("✓ Payment method added: %s (ID: %s)\n", m.Name, shortID(m.ID))
		return nil
	},
}

var methodsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit a payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := resolveMethod(args[0])
		if err != nil {
			return err
		}
		patch := domain.PaymentMethodPatch{
			Name:    stringFlag(cmd, "name"),
			Details: stringFlag(cmd, "details"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change")
		}
		updated, err := appInstance.Store.UpdatePaymentMethod(context.Background(), m.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update payment method: %w", err)
		}

		fmt.Printf("✓ Payment method updated: %s\n", updated.Name)
		return nil
	},
}

var methodsDefaultCmd = &cobra.Command{
	Use:   "default [id_or_name]",
	Short: "Make a payment method the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := resolveMethod(args[0])
		if err != nil {
			return err
		}
		if _, err := appInstance.Store.SetDefaultPaymentMethod(context.Background(), m.ID); err != nil {
			return fmt.Errorf("failed to set default: %w", err)
		}

		fmt.Printf("✓ %s is now the default payment method\n", m.Name)
		return nil
	},
}

var methodsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := resolveMethod(args[0])
		if err != nil {
			return err
		}
		if err := appInstance.Store.DeletePaymentMethod(context.Background(), m.ID); err != nil {
			return fmt.Errorf("failed to delete payment method: %w", err)
		}

		fmt.Printf("✓ Payment method deleted: %s\n", m.Name)
		return nil
	},
}

func init() {
	methodsCmd.AddCommand(methodsListCmd)
	methodsCmd.AddCommand(methodsAddCmd)
	methodsCmd.AddCommand(methodsEditCmd)
	methodsCmd.AddCommand(methodsDefaultCmd)
	methodsCmd.AddCommand(methodsDeleteCmd)

	methodsAddCmd.Flags().String("details", "", "Account number, UPI id, etc.")
	methodsAddCmd.Flags().Bool("default", false, "Make this the default method")

	methodsEditCmd.Flags().String("name", "", "New name")
	methodsEditCmd.Flags().String("details", "", "New details")
}
