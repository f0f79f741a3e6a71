package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the business profile printed on invoices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the business profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := appInstance.Store.BusinessProfile()
		if b == nil {
			fmt.Println("No business profile yet. Set one with 'freelancedesk profile set'.")
			return nil
		}
		fmt.Printf("Business: %s\n", domain.Value(b.BusinessName, "-"))
		fmt.Printf("Email:    %s\n", domain.Value(b.ContactEmail, "-"))
		fmt.Printf("Phone:    %s\n", domain.Value(b.PhoneNumber, "-"))
		fmt.Printf("Address:  %s\n", domain.Value(b.Address, "-"))
		fmt.Printf("Website:  %s\n", domain.Value(b.Website, "-"))
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update business profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := domain.BusinessProfilePatch{
			BusinessName: stringFlag(cmd, "name"),
			ContactEmail: stringFlag(cmd, "email"),
			PhoneNumber:  stringFlag(cmd, "phone"),
			Address:      stringFlag(cmd, "address"),
			Website:      stringFlag(cmd, "website"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change")
		}
		if _, err := appInstance.Store.SaveBusinessProfile(context.Background(), patch); err != nil {
			return fmt.Errorf("failed to save business profile: %w", err)
		}

		fmt.Println("✓ Business profile saved")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)

	profileSetCmd.Flags().String("name", "", "Business name")
	profileSetCmd.Flags().String("email", "", "Contact email")
	profileSetCmd.Flags().String("phone", "", "Phone number")
	profileSetCmd.Flags().String("address", "", "Address")
	profileSetCmd.Flags().String("website", "", "Website URL")
}
