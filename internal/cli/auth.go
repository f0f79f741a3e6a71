package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in with a WhatsApp one-time code",
}

var authLoginCmd = &cobra.Command{
	Use:   "login [phone]",
	Short: "Send a one-time code to your WhatsApp number and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		phone := args[0]

		code, _ := cmd.Flags().GetString("code")
		if code == "" {
			normalized, err := appInstance.Auth.SendOTP(ctx, phone)
			if err != nil {
				return err
			}
			phone = normalized
			fmt.Printf("✓ OTP sent to %s via WhatsApp\n", normalized)

			fmt.Print("Enter the 6-digit code: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read code: %w", err)
			}
			code = strings.TrimSpace(line)
		}

		id, err := appInstance.Auth.VerifyOTP(ctx, phone, code)
		if errors.Is(err, auth.ErrInvalidOTP) {
			return fmt.Errorf("invalid or expired OTP, request a new one")
		}
		if err != nil {
			return err
		}
		if err := appInstance.Session.SignIn(ctx, id); err != nil {
			return fmt.Errorf("signed in, but loading data failed: %w", err)
		}

		fmt.Printf("✓ Signed in as %s\n", id.Phone)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Session.SignOut(context.Background()); err != nil {
			return err
		}
		fmt.Println("✓ Signed out")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := appInstance.Session.Current()
		if id == nil {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("User:  %s\n", id.UserID)
		fmt.Printf("Phone: %s\n", id.Phone)
		fmt.Printf("Email: %s\n", id.Email)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)

	authLoginCmd.Flags().String("code", "", "Verify a code you already received instead of sending a new one")
}
