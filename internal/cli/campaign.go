package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/freelancedesk/internal/domain"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage campaign panels, panel users, credentials and reports",
	Long: `Campaign panel administration. Every change is written to an audit log,
which 'campaign audit' shows.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return requireLogin()
	},
}

// resolvePanel finds a panel by id, id prefix or case-insensitive name
func resolvePanel(ref string) (domain.Panel, error) {
	for _, p := range appInstance.Campaign.Panels() {
		if p.ID == ref || strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return domain.Panel{}, fmt.Errorf("panel '%s' not found", ref)
}

func resolvePanelUser(ref string) (domain.PanelUser, error) {
	for _, u := range appInstance.Campaign.PanelUsers() {
		if u.ID == ref || strings.HasPrefix(u.ID, ref) || strings.EqualFold(u.Username, ref) {
			return u, nil
		}
	}
	return domain.PanelUser{}, fmt.Errorf("panel user '%s' not found", ref)
}

func resolveCredential(ref string) (domain.Panel3Credential, error) {
	for _, c := range appInstance.Campaign.Credentials() {
		if c.ID == ref || strings.HasPrefix(c.ID, ref) || c.LoginID == ref {
			return c, nil
		}
	}
	return domain.Panel3Credential{}, fmt.Errorf("credential '%s' not found", ref)
}

func resolveReport(ref string) (domain.CampaignReport, error) {
	for _, r := range appInstance.Campaign.Reports() {
		if r.ID == ref || strings.HasPrefix(r.ID, ref) || r.CampaignIDExternal == ref {
			return r, nil
		}
	}
	return domain.CampaignReport{}, fmt.Errorf("campaign report '%s' not found", ref)
}

// Panels

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		panels := appInstance.Campaign.Panels()
		if len(panels) == 0 {
			fmt.Println("No panels")
			return nil
		}
		fmt.Printf("%-9s %-24s %-6s %s\n", "ID", "Name", "Users", "Panel 3 creds")
		fmt.Println(strings.Repeat("-", 56))
		for _, p := range panels {
			creds := "no"
			if p.RequiresPanel3Credentials {
				creds = "required"
			}
			fmt.Printf("%-9s %-24s %-6d %s\n", shortID(p.ID), truncate(p.Name, 24),
				len(appInstance.Campaign.UsersForPanel(p.ID)), creds)
		}
		return nil
	},
}

var panelsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requires, _ := cmd.Flags().GetBool("requires-credentials")
		p, err := appInstance.Campaign.AddPanel(context.Background(), domain.PanelInput{
			Name:                      args[0],
			Description:               stringFlag(cmd, "description"),
			RequiresPanel3Credentials: requires,
		})
		if err != nil {
			return fmt.Errorf("failed to add panel: %w", err)
		}
		fmt.Printf("✓ Panel created: %s (ID: %s)\n", p.Name, shortID(p.ID))
		return nil
	},
}

var panelsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit a panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolvePanel(args[0])
		if err != nil {
			return err
		}
		patch := domain.PanelPatch{
			Name:        stringFlag(cmd, "name"),
			Description: stringFlag(cmd, "description"),
		}
		if cmd.Flags().Changed("requires-credentials") {
			v, _ := cmd.Flags().GetBool("requires-credentials")
			patch.RequiresPanel3Credentials = &v
		}
		updated, err := appInstance.Campaign.UpdatePanel(context.Background(), p.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update panel: %w", err)
		}
		fmt.Printf("✓ Panel updated: %s\n", updated.Name)
		return nil
	},
}

var panelsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a panel with its users and reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolvePanel(args[0])
		if err != nil {
			return err
		}
		if !yesFlag(cmd) && !confirmPrompt(fmt.Sprintf("Delete panel %s with its users and reports?", p.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := appInstance.Campaign.DeletePanel(context.Background(), p.ID); err != nil {
			return fmt.Errorf("failed to delete panel: %w", err)
		}
		fmt.Printf("✓ Panel deleted: %s\n", p.Name)
		return nil
	},
}

// Panel users

var panelUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List panel users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users := appInstance.Campaign.PanelUsers()
		if ref, _ := cmd.Flags().GetString("panel"); ref != "" {
			p, err := resolvePanel(ref)
			if err != nil {
				return err
			}
			users = appInstance.Campaign.UsersForPanel(p.ID)
		}
		if len(users) == 0 {
			fmt.Println("No panel users")
			return nil
		}
		fmt.Printf("%-9s %-18s %-28s %-18s %s\n", "ID", "Username", "Email", "Panel", "Active")
		fmt.Println(strings.Repeat("-", 84))
		for _, u := range users {
			fmt.Printf("%-9s %-18s %-28s %-18s %t\n", shortID(u.ID), truncate(u.Username, 18),
				truncate(u.Email, 28), truncate(appInstance.Campaign.PanelName(u.PanelID), 18), u.IsActive)
		}
		return nil
	},
}

var panelUsersAddCmd = &cobra.Command{
	Use:   "add [panel] [username] [email]",
	Short: "Add a user to a panel",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolvePanel(args[0])
		if err != nil {
			return err
		}
		inactive, _ := cmd.Flags().GetBool("inactive")
		u, err := appInstance.Campaign.AddPanelUser(context.Background(), domain.PanelUserInput{
			PanelID:  p.ID,
			Username: args[1],
			Email:    args[2],
			IsActive: !inactive,
		})
		if err != nil {
			return fmt.Errorf("failed to add panel user: %w", err)
		}
		fmt.Printf("✓ Panel user created: %s on %s (ID: %s)\n", u.Username, p.Name, shortID(u.ID))
		return nil
	},
}

var panelUsersEditCmd = &cobra.Command{
	Use:   "edit [id_or_username]",
	Short: "Edit a panel user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := resolvePanelUser(args[0])
		if err != nil {
			return err
		}
		patch := domain.PanelUserPatch{
			Username: stringFlag(cmd, "username"),
			Email:    stringFlag(cmd, "email"),
		}
		if ref := stringFlag(cmd, "panel"); ref != nil {
			p, err := resolvePanel(*ref)
			if err != nil {
				return err
			}
			patch.PanelID = &p.ID
		}
		if cmd.Flags().Changed("active") {
			v, _ := cmd.Flags().GetBool("active")
			patch.IsActive = &v
		}
		updated, err := appInstance.Campaign.UpdatePanelUser(context.Background(), u.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update panel user: %w", err)
		}
		fmt.Printf("✓ Panel user updated: %s\n", updated.Username)
		return nil
	},
}

var panelUsersDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_username]",
	Short: "Delete a panel user and the reports assigned to them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := resolvePanelUser(args[0])
		if err != nil {
			return err
		}
		if !yesFlag(cmd) && !confirmPrompt(fmt.Sprintf("Delete %s and their assigned reports?", u.Username)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := appInstance.Campaign.DeletePanelUser(context.Background(), u.ID); err != nil {
			return fmt.Errorf("failed to delete panel user: %w", err)
		}
		fmt.Printf("✓ Panel user deleted: %s\n", u.Username)
		return nil
	},
}

// Panel 3 credentials

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "List Panel 3 credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := appInstance.Campaign.Credentials()
		if len(creds) == 0 {
			fmt.Println("No credentials")
			return nil
		}
		for _, c := range creds {
			fmt.Printf("%-9s %s\n", shortID(c.ID), c.LoginID)
		}
		return nil
	},
}

var credentialsAddCmd = &cobra.Command{
	Use:   "add [login_id]",
	Short: "Add a Panel 3 credential (password is read from --password)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		c, err := appInstance.Campaign.AddCredential(context.Background(), domain.Panel3CredentialInput{
			LoginID:  args[0],
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("failed to add credential: %w", err)
		}
		fmt.Printf("✓ Credential stored: %s (ID: %s)\n", c.LoginID, shortID(c.ID))
		return nil
	},
}

var credentialsEditCmd = &cobra.Command{
	Use:   "edit [id_or_login]",
	Short: "Change a credential's login or password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveCredential(args[0])
		if err != nil {
			return err
		}
		updated, err := appInstance.Campaign.UpdateCredential(context.Background(), c.ID, domain.Panel3CredentialPatch{
			LoginID:  stringFlag(cmd, "login"),
			Password: stringFlag(cmd, "password"),
		})
		if err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}
		fmt.Printf("✓ Credential updated: %s\n", updated.LoginID)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_login]",
	Short: "Delete a credential; reports using it keep running without one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveCredential(args[0])
		if err != nil {
			return err
		}
		if err := appInstance.Campaign.DeleteCredential(context.Background(), c.ID); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		fmt.Printf("✓ Credential deleted: %s\n", c.LoginID)
		return nil
	},
}

// Campaign reports

var campaignReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List campaign reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		var reports []domain.CampaignReport
		for _, r := range appInstance.Campaign.Reports() {
			if status == "" || string(r.Status) == status {
				reports = append(reports, r)
			}
		}
		if len(reports) == 0 {
			fmt.Println("No campaign reports")
			return nil
		}

		c := appInstance.Campaign
		fmt.Printf("%-9s %-12s %-22s %-16s %-16s %-14s %s\n",
			"ID", "Campaign", "Name", "Panel", "Assigned", "Panel 3", "Status")
		fmt.Println(strings.Repeat("-", 106))
		for _, r := range reports {
			fmt.Printf("%-9s %-12s %-22s %-16s %-16s %-14s %s\n",
				shortID(r.ID),
				truncate(r.CampaignIDExternal, 12),
				truncate(r.CampaignName, 22),
				truncate(c.PanelName(r.PanelID), 16),
				truncate(c.PanelUserName(r.AssignedPanelUserID), 16),
				truncate(c.Panel3LoginID(r.Panel3CredentialID), 14),
				r.Status,
			)
		}
		return nil
	},
}

var campaignReportsAddCmd = &cobra.Command{
	Use:   "add [campaign_id] [name]",
	Short: "Add a campaign report; it starts pending",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		panelRef, _ := cmd.Flags().GetString("panel")
		userRef, _ := cmd.Flags().GetString("user")
		p, err := resolvePanel(panelRef)
		if err != nil {
			return err
		}
		u, err := resolvePanelUser(userRef)
		if err != nil {
			return err
		}
		in := domain.CampaignReportInput{
			CampaignIDExternal:  args[0],
			CampaignName:        args[1],
			PanelID:             p.ID,
			AssignedPanelUserID: u.ID,
			Remarks:             stringFlag(cmd, "remarks"),
		}
		if ref := stringFlag(cmd, "credential"); ref != nil {
			c, err := resolveCredential(*ref)
			if err != nil {
				return err
			}
			in.Panel3CredentialID = &c.ID
		}

		r, err := appInstance.Campaign.AddReport(context.Background(), in)
		if err != nil {
			return fmt.Errorf("failed to add campaign report: %w", err)
		}
		fmt.Printf("✓ Campaign report created: %s (ID: %s, %s)\n", r.CampaignName, shortID(r.ID), r.Status)
		return nil
	},
}

var campaignReportsStatusCmd = &cobra.Command{
	Use:   "status [id] [pending|in-progress|verification|completed|cancelled]",
	Short: "Set a campaign report's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveReport(args[0])
		if err != nil {
			return err
		}
		updated, err := appInstance.Campaign.SetReportStatus(context.Background(), r.ID, domain.CampaignStatus(args[1]))
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		fmt.Printf("✓ %s is now %s\n", updated.CampaignName, updated.Status)
		return nil
	},
}

var campaignReportsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a campaign report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveReport(args[0])
		if err != nil {
			return err
		}
		patch := domain.CampaignReportPatch{
			CampaignIDExternal: stringFlag(cmd, "campaign-id"),
			CampaignName:       stringFlag(cmd, "name"),
			Remarks:            stringFlag(cmd, "remarks"),
		}
		if ref := stringFlag(cmd, "panel"); ref != nil {
			p, err := resolvePanel(*ref)
			if err != nil {
				return err
			}
			patch.PanelID = &p.ID
		}
		if ref := stringFlag(cmd, "user"); ref != nil {
			u, err := resolvePanelUser(*ref)
			if err != nil {
				return err
			}
			patch.AssignedPanelUserID = &u.ID
		}
		if ref := stringFlag(cmd, "credential"); ref != nil {
			// An empty value detaches the credential.
			id := ""
			if *ref != "" {
				c, err := resolveCredential(*ref)
				if err != nil {
					return err
				}
				id = c.ID
			}
			patch.Panel3CredentialID = &id
		}

		updated, err := appInstance.Campaign.UpdateReport(context.Background(), r.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update campaign report: %w", err)
		}
		fmt.Printf("✓ Campaign report updated: %s\n", updated.CampaignName)
		return nil
	},
}

var campaignReportsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a campaign report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveReport(args[0])
		if err != nil {
			return err
		}
		if err := appInstance.Campaign.DeleteReport(context.Background(), r.ID); err != nil {
			return fmt.Errorf("failed to delete campaign report: %w", err)
		}
		fmt.Printf("✓ Campaign report deleted: %s\n", r.CampaignName)
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		logs := appInstance.Campaign.AuditLogs()
		if len(logs) == 0 {
			fmt.Println("No audit entries")
			return nil
		}
		for _, l := range logs {
			fmt.Printf("%s  %-6s %-18s %s\n",
				l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Action, l.TableName, shortID(l.RecordID))
		}
		return nil
	},
}

func init() {
	campaignCmd.AddCommand(panelsCmd)
	campaignCmd.AddCommand(panelUsersCmd)
	campaignCmd.AddCommand(credentialsCmd)
	campaignCmd.AddCommand(campaignReportsCmd)
	campaignCmd.AddCommand(auditCmd)

	panelsCmd.AddCommand(panelsAddCmd, panelsEditCmd, panelsDeleteCmd)
	panelsAddCmd.Flags().String("description", "", "Description")
	panelsAddCmd.Flags().Bool("requires-credentials", false, "Reports on this panel need a Panel 3 credential")
	panelsEditCmd.Flags().String("name", "", "New name")
	panelsEditCmd.Flags().String("description", "", "Description")
	panelsEditCmd.Flags().Bool("requires-credentials", false, "Reports on this panel need a Panel 3 credential")
	panelsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	panelUsersCmd.AddCommand(panelUsersAddCmd, panelUsersEditCmd, panelUsersDeleteCmd)
	panelUsersCmd.Flags().String("panel", "", "Only users of this panel")
	panelUsersAddCmd.Flags().Bool("inactive", false, "Create the user inactive")
	panelUsersEditCmd.Flags().String("panel", "", "Move to another panel")
	panelUsersEditCmd.Flags().String("username", "", "New username")
	panelUsersEditCmd.Flags().String("email", "", "New email")
	panelUsersEditCmd.Flags().Bool("active", true, "Set whether the user is active")
	panelUsersDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	credentialsCmd.AddCommand(credentialsAddCmd, credentialsEditCmd, credentialsDeleteCmd)
	credentialsAddCmd.Flags().String("password", "", "Panel 3 password")
	credentialsAddCmd.MarkFlagRequired("password")
	credentialsEditCmd.Flags().String("login", "", "New login id")
	credentialsEditCmd.Flags().String("password", "", "New password")

	campaignReportsCmd.AddCommand(campaignReportsAddCmd, campaignReportsEditCmd, campaignReportsStatusCmd, campaignReportsDeleteCmd)
	campaignReportsCmd.Flags().String("status", "", "Only reports with this status")
	campaignReportsAddCmd.Flags().String("panel", "", "Panel (id or name)")
	campaignReportsAddCmd.Flags().String("user", "", "Assigned panel user (id or username)")
	campaignReportsAddCmd.Flags().String("credential", "", "Panel 3 credential (id or login)")
	campaignReportsAddCmd.Flags().String("remarks", "", "Remarks")
	campaignReportsAddCmd.MarkFlagRequired("panel")
	campaignReportsAddCmd.MarkFlagRequired("user")
	campaignReportsEditCmd.Flags().String("campaign-id", "", "External campaign id")
	campaignReportsEditCmd.Flags().String("name", "", "Campaign name")
	campaignReportsEditCmd.Flags().String("panel", "", "Panel")
	campaignReportsEditCmd.Flags().String("user", "", "Assigned panel user")
	campaignReportsEditCmd.Flags().String("credential", "", "Panel 3 credential; empty to detach")
	campaignReportsEditCmd.Flags().String("remarks", "", "Remarks")
}
