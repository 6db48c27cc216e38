package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/auth"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage invitation codes",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate new invitation codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := auth.NewService(e.store.Users(), e.store.Invites(), e.cfg.Auth, e.log)
		codes, err := svc.IssueInvites(cmd.Context(), n)
		if err != nil {
			return err
		}
		for _, c := range codes {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invitation codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		unused, _ := cmd.Flags().GetBool("unused")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		codes, err := e.store.Invites().ListInvitationCodes(cmd.Context())
		if err != nil {
			return fmt.Errorf("list codes: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s  %-16s  %-16s  %s\n", "Code", "Created", "Used by", "Used at")
		for _, c := range codes {
			if unused && c.Used {
				continue
			}
			usedBy, usedAt := "-", "-"
			if c.Used {
				usedBy = c.UsedBy
				usedAt = c.UsedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%-10s  %-16s  %-16s  %s\n",
				c.Code, c.CreatedAt.Local().Format("2006-01-02 15:04"), usedBy, usedAt)
		}
		return nil
	},
}

func init() {
	inviteCreateCmd.Flags().IntP("count", "n", 1, "Number of codes to create")
	inviteListCmd.Flags().Bool("unused", false, "Only show codes that are still available")

	inviteCmd.AddCommand(inviteCreateCmd)
	inviteCmd.AddCommand(inviteListCmd)
}
