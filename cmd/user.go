package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/amcprep/internal/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account without an invitation code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserPassword(cmd, args[0], "Created")
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Set a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserPassword(cmd, args[0], "Updated")
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		users, err := e.store.Users().ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users yet.")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(out, "%-24s  %s\n", u.Username, u.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func setUserPassword(cmd *cobra.Command, username, verb string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	svc := auth.NewService(e.store.Users(), e.store.Invites(), e.cfg.Auth, e.log)
	if err := svc.SetPassword(cmd.Context(), username, password); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s user %s.\n", verb, strings.TrimSpace(username))
	return nil
}

// readPassword takes --password, otherwise prompts on a terminal or reads
// one line from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{userAddCmd, userPasswdCmd} {
		c.Flags().String("password", "", "Password (prompted for when omitted)")
		userCmd.AddCommand(c)
	}
	userCmd.AddCommand(userListCmd)
}
