package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tokeley/researchlog/internal/repo"
	"golang.org/x/term"
)

const minPasswordLen = 8

// ==========================
// user commands
// ==========================
func userCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		createUserCmd(open),
		resetPasswordCmd(open),
		setAdminCmd(open, "promote", true),
		setAdminCmd(open, "demote", false),
		listUsersCmd(open),
	)
	return cmd
}

func createUserCmd(open opener) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create an account (password read from the terminal or stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return errors.New("username is required")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			user, err := repo.NewUserRepo(database).Create(cmd.Context(), username, password, admin)
			if errors.Is(err, repo.ErrDuplicate) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (admin=%t) %s\n", user.Username, user.IsAdmin, user.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	return cmd
}

func resetPasswordCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [username]",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			err = repo.NewUserRepo(database).SetPassword(cmd.Context(), args[0], password)
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("no such user %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", args[0])
			return nil
		},
	}
}

func setAdminCmd(open opener, use string, isAdmin bool) *cobra.Command {
	short := "Grant admin rights"
	if !isAdmin {
		short = "Revoke admin rights"
	}
	return &cobra.Command{
		Use:   use + " [username]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			err = repo.NewUserRepo(database).SetAdmin(cmd.Context(), args[0], isAdmin)
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("no such user %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", args[0], isAdmin)
			return nil
		},
	}
}

func listUsersCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			users, err := repo.NewUserRepo(database).List(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Username", "Admin", "Created"})
			for _, u := range users {
				t.AppendRow(table.Row{u.ID, u.Username, u.IsAdmin, u.CreatedAt.Format("2006-01-02")})
			}
			t.Render()
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and otherwise reads one line from the command input.
func readPassword(cmd *cobra.Command) (string, error) {
	var password string
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if len(password) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return password, nil
}
