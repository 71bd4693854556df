package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retailhub/backoffice/pkg/client"
)

// readPassword returns flagValue or prompts for a line on in.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimSpace(line)
	if pw == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return pw, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			u, err := a.api.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the current session",
		Long:  "Show the identity decoded from the stored token. With --verify the server checks the token first.",
	}
	cmd.RunE = a.guarded(routeDashboard, func(cmd *cobra.Command, args []string) error {
		u := a.session.CurrentUser()
		if verify {
			verified, err := a.api.VerifySession(cmd.Context())
			if err != nil {
				if client.IsCode(err, client.CodeInvalidToken) || client.IsCode(err, client.CodeMissingToken) {
					return fmt.Errorf("session rejected by server, please log in again: %w", err)
				}
				return err
			}
			u = verified
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %s\n", u.ID)
		fmt.Fprintf(out, "Name:    %s\n", u.Name)
		fmt.Fprintf(out, "Email:   %s\n", u.Email)
		fmt.Fprintf(out, "Role:    %s\n", u.Role)
		fmt.Fprintf(out, "Expires: %s\n", u.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	})

	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the token with the server")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a self-service account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			msg, err := a.api.Register(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newManagersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "managers",
		Short: "Manage manager accounts",
	}

	var name, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a manager account (admin only)",
	}
	create.RunE = a.guarded(routeManagers, func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(cmd, password)
		if err != nil {
			return err
		}
		msg, err := a.api.CreateManager(cmd.Context(), name, email, pw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	})
	create.Flags().StringVar(&name, "name", "", "Display name")
	create.Flags().StringVar(&email, "email", "", "Account email")
	create.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}
