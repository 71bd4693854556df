package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/retailhub/backoffice/pkg/client"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin only)",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersCreateCmd(a),
		newUsersUpdateCmd(a),
		newUsersDeleteCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
	}
	cmd.RunE = a.guarded(routeUsers, func(cmd *cobra.Command, args []string) error {
		users, err := a.api.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	})
	return cmd
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var req client.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with an explicit role",
	}
	cmd.RunE = a.guarded(routeUsers, func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(cmd, req.Password)
		if err != nil {
			return err
		}
		req.Password = pw
		u, err := a.api.CreateUser(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) with id %s\n", u.Email, u.Role, u.ID)
		return nil
	})

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password (prompted if omitted)")
	cmd.Flags().StringVar(&req.Role, "role", "", "Role: admin, manager or user (server default if omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersUpdateCmd(a *app) *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change name, email or role of an account",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.guarded(routeUsers, func(cmd *cobra.Command, args []string) error {
		var req client.UpdateUserRequest
		if cmd.Flags().Changed("name") {
			req.Name = &name
		}
		if cmd.Flags().Changed("email") {
			req.Email = &email
		}
		if cmd.Flags().Changed("role") {
			req.Role = &role
		}
		if req.Name == nil && req.Email == nil && req.Role == nil {
			return fmt.Errorf("nothing to update: pass --name, --email or --role")
		}
		u, err := a.api.UpdateUser(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s <%s> role=%s\n", u.ID, u.Name, u.Email, u.Role)
		return nil
	})

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&role, "role", "", "New role")
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.guarded(routeUsers, func(cmd *cobra.Command, args []string) error {
		if err := a.api.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
	return cmd
}
