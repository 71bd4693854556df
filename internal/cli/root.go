package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/retailhub/backoffice/pkg/client"
	"github.com/retailhub/backoffice/pkg/logger"
)

// app carries the state shared by every command of one invocation.
type app struct {
	server      string
	storagePath string
	logLevel    string

	log     zerolog.Logger
	session *client.Session
	api     *client.Client
	guard   *client.Guard
}

// defaultServer returns the API URL, checking BACKOFFICE_SERVER first.
func defaultServer() string {
	if s := os.Getenv("BACKOFFICE_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the backoffice CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "backoffice",
		Short: "Retail back-office command line client",
		Long:  "backoffice logs in to the retail back-office API and manages user accounts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.server, "server", defaultServer(), "API server URL (or BACKOFFICE_SERVER env)")
	root.PersistentFlags().StringVar(&a.storagePath, "storage", "", "Session storage file (default ~/.backoffice/storage.json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newUsersCmd(a),
		newManagersCmd(a),
	)

	return root
}

func (a *app) init(stderr io.Writer) error {
	a.log = logger.Init(logger.Options{
		Level:   a.logLevel,
		Pretty:  true,
		Output:  stderr,
		Service: "backoffice-cli",
	})

	path := a.storagePath
	if path == "" {
		p, err := client.DefaultStoragePath()
		if err != nil {
			return err
		}
		path = p
	}

	a.session = client.NewSession(client.NewFileStorage(path))
	if err := a.session.Restore(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	a.api = client.New(a.server, a.session)
	a.guard = client.NewGuard(a.session)
	a.log.Debug().Str("server", a.server).Bool("logged_in", a.session.IsLoggedIn()).Msg("session restored")
	return nil
}

// Routes declared by commands, admitted through the session guard.
var (
	routeDashboard = client.Route{Path: client.RouteDashboard, Protected: true}
	routeUsers     = client.Route{Path: client.RouteUsers, Protected: true, Roles: []string{client.RoleAdmin}}
	routeManagers  = client.Route{Path: "/admin/managers", Protected: true, Roles: []string{client.RoleAdmin}}
)

// guarded admits route through the session guard before running fn.
func (a *app) guarded(route client.Route, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		adm := a.guard.Admit(route)
		if adm.Allowed {
			return fn(cmd, args)
		}
		a.log.Debug().Str("route", route.Path).Str("redirect", adm.Redirect).Msg("command refused by guard")
		if adm.Redirect == client.RouteLogin {
			return fmt.Errorf("not logged in: run `backoffice login` first")
		}
		return fmt.Errorf("this command requires one of the roles %v", route.Roles)
	}
}
