// Package commands wires the capsule CLI: one-shot subcommands for every
// messaging operation plus an interactive shell as the default run.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"capsule/internal/client/api"
	"capsule/internal/client/cli"
	"capsule/internal/client/config"
	"capsule/internal/client/credstore"
	"capsule/internal/client/session"
	"capsule/internal/logging"
)

var (
	cfgPath    string
	serverURL  string
	dataDir    string
	timeoutSec int
	verbose    bool

	store *credstore.Store
	ctrl  *session.Controller
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "capsule",
		Short: "Client for the capsule ephemeral messaging service",
		Long: "capsule sends short text messages that the server deletes " +
			"permanently the moment they are read. Run without a subcommand " +
			"for an interactive shell.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}
			if timeoutSec > 0 {
				cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if cfg.DataDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				cfg.DataDir = filepath.Join(home, ".capsule")
			}
			if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
				return err
			}

			log := logging.NewText(os.Stderr, verbose)
			store = credstore.Open(filepath.Join(cfg.DataDir, "state.db"), log)
			client := api.New(cfg.ServerURL, cfg.RequestTimeout, log)
			ctrl = session.New(client, client, store, log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				_ = store.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.NewApp(ctrl).Run(cmd.Context())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&serverURL, "server", "a", "", "base URL of the capsule server")
	pf.StringVar(&dataDir, "data-dir", "", "local state directory (default ~/.capsule)")
	pf.IntVar(&timeoutSec, "timeout", 0, "request timeout in seconds")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		registerCmd(), loginCmd(), logoutCmd(), whoamiCmd(),
		usersCmd(), sendCmd(), inboxCmd(), openCmd(),
	)
	return root.ExecuteContext(ctx)
}

// restoreSession reconnects a one-shot command to the persisted session and
// fails if no valid login is available.
func restoreSession(ctx context.Context) error {
	if err := ctrl.Restore(ctx); err != nil {
		return err
	}
	if !ctrl.Snapshot().LoggedIn() {
		return fmt.Errorf("not logged in; run 'capsule login <username>' first")
	}
	return nil
}
