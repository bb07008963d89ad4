package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"capsule/internal/client/cli"
)

// login <username>: authenticate and persist the session token.
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := cli.GetPassword(os.Stderr)
			if err != nil {
				return err
			}
			if err := ctrl.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", ctrl.Snapshot().Username)
			return nil
		},
	}
}
