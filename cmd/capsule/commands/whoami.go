package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoami: print the identity the server resolves for the stored token.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(ctrl.Snapshot().Username)
			return nil
		},
	}
}
