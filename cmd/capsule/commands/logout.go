package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logout: revoke the server session best-effort and clear local state.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl.Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}
}
