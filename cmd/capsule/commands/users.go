package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// users: list possible message recipients.
func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users you can message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd.Context()); err != nil {
				return err
			}
			if err := ctrl.RefreshUsers(cmd.Context()); err != nil {
				return err
			}
			users := ctrl.Snapshot().Users
			if len(users) == 0 {
				fmt.Println("No other users yet.")
				return nil
			}
			for _, u := range users {
				fmt.Println(u)
			}
			return nil
		},
	}
}
