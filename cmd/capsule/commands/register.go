package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"capsule/internal/client/cli"
)

// register <username>: create an account. Does not log in.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := cli.GetPassword(os.Stderr)
			if err != nil {
				return err
			}
			if err := ctrl.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Println("Registered. You can log in now.")
			return nil
		},
	}
}
