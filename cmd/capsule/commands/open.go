package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// open <user>: read and destroy one message from <user>.
func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <user>",
		Short: "Read one message from a sender (deletes it on the server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd.Context()); err != nil {
				return err
			}
			plaintext, err := ctrl.OpenMessage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("From %s: %s\n", args[0], plaintext)
			fmt.Println("(message deleted from server)")
			return nil
		},
	}
}
