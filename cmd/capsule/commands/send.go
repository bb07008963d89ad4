package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// send <receiver> <message...>: deliver a message. Whether the receiver
// exists is decided by the server.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <receiver> <message>",
		Short: "Send an ephemeral message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd.Context()); err != nil {
				return err
			}
			ctrl.SelectRecipient(args[0])
			id, err := ctrl.Send(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Sent (message %d). It will be destroyed when read.\n", id)
			return nil
		},
	}
}
