package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// inbox: show pending messages grouped by sender.
func inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Show pending messages by sender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd.Context()); err != nil {
				return err
			}
			if err := ctrl.RefreshInbox(cmd.Context()); err != nil {
				return err
			}
			entries := ctrl.Snapshot().Inbox
			if len(entries) == 0 {
				fmt.Println("Inbox is empty.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s (%d)\n", e.FromUser, e.Count)
			}
			return nil
		},
	}
}
