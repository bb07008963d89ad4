// Package cli is the interactive shell over the session controller. It owns
// prompting and printing only; every decision about state belongs to the
// controller.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"capsule/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// controller is the command surface the shell needs from the session layer.
type controller interface {
	Snapshot() session.Snapshot
	Restore(ctx context.Context) error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
	SelectRecipient(user string)
	RefreshUsers(ctx context.Context) error
	RefreshInbox(ctx context.Context) error
	Send(ctx context.Context, plaintext string) (int64, error)
	OpenMessage(ctx context.Context, fromUser string) (string, error)
}

type App struct {
	ctrl   controller
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctrl *session.Controller) *App {
	return &App{ctrl: ctrl, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Run restores any persisted session and enters the shell loop.
func (a *App) Run(ctx context.Context) {
	if err := a.ctrl.Restore(ctx); err != nil {
		fmt.Fprintf(a.out, "could not restore session: %v\n", err)
	}
	fmt.Fprintln(a.out, "capsule (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// status renders the prompt suffix, e.g. "(alice, 2 unread)".
func (a *App) status() string {
	snap := a.ctrl.Snapshot()
	if !snap.LoggedIn() {
		return ""
	}
	if n := snap.PendingTotal(); n > 0 {
		return fmt.Sprintf("(%s, %d unread)", snap.Username, n)
	}
	return fmt.Sprintf("(%s)", snap.Username)
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.Snapshot().LoggedIn()
}

func (a *App) promptCredentials() (string, string, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// Register prompts for credentials and creates an account. Registration
// does not log in.
func (a *App) Register(ctx context.Context) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	if err := a.ctrl.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registered. You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	if err := a.ctrl.Login(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.ctrl.Snapshot().Username)
	return nil
}

// Logout clears the session. Never fails: local logout always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.ctrl.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the identity resolved for the current credential.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.ctrl.Snapshot()
	if !snap.LoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintln(a.out, snap.Username)
	return nil
}

// Users refreshes and prints the directory of possible recipients.
func (a *App) Users(ctx context.Context) error {
	if err := a.ctrl.RefreshUsers(ctx); err != nil {
		return err
	}
	snap := a.ctrl.Snapshot()
	if len(snap.Users) == 0 {
		fmt.Fprintln(a.out, "No other users yet.")
		return nil
	}
	for _, u := range snap.Users {
		marker := " "
		if u == snap.Recipient {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, u)
	}
	return nil
}

// Select records the recipient for subsequent send commands.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: select <user>")
		return nil
	}
	a.ctrl.SelectRecipient(args[0])
	fmt.Fprintf(a.out, "Sending to %s\n", args[0])
	return nil
}

// Send delivers the rest of the command line to the selected recipient.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: send <message>")
		return nil
	}
	id, err := a.ctrl.Send(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent (message %d). It will be destroyed when read.\n", id)
	return nil
}

// Inbox refreshes and prints the pending-message summary.
func (a *App) Inbox(ctx context.Context) error {
	if err := a.ctrl.RefreshInbox(ctx); err != nil {
		return err
	}
	snap := a.ctrl.Snapshot()
	if len(snap.Inbox) == 0 {
		fmt.Fprintln(a.out, "Inbox is empty.")
		return nil
	}
	for _, e := range snap.Inbox {
		fmt.Fprintf(a.out, "%s (%d)\n", e.FromUser, e.Count)
	}
	return nil
}

// Open reads one message from the given sender. The message is gone from
// the server once printed.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: open <user>")
		return nil
	}
	plaintext, err := a.ctrl.OpenMessage(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "From %s: %s\n", args[0], plaintext)
	fmt.Fprintln(a.out, "(message deleted from server)")
	return nil
}
