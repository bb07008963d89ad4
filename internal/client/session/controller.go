// Package session owns client-side session state: the authentication state
// machine, the cached user directory and inbox summary, and the consistency
// rules between them and server-held truth.
//
// All state lives in a single Snapshot value replaced atomically on every
// transition. The presentation layer reads snapshots and subscribes to
// change notifications; it never reaches into shared mutable state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"capsule/internal/client/api"
	"capsule/internal/logging"
)

// ErrValidation marks failures of local preconditions. Calls failing this
// way never reached the network.
var ErrValidation = errors.New("validation")

// DirectoryClient is the server surface for accounts and identities.
type DirectoryClient interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	Users(ctx context.Context, token string) ([]string, error)
}

// InboxClient is the server surface for ephemeral messages.
type InboxClient interface {
	Send(ctx context.Context, token, receiver, plaintext string) (int64, error)
	Inbox(ctx context.Context, token string) ([]api.InboxEntry, error)
	Open(ctx context.Context, token, fromUser string) (string, error)
}

// CredentialStore holds the durable bearer token. Implementations must be
// safe for concurrent use.
type CredentialStore interface {
	Get() (string, bool)
	Set(token string)
	Clear()
}

// Controller mediates every session transition. It is the single writer of
// the credential store and of the snapshot; API clients only ever read the
// token it hands them.
type Controller struct {
	dir   DirectoryClient
	inbox InboxClient
	creds CredentialStore
	log   logging.Logger

	mu   sync.Mutex
	snap Snapshot
	subs []func(Snapshot)

	// Refresh completions are stamped so a slow fetch cannot overwrite a
	// newer result with stale data.
	usersSeq, usersApplied uint64
	inboxSeq, inboxApplied uint64
}

func New(dir DirectoryClient, inbox InboxClient, creds CredentialStore, log logging.Logger) *Controller {
	return &Controller{dir: dir, inbox: inbox, creds: creds, log: log}
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// Subscribe registers fn to be called after every state transition with the
// new snapshot. fn must not block; it runs on the mutating goroutine.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// update applies mutate to the snapshot under the lock and notifies
// subscribers outside it.
func (c *Controller) update(mutate func(*Snapshot)) {
	c.mu.Lock()
	mutate(&c.snap)
	snap := c.snap.clone()
	subs := append(([]func(Snapshot))(nil), c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// ValidateCredentials enforces the registration/login gate: the server
// would accept shorter values, but the product never sends them.
func ValidateCredentials(username, password string) error {
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	return nil
}

func (c *Controller) token() (string, error) {
	t, ok := c.creds.Get()
	if !ok {
		return "", fmt.Errorf("%w: not logged in", ErrValidation)
	}
	return t, nil
}

// authFail handles a failed authenticated call. A rejected credential
// downgrades the session: the token is purged and the state returns to
// Anonymous, since the server has revoked it and every further call would
// fail the same way. Other failures pass through untouched.
func (c *Controller) authFail(ctx context.Context, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		c.log.Warn(ctx, "credential rejected mid-session, logging out", "err", err)
		c.creds.Clear()
		c.update(func(s *Snapshot) { *s = Snapshot{} })
	}
	return err
}

// Restore reconciles a persisted credential against server truth at startup.
// No stored token is a normal no-op. A stored token is confirmed with Me;
// on any failure it is purged so the next start does not retry a dead
// session. Returns nil when the outcome is a settled Anonymous or
// Authenticated state; a transport failure is returned after the purge.
func (c *Controller) Restore(ctx context.Context) error {
	token, ok := c.creds.Get()
	if !ok {
		return nil
	}

	log := c.log.With("op", uuid.NewString())
	username, err := c.dir.Me(ctx, token)
	if err != nil {
		log.Warn(ctx, "stored credential not accepted, clearing", "err", err)
		c.creds.Clear()
		c.update(func(s *Snapshot) { *s = Snapshot{} })
		if errors.Is(err, api.ErrUnauthorized) {
			return nil
		}
		return err
	}

	log.Info(ctx, "session restored", "username", username)
	c.update(func(s *Snapshot) {
		*s = Snapshot{State: Authenticated, Username: username}
	})
	c.refreshAll(ctx, log)
	return nil
}

// Register creates an account. It does not log in and touches no local state.
func (c *Controller) Register(ctx context.Context, username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}
	return c.dir.Register(ctx, username, password)
}

// Login authenticates and, once the identity is confirmed, replaces the
// whole session state. A login response alone never authenticates: Me must
// succeed first. On any failure the state settles back to Anonymous and the
// credential store is left unchanged, except that a token already committed
// and then rejected is purged.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}

	log := c.log.With("op", uuid.NewString())
	c.update(func(s *Snapshot) { s.State = Authenticating })

	token, err := c.dir.Login(ctx, username, password)
	if err != nil {
		c.update(func(s *Snapshot) { s.State = Anonymous })
		return err
	}

	// Commit before identity resolution: the server session exists now, and
	// a startup Restore can still reconcile the token if Me fails on a
	// transport error.
	c.creds.Set(token)

	me, err := c.dir.Me(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.creds.Clear()
		}
		c.update(func(s *Snapshot) { s.State = Anonymous })
		return err
	}

	log.Info(ctx, "logged in", "username", me)
	c.update(func(s *Snapshot) {
		*s = Snapshot{State: Authenticated, Username: me}
	})
	c.refreshAll(ctx, log)
	return nil
}

// Logout revokes the server-side session best-effort and clears local state
// unconditionally: stopping being logged in locally must always succeed.
func (c *Controller) Logout(ctx context.Context) {
	if token, ok := c.creds.Get(); ok {
		if err := c.dir.Logout(ctx, token); err != nil {
			c.log.Warn(ctx, "server-side logout failed, clearing locally anyway", "err", err)
		}
	}
	c.creds.Clear()
	c.update(func(s *Snapshot) { *s = Snapshot{} })
}

// SelectRecipient records the message target for subsequent Send calls.
// An empty name clears the selection. No network traffic.
func (c *Controller) SelectRecipient(user string) {
	c.update(func(s *Snapshot) { s.Recipient = user })
}

// RefreshUsers pulls the user directory. Stale completions are discarded.
func (c *Controller) RefreshUsers(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.usersSeq++
	seq := c.usersSeq
	c.mu.Unlock()

	users, err := c.dir.Users(ctx, token)
	if err != nil {
		return c.authFail(ctx, err)
	}

	c.update(func(s *Snapshot) {
		if seq <= c.usersApplied || s.State != Authenticated {
			return
		}
		c.usersApplied = seq
		s.Users = users
	})
	return nil
}

// RefreshInbox pulls the pending-message summary. Every inbox view is a
// fresh pull; another party may have sent messages concurrently.
func (c *Controller) RefreshInbox(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.inboxSeq++
	seq := c.inboxSeq
	c.mu.Unlock()

	entries, err := c.inbox.Inbox(ctx, token)
	if err != nil {
		return c.authFail(ctx, err)
	}

	c.update(func(s *Snapshot) {
		if seq <= c.inboxApplied || s.State != Authenticated {
			return
		}
		c.inboxApplied = seq
		s.Inbox = entries
	})
	return nil
}

// Send delivers plaintext to the selected recipient and returns the server
// message id. Whether the recipient exists is the server's call; the client
// sends and surfaces the rejection.
func (c *Controller) Send(ctx context.Context, plaintext string) (int64, error) {
	recipient := c.Snapshot().Recipient
	if recipient == "" {
		return 0, fmt.Errorf("%w: no recipient selected", ErrValidation)
	}
	if strings.TrimSpace(plaintext) == "" {
		return 0, fmt.Errorf("%w: message must not be empty", ErrValidation)
	}
	token, err := c.token()
	if err != nil {
		return 0, err
	}

	log := c.log.With("op", uuid.NewString())
	id, err := c.inbox.Send(ctx, token, recipient, plaintext)
	if err != nil {
		return 0, c.authFail(ctx, err)
	}
	log.Info(ctx, "message sent", "receiver", recipient, "id", id)

	if err := c.RefreshInbox(ctx); err != nil {
		log.Warn(ctx, "inbox refresh after send failed", "err", err)
	}
	return id, nil
}

// OpenMessage reads and destroys one message from fromUser. The inbox is
// re-fetched immediately after, since the sender's count has decremented
// and the entry may be gone.
func (c *Controller) OpenMessage(ctx context.Context, fromUser string) (string, error) {
	if fromUser == "" {
		return "", fmt.Errorf("%w: sender must not be empty", ErrValidation)
	}
	token, err := c.token()
	if err != nil {
		return "", err
	}

	log := c.log.With("op", uuid.NewString())
	plaintext, err := c.inbox.Open(ctx, token, fromUser)
	if err != nil {
		return "", c.authFail(ctx, err)
	}
	log.Info(ctx, "message opened", "from", fromUser)

	c.update(func(s *Snapshot) { s.LastOpened = plaintext })

	if err := c.RefreshInbox(ctx); err != nil {
		log.Warn(ctx, "inbox refresh after open failed", "err", err)
	}
	return plaintext, nil
}

// refreshAll reloads directory and inbox together after a sign-in. Failures
// here do not undo the authentication; both lists refresh again on demand.
func (c *Controller) refreshAll(ctx context.Context, log logging.Logger) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.RefreshUsers(ctx) })
	g.Go(func() error { return c.RefreshInbox(ctx) })
	if err := g.Wait(); err != nil {
		log.Warn(ctx, "post-login refresh incomplete", "err", err)
	}
}
