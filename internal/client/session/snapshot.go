package session

import "capsule/internal/client/api"

// State is the authentication state of the client session.
type State int

const (
	// Anonymous is the zero value: no credential, or a credential the
	// server no longer accepts.
	Anonymous State = iota

	// Authenticating covers the window between a login request and the
	// identity confirmation that completes it.
	Authenticating

	// Authenticated means a credential is held and the server has
	// confirmed the identity behind it during this session.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Snapshot is the whole observable state of the session. Controllers replace
// it wholesale on every transition; observers never see a partial update.
type Snapshot struct {
	State      State
	Username   string
	Users      []string
	Inbox      []api.InboxEntry
	Recipient  string
	LastOpened string
}

// LoggedIn reports whether the session holds a confirmed identity.
func (s Snapshot) LoggedIn() bool {
	return s.State == Authenticated
}

// PendingTotal is the number of unread messages across all senders.
func (s Snapshot) PendingTotal() int {
	total := 0
	for _, e := range s.Inbox {
		total += e.Count
	}
	return total
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Users != nil {
		out.Users = append([]string(nil), s.Users...)
	}
	if s.Inbox != nil {
		out.Inbox = append([]api.InboxEntry(nil), s.Inbox...)
	}
	return out
}
