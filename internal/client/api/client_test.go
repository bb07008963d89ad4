package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capsule/internal/logging"
)

const testToken = "tok-abc123"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// authed wraps a handler with the server's raw-token check: the header must
// carry the token verbatim, no scheme prefix.
func authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != testToken {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		next(w, r)
	}
}

// fakeServer mimics the capsule backend routes used by the client.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var body struct{ Username, Password string }
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Username == "taken" {
			writeDetail(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
	})
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct{ Username, Password string }
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Password != "hunter22" {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok", "token": testToken})
	})
	r.Get("/auth/me", authed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"username": "alice"})
	}))
	r.Post("/auth/logout", authed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}))
	r.Get("/auth/users", authed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []string{"bob", "carol"})
	}))
	r.Post("/messages/send", authed(func(w http.ResponseWriter, req *http.Request) {
		var body struct{ Receiver, Plaintext string }
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Receiver == "ghost" {
			writeDetail(w, http.StatusNotFound, "Receiver not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"message_id": 42})
	}))
	r.Get("/messages/inbox", authed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"from_user": "bob", "count": 2},
			{"from_user": "carol", "count": 1},
		})
	}))
	r.Post("/messages/open", authed(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FromUser string `json:"from_user"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.FromUser == "nobody" {
			writeDetail(w, http.StatusNotFound, "Message not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"plaintext": "the vault opens at noon"})
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, base string) *Client {
	t.Helper()
	return New(base, time.Second, logging.NewText(io.Discard, false))
}

func TestRegister(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	require.NoError(t, c.Register(context.Background(), "alice", "hunter22"))

	err := c.Register(context.Background(), "taken", "hunter22")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "Username already exists")
}

func TestLogin(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	token, err := c.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Login(context.Background(), "alice", "wrong-pass")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestMe_SendsRawTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]string{"username": "alice"})
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	username, err := c.Me(context.Background(), testToken)
	require.NoError(t, err)

	assert.Equal(t, "alice", username)
	// Compatibility requirement: the raw token value, no "Bearer " prefix.
	assert.Equal(t, testToken, gotAuth)
}

func TestMe_RejectedToken(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Me(context.Background(), "revoked")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	require.NoError(t, c.Logout(context.Background(), testToken))
	require.ErrorIs(t, c.Logout(context.Background(), "stale"), ErrUnauthorized)
}

func TestUsers(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	users, err := c.Users(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, users)
}

func TestSend(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	id, err := c.Send(context.Background(), testToken, "bob", "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestSend_UnknownReceiver(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Send(context.Background(), testToken, "ghost", "hello")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Receiver not found")
}

func TestInbox(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	entries, err := c.Inbox(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, []InboxEntry{
		{FromUser: "bob", Count: 2},
		{FromUser: "carol", Count: 1},
	}, entries)
}

func TestInbox_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	entries, err := c.Inbox(context.Background(), testToken)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	plaintext, err := c.Open(context.Background(), testToken, "bob")
	require.NoError(t, err)
	assert.Equal(t, "the vault opens at noon", plaintext)
}

func TestOpen_NoMessageFromUser(t *testing.T) {
	srv := fakeServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Open(context.Background(), testToken, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Message not found")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Login(context.Background(), "alice", "hunter22")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusInternalServerError, "boom")
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	_, err := c.Users(context.Background(), testToken)
	require.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "boom")
}
