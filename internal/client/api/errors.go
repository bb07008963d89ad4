package api

import "errors"

// Sentinel errors returned by the API client. Callers match them with
// errors.Is; the wrapped message carries the server-supplied detail when
// one was present in the response body.
var (
	// ErrUnavailable means the request never completed (dial, timeout, bad body).
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the credential was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers unknown receivers and empty per-sender inboxes.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers rejected input such as a duplicate username.
	ErrConflict = errors.New("conflict")

	// ErrServer is any other non-2xx response.
	ErrServer = errors.New("server error")
)
