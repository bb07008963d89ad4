// Package api implements the HTTP client for the capsule server: account
// registration and login, identity lookup, the user directory, and the
// ephemeral message inbox.
//
// The server speaks plain JSON. Authenticated endpoints expect the raw
// session token in the Authorization header, with no scheme prefix; the
// server rejects anything else, so the client reproduces that exactly.
// Error responses carry a {"detail": "..."} body.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"capsule/internal/logging"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	base string
	http *http.Client
	log  logging.Logger
}

// New returns a Client for the server at base, e.g. "http://127.0.0.1:8000".
// A non-positive timeout falls back to DefaultTimeout.
func New(base string, timeout time.Duration, log logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		// Raw token, no "Bearer " prefix.
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return c.mapError(ctx, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
		}
	}
	return nil
}

// mapError translates a non-2xx response into one of the package sentinels,
// keeping the server's detail string in the message.
func (c *Client) mapError(ctx context.Context, path string, resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict:
		kind = ErrConflict
	default:
		kind = ErrServer
	}

	c.log.Debug(ctx, "request rejected", "path", path, "status", resp.StatusCode, "detail", eb.Detail)

	if eb.Detail == "" {
		return fmt.Errorf("%w: %s: %s", kind, path, resp.Status)
	}
	return fmt.Errorf("%w: %s", kind, eb.Detail)
}

func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, token, in, out)
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}
