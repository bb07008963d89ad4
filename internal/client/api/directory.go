package api

import "context"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type meResponse struct {
	Username string `json:"username"`
}

// Register creates a new account. It does not log the user in; a following
// Login is required to obtain a token.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.post(ctx, "/auth/register", "", credentialsRequest{Username: username, Password: password}, nil)
}

// Login exchanges credentials for a session token. The call mutates no local
// state; committing the token is the caller's job.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	if err := c.post(ctx, "/auth/login", "", credentialsRequest{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Me resolves the identity behind token. Used after login and at startup to
// confirm a persisted token is still accepted server-side.
func (c *Client) Me(ctx context.Context, token string) (string, error) {
	var out meResponse
	if err := c.get(ctx, "/auth/me", token, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}

// Logout revokes the server-side session for token. Best effort: callers
// clear local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/auth/logout", token, struct{}{}, nil)
}

// Users lists usernames eligible to receive a message. The server decides
// who appears; the client does no filtering of its own.
func (c *Client) Users(ctx context.Context, token string) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/auth/users", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}
