package api

import "context"

// InboxEntry is one distinct sender with at least one unread message.
type InboxEntry struct {
	FromUser string `json:"from_user"`
	Count    int    `json:"count"`
}

type sendRequest struct {
	Receiver  string `json:"receiver"`
	Plaintext string `json:"plaintext"`
}

type sendResponse struct {
	MessageID int64 `json:"message_id"`
}

type openRequest struct {
	FromUser string `json:"from_user"`
}

type openResponse struct {
	Plaintext string `json:"plaintext"`
}

// Send queues plaintext for receiver. Acceptance is the only confirmation;
// there is no delivery notification.
func (c *Client) Send(ctx context.Context, token, receiver, plaintext string) (int64, error) {
	var out sendResponse
	if err := c.post(ctx, "/messages/send", token, sendRequest{Receiver: receiver, Plaintext: plaintext}, &out); err != nil {
		return 0, err
	}
	return out.MessageID, nil
}

// Inbox returns the pending-message summary, one entry per sender. The
// server aggregates; the client never caches this authoritatively.
func (c *Client) Inbox(ctx context.Context, token string) ([]InboxEntry, error) {
	var out []InboxEntry
	if err := c.get(ctx, "/messages/inbox", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Open reads exactly one message from fromUser. The read is destructive:
// the server deletes the message before responding, so a repeated call
// yields the next message or ErrNotFound, never the same content again.
func (c *Client) Open(ctx context.Context, token, fromUser string) (string, error) {
	var out openResponse
	if err := c.post(ctx, "/messages/open", token, openRequest{FromUser: fromUser}, &out); err != nil {
		return "", err
	}
	return out.Plaintext, nil
}
