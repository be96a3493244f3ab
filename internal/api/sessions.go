package api

import (
	"context"
	"net/http"

	"matdepot/authctl/internal/models"
)

func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := c.do(ctx, http.MethodGet, "/users/sessions", nil, &sessions)
	return sessions, err
}

func (c *Client) RevokeSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/users/sessions/"+sessionID, nil, nil)
}

// RevokeOtherSessions terminates every session except the caller's own.
func (c *Client) RevokeOtherSessions(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/users/sessions", nil, nil)
}
