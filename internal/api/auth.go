package api

import (
	"context"
	"net/http"
)

// Me fetches the current authenticated user. A 401 comes back as
// ErrUnauthorized; transport and other HTTP failures are returned unchanged
// so the session layer can tell an invalid credential apart from a flaky
// network.
func (c *Client) Me(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.get(ctx, "/auth/me", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout invalidates the server-side session for the given token. The token
// is explicit rather than read from the store at request time, so callers
// can clear local credentials without the request losing its bearer header.
// Best effort: callers clear local state regardless of the result.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil)
}
