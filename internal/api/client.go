// Package api is a typed HTTP client for the NSE platform backend. Every
// call maps one REST endpoint to request parameters and a response struct;
// the client holds no state beyond the base URL and credential source.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized reports an HTTP 401. Callers treat it specially: the
// session layer clears the stored credential, while every other failure
// leaves existing state untouched.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-401 HTTP error with the backend's detail message when the
// body carried one.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %s (HTTP %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("api: request failed (HTTP %d)", e.Status)
}

// TokenSource supplies the bearer credential for authenticated calls. An
// empty string means no credential is available.
type TokenSource interface {
	Token() string
}

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the backend at baseURL. tokens may be nil
// for unauthenticated use.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// LoginURL returns the browser entry point for the Google OAuth flow. The
// provider redirects back with a token (or error) query parameter.
func (c *Client) LoginURL() string {
	return c.baseURL + "/auth/google/login"
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, c.bearer(), out)
}

// bearer resolves the current stored credential, or "" without one.
func (c *Client) bearer() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure: surfaced as-is, never conflated with 401.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// decodeDetail extracts the backend's conventional {"detail": "..."} error
// field, returning "" when the body has some other shape.
func decodeDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
