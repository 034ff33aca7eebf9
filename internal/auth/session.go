package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nsedesk/internal/api"
)

// backend is the slice of the API client the session layer needs.
type backend interface {
	Me(ctx context.Context) (*api.Session, error)
	Logout(ctx context.Context, token string) error
}

// Sessions owns the current authenticated session. Observers subscribe for
// updates; a nil published session means "signed out".
type Sessions struct {
	tokens  *TokenStore
	client  backend
	log     *slog.Logger

	mu      sync.RWMutex
	current *api.Session

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan *api.Session
}

// NewSessions creates the session cell over the given token store and API
// client.
func NewSessions(tokens *TokenStore, client backend, log *slog.Logger) *Sessions {
	return &Sessions{
		tokens: tokens,
		client: client,
		log:    log,
		subs:   make(map[int]chan *api.Session),
	}
}

// Current returns the session as of the last successful fetch, or nil.
func (s *Sessions) Current() *api.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasCredential reports whether a bearer token is stored, valid or not.
func (s *Sessions) HasCredential() bool {
	return s.tokens.Token() != ""
}

// Subscribe registers an observer. The returned cancel function must be
// called to release the subscription.
func (s *Sessions) Subscribe() (<-chan *api.Session, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan *api.Session, 4)
	s.subs[id] = ch

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Sessions) publish(sess *api.Session) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- sess:
		default: // slow observer, drop rather than block the writer
		}
	}
}

// SetCredential persists a freshly issued token, as delivered by the OAuth
// redirect. It does not fetch the session; callers follow with Fetch.
func (s *Sessions) SetCredential(token string) error {
	return s.tokens.Save(token)
}

// Fetch loads the authenticated user from the backend and publishes it.
//
// A 401 means the credential is invalid: it is cleared and a nil session is
// published. Any other failure (network, 5xx) leaves the existing state
// untouched and is surfaced to the caller only. Callers must preserve this
// distinction: a flaky network must not log the user out.
func (s *Sessions) Fetch(ctx context.Context) (*api.Session, error) {
	sess, err := s.client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Info("stored credential rejected, clearing session")
			s.tokens.Clear()
			s.mu.Lock()
			s.current = nil
			s.mu.Unlock()
			s.publish(nil)
		}
		return nil, err
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.publish(sess)
	return sess, nil
}

// Bootstrap runs the startup fetch when a credential exists. Transient
// failures are logged and swallowed; only a 401 clears state (inside Fetch).
func (s *Sessions) Bootstrap(ctx context.Context) {
	if !s.HasCredential() {
		return
	}
	if _, err := s.Fetch(ctx); err != nil && !errors.Is(err, api.ErrUnauthorized) {
		s.log.Warn("startup session fetch failed, keeping credential", "error", err)
	}
}

// Logout notifies the backend best-effort, then clears the credential and
// session unconditionally. The token is snapshotted first: the backend call
// needs the credential the store is about to lose.
func (s *Sessions) Logout() {
	tok := s.tokens.Token()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.Logout(ctx, tok); err != nil {
			s.log.Debug("backend logout failed", "error", err)
		}
	}()

	s.tokens.Clear()
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.publish(nil)
}
