package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"nsedesk/internal/api"
)

type fakeBackend struct {
	mu        sync.Mutex
	meSession *api.Session
	meErr     error
	logouts   int
	logoutTok string
}

func (f *fakeBackend) Me(ctx context.Context) (*api.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meSession, nil
}

func (f *fakeBackend) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.logoutTok = token
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSessions(t *testing.T, b backend) (*Sessions, *TokenStore) {
	t.Helper()
	ts := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	return NewSessions(ts, b, discard()), ts
}

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	ts := NewTokenStore(path)

	if ts.Token() != "" {
		t.Errorf("fresh store Token = %q, want empty", ts.Token())
	}
	if err := ts.Save("abc123"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A new store over the same path sees the persisted token.
	ts2 := NewTokenStore(path)
	if ts2.Token() != "abc123" {
		t.Errorf("reloaded Token = %q, want abc123", ts2.Token())
	}

	ts2.Clear()
	if ts2.Token() != "" {
		t.Error("Clear should drop the in-memory token")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Clear should remove the token file")
	}
}

func TestFetchSuccessPublishes(t *testing.T) {
	b := &fakeBackend{meSession: &api.Session{ID: 7, Email: "u@example.com"}}
	s, ts := newTestSessions(t, b)
	ts.Save("tok")

	ch, cancel := s.Subscribe()
	defer cancel()

	sess, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if sess.Email != "u@example.com" {
		t.Errorf("session = %+v", sess)
	}
	if s.Current() == nil || s.Current().ID != 7 {
		t.Errorf("Current = %+v", s.Current())
	}

	select {
	case got := <-ch:
		if got == nil || got.ID != 7 {
			t.Errorf("published session = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no session published")
	}
}

func TestFetch401ClearsCredentialAndSession(t *testing.T) {
	b := &fakeBackend{meSession: &api.Session{ID: 7}}
	s, ts := newTestSessions(t, b)
	ts.Save("tok")
	s.Fetch(context.Background())

	ch, cancel := s.Subscribe()
	defer cancel()

	b.mu.Lock()
	b.meErr = api.ErrUnauthorized
	b.mu.Unlock()

	_, err := s.Fetch(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if ts.Token() != "" {
		t.Error("401 must clear the stored credential")
	}
	if s.Current() != nil {
		t.Error("401 must clear the current session")
	}

	select {
	case got := <-ch:
		if got != nil {
			t.Errorf("published %+v, want nil (signed out)", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no signed-out notification published")
	}
}

func TestFetchTransientErrorLeavesState(t *testing.T) {
	b := &fakeBackend{meSession: &api.Session{ID: 7, Email: "u@example.com"}}
	s, ts := newTestSessions(t, b)
	ts.Save("tok")
	s.Fetch(context.Background())

	b.mu.Lock()
	b.meErr = errors.New("dial tcp: i/o timeout")
	b.mu.Unlock()

	_, err := s.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, api.ErrUnauthorized) {
		t.Fatal("transient error must not be treated as 401")
	}
	if ts.Token() != "tok" {
		t.Error("transient failure must keep the credential")
	}
	if s.Current() == nil || s.Current().ID != 7 {
		t.Error("transient failure must keep the session")
	}
}

func TestBootstrapWithoutCredentialSkipsFetch(t *testing.T) {
	b := &fakeBackend{meErr: errors.New("should not be called")}
	s, _ := newTestSessions(t, b)

	s.Bootstrap(context.Background())
	if s.Current() != nil {
		t.Error("no credential, no session")
	}
}

func TestLogoutClearsUnconditionally(t *testing.T) {
	b := &fakeBackend{meSession: &api.Session{ID: 7}}
	s, ts := newTestSessions(t, b)
	ts.Save("tok")
	s.Fetch(context.Background())

	s.Logout()
	if ts.Token() != "" {
		t.Error("Logout must clear the credential")
	}
	if s.Current() != nil {
		t.Error("Logout must clear the session")
	}

	// Backend notify is fire-and-forget; give the goroutine a moment.
	deadline := time.Now().Add(time.Second)
	for {
		b.mu.Lock()
		n := b.logouts
		b.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("backend logout never attempted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The notify must carry the credential that was just cleared, not
	// whatever the (now empty) store holds when the request goes out.
	b.mu.Lock()
	tok := b.logoutTok
	b.mu.Unlock()
	if tok != "tok" {
		t.Errorf("backend logout token = %q, want %q", tok, "tok")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := &fakeBackend{meSession: &api.Session{ID: 1}}
	s, ts := newTestSessions(t, b)
	ts.Save("tok")

	ch, cancel := s.Subscribe()
	cancel()

	s.Fetch(context.Background())

	// Channel is closed after cancel; a receive yields the zero value.
	if got, ok := <-ch; ok && got != nil {
		t.Errorf("received %+v after unsubscribe", got)
	}
}
