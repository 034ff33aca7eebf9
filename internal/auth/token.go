// Package auth holds the bearer credential and the current session. The
// session cell is single-writer: only this package mutates it, everything
// else observes through Subscribe.
package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the bearer token at a fixed file path, the durable
// local storage for the credential delivered by the OAuth redirect.
type TokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewTokenStore creates a TokenStore backed by path, loading any previously
// persisted token.
func NewTokenStore(path string) *TokenStore {
	ts := &TokenStore{path: path}
	if data, err := os.ReadFile(path); err == nil {
		ts.token = strings.TrimSpace(string(data))
	}
	return ts
}

// Token returns the current credential, or "" when absent. Implements
// api.TokenSource.
func (ts *TokenStore) Token() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.token
}

// Save persists a new credential.
func (ts *TokenStore) Save(token string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(ts.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(ts.path, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	ts.token = token
	return nil
}

// Clear removes the credential from memory and disk.
func (ts *TokenStore) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	os.Remove(ts.path)
}
