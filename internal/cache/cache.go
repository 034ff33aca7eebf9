// Package cache is the local snapshot store: a SQLite payload cache keyed by
// data kind and trading date, plus Parquet exports for downstream analysis.
// The backend already caches exchange downloads for half an hour; this layer
// saves the round trip entirely for repeated date lookups.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Well-known payload kinds.
const (
	KindBhavcopy = "bhavcopy"
	KindFO       = "fo"
	KindNifty    = "nifty"
)

// DefaultTTL matches the backend's own cache window.
const DefaultTTL = 30 * time.Minute

const schema = `
CREATE TABLE IF NOT EXISTS payloads (
	kind       TEXT    NOT NULL,
	day        TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	body       BLOB    NOT NULL,
	PRIMARY KEY (kind, day)
);
`

// Store is a SQLite-backed payload cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the JSON encoding of v for (kind, day), replacing any prior
// entry.
func (s *Store) Put(ctx context.Context, kind, day string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO payloads (kind, day, fetched_at, body) VALUES (?, ?, ?, ?)`,
		kind, day, time.Now().Unix(), body)
	return err
}

// Get loads the cached payload for (kind, day) into out when one exists and
// is younger than maxAge. It reports whether out was populated.
func (s *Store) Get(ctx context.Context, kind, day string, maxAge time.Duration, out any) (bool, error) {
	var fetchedAt int64
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, body FROM payloads WHERE kind = ? AND day = ?`,
		kind, day).Scan(&fetchedAt, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if maxAge > 0 && time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, err
	}
	return true, nil
}

// Purge removes entries fetched before cutoff and returns how many were
// dropped.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM payloads WHERE fetched_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
