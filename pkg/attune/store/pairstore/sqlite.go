// Package pairstore persists cross-session signal-pair frequencies in
// SQLite. The counters are informational: per-exchange composite emission is
// authoritative, and the threshold comparison these counts feed is surfaced
// in pattern results, never used to block emission.
package pairstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed pair counter.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the pair-count database at path with WAL
// mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers cheap while the learner increments per exchange.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS pair_counts (
	a TEXT NOT NULL,
	b TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (a, b)
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Increment bumps the counter for the unordered pair (a, b) and returns the
// new count.
func (s *Store) Increment(ctx context.Context, a, b string) (int64, error) {
	a, b = canonical(a, b)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO pair_counts (a, b, count) VALUES (?, ?, 1)
ON CONFLICT(a, b) DO UPDATE SET count = count + 1`, a, b)
	if err != nil {
		return 0, fmt.Errorf("pairstore: increment %s/%s: %w", a, b, err)
	}
	return s.Count(ctx, a, b)
}

// Count returns the current counter for the unordered pair (a, b).
func (s *Store) Count(ctx context.Context, a, b string) (int64, error) {
	a, b = canonical(a, b)

	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM pair_counts WHERE a = ? AND b = ?`, a, b).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pairstore: count %s/%s: %w", a, b, err)
	}
	return n, nil
}

// canonical orders the pair so (a,b) and (b,a) share one row.
func canonical(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
