package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/twinmark/internal/logging"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id    TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	body  TEXT NOT NULL DEFAULT ''
)`

// Store is a SQLite-backed archive.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	log    *logging.Logger
	closed bool
}

// Open opens (creating if needed) the archive database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}

	s := &Store{db: db, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("archive")
	return s, nil
}

// Get implements Reader. Query failures are logged and reported as misses.
func (s *Store) Get(id string) (Entry, bool) {
	e, err := s.Lookup(context.Background(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Debug("note lookup failed", "id", id, "error", err)
		}
		return Entry{}, false
	}
	return e, true
}

// Lookup returns the entry for id or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, ErrClosed
	}

	e := Entry{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT title, body FROM notes WHERE id = ?`, id).Scan(&e.Title, &e.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("looking up note %q: %w", id, err)
	}
	return e, nil
}

// Put inserts or replaces an entry.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, body) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, body = excluded.body`,
		e.ID, e.Title, e.Body)
	if err != nil {
		return fmt.Errorf("storing note %q: %w", e.ID, err)
	}
	return nil
}

// Delete removes the entry for id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting note %q: %w", id, err)
	}
	return nil
}

// List returns all entries ordered by id.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, body FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Body); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Import stores entries in one transaction and returns how many were written.
func (s *Store) Import(ctx context.Context, entries []Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (id, title, body) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, body = excluded.body`)
	if err != nil {
		return 0, fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if e.ID == "" {
			return 0, fmt.Errorf("note %d: %w", i, ErrEmptyID)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Title, e.Body); err != nil {
			return 0, fmt.Errorf("importing note %q: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(entries), nil
}

// Close closes the database. Further reads report misses.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
