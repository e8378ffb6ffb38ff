// Package state persists per-page content hashes between runs so unchanged
// output files can be skipped.
package state

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed hash store keyed by output-relative path.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the state database at dbPath. Use ":memory:"
// for a throwaway store.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Hash returns the stored content hash for path, and whether one exists.
func (s *Store) Hash(path string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hash string
	err := s.db.QueryRow("SELECT hash FROM pages WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query page hash: %w", err)
	}
	return hash, true, nil
}

// SetHash records the content hash for path, replacing any previous value.
func (s *Store) SetHash(path, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO pages (path, hash, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, updated_at = excluded.updated_at",
		path, hash, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store page hash: %w", err)
	}
	return nil
}

// Forget drops the stored hash for path.
func (s *Store) Forget(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM pages WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget page hash: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
