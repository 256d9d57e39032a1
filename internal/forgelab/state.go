package forgelab

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateStore persists the cache's {date_range, last_hash} pair so a restart
// resumes on the same range without re-persisting the derived data itself;
// that is cheap to recompute cold.
type StateStore struct {
	db *sql.DB
}

// OpenStateStore opens (or creates) the SQLite state database at
// dir/forgelab.db.
func OpenStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "forgelab.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache_state (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		date_range TEXT NOT NULL,
		last_hash  TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateStore{db: db}, nil
}

// Load returns the persisted range and hash. A fresh database yields the
// default range and an empty hash without error.
func (s *StateStore) Load() (DateRange, string, error) {
	var rng, hash string
	err := s.db.QueryRow(`SELECT date_range, last_hash FROM cache_state WHERE id = 1`).Scan(&rng, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultDateRange, "", nil
	}
	if err != nil {
		return DefaultDateRange, "", err
	}
	return DateRange(rng), hash, nil
}

// Save records the current range and hash.
func (s *StateStore) Save(rng DateRange, hash string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_state (id, date_range, last_hash) VALUES (1, ?, ?)`,
		string(rng), hash,
	)
	return err
}

// Clear removes the persisted state.
func (s *StateStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM cache_state WHERE id = 1`)
	return err
}

// Close closes the state database.
func (s *StateStore) Close() error {
	return s.db.Close()
}
