// Package sqlite provides a SQLite-backed session store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// SessionStore implements ports.SessionStore on a SQLite table keyed by (session, key).
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore opens the database at path and runs the schema migration.
// Use ":memory:" for a throwaway store.
func NewSessionStore(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A private in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	store := &SessionStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

func (s *SessionStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS session_values (
		session TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session, key)
	);`)
	return err
}

// Get returns the value stored under key for the session.
func (s *SessionStore) Get(session, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		"SELECT value FROM session_values WHERE session = ? AND key = ?", session, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewRepositoryError("get", "session", "failed to load value", err)
	}
	return value, nil
}

// Set stores value under key for the session.
func (s *SessionStore) Set(session, key string, value []byte) error {
	if session == "" {
		return domain.ErrMissingSession
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO session_values (session, key, value) VALUES (?, ?, ?)
		ON CONFLICT(session, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, session, key, value)
	if err != nil {
		return domain.NewRepositoryError("set", "session", "failed to store value", err)
	}
	return nil
}

// Delete removes a single key.
func (s *SessionStore) Delete(session, key string) error {
	if _, err := s.db.Exec("DELETE FROM session_values WHERE session = ? AND key = ?", session, key); err != nil {
		return domain.NewRepositoryError("delete", "session", "failed to delete value", err)
	}
	return nil
}

// Clear removes every key of the session.
func (s *SessionStore) Clear(session string) error {
	if _, err := s.db.Exec("DELETE FROM session_values WHERE session = ?", session); err != nil {
		return domain.NewRepositoryError("clear", "session", "failed to clear session", err)
	}
	return nil
}

// Close ensures the DB connection is closed gracefully.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

var _ ports.SessionStore = (*SessionStore)(nil)
