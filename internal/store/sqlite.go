package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"imeswitch/internal/logging"
)

// Schema for the user settings database.
const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
    scope       TEXT NOT NULL,
    key         TEXT NOT NULL,
    value       TEXT NOT NULL,
    updated_ns  INTEGER NOT NULL,
    PRIMARY KEY (scope, key)
);

CREATE INDEX IF NOT EXISTS idx_user_settings_updated ON user_settings(scope, updated_ns);
`

// Store is the SQLite settings database. A single file can hold the
// settings of several users, each under its own scope.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logging.Default().WithComponent("store").Logger}, nil
}

// SetLogger replaces the logger that reports read failures. Call it before
// the store is shared.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Scope returns the settings of one user.
func (s *Store) Scope(user string) *UserSettings {
	return &UserSettings{store: s, scope: user}
}

func (s *Store) get(scope, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, ErrClosed
	}
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM user_settings WHERE scope = ? AND key = ?`, scope, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return value, true, nil
}

func (s *Store) set(scope, key, value string) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.Exec(`
		INSERT INTO user_settings (scope, key, value, updated_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_ns = excluded.updated_ns`,
		scope, key, value, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

func (s *Store) remove(scope, key string) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM user_settings WHERE scope = ? AND key = ?`, scope, key); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

func (s *Store) list(scope, prefix string) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(`
		SELECT key, value, updated_ns FROM user_settings
		WHERE scope = ? AND substr(key, 1, length(?)) = ?
		ORDER BY key ASC`, scope, prefix, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedNs); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return entries, nil
}

// UserSettings is the Settings view of one scope of a Store.
type UserSettings struct {
	store *Store
	scope string
}

// GetString implements Settings. A failed read is logged and reads as
// absent.
func (u *UserSettings) GetString(key string) (string, bool) {
	v, ok, err := u.store.get(u.scope, key)
	if err != nil {
		u.store.logger.Warn("user setting unreadable", "scope", u.scope, "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// GetBool implements Settings. Values that do not parse as booleans read as
// absent.
func (u *UserSettings) GetBool(key string) (bool, bool) {
	v, ok := u.GetString(key)
	if !ok {
		return false, false
	}
	return parseBool(v)
}

// SetString implements Settings.
func (u *UserSettings) SetString(key, value string) error {
	return u.store.set(u.scope, key, value)
}

// SetBool implements Settings.
func (u *UserSettings) SetBool(key string, value bool) error {
	return u.store.set(u.scope, key, formatBool(value))
}

// Delete removes key.
func (u *UserSettings) Delete(key string) error {
	return u.store.remove(u.scope, key)
}

// List returns the entries whose key starts with prefix, ordered by key.
func (u *UserSettings) List(prefix string) ([]Entry, error) {
	return u.store.list(u.scope, prefix)
}

var (
	_ Settings = (*UserSettings)(nil)
	_ Settings = (*Memory)(nil)
)
