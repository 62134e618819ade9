package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"mindful/internal/platform"

	_ "github.com/mattn/go-sqlite3"
)

const stateFileName = "state.db"

// ErrClosed is returned by a StateStore after Close.
var ErrClosed = errors.New("storage: state store closed")

// StateStore keeps process state that is not user editable.
type StateStore struct {
	mu sync.Mutex
	db *sql.DB
}

// StatePath returns the state database location for appName.
func StatePath(appName string) (string, error) {
	configDir, err := platform.NewService().GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve state path: %w", err)
	}
	return filepath.Join(configDir, appName, stateFileName), nil
}

// OpenState opens (and migrates) the SQLite state database at path.
func OpenState(path string) (*StateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewStateStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewStateStore wraps an open database.
func NewStateStore(db *sql.DB) (*StateStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS global_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create global_state: %w", err)
	}
	return &StateStore{db: db}, nil
}

// Close releases the database.
func (store *StateStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return nil
	}
	err := store.db.Close()
	store.db = nil
	return err
}

// Bool returns the stored flag, false when unset.
func (store *StateStore) Bool(key string) (bool, error) {
	value, ok, err := store.get(key)
	if err != nil || !ok {
		return false, err
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

// SetBool stores a flag.
func (store *StateStore) SetBool(key string, value bool) error {
	return store.set(key, strconv.FormatBool(value))
}

// Int64 returns the stored number, 0 when unset.
func (store *StateStore) Int64(key string) (int64, error) {
	value, ok, err := store.get(key)
	if err != nil || !ok {
		return 0, err
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

// SetInt64 stores a number.
func (store *StateStore) SetInt64(key string, value int64) error {
	return store.set(key, strconv.FormatInt(value, 10))
}

func (store *StateStore) get(key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return "", false, ErrClosed
	}

	var value string
	err := store.db.QueryRow(`SELECT value FROM global_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (store *StateStore) set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return ErrClosed
	}

	_, err := store.db.Exec(`
		INSERT INTO global_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
