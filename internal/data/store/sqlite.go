package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jol333/TaskTimer/internal/core/model"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "timers.db"

// SQLiteStore keeps the same key layout as FileStore in a single sqlite table.
// Like FileStore it holds dir/.lock while open: sqlite serializes statements,
// not whole sessions of reads and writes.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	lock   *os.File
	mu     sync.Mutex
	closed bool
}

// NewSQLiteStore opens (creating if needed) dir/timers.db. It returns
// ErrLocked when another store already has dir open.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	lockFile, err := acquireLock(dir)
	if err != nil {
		return nil, err
	}
	s, err := openSQLite(filepath.Join(dir, SQLiteFileName))
	if err != nil {
		lockFile.Close()
		return nil, err
	}
	s.lock = lockFile
	return s, nil
}

func openSQLite(path string) (*SQLiteStore, error) {
	// synchronous=FULL: a committed write is on disk before Exec returns.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value BLOB NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.Exec(`
        INSERT INTO kv (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value
    `, key, value)
	return err
}

func (s *SQLiteStore) get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(id string, snap model.Snapshot) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", id, err)
	}
	if err := s.put(model.SnapshotKey(id), data); err != nil {
		return fmt.Errorf("put snapshot %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Get(id string) (model.Snapshot, bool, error) {
	if err := validID(id); err != nil {
		return model.Snapshot{}, false, err
	}
	data, ok, err := s.get(model.SnapshotKey(id))
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	if !ok {
		return model.Snapshot{}, false, nil
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, true, nil
}

func (s *SQLiteStore) Delete(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", model.SnapshotKey(id)); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Order() ([]string, error) {
	data, ok, err := s.get(model.OrderKey)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return decodeOrder(data)
}

func (s *SQLiteStore) SetOrder(ids []string) error {
	data, err := encodeOrder(ids)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := s.put(model.OrderKey, data); err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Keys lists every session id with a stored snapshot.
func (s *SQLiteStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query("SELECT key FROM kv WHERE key GLOB ? ORDER BY key", model.SnapshotKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		ids = append(ids, strings.TrimPrefix(key, model.SnapshotKeyPrefix))
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.db.Close()
	if s.lock != nil {
		err = errors.Join(err, releaseLock(s.lock))
	}
	return err
}
