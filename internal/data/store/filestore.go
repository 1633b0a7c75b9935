package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jol333/TaskTimer/internal/core/model"
	"golang.org/x/sys/unix"
)

const (
	fileExt      = ".json"
	lockFileName = ".lock"
)

// FileStore keeps one JSON file per key inside baseDir and holds an exclusive
// flock on baseDir/.lock for its lifetime, so only one widget writes at a time.
type FileStore struct {
	baseDir string
	lock    *os.File
	mu      sync.Mutex
	closed  bool
}

// NewFileStore opens (creating if needed) a file store in baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	lockFile, err := acquireLock(baseDir)
	if err != nil {
		return nil, err
	}

	return &FileStore{baseDir: baseDir, lock: lockFile}, nil
}

// Dir returns the directory backing the store.
func (f *FileStore) Dir() string {
	return f.baseDir
}

func (f *FileStore) keyPath(key string) string {
	return filepath.Join(f.baseDir, key+fileExt)
}

func (f *FileStore) Put(id string, snap model.Snapshot) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", id, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	return f.writeFile(model.SnapshotKey(id), data)
}

func (f *FileStore) Get(id string) (model.Snapshot, bool, error) {
	if err := validID(id); err != nil {
		return model.Snapshot{}, false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return model.Snapshot{}, false, ErrClosed
	}

	data, err := os.ReadFile(f.keyPath(model.SnapshotKey(id)))
	if os.IsNotExist(err) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", id, err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, true, nil
}

func (f *FileStore) Delete(id string) error {
	if err := validID(id); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	if err := os.Remove(f.keyPath(model.SnapshotKey(id))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return syncDir(f.baseDir)
}

func (f *FileStore) Order() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(f.keyPath(model.OrderKey))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}
	return decodeOrder(data)
}

func (f *FileStore) SetOrder(ids []string) error {
	data, err := encodeOrder(ids)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	return f.writeFile(model.OrderKey, data)
}

// Keys lists every session id with a snapshot file.
func (f *FileStore) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileExt || !strings.HasPrefix(name, model.SnapshotKeyPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, model.SnapshotKeyPrefix), fileExt))
	}
	return ids, nil
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	return releaseLock(f.lock)
}

// acquireLock takes an exclusive, non-blocking flock on dir/.lock. The lock
// lives as long as the returned file stays open.
func acquireLock(dir string) (*os.File, error) {
	lockFile, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lockFile.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return lockFile, nil
}

// releaseLock closes the lock file, which drops the flock with it.
func releaseLock(lockFile *os.File) error {
	if err := lockFile.Close(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// writeFile replaces key atomically: temp file, fsync, rename, fsync dir.
func (f *FileStore) writeFile(key string, data []byte) error {
	target := f.keyPath(key)
	tmpFile, err := os.CreateTemp(f.baseDir, filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	name := tmpFile.Name()

	_, err = tmpFile.Write(data)
	if err == nil {
		err = tmpFile.Sync()
	}
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return syncDir(f.baseDir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir for sync: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
