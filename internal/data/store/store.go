// Package store persists timer session snapshots and the session order.
//
// Every backend follows the same key layout: one record per session under
// "timer_<id>" and the ordered id list under "timerOrder". Writes are flushed
// before the call returns.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jol333/TaskTimer/internal/core/model"
)

var (
	// ErrLocked is returned when another process already owns the store.
	ErrLocked = errors.New("store is locked by another process")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Store is durable key-value persistence for timer sessions.
type Store interface {
	Put(id string, snap model.Snapshot) error
	Get(id string) (model.Snapshot, bool, error)
	Delete(id string) error
	Order() ([]string, error)
	SetOrder(ids []string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dir)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want file, sqlite or memory)", backend)
	}
}

func encodeSnapshot(snap model.Snapshot) ([]byte, error) {
	snap.Version = model.SnapshotVersion
	return sonic.Marshal(snap)
}

func decodeSnapshot(data []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > model.SnapshotVersion {
		return model.Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported version %d",
			snap.Version, model.SnapshotVersion)
	}
	return snap.Upgrade(), nil
}

func encodeOrder(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return sonic.Marshal(ids)
}

func decodeOrder(data []byte) ([]string, error) {
	var ids []string
	if err := sonic.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return ids, nil
}

func validID(id string) error {
	if id == "" {
		return errors.New("empty session id")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// Lister is implemented by stores that can enumerate every stored snapshot id.
type Lister interface {
	Keys() ([]string, error)
}

// Orphans returns the ids that have a stored snapshot but no entry in the order.
func Orphans(s Store) ([]string, error) {
	lister, ok := s.(Lister)
	if !ok {
		return nil, fmt.Errorf("store %T cannot enumerate snapshots", s)
	}
	keys, err := lister.Keys()
	if err != nil {
		return nil, err
	}
	order, err := s.Order()
	if err != nil {
		return nil, err
	}
	live := make(map[string]struct{}, len(order))
	for _, id := range order {
		live[id] = struct{}{}
	}
	var orphans []string
	for _, id := range keys {
		if _, ok := live[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}
