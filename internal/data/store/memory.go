package store

import (
	"sync"

	"github.com/jol333/TaskTimer/internal/core/model"
)

// Memory is an in-process Store. Nothing survives the process.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string]model.Snapshot
	order     []string
	closed    bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string]model.Snapshot)}
}

func (m *Memory) Put(id string, snap model.Snapshot) error {
	if err := validID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	snap.Version = model.SnapshotVersion
	m.snapshots[id] = snap
	return nil
}

func (m *Memory) Get(id string) (model.Snapshot, bool, error) {
	if err := validID(id); err != nil {
		return model.Snapshot{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return model.Snapshot{}, false, ErrClosed
	}
	snap, ok := m.snapshots[id]
	return snap, ok, nil
}

func (m *Memory) Delete(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) Order() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids, nil
}

func (m *Memory) SetOrder(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.order = make([]string, len(ids))
	copy(m.order, ids)
	return nil
}

// Keys lists the snapshot ids currently held, orphans included.
func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.snapshots))
	for id := range m.snapshots {
		keys = append(keys, id)
	}
	return keys, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
