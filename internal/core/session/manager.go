package session

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jol333/TaskTimer/internal/core/clock"
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/data/store"
	"github.com/jol333/TaskTimer/internal/util"
)

// Manager owns the ordered collection of sessions and keeps the persisted
// order in step with it. Like Session it must only be used from one goroutine.
type Manager struct {
	sessions []*Session
	store    store.Store
	clock    clock.Clock
	config   Config
	newID    func() string
}

// Option configures a Manager
type Option func(*Manager)

// WithConfig sets timing, labelling and geometry.
func WithConfig(config Config) Option {
	return func(m *Manager) { m.config = config.normalize() }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates an empty manager persisting through st.
func NewManager(st store.Store, clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		store:  st,
		clock:  clk,
		config: DefaultConfig(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.config
}

// SetGeometry replaces the display geometry used by RequiredHeight.
func (m *Manager) SetGeometry(g Geometry) {
	m.config.Geometry = g
}

// WriteSnapshot persists one snapshot, logging and swallowing store errors.
func (m *Manager) WriteSnapshot(id string, snap model.Snapshot) {
	if err := m.store.Put(id, snap); err != nil {
		util.LogWarnf("Failed to save snapshot for session %s: %v", id, err)
	}
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	return len(m.sessions)
}

// Sessions returns the sessions in display order. The slice is a copy.
func (m *Manager) Sessions() []*Session {
	sessions := make([]*Session, len(m.sessions))
	copy(sessions, m.sessions)
	return sessions
}

// At returns the session at index, or nil when index is out of range.
func (m *Manager) At(index int) *Session {
	if index < 0 || index >= len(m.sessions) {
		return nil
	}
	return m.sessions[index]
}

// IndexOf returns the position of the session with id, or -1.
func (m *Manager) IndexOf(id string) int {
	for i, s := range m.sessions {
		if s.id == id {
			return i
		}
	}
	return -1
}

// Find returns the session with id, or nil.
func (m *Manager) Find(id string) *Session {
	return m.At(m.IndexOf(id))
}

// Order returns the session ids in display order.
func (m *Manager) Order() []string {
	ids := make([]string, len(m.sessions))
	for i, s := range m.sessions {
		ids[i] = s.id
	}
	return ids
}

// AddSession appends a new session with a fresh id and persists the order.
func (m *Manager) AddSession() *Session {
	return m.AddSessionWithID(m.newID())
}

// AddSessionWithID appends a session reusing id. If a session with id already
// exists it is returned unchanged and nothing is appended.
func (m *Manager) AddSessionWithID(id string) *Session {
	if existing := m.Find(id); existing != nil {
		util.LogWarnf("Session %s already exists, not adding a duplicate", id)
		return existing
	}
	s := m.appendSession(id)
	m.persistOrder()
	util.LogInfo("Session added", util.F("id", id), util.F("count", len(m.sessions)))
	return s
}

func (m *Manager) appendSession(id string) *Session {
	s := New(id, m.clock, m, m.config)
	m.sessions = append(m.sessions, s)
	return s
}

// RemoveSession removes the session at index, erasing its snapshot. An out of
// range index is ignored and false is returned.
func (m *Manager) RemoveSession(index int) bool {
	if index < 0 || index >= len(m.sessions) {
		util.LogDebugf("Ignoring removal of session at index %d (count %d)", index, len(m.sessions))
		return false
	}

	s := m.sessions[index]
	// Cancel without saving so the snapshot is not recreated after the delete.
	s.halt()
	m.sessions = slices.Delete(m.sessions, index, index+1)

	if err := m.store.Delete(s.id); err != nil {
		util.LogWarnf("Failed to delete snapshot for session %s: %v", s.id, err)
	}
	m.persistOrder()
	util.LogInfo("Session removed", util.F("id", s.id), util.F("count", len(m.sessions)))
	return true
}

// RemoveSessionByID removes the session with id. Unknown ids are ignored.
func (m *Manager) RemoveSessionByID(id string) bool {
	return m.RemoveSession(m.IndexOf(id))
}

// Move relocates the session at from to index to, shifting the others.
// Out of range indexes are ignored.
func (m *Manager) Move(from, to int) bool {
	n := len(m.sessions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}

	s := m.sessions[from]
	m.sessions = slices.Insert(slices.Delete(m.sessions, from, from+1), to, s)
	m.persistOrder()
	return true
}

// RestoreAll rebuilds the collection from the persisted order. It returns
// false, leaving the manager untouched, when there is no order to restore.
func (m *Manager) RestoreAll() bool {
	order, err := m.store.Order()
	if err != nil {
		util.LogWarnf("Failed to read session order: %v", err)
		return false
	}
	if len(order) == 0 {
		return false
	}

	for _, s := range m.sessions {
		s.halt()
	}
	clear(m.sessions)
	m.sessions = m.sessions[:0]

	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, dup := seen[id]; dup || id == "" {
			util.LogWarnf("Skipping duplicate or empty session id %q in persisted order", id)
			continue
		}
		seen[id] = struct{}{}
		m.appendSession(id)
	}

	restored := 0
	for _, s := range m.sessions {
		snap, ok, err := m.store.Get(s.id)
		if err != nil {
			util.LogWarnf("Failed to read snapshot for session %s, using defaults: %v", s.id, err)
			continue
		}
		if !ok {
			util.LogDebugf("No snapshot for session %s, using defaults", s.id)
			continue
		}
		s.Restore(snap)
		restored++
	}

	m.persistOrder()
	util.LogInfof("Restored %d sessions (%d from snapshots)", len(m.sessions), restored)
	return true
}

// EnsureDefault restores the persisted sessions and, when that leaves none,
// creates a single fresh session.
func (m *Manager) EnsureDefault() {
	m.RestoreAll()
	if len(m.sessions) == 0 {
		m.AddSession()
	}
}

// SaveAll writes every session's current snapshot.
func (m *Manager) SaveAll() {
	for _, s := range m.sessions {
		s.save()
	}
}

// ResetAll resets every session.
func (m *Manager) ResetAll() {
	for _, s := range m.sessions {
		s.Reset()
	}
}

// Shutdown saves every session and then releases their clock subscriptions.
// Snapshots keep their running flag, so running sessions resume on restore.
func (m *Manager) Shutdown() {
	m.SaveAll()
	for _, s := range m.sessions {
		s.halt()
	}
}

// RequiredHeight is the display height needed for the current session count.
func (m *Manager) RequiredHeight() float64 {
	g := m.config.Geometry
	extra := len(m.sessions) - 1
	if extra < 0 {
		extra = 0
	}
	return g.Base + g.PerSession*float64(extra) + g.Footer
}

func (m *Manager) persistOrder() {
	if err := m.store.SetOrder(m.Order()); err != nil {
		util.LogWarnf("Failed to save session order: %v", err)
	}
}
