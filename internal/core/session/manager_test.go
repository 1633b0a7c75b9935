package session

import (
	"errors"
	"testing"
	"time"

	"github.com/jol333/TaskTimer/internal/core/clock/clocktest"
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/data/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore rejects every write and every read.
type failingStore struct {
	puts int
}

var errBroken = errors.New("disk on fire")

func (f *failingStore) Put(string, model.Snapshot) error { f.puts++; return errBroken }
func (f *failingStore) Get(string) (model.Snapshot, bool, error) {
	return model.Snapshot{}, false, errBroken
}
func (f *failingStore) Delete(string) error      { return errBroken }
func (f *failingStore) Order() ([]string, error) { return nil, errBroken }
func (f *failingStore) SetOrder([]string) error  { return errBroken }
func (f *failingStore) Close() error             { return nil }

func sequentialIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i]
		i++
		return id
	}
}

func newTestManager(t *testing.T, ids ...string) (*Manager, *store.Memory, *clocktest.Manual) {
	t.Helper()
	st := store.NewMemory()
	clk := clocktest.NewManual()
	var opts []Option
	if len(ids) > 0 {
		opts = append(opts, WithIDGenerator(sequentialIDs(ids...)))
	}
	return NewManager(st, clk, opts...), st, clk
}

func storedOrder(t *testing.T, st store.Store) []string {
	t.Helper()
	order, err := st.Order()
	require.NoError(t, err)
	return order
}

func TestAddSessionPersistsOrder(t *testing.T) {
	m, st, _ := newTestManager(t, "a", "b", "c")

	m.AddSession()
	m.AddSession()
	m.AddSession()

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"a", "b", "c"}, m.Order())
	assert.Equal(t, m.Order(), storedOrder(t, st))
}

func TestAddSessionGeneratesUniqueIDs(t *testing.T) {
	m, _, _ := newTestManager(t)

	for i := 0; i < 20; i++ {
		m.AddSession()
	}
	seen := make(map[string]bool)
	for _, id := range m.Order() {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAddSessionWithDuplicateID(t *testing.T) {
	m, st, _ := newTestManager(t)

	first := m.AddSessionWithID("x")
	first.Rename("kept")
	second := m.AddSessionWithID("x")

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "kept", second.Label())
	assert.Equal(t, []string{"x"}, storedOrder(t, st))
}

func TestRemoveSessionInvalidIndex(t *testing.T) {
	m, st, _ := newTestManager(t, "a", "b")
	m.AddSession()
	m.AddSession()

	for _, index := range []int{-1, 2, 100} {
		assert.False(t, m.RemoveSession(index), "index %d", index)
	}
	assert.Equal(t, []string{"a", "b"}, m.Order())
	assert.Equal(t, []string{"a", "b"}, storedOrder(t, st))
}

func TestRemoveSessionDeletesSnapshot(t *testing.T) {
	m, st, clk := newTestManager(t, "A", "B")
	a := m.AddSession()
	m.AddSession()

	a.Start()
	clk.Advance(time.Second)
	_, ok, err := st.Get("A")
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, m.RemoveSession(0))

	assert.Equal(t, []string{"B"}, m.Order())
	assert.Equal(t, []string{"B"}, storedOrder(t, st))
	_, ok, err = st.Get("A")
	require.NoError(t, err)
	assert.False(t, ok, "timer_A must be gone")
	assert.Equal(t, 0, clk.Pending(), "removed session no longer ticks")

	// A later tick must not resurrect the deleted snapshot.
	clk.Advance(10 * time.Second)
	_, ok, _ = st.Get("A")
	assert.False(t, ok)
}

func TestRemoveSessionByID(t *testing.T) {
	m, _, _ := newTestManager(t, "a", "b", "c")
	m.AddSession()
	m.AddSession()
	m.AddSession()

	assert.True(t, m.RemoveSessionByID("b"))
	assert.False(t, m.RemoveSessionByID("b"))
	assert.False(t, m.RemoveSessionByID("zzz"))
	assert.Equal(t, []string{"a", "c"}, m.Order())
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		ok       bool
		want     []string
	}{
		{name: "first to last", from: 0, to: 3, ok: true, want: []string{"b", "c", "d", "a"}},
		{name: "last to first", from: 3, to: 0, ok: true, want: []string{"d", "a", "b", "c"}},
		{name: "middle down", from: 1, to: 2, ok: true, want: []string{"a", "c", "b", "d"}},
		{name: "same", from: 2, to: 2, ok: true, want: []string{"a", "b", "c", "d"}},
		{name: "bad from", from: -1, to: 0, ok: false, want: []string{"a", "b", "c", "d"}},
		{name: "bad to", from: 0, to: 4, ok: false, want: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, st, _ := newTestManager(t, "a", "b", "c", "d")
			for i := 0; i < 4; i++ {
				m.AddSession()
			}
			assert.Equal(t, tt.ok, m.Move(tt.from, tt.to))
			assert.Equal(t, tt.want, m.Order())
			assert.Equal(t, tt.want, storedOrder(t, st))
		})
	}
}

func TestRestoreAllRoundTrip(t *testing.T) {
	st := store.NewMemory()
	clk := clocktest.NewManual()

	m := NewManager(st, clk, WithIDGenerator(sequentialIDs("one", "two", "three")))
	one := m.AddSession()
	two := m.AddSession()
	m.AddSession()

	one.Rename("Write report")
	one.EndEdit()
	one.Start()
	clk.Advance(90 * time.Second)
	two.Start()
	clk.Advance(3 * time.Second)
	two.Stop()
	m.Shutdown()

	assert.Equal(t, 0, clk.Pending(), "shutdown releases every subscription")

	restored := NewManager(st, clk)
	require.True(t, restored.RestoreAll())

	require.Equal(t, []string{"one", "two", "three"}, restored.Order())
	r1 := restored.At(0)
	assert.Equal(t, "Write report", r1.Label())
	assert.Equal(t, 93*time.Second, r1.Elapsed())
	assert.True(t, r1.Running(), "running state survives shutdown")

	r2 := restored.At(1)
	assert.Equal(t, 3*time.Second, r2.Elapsed())
	assert.False(t, r2.Running())

	r3 := restored.At(2)
	assert.Equal(t, model.DefaultLabel, r3.Label())
	assert.Equal(t, time.Duration(0), r3.Elapsed())

	clk.Advance(time.Second)
	assert.Equal(t, 94*time.Second, r1.Elapsed())
}

func TestRestoreAllMissingSnapshot(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.SetOrder([]string{"x", "y"}))
	require.NoError(t, st.Put("x", model.Snapshot{Version: 1, Elapsed: 10, Running: false, Label: "X"}))

	m := NewManager(st, clocktest.NewManual())
	require.True(t, m.RestoreAll())

	require.Equal(t, 2, m.Len())
	x, y := m.At(0), m.At(1)
	assert.Equal(t, "x", x.ID())
	assert.Equal(t, "X", x.Label())
	assert.Equal(t, 10*time.Second, x.Elapsed())
	assert.False(t, x.Running())

	assert.Equal(t, "y", y.ID())
	assert.Equal(t, model.DefaultLabel, y.Label())
	assert.Equal(t, time.Duration(0), y.Elapsed())
	assert.False(t, y.Running())
}

func TestRestoreAllIgnoresOrphans(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.SetOrder([]string{"kept"}))
	require.NoError(t, st.Put("kept", model.Snapshot{Version: 1, Label: "kept"}))
	require.NoError(t, st.Put("orphan", model.Snapshot{Version: 1, Label: "orphan"}))

	m := NewManager(st, clocktest.NewManual())
	require.True(t, m.RestoreAll())
	assert.Equal(t, []string{"kept"}, m.Order())
	assert.Nil(t, m.Find("orphan"))
}

func TestRestoreAllSkipsDuplicateIDs(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.SetOrder([]string{"a", "b", "a", ""}))

	m := NewManager(st, clocktest.NewManual())
	require.True(t, m.RestoreAll())
	assert.Equal(t, []string{"a", "b"}, m.Order())
	assert.Equal(t, []string{"a", "b"}, storedOrder(t, st))
}

func TestRestoreAllEmptyOrderLeavesStateUntouched(t *testing.T) {
	m, st, _ := newTestManager(t, "a")
	m.AddSession()
	require.NoError(t, st.SetOrder(nil))

	assert.False(t, m.RestoreAll())
	assert.Equal(t, []string{"a"}, m.Order())
}

func TestRestoreAllReplacesExistingSessions(t *testing.T) {
	m, st, clk := newTestManager(t, "old")
	old := m.AddSession()
	old.Start()
	require.NoError(t, st.SetOrder([]string{"new"}))

	require.True(t, m.RestoreAll())
	assert.Equal(t, []string{"new"}, m.Order())
	assert.Equal(t, 0, clk.Pending(), "replaced sessions stop ticking")
}

func TestRemovedSessionsAreNotRetained(t *testing.T) {
	t.Run("remove", func(t *testing.T) {
		m, _, _ := newTestManager(t, "a", "b", "c")
		for i := 0; i < 3; i++ {
			m.AddSession()
		}
		backing := m.sessions[:cap(m.sessions)]

		require.True(t, m.RemoveSession(0))
		assert.Nil(t, backing[2], "vacated slot still points at a session")
		assert.Equal(t, []string{"b", "c"}, m.Order())
	})

	t.Run("move", func(t *testing.T) {
		m, _, _ := newTestManager(t, "a", "b", "c")
		for i := 0; i < 3; i++ {
			m.AddSession()
		}
		require.True(t, m.Move(2, 0))
		assert.Equal(t, []string{"c", "a", "b"}, m.Order())
		for _, s := range m.sessions[len(m.sessions):cap(m.sessions)] {
			assert.Nil(t, s)
		}
	})

	t.Run("restore", func(t *testing.T) {
		m, st, _ := newTestManager(t, "a", "b", "c")
		for i := 0; i < 3; i++ {
			m.AddSession()
		}
		require.NoError(t, st.SetOrder([]string{"x"}))
		backing := m.sessions[:cap(m.sessions)]

		require.True(t, m.RestoreAll())
		assert.Equal(t, []string{"x"}, m.Order())
		assert.Nil(t, backing[1])
		assert.Nil(t, backing[2])
	})
}

func TestEnsureDefault(t *testing.T) {
	t.Run("empty store creates one session", func(t *testing.T) {
		m, st, _ := newTestManager(t, "first")
		m.EnsureDefault()
		assert.Equal(t, []string{"first"}, m.Order())
		assert.Equal(t, []string{"first"}, storedOrder(t, st))
	})

	t.Run("persisted sessions are restored", func(t *testing.T) {
		m, st, _ := newTestManager(t, "unused")
		require.NoError(t, st.SetOrder([]string{"p", "q"}))
		m.EnsureDefault()
		assert.Equal(t, []string{"p", "q"}, m.Order())
	})

	t.Run("order of only empty ids still yields one session", func(t *testing.T) {
		m, st, _ := newTestManager(t, "fresh")
		require.NoError(t, st.SetOrder([]string{"", ""}))
		m.EnsureDefault()
		assert.Equal(t, []string{"fresh"}, m.Order())
		assert.Equal(t, []string{"fresh"}, storedOrder(t, st))
	})
}

func TestOrderInvariant(t *testing.T) {
	m, st, _ := newTestManager(t, "a", "b", "c", "d", "e")

	steps := []func(){
		func() { m.AddSession() },
		func() { m.AddSession() },
		func() { m.AddSession() },
		func() { m.RemoveSession(1) },
		func() { m.AddSession() },
		func() { m.Move(0, 2) },
		func() { m.RemoveSession(7) },
		func() { m.AddSession() },
		func() { m.RemoveSessionByID("a") },
	}
	for i, step := range steps {
		step()
		assert.Equal(t, m.Order(), storedOrder(t, st), "step %d", i)
	}
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	fs := &failingStore{}
	clk := clocktest.NewManual()
	m := NewManager(fs, clk, WithIDGenerator(sequentialIDs("a", "b")))

	assert.False(t, m.RestoreAll())
	m.EnsureDefault()
	require.Equal(t, 1, m.Len())

	s := m.At(0)
	s.Start()
	clk.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, s.Elapsed())
	assert.True(t, s.Running())
	assert.Greater(t, fs.puts, 1)

	m.AddSession()
	assert.True(t, m.RemoveSession(0))
	assert.Equal(t, []string{"b"}, m.Order())
	m.Shutdown()
}

func TestResetAll(t *testing.T) {
	m, st, clk := newTestManager(t, "a", "b")
	a := m.AddSession()
	b := m.AddSession()
	a.Start()
	b.Start()
	clk.Advance(2 * time.Second)

	m.ResetAll()
	for _, s := range m.Sessions() {
		assert.False(t, s.Running())
		assert.Equal(t, time.Duration(0), s.Elapsed())
		snap, ok, err := st.Get(s.ID())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0.0, snap.Elapsed)
	}
}

func TestSessionsReturnsCopy(t *testing.T) {
	m, _, _ := newTestManager(t, "a", "b")
	m.AddSession()
	m.AddSession()

	sessions := m.Sessions()
	sessions[0] = nil
	assert.NotNil(t, m.At(0))
	assert.Nil(t, m.At(-1))
	assert.Nil(t, m.At(2))
	assert.Equal(t, 1, m.IndexOf("b"))
	assert.Equal(t, -1, m.IndexOf("zzz"))
}

func TestRequiredHeight(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.SetGeometry(Geometry{Base: 120, PerSession: 40, Footer: 30})

	assert.Equal(t, 150.0, m.RequiredHeight(), "empty manager uses the single-session height")

	prev := m.RequiredHeight()
	for i := 1; i <= 5; i++ {
		m.AddSession()
		h := m.RequiredHeight()
		assert.Equal(t, 120+40*float64(i-1)+30, h)
		assert.GreaterOrEqual(t, h, prev)
		prev = h
	}
}

func TestWriteSnapshotUsesVersion(t *testing.T) {
	m, st, _ := newTestManager(t, "v")
	s := m.AddSession()
	s.Reset()

	snap, ok, err := st.Get("v")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.SnapshotVersion, snap.Version)
}
