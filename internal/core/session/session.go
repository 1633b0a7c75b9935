package session

import (
	"math"
	"time"

	"github.com/jol333/TaskTimer/internal/core/clock"
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/util"
)

// SnapshotWriter receives a session's snapshot whenever it should be persisted.
// Implementations must not fail; storage errors are theirs to absorb.
type SnapshotWriter interface {
	WriteSnapshot(id string, snap model.Snapshot)
}

// SnapshotWriterFunc adapts a function to SnapshotWriter.
type SnapshotWriterFunc func(id string, snap model.Snapshot)

func (f SnapshotWriterFunc) WriteSnapshot(id string, snap model.Snapshot) { f(id, snap) }

// Session is one independent stopwatch. It is not safe for concurrent use; all
// calls and all clock callbacks must arrive on the same goroutine.
type Session struct {
	id      string
	label   string
	elapsed time.Duration

	// sub is non-nil exactly while the session is running.
	sub   clock.Subscription
	ticks int

	config Config
	clock  clock.Clock
	writer SnapshotWriter
}

// New creates a stopped session with the default label.
func New(id string, clk clock.Clock, writer SnapshotWriter, config Config) *Session {
	config = config.normalize()
	if writer == nil {
		writer = SnapshotWriterFunc(func(string, model.Snapshot) {})
	}
	return &Session{
		id:     id,
		label:  config.DefaultLabel,
		config: config,
		clock:  clk,
		writer: writer,
	}
}

func (s *Session) ID() string             { return s.id }
func (s *Session) Label() string          { return s.label }
func (s *Session) Elapsed() time.Duration { return s.elapsed }
func (s *Session) Running() bool          { return s.sub != nil }
func (s *Session) DisplayString() string  { return util.FormatElapsed(s.elapsed) }

// Start begins ticking. It is a no-op if the session is already running.
func (s *Session) Start() {
	if s.sub != nil {
		return
	}
	s.ticks = 0
	s.sub = s.clock.Every(s.config.TickInterval, s.tick)
	util.LogDebugf("Session %s started at %s", s.id, s.DisplayString())
	s.save()
}

// Stop halts ticking. It is a no-op if the session is not running.
func (s *Session) Stop() {
	if s.sub == nil {
		return
	}
	s.halt()
	util.LogDebugf("Session %s stopped at %s", s.id, s.DisplayString())
	s.save()
}

// Toggle starts a stopped session or stops a running one.
func (s *Session) Toggle() {
	if s.Running() {
		s.Stop()
	} else {
		s.Start()
	}
}

// Reset stops the session and zeroes its elapsed time.
func (s *Session) Reset() {
	s.halt()
	s.elapsed = 0
	s.save()
}

// Rename changes the label without persisting it; EndEdit persists.
func (s *Session) Rename(label string) {
	s.label = label
}

// EndEdit persists the session once label editing is finished.
func (s *Session) EndEdit() {
	s.save()
}

// Snapshot returns the persisted form of the current state.
func (s *Session) Snapshot() model.Snapshot {
	return model.Snapshot{
		Version: model.SnapshotVersion,
		Elapsed: s.elapsed.Seconds(),
		Running: s.Running(),
		Label:   s.label,
	}
}

// Restore loads elapsed time and label from snap. A snapshot taken while
// running resumes ticking immediately.
func (s *Session) Restore(snap model.Snapshot) {
	s.elapsed = snap.ElapsedDuration()
	s.label = snap.Label
	if snap.Running {
		s.Start()
	} else {
		s.halt()
	}
}

// tick runs on every clock interval while running.
func (s *Session) tick() {
	if s.sub == nil {
		return
	}
	if s.elapsed > math.MaxInt64-s.config.TickInterval {
		s.elapsed = math.MaxInt64
	} else {
		s.elapsed += s.config.TickInterval
	}
	s.ticks++
	if s.ticks%s.config.ticksPerSave() == 0 {
		s.save()
	}
}

// halt cancels the subscription without writing a snapshot.
func (s *Session) halt() {
	if s.sub == nil {
		return
	}
	s.sub.Cancel()
	s.sub = nil
}

func (s *Session) save() {
	s.writer.WriteSnapshot(s.id, s.Snapshot())
}
