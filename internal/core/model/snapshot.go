package model

import (
	"math"
	"time"
)

// SnapshotVersion is the current version of the persisted session record.
const SnapshotVersion = 1

// Persisted key layout
const (
	SnapshotKeyPrefix = "timer_"
	OrderKey          = "timerOrder"
)

// DefaultLabel is the label given to a session nobody has named yet.
const DefaultLabel = "Task name"

// Snapshot is the durable form of one timer session.
type Snapshot struct {
	Version int     `json:"version"`
	Elapsed float64 `json:"elapsed"` // seconds
	Running bool    `json:"running"`
	Label   string  `json:"label"`
}

// SnapshotKey returns the store key for the session with the given id.
func SnapshotKey(id string) string {
	return SnapshotKeyPrefix + id
}

// DefaultSnapshot is what a session restores to when its record is missing.
func DefaultSnapshot() Snapshot {
	return Snapshot{Version: SnapshotVersion, Label: DefaultLabel}
}

// ElapsedDuration converts the stored seconds back to a duration.
// Negative, NaN and infinite values restore as zero.
func (s Snapshot) ElapsedDuration() time.Duration {
	if math.IsNaN(s.Elapsed) || math.IsInf(s.Elapsed, 0) || s.Elapsed <= 0 {
		return 0
	}
	if s.Elapsed >= math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(math.Round(s.Elapsed * float64(time.Second)))
}

// Upgrade normalizes a record read from storage to the current version.
// Version 0 records predate the version field and share its layout.
func (s Snapshot) Upgrade() Snapshot {
	if s.Version < SnapshotVersion {
		s.Version = SnapshotVersion
	}
	return s
}
