// Package clocktest provides a deterministic clock for tests.
package clocktest

import (
	"sort"
	"time"

	"github.com/jol333/TaskTimer/internal/core/clock"
)

// Manual is a clock.Clock that only moves when Advance is called. Callbacks run
// synchronously inside Advance, in deadline order, on the caller's goroutine.
type Manual struct {
	now     time.Duration
	seq     int
	entries []*entry
}

type entry struct {
	m        *Manual
	seq      int
	deadline time.Duration
	interval time.Duration // zero for one-shot
	fn       func()
	dead     bool
}

func (e *entry) Cancel() {
	if e.dead {
		return
	}
	e.dead = true
	e.m.remove(e)
}

var _ clock.Clock = (*Manual)(nil)

// NewManual returns a clock positioned at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Elapsed reports how far the clock has been advanced.
func (m *Manual) Elapsed() time.Duration {
	return m.now
}

// Pending reports the number of live subscriptions.
func (m *Manual) Pending() int {
	return len(m.entries)
}

func (m *Manual) Every(interval time.Duration, fn func()) clock.Subscription {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return m.add(interval, interval, fn)
}

func (m *Manual) AfterFunc(delay time.Duration, fn func()) clock.Subscription {
	if delay < 0 {
		delay = 0
	}
	return m.add(delay, 0, fn)
}

func (m *Manual) add(delay, interval time.Duration, fn func()) *entry {
	m.seq++
	e := &entry{m: m, seq: m.seq, deadline: m.now + delay, interval: interval, fn: fn}
	m.entries = append(m.entries, e)
	return e
}

func (m *Manual) remove(target *entry) {
	for i, e := range m.entries {
		if e == target {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.deadline
		if next.interval > 0 {
			next.deadline += next.interval
		} else {
			next.dead = true
			m.remove(next)
		}
		next.fn()
	}
	m.now = target
}

func (m *Manual) nextDue(target time.Duration) *entry {
	due := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.deadline <= target {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}
