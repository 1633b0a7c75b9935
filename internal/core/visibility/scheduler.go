// Package visibility decides when the widget collapses to its compact hotspot
// and when it expands again.
package visibility

import (
	"time"

	"github.com/jol333/TaskTimer/internal/core/clock"
	"github.com/jol333/TaskTimer/internal/core/constants"
	"github.com/jol333/TaskTimer/internal/util"
)

// State is the display mode of the widget.
type State int

const (
	Expanded State = iota
	Compact
)

func (s State) String() string {
	switch s {
	case Expanded:
		return "expanded"
	case Compact:
		return "compact"
	default:
		return "unknown"
	}
}

// ChangeFunc is called whenever the intended state changes and again when the
// transition settles.
type ChangeFunc func(state State, settled bool)

// Scheduler is a debounced expand/collapse state machine. Like the session
// types it must only be driven from one goroutine.
type Scheduler struct {
	clock     clock.Clock
	animator  Animator
	hideDelay time.Duration

	state   State
	settled bool
	editing bool
	stopped bool

	hide clock.Subscription // at most one pending hide
	anim clock.Subscription
	gen  uint64

	listeners []ChangeFunc
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithHideDelay sets how long after a hover exit the widget collapses.
func WithHideDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.hideDelay = d }
}

// WithAnimator replaces the default clock based animator.
func WithAnimator(a Animator) Option {
	return func(s *Scheduler) { s.animator = a }
}

// NewScheduler returns a settled, expanded scheduler with nothing pending.
func NewScheduler(clk clock.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:     clk,
		hideDelay: constants.HideDelay,
		state:     Expanded,
		settled:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.animator == nil {
		s.animator = ClockAnimator{Clock: clk, Duration: constants.AnimationDuration}
	}
	if s.hideDelay < 0 {
		s.hideDelay = 0
	}
	return s
}

// OnChange registers fn to be told about state changes.
func (s *Scheduler) OnChange(fn ChangeFunc) {
	s.listeners = append(s.listeners, fn)
}

func (s *Scheduler) State() State      { return s.state }
func (s *Scheduler) Expanded() bool    { return s.state == Expanded }
func (s *Scheduler) Settled() bool     { return s.settled }
func (s *Scheduler) Editing() bool     { return s.editing }
func (s *Scheduler) HidePending() bool { return s.hide != nil }

// HideDelay returns the current collapse delay.
func (s *Scheduler) HideDelay() time.Duration {
	return s.hideDelay
}

// SetHideDelay changes the collapse delay. A hide that is already pending
// keeps its original deadline.
func (s *Scheduler) SetHideDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.hideDelay = d
}

// Start arms the idle hide that collapses the widget if the pointer never
// arrives after launch.
func (s *Scheduler) Start() {
	s.HoverExit()
}

// HoverEnter cancels any pending hide and expands a compact widget.
func (s *Scheduler) HoverEnter() {
	if s.stopped {
		return
	}
	s.cancelHide()
	if s.state == Compact {
		s.transition(Expanded)
	}
}

// HoverExit schedules a collapse after the hide delay. Repeated exits keep
// the hide that is already pending, and nothing is scheduled while editing.
func (s *Scheduler) HoverExit() {
	if s.stopped || s.editing || s.hide != nil {
		return
	}
	s.hide = s.clock.AfterFunc(s.hideDelay, s.fireHide)
	util.LogDebugf("Hide scheduled in %s", s.hideDelay)
}

// EditBegin expands the widget and keeps it expanded until EditEnd.
func (s *Scheduler) EditBegin() {
	s.HoverEnter()
	s.editing = true
}

// EditEnd resumes the idle hide countdown.
func (s *Scheduler) EditEnd() {
	s.editing = false
	s.HoverExit()
}

// Stop cancels everything pending. The scheduler ignores events afterwards.
func (s *Scheduler) Stop() {
	s.cancelHide()
	s.cancelAnim()
	s.stopped = true
}

func (s *Scheduler) fireHide() {
	s.hide = nil
	if s.editing || s.state == Compact {
		return
	}
	s.transition(Compact)
}

func (s *Scheduler) cancelHide() {
	if s.hide != nil {
		s.hide.Cancel()
		s.hide = nil
	}
}

func (s *Scheduler) cancelAnim() {
	if s.anim != nil {
		s.anim.Cancel()
		s.anim = nil
	}
}

func (s *Scheduler) transition(to State) {
	s.cancelAnim()
	s.gen++
	gen := s.gen
	s.state = to
	s.settled = false
	util.LogDebugf("Visibility -> %s", to)
	s.notify()

	sub := s.animator.Animate(to, func() {
		if gen != s.gen {
			return
		}
		s.anim = nil
		s.settled = true
		s.notify()
	})
	// An animator may settle synchronously, in which case nothing is in flight.
	if gen == s.gen && !s.settled {
		s.anim = sub
	}
}

func (s *Scheduler) notify() {
	for _, fn := range s.listeners {
		fn(s.state, s.settled)
	}
}
