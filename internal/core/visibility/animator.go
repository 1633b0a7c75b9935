package visibility

import (
	"time"

	"github.com/jol333/TaskTimer/internal/core/clock"
)

// Animator runs the visual transition to a state and calls done once it has
// finished. Cancelling the returned subscription abandons the animation and
// done must then not be called.
type Animator interface {
	Animate(to State, done func()) clock.Subscription
}

// ClockAnimator models a fixed-length animation on a clock.
type ClockAnimator struct {
	Clock    clock.Clock
	Duration time.Duration
}

func (a ClockAnimator) Animate(_ State, done func()) clock.Subscription {
	return a.Clock.AfterFunc(a.Duration, done)
}

// instant settles synchronously. Used when the view has no animation.
type instant struct{}

type noopSubscription struct{}

func (noopSubscription) Cancel() {}

func (instant) Animate(_ State, done func()) clock.Subscription {
	done()
	return noopSubscription{}
}

// Instant is an Animator whose transitions settle immediately.
var Instant Animator = instant{}
