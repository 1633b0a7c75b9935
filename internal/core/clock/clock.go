// Package clock provides the tick source shared by timer sessions and the
// visibility scheduler.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Subscription is a handle to a periodic or one-shot callback.
type Subscription interface {
	// Cancel stops the callback. Once Cancel returns the callback never runs again.
	// Cancel is idempotent.
	Cancel()
}

// Clock schedules callbacks. Implementations deliver every callback on a single
// goroutine so that callers never see two callbacks run concurrently.
type Clock interface {
	Every(interval time.Duration, fn func()) Subscription
	AfterFunc(delay time.Duration, fn func()) Subscription
}

// Dispatcher is a Clock backed by clockwork. Fired callbacks are queued and
// handed to the owner's event loop through Callbacks.
type Dispatcher struct {
	clock clockwork.Clock
	queue chan func()
	wg    sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue depth.
func NewDispatcher(clk clockwork.Clock, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		clock: clk,
		queue: make(chan func(), buffer),
	}
}

// Callbacks returns the channel the event loop must drain and invoke.
func (d *Dispatcher) Callbacks() <-chan func() {
	return d.queue
}

// Now returns the dispatcher's current time.
func (d *Dispatcher) Now() time.Time {
	return d.clock.Now()
}

type subscription struct {
	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
	stop      func()
}

func newSubscription() *subscription {
	return &subscription{done: make(chan struct{})}
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

// post queues fn for the loop. The queued closure re-checks cancellation on the
// loop goroutine so a tick already in the queue is dropped after Cancel.
func (d *Dispatcher) post(sub *subscription, fn func()) {
	wrapped := func() {
		if sub.cancelled.Load() {
			return
		}
		fn()
	}
	select {
	case d.queue <- wrapped:
	case <-sub.done:
	}
}

// Every runs fn once per interval until the subscription is cancelled.
func (d *Dispatcher) Every(interval time.Duration, fn func()) Subscription {
	sub := newSubscription()
	ticker := d.clock.NewTicker(interval)
	sub.stop = ticker.Stop

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ticker.Chan():
				d.post(sub, fn)
			case <-sub.done:
				return
			}
		}
	}()
	return sub
}

// AfterFunc runs fn once after delay unless cancelled first.
func (d *Dispatcher) AfterFunc(delay time.Duration, fn func()) Subscription {
	sub := newSubscription()
	timer := d.clock.AfterFunc(delay, func() {
		d.post(sub, fn)
	})
	sub.stop = func() { timer.Stop() }
	return sub
}

// Wait blocks until every ticker goroutine has exited. Callers cancel their
// subscriptions first.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
