package clock

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, d *Dispatcher) func() {
	t.Helper()
	select {
	case fn := <-d.Callbacks():
		return fn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func TestDispatcherEvery(t *testing.T) {
	fc := clockwork.NewFakeClock()
	d := NewDispatcher(fc, 8)

	ticks := 0
	sub := d.Every(100*time.Millisecond, func() { ticks++ })
	defer sub.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))

	fc.Advance(100 * time.Millisecond)
	receive(t, d)()
	assert.Equal(t, 1, ticks)

	fc.Advance(100 * time.Millisecond)
	receive(t, d)()
	assert.Equal(t, 2, ticks)
}

func TestDispatcherAfterFunc(t *testing.T) {
	fc := clockwork.NewFakeClock()
	d := NewDispatcher(fc, 8)

	fired := false
	d.AfterFunc(2*time.Second, func() { fired = true })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))

	fc.Advance(1 * time.Second)
	select {
	case <-d.Callbacks():
		t.Fatal("callback delivered before its delay")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(1 * time.Second)
	receive(t, d)()
	assert.True(t, fired)
}

func TestDispatcherCancelDropsQueuedCallback(t *testing.T) {
	fc := clockwork.NewFakeClock()
	d := NewDispatcher(fc, 8)

	fired := false
	sub := d.AfterFunc(time.Second, func() { fired = true })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))

	fc.Advance(time.Second)
	queued := receive(t, d)

	// Cancelled after the timer fired but before the loop ran the callback.
	sub.Cancel()
	queued()
	assert.False(t, fired)
}

func TestDispatcherCancelStopsTicker(t *testing.T) {
	fc := clockwork.NewFakeClock()
	d := NewDispatcher(fc, 8)

	sub := d.Every(100*time.Millisecond, func() {})
	sub.Cancel()
	sub.Cancel() // idempotent

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker goroutine did not exit after cancel")
	}
}
