package clocktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualEvery(t *testing.T) {
	m := NewManual()
	count := 0
	sub := m.Every(100*time.Millisecond, func() { count++ })

	m.Advance(5 * time.Second)
	assert.Equal(t, 50, count)

	sub.Cancel()
	m.Advance(time.Second)
	assert.Equal(t, 50, count)
	assert.Equal(t, 0, m.Pending())
}

func TestManualAfterFuncOrdering(t *testing.T) {
	m := NewManual()
	var order []string
	m.AfterFunc(2*time.Second, func() { order = append(order, "late") })
	m.AfterFunc(time.Second, func() { order = append(order, "early") })

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"early"}, order)

	m.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, order)
	assert.Equal(t, 2500*time.Millisecond, m.Elapsed())
}

func TestManualCancelFromCallback(t *testing.T) {
	m := NewManual()
	fired := false
	var other interface{ Cancel() }
	m.AfterFunc(time.Second, func() { other.Cancel() })
	other = m.AfterFunc(time.Second, func() { fired = true })

	m.Advance(time.Second)
	assert.False(t, fired)
}
