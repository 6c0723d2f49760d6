package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestRenderQueue_DrainsAtZero(t *testing.T) {
	q := NewRenderQueue(nil)
	q.Reserve(1)
	q.Reserve(2)
	assert.Equal(t, 3, q.Pending())

	q.Materialize()
	q.Materialize()
	assert.False(t, isClosed(q.Drained()))

	q.Materialize()
	assert.Equal(t, 0, q.Pending())
	assert.True(t, isClosed(q.Drained()))

	// Later work does not reopen first paint.
	q.Reserve(2)
	q.Release(2)
	assert.True(t, isClosed(q.Drained()))
}

func TestRenderQueue_MaterializeWithNothingPending(t *testing.T) {
	q := NewRenderQueue(nil)
	q.Materialize()
	assert.Equal(t, 0, q.Pending())
	assert.False(t, isClosed(q.Drained()), "drain requires a reservation first")
}

func TestRenderQueue_WaitFromAnotherGoroutine(t *testing.T) {
	q := NewRenderQueue(nil)
	q.Reserve(1)

	done := make(chan struct{})
	go func() {
		<-q.Drained()
		close(done)
	}()

	q.Materialize()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}
