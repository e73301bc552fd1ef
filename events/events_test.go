package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillworld/archon/events"
)

type collision struct {
	A, B int
}

type damage struct {
	Amount int
}

func TestDeliveryWindow(t *testing.T) {
	ch := events.NewChannel[collision]()

	// Emitted during phase A: invisible until a swap.
	ch.Emit(collision{A: 1, B: 2})
	assert.Len(t, ch.Values(), 0)

	ch.SwapBuffers()
	assert.Equal(t, []collision{{A: 1, B: 2}}, ch.Values())

	// Not drained before the second swap: gone for good.
	ch.SwapBuffers()
	assert.Len(t, ch.Values(), 0)
	ch.SwapBuffers()
	assert.Len(t, ch.Values(), 0)
}

func TestNewEventSurvivesExactlyOneSwap(t *testing.T) {
	ch := events.NewChannel[collision]()
	ch.Emit(collision{A: 1, B: 1})
	ch.SwapBuffers()

	// Phase B emits while phase A's event is still readable.
	ch.Emit(collision{A: 2, B: 2})
	ch.SwapBuffers()

	// Phase A's event is dropped, phase B's is now readable.
	assert.Equal(t, []collision{{A: 2, B: 2}}, ch.Values())
}

func TestFIFOWithinOnePhase(t *testing.T) {
	ch := events.NewChannel[damage]()
	for i := 1; i <= 4; i++ {
		ch.Emit(damage{Amount: i})
	}
	ch.SwapBuffers()
	got := ch.Drain()
	assert.Equal(t, []damage{{1}, {2}, {3}, {4}}, got)
	assert.Len(t, ch.Values(), 0, "drain consumes the read buffer")
}

func TestManagerChannelPerType(t *testing.T) {
	m := events.NewManager()
	a := events.ChannelOf[collision](m)
	b := events.ChannelOf[collision](m)
	c := events.ChannelOf[damage](m)

	assert.Same(t, a, b)
	assert.Equal(t, 2, m.Count())

	a.Emit(collision{A: 1, B: 2})
	c.Emit(damage{Amount: 3})
	m.SwapAll()
	assert.Len(t, a.Values(), 1)
	assert.Len(t, c.Values(), 1)
}

func TestManagerReset(t *testing.T) {
	m := events.NewManager()
	ch := events.ChannelOf[damage](m)
	ch.Emit(damage{Amount: 1})
	ch.SwapBuffers()
	ch.Emit(damage{Amount: 2})

	m.Reset()
	assert.Len(t, ch.Values(), 0)
	ch.SwapBuffers()
	assert.Len(t, ch.Values(), 0, "reset drops the write buffer too")
	assert.Equal(t, 1, m.Count(), "channels stay registered across a reset")
}
