// Package events implements phase-scoped event delivery. Each event type gets
// a double-buffered FIFO: emits land in the write buffer, reads come from the
// read buffer, and a swap at a phase boundary exchanges the two. An event is
// therefore visible for exactly one phase; anything left unread at the next
// swap is dropped. This is a deliberate delivery window, not a durable queue.
package events

import (
	"reflect"
)

// Channel is the double-buffered FIFO for one event type.
type Channel[T any] struct {
	read  []T
	write []T
}

func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{}
}

// Emit appends the event to the write buffer. It becomes readable after the
// next buffer swap.
func (c *Channel[T]) Emit(event T) {
	c.write = append(c.write, event)
}

// Values returns the readable events in emission order without consuming
// them.
func (c *Channel[T]) Values() []T {
	return c.read
}

// Drain returns the readable events and empties the read buffer.
func (c *Channel[T]) Drain() []T {
	out := c.read
	c.read = nil
	return out
}

// Len reports how many events are currently readable.
func (c *Channel[T]) Len() int {
	return len(c.read)
}

// SwapBuffers exchanges the read and write buffers and clears the new write
// buffer. Call only at a phase boundary, never mid-phase.
func (c *Channel[T]) SwapBuffers() {
	c.read, c.write = c.write, c.read[:0]
}

func (c *Channel[T]) reset() {
	c.read = nil
	c.write = nil
}

// anyChannel is the type-erased view the Manager keeps of every channel.
type anyChannel interface {
	swapBuffers()
	clear()
}

type channelBox[T any] struct {
	ch *Channel[T]
}

func (b channelBox[T]) swapBuffers() { b.ch.SwapBuffers() }
func (b channelBox[T]) clear()       { b.ch.reset() }

// Manager owns one Channel per event type, keyed by the event's Go type.
type Manager struct {
	channels map[reflect.Type]anyChannel
}

func NewManager() *Manager {
	return &Manager{channels: make(map[reflect.Type]anyChannel)}
}

// ChannelOf returns the manager's channel for event type T, creating it on
// first use.
func ChannelOf[T any](m *Manager) *Channel[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if box, ok := m.channels[key]; ok {
		return box.(channelBox[T]).ch
	}
	ch := NewChannel[T]()
	m.channels[key] = channelBox[T]{ch: ch}
	return ch
}

// SwapAll swaps the buffers of every registered channel. Invoked at each
// phase boundary.
func (m *Manager) SwapAll() {
	for _, box := range m.channels {
		box.swapBuffers()
	}
}

// Reset discards all buffered events on every channel. The channels
// themselves stay registered. Used when a snapshot import replaces world
// state.
func (m *Manager) Reset() {
	for _, box := range m.channels {
		box.clear()
	}
}

// Count returns the number of registered event channels.
func (m *Manager) Count() int {
	return len(m.channels)
}
