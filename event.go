package archon

import "github.com/quillworld/archon/events"

// EmitEvent appends an event of type T to the world's write buffer. Emitted
// events become readable after the next buffer swap, which Update performs
// automatically at the end of each step.
func EmitEvent[T any](w *World, event T) {
	events.ChannelOf[T](w.eventManager).Emit(event)
}

// ReadEvents returns the events of type T that became readable at the last
// buffer swap. The slice aliases the channel's read buffer; it is valid until
// the next swap.
func ReadEvents[T any](w *World) []T {
	return events.ChannelOf[T](w.eventManager).Values()
}

// DrainEvents returns the readable events of type T and empties the read
// buffer, so a second drain in the same phase yields nothing.
func DrainEvents[T any](w *World) []T {
	return events.ChannelOf[T](w.eventManager).Drain()
}

// EventsOf exposes the raw double-buffered channel for T, for callers that
// want to hold it across updates instead of re-resolving by type.
func EventsOf[T any](w *World) *events.Channel[T] {
	return events.ChannelOf[T](w.eventManager)
}
