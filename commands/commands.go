// Package commands implements the deferred structural-mutation queue.
// Systems running inside a locked iteration cannot spawn, despawn, or change
// component sets directly; instead they enqueue commands here and the world
// replays them, in enqueue order, once iteration has ended.
package commands

import (
	"github.com/quillworld/archon/types"
)

// Kind tags one queued operation.
type Kind int

const (
	KindSpawn Kind = iota
	KindDespawn
	KindAdd
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindDespawn:
		return "despawn"
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	}
	return "unknown"
}

// SpawnInit runs inline during replay, right after the entity is created. It
// may enqueue further commands; the world's flush loop keeps draining until
// the queue is empty, so those land in the same flush.
type SpawnInit func(e types.Entity)

// Command is one deferred operation. Which fields are meaningful depends on
// Kind: Spawn uses Init, Despawn uses Entity, Add uses Entity/Component/Value,
// Remove uses Entity/Component.
type Command struct {
	Kind      Kind
	Entity    types.Entity
	Component types.ComponentID
	Value     any
	Init      SpawnInit
}

// Queue is an ordered sequence of pending commands.
type Queue struct {
	pending []Command
}

func NewQueue() *Queue {
	return &Queue{}
}

// Spawn enqueues an entity creation. init may be nil.
func (q *Queue) Spawn(init SpawnInit) {
	q.pending = append(q.pending, Command{Kind: KindSpawn, Init: init})
}

// Despawn enqueues an entity removal.
func (q *Queue) Despawn(e types.Entity) {
	q.pending = append(q.pending, Command{Kind: KindDespawn, Entity: e})
}

// Add enqueues a component addition (or in-place overwrite if the entity
// already carries the component at replay time).
func (q *Queue) Add(e types.Entity, cid types.ComponentID, value any) {
	q.pending = append(q.pending, Command{Kind: KindAdd, Entity: e, Component: cid, Value: value})
}

// Remove enqueues a component removal.
func (q *Queue) Remove(e types.Entity, cid types.ComponentID) {
	q.pending = append(q.pending, Command{Kind: KindRemove, Entity: e, Component: cid})
}

// Drain atomically empties the queue and returns its contents in enqueue
// order. Commands enqueued while the returned batch is being replayed land in
// a fresh queue and are picked up by the next Drain.
func (q *Queue) Drain() []Command {
	out := q.pending
	q.pending = nil
	return out
}

// HasPending reports whether any commands are waiting. Schedulers use this to
// decide whether a flush is needed at a phase boundary.
func (q *Queue) HasPending() bool {
	return len(q.pending) > 0
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Reset discards all pending commands. Used when a snapshot import replaces
// world state.
func (q *Queue) Reset() {
	q.pending = nil
}
