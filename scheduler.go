package archon

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/commands"
	"github.com/quillworld/archon/lifecycle"
	"github.com/quillworld/archon/statsd"
	"github.com/quillworld/archon/types"
)

// Update runs one full simulation step: every registered system in order,
// then the deferred command queue, then the event buffer swap. Commands and
// the swap happen even when a system errors, so the world is left in a
// consistent post-step state either way.
//
// Update and the Flush/SwapEvents pair are mutually exclusive drivers; the
// first one used claims the world for its style and the other errors from
// then on.
func (w *World) Update(dt float64) (err error) {
	if err := w.claimStage(lifecycle.UsingSimple); err != nil {
		return err
	}
	startTime := time.Now()
	defer func() { statsd.EmitUpdateStat(startTime, "full_update") }()

	// Deferred so the cleanup runs even when a system panics.
	defer func() {
		flushErr := w.applyCommands()
		w.eventManager.SwapAll()
		if err == nil {
			err = flushErr
		}
	}()

	return w.systems.runSystems(w, dt)
}

// Flush replays the deferred command queue and leaves event buffers alone.
// It is half of the phased driving style; pair it with SwapEvents.
func (w *World) Flush() error {
	if err := w.claimStage(lifecycle.UsingPhased); err != nil {
		return err
	}
	return w.applyCommands()
}

// SwapEvents rotates every event channel: events emitted since the previous
// swap become readable and previously readable events are discarded.
func (w *World) SwapEvents() error {
	if err := w.claimStage(lifecycle.UsingPhased); err != nil {
		return err
	}
	w.eventManager.SwapAll()
	return nil
}

// HasPendingCommands reports whether a Flush would do any work.
func (w *World) HasPendingCommands() bool {
	return w.commandQueue.HasPending()
}

// claimStage moves the world from Unused to the requested driving style, or
// verifies the style already claimed matches.
func (w *World) claimStage(want lifecycle.Stage) error {
	if w.stage.CompareAndSwap(lifecycle.Unused, want) {
		return nil
	}
	if current := w.stage.Current(); current != want {
		return eris.Wrapf(ErrLifecycleConflict, "world is driven via %s, not %s", current, want)
	}
	return nil
}

// applyCommands drains the queue in FIFO order until it is empty. Spawn init
// callbacks run with the spawned entity live, and may enqueue further
// commands; those are picked up by the same call. A command that fails (for
// example one targeting an entity despawned earlier in the batch) is logged
// and skipped, and the first such error is returned after the queue empties.
func (w *World) applyCommands() error {
	var firstErr error
	for w.commandQueue.HasPending() {
		for _, cmd := range w.commandQueue.Drain() {
			if err := w.applyCommand(cmd); err != nil {
				w.logger.Warn().Err(err).
					Str("command", cmd.Kind.String()).
					Msg("deferred command failed")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

func (w *World) applyCommand(cmd commands.Command) error {
	switch cmd.Kind {
	case commands.KindSpawn:
		e, err := w.Spawn()
		if err != nil {
			return err
		}
		if cmd.Init != nil {
			cmd.Init(e)
		}
		return nil
	case commands.KindDespawn:
		return w.Despawn(cmd.Entity)
	case commands.KindAdd:
		return w.addComponent(cmd.Entity, cmd.Component, cmd.Value)
	case commands.KindRemove:
		return w.removeComponent(cmd.Entity, cmd.Component)
	default:
		return eris.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// QueueAdd enqueues a deferred component add for e. Safe to call during
// iteration; the value lands at the next flush.
func QueueAdd[T any](w *World, e types.Entity, value T) {
	w.commandQueue.Add(e, ComponentIDOf[T](w), value)
}

// QueueRemove enqueues a deferred component removal for e.
func QueueRemove[T any](w *World, e types.Entity) {
	w.commandQueue.Remove(e, ComponentIDOf[T](w))
}
