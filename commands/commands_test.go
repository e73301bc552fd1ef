package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillworld/archon/commands"
	"github.com/quillworld/archon/types"
)

func TestDrainPreservesEnqueueOrder(t *testing.T) {
	q := commands.NewQueue()
	e := types.Entity{ID: 1, Generation: 1}
	q.Spawn(nil)
	q.Add(e, 3, "value")
	q.Remove(e, 3)
	q.Despawn(e)

	batch := q.Drain()
	assert.Len(t, batch, 4)
	assert.Equal(t, commands.KindSpawn, batch[0].Kind)
	assert.Equal(t, commands.KindAdd, batch[1].Kind)
	assert.Equal(t, commands.KindRemove, batch[2].Kind)
	assert.Equal(t, commands.KindDespawn, batch[3].Kind)
	assert.Equal(t, types.ComponentID(3), batch[1].Component)
	assert.Equal(t, "value", batch[1].Value)
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := commands.NewQueue()
	q.Spawn(nil)
	assert.True(t, q.HasPending())

	_ = q.Drain()
	assert.False(t, q.HasPending())
	assert.Len(t, q.Drain(), 0)
}

func TestEnqueueDuringReplayLandsInNextDrain(t *testing.T) {
	q := commands.NewQueue()
	q.Spawn(func(e types.Entity) {
		q.Add(e, 0, 42)
	})
	batch := q.Drain()
	assert.Len(t, batch, 1)

	// Simulate replay: running the init enqueues a follow-up command.
	batch[0].Init(types.Entity{ID: 0, Generation: 1})
	assert.True(t, q.HasPending())
	next := q.Drain()
	assert.Len(t, next, 1)
	assert.Equal(t, commands.KindAdd, next[0].Kind)
}

func TestReset(t *testing.T) {
	q := commands.NewQueue()
	q.Spawn(nil)
	q.Reset()
	assert.False(t, q.HasPending())
	assert.Equal(t, 0, q.Len())
}
