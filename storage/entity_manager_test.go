package storage_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworld/archon/storage"
	"github.com/quillworld/archon/types"
)

func TestCreateStartsAtGenerationOne(t *testing.T) {
	m := storage.NewEntityManager()
	e := m.Create()
	assert.Equal(t, types.EntityID(0), e.ID)
	assert.Equal(t, uint32(1), e.Generation)
	assert.True(t, m.IsAlive(e))

	// The zero Entity value must never be a valid handle.
	assert.False(t, m.IsAlive(types.Entity{}))
}

func TestGenerationSafetyAcrossReuse(t *testing.T) {
	m := storage.NewEntityManager()
	old := m.Create()
	m.Kill(old)
	assert.False(t, m.IsAlive(old))

	reused := m.Create()
	assert.Equal(t, old.ID, reused.ID)
	assert.Equal(t, old.Generation+1, reused.Generation)
	assert.True(t, m.IsAlive(reused))
	assert.False(t, m.IsAlive(old), "stale handle must stay dead after its id is recycled")
}

func TestKillIsIdempotent(t *testing.T) {
	m := storage.NewEntityManager()
	e := m.Create()
	m.Kill(e)
	m.Kill(e) // double kill
	m.Kill(types.Entity{ID: e.ID, Generation: 99}) // stale handle

	// The free list must hold the id exactly once: only one entity comes back.
	a := m.Create()
	b := m.Create()
	assert.Equal(t, e.ID, a.ID)
	assert.NotEqual(t, e.ID, b.ID)
}

func TestAliveCount(t *testing.T) {
	m := storage.NewEntityManager()
	a := m.Create()
	m.Create()
	m.Create()
	m.Kill(a)
	assert.Equal(t, 2, m.AliveCount())
}

func TestAllocatorExportImportRoundTrip(t *testing.T) {
	m := storage.NewEntityManager()
	a := m.Create()
	b := m.Create()
	m.Create()
	m.Kill(b)

	state := m.ExportAllocatorState()

	restored := storage.NewEntityManager()
	require.NoError(t, restored.ImportAllocatorState(state))
	restored.Revive(a.ID)
	assert.True(t, restored.IsAlive(a))
	assert.False(t, restored.IsAlive(b))

	// The freed slot must come back with a bumped generation.
	reused := restored.Create()
	assert.Equal(t, b.ID, reused.ID)
	assert.Equal(t, b.Generation+1, reused.Generation)
}

func TestValidateAllocatorState(t *testing.T) {
	valid := storage.AllocatorState{
		NextID: 3,
		Free:   []types.EntityID{1},
		Generations: []storage.GenerationEntry{
			{ID: 0, Generation: 1},
			{ID: 1, Generation: 2},
			{ID: 2, Generation: 1},
		},
	}
	require.NoError(t, storage.ValidateAllocatorState(valid))

	testCases := []struct {
		name   string
		mutate func(s *storage.AllocatorState)
	}{
		{"generation entry out of range", func(s *storage.AllocatorState) {
			s.Generations = append(s.Generations, storage.GenerationEntry{ID: 9, Generation: 1})
		}},
		{"zero generation", func(s *storage.AllocatorState) {
			s.Generations[0].Generation = 0
		}},
		{"duplicate generation entry", func(s *storage.AllocatorState) {
			s.Generations = append(s.Generations, storage.GenerationEntry{ID: 0, Generation: 5})
		}},
		{"free id out of range", func(s *storage.AllocatorState) {
			s.Free = append(s.Free, 42)
		}},
		{"free id without generation entry", func(s *storage.AllocatorState) {
			s.NextID = 4
			s.Free = append(s.Free, 3)
		}},
		{"duplicate free entry", func(s *storage.AllocatorState) {
			s.Free = append(s.Free, 1)
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := storage.AllocatorState{
				NextID:      valid.NextID,
				Free:        append([]types.EntityID(nil), valid.Free...),
				Generations: append([]storage.GenerationEntry(nil), valid.Generations...),
			}
			tc.mutate(&state)
			err := storage.ValidateAllocatorState(state)
			require.Error(t, err)
			assert.True(t, eris.Is(eris.Cause(err), storage.ErrAllocatorValidation))
		})
	}
}

func TestImportLeavesManagerUntouchedOnFailure(t *testing.T) {
	m := storage.NewEntityManager()
	e := m.Create()

	bad := storage.AllocatorState{NextID: 1, Free: []types.EntityID{0}}
	require.Error(t, m.ImportAllocatorState(bad))
	assert.True(t, m.IsAlive(e))
}
