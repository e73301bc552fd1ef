package storage

import (
	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/types"
)

var (
	// ErrAllocatorValidation is the cause of every failure reported by
	// ImportAllocatorState.
	ErrAllocatorValidation = eris.New("allocator state is malformed")
)

// EntityManager is the identity and liveness authority. It allocates entity
// slots, recycles them through a free list, and bumps the slot generation on
// every reuse so stale handles can never alias a recycled ID.
type EntityManager struct {
	metas    []types.EntityMeta
	freeList []types.EntityID
}

func NewEntityManager() *EntityManager {
	return &EntityManager{}
}

// Create allocates an entity handle. Recycled slots get their generation
// incremented; fresh slots start at generation 1, so the zero Entity value is
// never a valid handle. The new entity is placed in the empty archetype at an
// unset row; the caller is responsible for assigning real storage.
func (m *EntityManager) Create() types.Entity {
	if n := len(m.freeList); n > 0 {
		id := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		meta := &m.metas[id]
		meta.Generation++
		meta.Alive = true
		meta.Archetype = 0
		meta.Row = -1
		return types.Entity{ID: id, Generation: meta.Generation}
	}
	id := types.EntityID(len(m.metas))
	m.metas = append(m.metas, types.EntityMeta{
		Generation: 1,
		Alive:      true,
		Archetype:  0,
		Row:        -1,
	})
	return types.Entity{ID: id, Generation: 1}
}

// IsAlive reports whether e refers to a currently-allocated entity. A handle
// with an outdated generation is simply not alive; it is never an error.
func (m *EntityManager) IsAlive(e types.Entity) bool {
	if int(e.ID) >= len(m.metas) {
		return false
	}
	meta := m.metas[e.ID]
	return meta.Alive && meta.Generation == e.Generation
}

// Kill frees the entity's slot. It is idempotent: killing an already-dead or
// stale handle is a no-op. The generation is bumped on reuse, not here, so a
// killed slot still remembers which generation it last served.
func (m *EntityManager) Kill(e types.Entity) {
	if !m.IsAlive(e) {
		return
	}
	meta := &m.metas[e.ID]
	meta.Alive = false
	m.freeList = append(m.freeList, e.ID)
}

// Meta returns a pointer to the slot record for id. The pointer stays valid
// until the next Create call grows the table.
func (m *EntityManager) Meta(id types.EntityID) *types.EntityMeta {
	return &m.metas[id]
}

// SetLocation records the entity's current archetype and row.
func (m *EntityManager) SetLocation(id types.EntityID, archID types.ArchetypeID, row int) {
	meta := &m.metas[id]
	meta.Archetype = archID
	meta.Row = row
}

// SetRow updates only the row pointer. Used for the displaced-entity fixup
// after a swap-remove.
func (m *EntityManager) SetRow(id types.EntityID, row int) {
	m.metas[id].Row = row
}

// AliveCount returns the number of currently-alive entities.
func (m *EntityManager) AliveCount() int {
	count := 0
	for i := range m.metas {
		if m.metas[i].Alive {
			count++
		}
	}
	return count
}

// EachAlive invokes fn for every alive entity in slot order.
func (m *EntityManager) EachAlive(fn func(e types.Entity, meta types.EntityMeta)) {
	for i := range m.metas {
		if !m.metas[i].Alive {
			continue
		}
		fn(types.Entity{ID: types.EntityID(i), Generation: m.metas[i].Generation}, m.metas[i])
	}
}

// GenerationEntry records the generation of one allocated slot in an exported
// allocator state. Entries are kept as a list (not a map) so an import can
// detect duplicates in an untrusted payload.
type GenerationEntry struct {
	ID         types.EntityID `json:"id"`
	Generation uint32         `json:"generation"`
}

// AllocatorState is the exportable form of the allocator: the next fresh slot
// index, the free list, and the generation table for all allocated slots.
type AllocatorState struct {
	NextID      uint64           `json:"nextId"`
	Free        []types.EntityID `json:"free"`
	Generations []GenerationEntry `json:"generations"`
}

// ExportAllocatorState captures the allocator for snapshotting.
func (m *EntityManager) ExportAllocatorState() AllocatorState {
	state := AllocatorState{
		NextID: uint64(len(m.metas)),
		Free:   append([]types.EntityID(nil), m.freeList...),
	}
	for i := range m.metas {
		state.Generations = append(state.Generations, GenerationEntry{
			ID:         types.EntityID(i),
			Generation: m.metas[i].Generation,
		})
	}
	return state
}

// ValidateAllocatorState checks the structural consistency of an untrusted
// allocator state: every ID in range, generations positive, no duplicate
// generation entries, every free ID backed by a generation entry, and no
// duplicate free entries. All failures wrap ErrAllocatorValidation.
func ValidateAllocatorState(state AllocatorState) error {
	genByID := make(map[types.EntityID]uint32, len(state.Generations))
	for _, entry := range state.Generations {
		if uint64(entry.ID) >= state.NextID {
			return eris.Wrapf(ErrAllocatorValidation, "generation entry for id %d is out of range (next id %d)",
				entry.ID, state.NextID)
		}
		if entry.Generation == 0 {
			return eris.Wrapf(ErrAllocatorValidation, "id %d has generation 0", entry.ID)
		}
		if _, ok := genByID[entry.ID]; ok {
			return eris.Wrapf(ErrAllocatorValidation, "duplicate generation entry for id %d", entry.ID)
		}
		genByID[entry.ID] = entry.Generation
	}
	seenFree := make(map[types.EntityID]bool, len(state.Free))
	for _, id := range state.Free {
		if uint64(id) >= state.NextID {
			return eris.Wrapf(ErrAllocatorValidation, "free id %d is out of range (next id %d)", id, state.NextID)
		}
		if _, ok := genByID[id]; !ok {
			return eris.Wrapf(ErrAllocatorValidation, "free id %d has no generation entry", id)
		}
		if seenFree[id] {
			return eris.Wrapf(ErrAllocatorValidation, "id %d appears in the free list twice", id)
		}
		seenFree[id] = true
	}
	return nil
}

// ImportAllocatorState replaces the manager's state with the given allocator
// state. All slots come back dead; the caller marks entities alive as it
// places them into archetypes. The state is validated first and the manager
// is left untouched on failure.
func (m *EntityManager) ImportAllocatorState(state AllocatorState) error {
	if err := ValidateAllocatorState(state); err != nil {
		return err
	}
	metas := make([]types.EntityMeta, state.NextID)
	for _, entry := range state.Generations {
		metas[entry.ID] = types.EntityMeta{Generation: entry.Generation, Row: -1}
	}
	m.metas = metas
	m.freeList = append([]types.EntityID(nil), state.Free...)
	return nil
}

// Revive marks the slot for id alive at the recorded generation. It is used
// during snapshot import, after ImportAllocatorState has rebuilt the table.
func (m *EntityManager) Revive(id types.EntityID) {
	m.metas[id].Alive = true
}

// IsFree reports whether id is currently on the free list.
func (m *EntityManager) IsFree(id types.EntityID) bool {
	for _, freeID := range m.freeList {
		if freeID == id {
			return true
		}
	}
	return false
}
