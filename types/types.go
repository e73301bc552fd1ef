package types

import "fmt"

// EntityID is a dense, reusable slot index. IDs are recycled after a despawn,
// so an EntityID on its own does not identify an entity across time; pair it
// with a generation (see Entity).
type EntityID uint64

// ComponentID identifies a registered component type. IDs are assigned
// first-use-wins and increase monotonically for the lifetime of a World.
type ComponentID int

// ArchetypeID identifies one archetype table. IDs are assigned in creation
// order starting at 0, which is always the empty-signature archetype.
type ArchetypeID int

// Entity is a handle to an entity: a slot index plus the generation the slot
// had when the handle was issued. A stale handle (older generation) is never
// reported alive, even after its ID has been recycled.
type Entity struct {
	ID         EntityID `json:"id"`
	Generation uint32   `json:"generation"`
}

func (e Entity) String() string {
	return fmt.Sprintf("entity %d (gen %d)", e.ID, e.Generation)
}

// EntityMeta is the per-slot record kept by the entity manager. For every
// alive entity, Archetype and Row point at its current storage location.
type EntityMeta struct {
	Generation uint32
	Alive      bool
	Archetype  ArchetypeID
	Row        int
}
