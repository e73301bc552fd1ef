// Package storage holds the column-oriented entity tables. One Archetype
// exists per unique component signature; entities and their component values
// live in parallel arrays so a whole table can be scanned without chasing
// pointers.
package storage

import (
	"fmt"

	"github.com/quillworld/archon/types"
)

// Column is a type-erased component column. Row i of a column belongs to the
// entity at row i of the owning archetype.
type Column struct {
	values []any
}

func (c *Column) Len() int {
	return len(c.values)
}

// Push appends one value. Only meaningful as part of the AddRow protocol.
func (c *Column) Push(value any) {
	c.values = append(c.values, value)
}

func (c *Column) Value(row int) any {
	return c.values[row]
}

func (c *Column) Set(row int, value any) {
	c.values[row] = value
}

// Values returns the raw backing slice for bulk table access. Callers must
// not grow or shrink it.
func (c *Column) Values() []any {
	return c.values
}

func (c *Column) swapRemove(row int) {
	last := len(c.values) - 1
	if row < last {
		c.values[row] = c.values[last]
	}
	c.values[last] = nil
	c.values = c.values[:last]
}

// Archetype is one table: all entities sharing the same exact component
// signature, stored structure-of-arrays. Row i across the entity array and
// every column describes one entity.
type Archetype struct {
	id       types.ArchetypeID
	sig      []types.ComponentID
	entities []types.Entity
	columns  map[types.ComponentID]*Column
}

// NewArchetype builds an empty table for the given sorted signature. The
// signature slice is owned by the archetype after this call.
func NewArchetype(id types.ArchetypeID, sig []types.ComponentID) *Archetype {
	columns := make(map[types.ComponentID]*Column, len(sig))
	for _, cid := range sig {
		columns[cid] = &Column{}
	}
	return &Archetype{
		id:      id,
		sig:     sig,
		columns: columns,
	}
}

func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// Signature returns the sorted component IDs this table stores. Callers must
// treat the slice as read-only.
func (a *Archetype) Signature() []types.ComponentID {
	return a.sig
}

func (a *Archetype) Len() int {
	return len(a.entities)
}

// Entities returns the raw entity array. Callers must treat it as read-only.
func (a *Archetype) Entities() []types.Entity {
	return a.entities
}

func (a *Archetype) EntityAt(row int) types.Entity {
	return a.entities[row]
}

func (a *Archetype) Has(cid types.ComponentID) bool {
	_, ok := a.columns[cid]
	return ok
}

// Column returns the column for cid. Asking for a component outside the
// signature is a programmer error and panics.
func (a *Archetype) Column(cid types.ComponentID) *Column {
	col, ok := a.columns[cid]
	if !ok {
		panic(fmt.Sprintf("archetype %d has no column for component %d", a.id, cid))
	}
	return col
}

// AddRow appends the entity and returns its row index. This is step one of a
// two-step protocol: the caller must immediately Push exactly one value onto
// every column, in signature order, before the table is consistent again.
// The split lets the caller choose per column between a fresh value and a
// copy from some source row.
func (a *Archetype) AddRow(e types.Entity) int {
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// RemoveRow deletes the row by swap-remove: the last row is moved into the
// vacated slot and the arrays shrink by one. If a row was moved, the entity
// now occupying row is returned so the caller can fix up its metadata; ok is
// false when the removed row was already last. An out-of-range row panics.
func (a *Archetype) RemoveRow(row int) (moved types.Entity, ok bool) {
	last := len(a.entities) - 1
	if row < 0 || row > last {
		panic(fmt.Sprintf("archetype %d: remove of row %d out of range (len %d)", a.id, row, last+1))
	}
	for _, cid := range a.sig {
		a.columns[cid].swapRemove(row)
	}
	if row < last {
		moved = a.entities[last]
		a.entities[row] = moved
		ok = true
	}
	a.entities = a.entities[:last]
	return moved, ok
}
