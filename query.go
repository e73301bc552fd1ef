package archon

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/cql"
	"github.com/quillworld/archon/filter"
	"github.com/quillworld/archon/signature"
	"github.com/quillworld/archon/storage"
	"github.com/quillworld/archon/types"
)

// Query selects every entity carrying at least the requested components.
// Component values are yielded in the order the caller asked for them, not in
// table order. A Query is cheap to build and holds no state between scans.
type Query struct {
	world *World
	ids   []types.ComponentID // caller order, for value yields
	need  []types.ComponentID // sorted, for signature matching
	extra filter.ComponentFilter
}

// NewQuery builds a query over the given component IDs.
func NewQuery(w *World, ids ...types.ComponentID) *Query {
	need := append([]types.ComponentID(nil), ids...)
	slices.Sort(need)
	return &Query{
		world: w,
		ids:   append([]types.ComponentID(nil), ids...),
		need:  need,
	}
}

// Query2 builds a two-component typed query; the yields come back in the
// type-parameter order.
func Query2[A, B any](w *World) *Query {
	return NewQuery(w, ComponentIDOf[A](w), ComponentIDOf[B](w))
}

// Query3 builds a three-component typed query.
func Query3[A, B, C any](w *World) *Query {
	return NewQuery(w, ComponentIDOf[A](w), ComponentIDOf[B](w), ComponentIDOf[C](w))
}

// ParseQuery compiles a query-language expression such as
// "CONTAINS(Position) & !CONTAINS(Frozen)" against w's registered component
// names. The result matches whole signatures; use it with EachFiltered.
func ParseQuery(w *World, text string) (filter.ComponentFilter, error) {
	return cql.Parse(text, func(name string) (types.ComponentID, error) {
		return w.registry.idByName(name)
	})
}

// matches reports whether an archetype signature satisfies the query.
func (q *Query) matches(sig []types.ComponentID) bool {
	if !signature.HasAll(sig, q.need) {
		return false
	}
	if q.extra != nil && !q.extra.MatchesSignature(sig) {
		return false
	}
	return true
}

// Where narrows the query with an additional signature filter.
func (q *Query) Where(f filter.ComponentFilter) *Query {
	q.extra = f
	return q
}

// Each calls fn once per matching entity until fn returns false. values is
// reused between calls and ordered like the query's component IDs; copy
// anything that must outlive the callback. While the scan runs the world
// rejects structural changes, so fn must route spawns and component
// add/removes through the command queue. In place writes via Set are fine.
func (q *Query) Each(fn func(e types.Entity, values []any) bool) {
	w := q.world
	w.iterationDepth++
	defer func() { w.iterationDepth-- }()

	values := make([]any, len(q.ids))
	for _, arch := range w.archetypes {
		if !q.matches(arch.Signature()) {
			continue
		}
		entities := arch.Entities()
		for row := 0; row < len(entities); row++ {
			for i, cid := range q.ids {
				values[i] = arch.Column(cid).Value(row)
			}
			if !fn(entities[row], values) {
				return
			}
		}
	}
}

// EachFiltered scans every entity whose archetype satisfies f, without
// yielding component values, until fn returns false. It shares Each's
// iteration lock semantics.
func EachFiltered(w *World, f filter.ComponentFilter, fn func(e types.Entity) bool) {
	w.iterationDepth++
	defer func() { w.iterationDepth-- }()

	for _, arch := range w.archetypes {
		if !f.MatchesSignature(arch.Signature()) {
			continue
		}
		for _, e := range arch.Entities() {
			if !fn(e) {
				return
			}
		}
	}
}

// Count returns how many entities currently match. It scans table lengths,
// not rows.
func (q *Query) Count() int {
	n := 0
	for _, arch := range q.world.archetypes {
		if q.matches(arch.Signature()) {
			n += arch.Len()
		}
	}
	return n
}

// First returns some matching entity, or ErrEntityDoesNotExist when nothing
// matches. Which entity is unspecified beyond being deterministic for an
// unchanged world.
func (q *Query) First() (types.Entity, error) {
	for _, arch := range q.world.archetypes {
		if q.matches(arch.Signature()) && arch.Len() > 0 {
			return arch.EntityAt(0), nil
		}
	}
	return types.Entity{}, eris.Wrap(ErrEntityDoesNotExist, "query matched no entities")
}

// Iter opens a cursor over the matching entities. The world rejects
// structural changes until Close is called, so early-exit loops must
// defer Close.
func (q *Query) Iter() *RowIterator {
	q.world.iterationDepth++
	return &RowIterator{query: q, archIdx: -1, row: -1}
}

// RowIterator is a manual cursor over a query's matches. Next advances it;
// Entity, Value, and Values read the current row.
type RowIterator struct {
	query   *Query
	arch    *storage.Archetype
	archIdx int
	row     int
	closed  bool
}

// Next advances to the next matching row, returning false when exhausted. An
// exhausted iterator releases the iteration lock automatically.
func (it *RowIterator) Next() bool {
	if it.closed {
		return false
	}
	w := it.query.world
	for {
		if it.arch != nil {
			it.row++
			if it.row < it.arch.Len() {
				return true
			}
			it.arch = nil
		}
		it.archIdx++
		if it.archIdx >= len(w.archetypes) {
			it.Close()
			return false
		}
		cand := w.archetypes[it.archIdx]
		if it.query.matches(cand.Signature()) && cand.Len() > 0 {
			it.arch = cand
			it.row = -1
		}
	}
}

// Entity returns the entity at the cursor.
func (it *RowIterator) Entity() types.Entity {
	return it.arch.EntityAt(it.row)
}

// Value returns the value of the i-th queried component at the cursor, in
// the query's component order.
func (it *RowIterator) Value(i int) any {
	return it.arch.Column(it.query.ids[i]).Value(it.row)
}

// Values copies the cursor's component values into a fresh slice, ordered
// like the query's component IDs.
func (it *RowIterator) Values() []any {
	out := make([]any, len(it.query.ids))
	for i, cid := range it.query.ids {
		out[i] = it.arch.Column(cid).Value(it.row)
	}
	return out
}

// Close releases the iteration lock. Safe to call more than once; always
// defer it when a loop may break early.
func (it *RowIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.arch = nil
	it.query.world.iterationDepth--
}

// Table is one matching archetype exposed for bulk access: parallel entity
// and column slices of equal length. The slices alias live storage and are
// only valid until the next structural change.
type Table struct {
	Entities []types.Entity
	Columns  [][]any
}

// EachTable yields one Table per matching archetype, skipping empty ones.
// Columns are ordered like the query's component IDs. The iteration lock is
// held for the duration.
func (q *Query) EachTable(fn func(t Table)) {
	w := q.world
	w.iterationDepth++
	defer func() { w.iterationDepth-- }()

	for _, arch := range w.archetypes {
		if !q.matches(arch.Signature()) || arch.Len() == 0 {
			continue
		}
		cols := make([][]any, len(q.ids))
		for i, cid := range q.ids {
			cols[i] = arch.Column(cid).Values()
		}
		fn(Table{Entities: arch.Entities(), Columns: cols})
	}
}
