package archon_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworld/archon"
	"github.com/quillworld/archon/filter"
)

// Values must come back in the caller's argument order even when the types
// were registered in a different order.
func TestQueryPreservesArgumentOrder(t *testing.T) {
	w := newTestWorld(t)

	// Registration order: Health, Velocity, Position.
	archon.RegisterComponent[Health](w)
	archon.RegisterComponent[Velocity](w)
	archon.RegisterComponent[Position](w)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, w.AddMany(e,
		archon.Value(w, Position{X: 1}),
		archon.Value(w, Velocity{DX: 2}),
		archon.Value(w, Health{HP: 3}),
	))

	var rows int
	archon.Query3[Position, Velocity, Health](w).Each(func(_ archon.Entity, values []any) bool {
		rows++
		assert.Equal(t, Position{X: 1}, values[0])
		assert.Equal(t, Velocity{DX: 2}, values[1])
		assert.Equal(t, Health{HP: 3}, values[2])
		return true
	})
	assert.Equal(t, 1, rows)
}

func TestQueryMatchesSupersetSignatures(t *testing.T) {
	w := newTestWorld(t)

	plain, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, plain, Position{X: 1}))

	moving, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, w.AddMany(moving,
		archon.Value(w, Position{X: 2}),
		archon.Value(w, Velocity{DX: 1}),
	))

	assert.Equal(t, 2, archon.NewQuery(w, archon.ComponentIDOf[Position](w)).Count())
	assert.Equal(t, 1, archon.Query2[Position, Velocity](w).Count())
}

func TestStructuralChangesAreRejectedDuringEach(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, e, Position{}))

	archon.NewQuery(w, archon.ComponentIDOf[Position](w)).Each(func(got archon.Entity, _ []any) bool {
		_, spawnErr := w.Spawn()
		assert.ErrorIs(t, eris.Cause(spawnErr), archon.ErrStructuralChangeWhileIterating)
		assert.ErrorIs(t, eris.Cause(archon.Add(w, got, Velocity{})), archon.ErrStructuralChangeWhileIterating)
		assert.ErrorIs(t, eris.Cause(archon.Remove[Position](w, got)), archon.ErrStructuralChangeWhileIterating)
		assert.ErrorIs(t, eris.Cause(w.Despawn(got)), archon.ErrStructuralChangeWhileIterating)

		// In-place writes are not structural.
		assert.NoError(t, archon.Set(w, got, Position{X: 7}))
		return true
	})

	// The lock releases when the scan ends.
	_, err = w.Spawn()
	assert.NoError(t, err)
}

// Scans nest: the depth counter accumulates, structural changes stay
// rejected while any scan is open, and only unwinding the outermost scan
// releases the lock.
func TestNestedScansAccumulateTheLock(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, e, Position{}))

	q := archon.NewQuery(w, archon.ComponentIDOf[Position](w))
	var innerRows int
	q.Each(func(_ archon.Entity, _ []any) bool {
		q.Each(func(_ archon.Entity, _ []any) bool {
			innerRows++
			_, spawnErr := w.Spawn()
			assert.ErrorIs(t, eris.Cause(spawnErr), archon.ErrStructuralChangeWhileIterating)
			return true
		})

		// The inner scan ended but the outer one is still open.
		_, spawnErr := w.Spawn()
		assert.ErrorIs(t, eris.Cause(spawnErr), archon.ErrStructuralChangeWhileIterating)
		return true
	})
	require.Equal(t, 1, innerRows)

	_, err = w.Spawn()
	assert.NoError(t, err)
}

func TestIteratorHeldAcrossEachKeepsTheLock(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, e, Position{}))

	q := archon.NewQuery(w, archon.ComponentIDOf[Position](w))
	it := q.Iter()
	require.True(t, it.Next())

	q.Each(func(_ archon.Entity, _ []any) bool { return true })

	// The Each scan unwound, but the open cursor still holds the lock.
	_, err = w.Spawn()
	assert.ErrorIs(t, eris.Cause(err), archon.ErrStructuralChangeWhileIterating)

	it.Close()
	_, err = w.Spawn()
	assert.NoError(t, err)
}

func TestEachStopsWhenCallbackReturnsFalse(t *testing.T) {
	w := newTestWorld(t)

	for i := 0; i < 5; i++ {
		e, err := w.Spawn()
		require.NoError(t, err)
		require.NoError(t, archon.Add(w, e, Position{X: float64(i)}))
	}

	var seen int
	archon.NewQuery(w, archon.ComponentIDOf[Position](w)).Each(func(_ archon.Entity, _ []any) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)

	// The lock releases even on an early stop.
	_, err := w.Spawn()
	assert.NoError(t, err)
}

func TestIteratorEarlyBreakNeedsClose(t *testing.T) {
	w := newTestWorld(t)

	for i := 0; i < 3; i++ {
		e, err := w.Spawn()
		require.NoError(t, err)
		require.NoError(t, archon.Add(w, e, Position{X: float64(i)}))
	}

	it := archon.NewQuery(w, archon.ComponentIDOf[Position](w)).Iter()
	require.True(t, it.Next())

	_, err := w.Spawn()
	assert.ErrorIs(t, eris.Cause(err), archon.ErrStructuralChangeWhileIterating)

	it.Close()
	_, err = w.Spawn()
	assert.NoError(t, err)
	it.Close() // idempotent
}

func TestIteratorExhaustionReleasesLock(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, e, Position{X: 1}))

	it := archon.NewQuery(w, archon.ComponentIDOf[Position](w)).Iter()
	var seen int
	for it.Next() {
		seen++
		assert.Equal(t, e, it.Entity())
		assert.Equal(t, Position{X: 1}, it.Value(0))
	}
	assert.Equal(t, 1, seen)

	_, err = w.Spawn()
	assert.NoError(t, err)
}

func TestQueryFirst(t *testing.T) {
	w := newTestWorld(t)

	q := archon.NewQuery(w, archon.ComponentIDOf[Position](w))
	_, err := q.First()
	assert.ErrorIs(t, eris.Cause(err), archon.ErrEntityDoesNotExist)

	e, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, e, Position{}))

	got, err := q.First()
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEachTableYieldsParallelColumns(t *testing.T) {
	w := newTestWorld(t)

	for i := 0; i < 4; i++ {
		e, err := w.Spawn()
		require.NoError(t, err)
		require.NoError(t, archon.Add(w, e, Position{X: float64(i)}))
	}

	var total int
	archon.NewQuery(w, archon.ComponentIDOf[Position](w)).EachTable(func(tbl archon.Table) {
		require.Len(t, tbl.Columns, 1)
		require.Len(t, tbl.Columns[0], len(tbl.Entities))
		total += len(tbl.Entities)
	})
	assert.Equal(t, 4, total)
}

func TestQueryWhereFilter(t *testing.T) {
	w := newTestWorld(t)

	posOnly, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, posOnly, Position{}))

	both, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, w.AddMany(both,
		archon.Value(w, Position{}),
		archon.Value(w, Velocity{}),
	))

	q := archon.NewQuery(w, archon.ComponentIDOf[Position](w)).
		Where(filter.Not(filter.Contains(archon.ComponentIDOf[Velocity](w))))
	assert.Equal(t, 1, q.Count())

	got, err := q.First()
	require.NoError(t, err)
	assert.Equal(t, posOnly, got)
}

func TestParseQuery(t *testing.T) {
	w := newTestWorld(t)

	posOnly, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, archon.Add(w, posOnly, Position{}))

	both, err := w.Spawn()
	require.NoError(t, err)
	require.NoError(t, w.AddMany(both,
		archon.Value(w, Position{}),
		archon.Value(w, Velocity{}),
	))

	f, err := archon.ParseQuery(w, "CONTAINS(Position) & !CONTAINS(Velocity)")
	require.NoError(t, err)

	var matched []archon.Entity
	archon.EachFiltered(w, f, func(e archon.Entity) bool {
		matched = append(matched, e)
		return true
	})
	assert.Equal(t, []archon.Entity{posOnly}, matched)

	_, err = archon.ParseQuery(w, "CONTAINS(Nonexistent)")
	assert.Error(t, err)
}
