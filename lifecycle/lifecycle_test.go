package lifecycle

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestStartsUnused(t *testing.T) {
	m := NewManager()
	assert.Equal(t, Unused, m.Current())
}

func TestCompareAndSwap(t *testing.T) {
	m := NewManager()
	ok := m.CompareAndSwap(UsingSimple, UsingPhased)
	assert.Check(t, !ok, "swap must fail from the wrong stage")

	ok = m.CompareAndSwap(Unused, UsingSimple)
	assert.Check(t, ok)
	assert.Equal(t, UsingSimple, m.Current())

	ok = m.CompareAndSwap(Unused, UsingPhased)
	assert.Check(t, !ok, "a claimed world cannot be re-claimed")
}
