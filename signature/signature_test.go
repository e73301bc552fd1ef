package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillworld/archon/signature"
	"github.com/quillworld/archon/types"
)

func ids(vals ...int) []types.ComponentID {
	out := make([]types.ComponentID, len(vals))
	for i, v := range vals {
		out[i] = types.ComponentID(v)
	}
	return out
}

func TestKey(t *testing.T) {
	assert.Equal(t, "", signature.Key(nil))
	assert.Equal(t, "3", signature.Key(ids(3)))
	assert.Equal(t, "0,2,7", signature.Key(ids(0, 2, 7)))
}

func TestInsertKeepsOrder(t *testing.T) {
	testCases := []struct {
		name string
		sig  []types.ComponentID
		id   types.ComponentID
		want []types.ComponentID
	}{
		{"into empty", ids(), 4, ids(4)},
		{"at front", ids(2, 5), 1, ids(1, 2, 5)},
		{"in middle", ids(2, 5), 3, ids(2, 3, 5)},
		{"at end", ids(2, 5), 9, ids(2, 5, 9)},
		{"already present", ids(2, 5), 5, ids(2, 5)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, signature.Insert(tc.sig, tc.id))
		})
	}
}

func TestInsertDoesNotMutateInput(t *testing.T) {
	sig := ids(1, 3)
	_ = signature.Insert(sig, 2)
	assert.Equal(t, ids(1, 3), sig)
}

func TestRemove(t *testing.T) {
	assert.Equal(t, ids(2, 5), signature.Remove(ids(2, 3, 5), 3))
	assert.Equal(t, ids(2, 3), signature.Remove(ids(2, 3), 9))
	assert.Equal(t, ids(), signature.Remove(ids(7), 7))
}

func TestHasAll(t *testing.T) {
	assert.True(t, signature.HasAll(ids(1, 2, 3), ids()))
	assert.True(t, signature.HasAll(ids(1, 2, 3), ids(2)))
	assert.True(t, signature.HasAll(ids(1, 2, 3), ids(1, 3)))
	assert.True(t, signature.HasAll(ids(1, 2, 3), ids(1, 2, 3)))
	assert.False(t, signature.HasAll(ids(1, 3), ids(2)))
	assert.False(t, signature.HasAll(ids(1, 3), ids(1, 3, 4)))
	assert.False(t, signature.HasAll(ids(), ids(1)))
}

func TestContains(t *testing.T) {
	assert.True(t, signature.Contains(ids(1, 4, 6), 4))
	assert.False(t, signature.Contains(ids(1, 4, 6), 5))
	assert.False(t, signature.Contains(ids(), 0))
}
