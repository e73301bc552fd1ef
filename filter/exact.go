package filter

import (
	"slices"

	"github.com/quillworld/archon/types"
)

type exact struct {
	want []types.ComponentID
}

// Exact matches archetypes whose signature is exactly the given component
// set, no more and no less.
func Exact(ids ...types.ComponentID) ComponentFilter {
	want := append([]types.ComponentID(nil), ids...)
	sortIDs(want)
	return &exact{want: want}
}

func (f *exact) MatchesSignature(sig []types.ComponentID) bool {
	return slices.Equal(sig, f.want)
}

func sortIDs(ids []types.ComponentID) {
	slices.Sort(ids)
}
