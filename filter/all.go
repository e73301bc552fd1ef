package filter

import (
	"github.com/quillworld/archon/types"
)

type all struct{}

// All matches every archetype.
func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesSignature(_ []types.ComponentID) bool {
	return true
}
