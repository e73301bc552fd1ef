package filter

import (
	"github.com/quillworld/archon/types"
)

type and struct {
	filters []ComponentFilter
}

func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) MatchesSignature(sig []types.ComponentID) bool {
	for _, inner := range f.filters {
		if !inner.MatchesSignature(sig) {
			return false
		}
	}
	return true
}
