package filter

import (
	"github.com/quillworld/archon/types"
)

type or struct {
	filters []ComponentFilter
}

func Or(filters ...ComponentFilter) ComponentFilter {
	return &or{filters: filters}
}

func (f *or) MatchesSignature(sig []types.ComponentID) bool {
	for _, inner := range f.filters {
		if inner.MatchesSignature(sig) {
			return true
		}
	}
	return false
}
