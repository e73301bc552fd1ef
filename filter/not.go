package filter

import (
	"github.com/quillworld/archon/types"
)

type not struct {
	inner ComponentFilter
}

func Not(inner ComponentFilter) ComponentFilter {
	return &not{inner: inner}
}

func (f *not) MatchesSignature(sig []types.ComponentID) bool {
	return !f.inner.MatchesSignature(sig)
}
