// Package filter provides composable archetype filters. A filter inspects an
// archetype's signature (the sorted component IDs it stores) and decides
// whether the archetype participates in a query.
package filter

import (
	"github.com/quillworld/archon/types"
)

// ComponentFilter decides whether an archetype with the given signature
// matches. Signatures are sorted ascending and duplicate-free.
type ComponentFilter interface {
	MatchesSignature(sig []types.ComponentID) bool
}
