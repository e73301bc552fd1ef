package filter

import (
	"github.com/quillworld/archon/signature"
	"github.com/quillworld/archon/types"
)

type contains struct {
	need []types.ComponentID
}

// Contains matches archetypes that carry all the given components. The IDs
// are sorted once at construction so the match is a single merge scan.
func Contains(ids ...types.ComponentID) ComponentFilter {
	need := append([]types.ComponentID(nil), ids...)
	sortIDs(need)
	return &contains{need: need}
}

func (f *contains) MatchesSignature(sig []types.ComponentID) bool {
	return signature.HasAll(sig, f.need)
}
