// Package signature provides pure helpers over sorted, duplicate-free
// sequences of component IDs. A signature uniquely identifies an archetype;
// the canonical string key is what the world uses for archetype lookup.
package signature

import (
	"strconv"
	"strings"

	"github.com/quillworld/archon/types"
)

// Key returns the canonical string form of a signature: the IDs joined by
// commas. The empty signature yields "".
func Key(sig []types.ComponentID) string {
	if len(sig) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, id := range sig {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	return sb.String()
}

// Insert returns a new signature with id added in sorted position. The input
// is not modified. Inserting an ID that is already present returns a copy of
// the input unchanged.
func Insert(sig []types.ComponentID, id types.ComponentID) []types.ComponentID {
	out := make([]types.ComponentID, 0, len(sig)+1)
	inserted := false
	for _, existing := range sig {
		if existing == id {
			// Already present; no duplicates.
			return append(out, sig[len(out):]...)
		}
		if !inserted && existing > id {
			out = append(out, id)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}

// Remove returns a new signature with id deleted. Removing an absent ID
// returns a copy of the input unchanged.
func Remove(sig []types.ComponentID, id types.ComponentID) []types.ComponentID {
	out := make([]types.ComponentID, 0, len(sig))
	for _, existing := range sig {
		if existing == id {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// HasAll reports whether every ID in need appears in have. Both inputs must
// be sorted ascending. This is a merge-style scan and runs in
// O(len(have)+len(need)); it is the hot path for queries and structural moves.
func HasAll(have, need []types.ComponentID) bool {
	i := 0
	for _, want := range need {
		for i < len(have) && have[i] < want {
			i++
		}
		if i >= len(have) || have[i] != want {
			return false
		}
		i++
	}
	return true
}

// Contains reports whether sig (sorted ascending) contains id.
func Contains(sig []types.ComponentID, id types.ComponentID) bool {
	for _, existing := range sig {
		if existing == id {
			return true
		}
		if existing > id {
			return false
		}
	}
	return false
}
