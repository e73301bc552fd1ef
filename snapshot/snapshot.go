// Package snapshot defines the JSON snapshot format for world state and the
// schema checks that guard an import. A snapshot is self-describing: it
// carries the JSON schema of every serialized type, so a reader can detect
// that a component's shape changed between export and import instead of
// silently decoding garbage.
package snapshot

import (
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/quillworld/archon/codec"
	"github.com/quillworld/archon/storage"
	"github.com/quillworld/archon/types"
)

// FormatVersion is stamped into every payload. Unmarshal rejects any other
// value.
const FormatVersion = 1

var (
	// ErrFormatMismatch is returned when a payload's version tag does not
	// match FormatVersion.
	ErrFormatMismatch = eris.New("snapshot format version mismatch")

	// ErrValidation is returned when a payload is structurally well-formed
	// JSON but fails a consistency check: an unknown component name, a
	// record outside the allocator table, or a duplicate entity.
	ErrValidation = eris.New("snapshot validation failed")

	// ErrSchemaMismatch is returned when a stored type schema differs from
	// the schema of the corresponding registered Go type.
	ErrSchemaMismatch = eris.New("snapshot schema mismatch")
)

// EntityRecord is one serialized entity: its handle and every component
// value that had a registered codec at export time, keyed by component name.
type EntityRecord struct {
	ID         types.EntityID             `json:"id"`
	Generation uint32                     `json:"generation"`
	Components map[string]json.RawMessage `json:"components"`
}

// Payload is the complete serialized form of a world.
type Payload struct {
	FormatVersion int                        `json:"formatVersion"`
	WorldID       string                     `json:"worldId"`
	Allocator     storage.AllocatorState     `json:"allocator"`
	Schemas       map[string]json.RawMessage `json:"schemas"`
	Entities      []EntityRecord             `json:"entities"`
	Resources     map[string]json.RawMessage `json:"resources"`
}

// Marshal serializes the payload, stamping the current format version.
func Marshal(p *Payload) ([]byte, error) {
	p.FormatVersion = FormatVersion
	return codec.Encode(p)
}

// Unmarshal parses data and rejects payloads written with a different format
// version.
func Unmarshal(data []byte) (*Payload, error) {
	p, err := codec.Decode[Payload](data)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot payload is not valid JSON")
	}
	if p.FormatVersion != FormatVersion {
		return nil, eris.Wrapf(ErrFormatMismatch, "payload version %d, supported version %d",
			p.FormatVersion, FormatVersion)
	}
	return &p, nil
}

// SchemaOf reflects the JSON schema of v's type for embedding into a payload.
func SchemaOf(v any) (json.RawMessage, error) {
	schema := jsonschema.Reflect(v)
	bz, err := json.Marshal(schema)
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal type schema")
	}
	return bz, nil
}

// CheckSchema compares a stored schema against the current one for the same
// name and returns ErrSchemaMismatch when they differ. The diff is included
// in the error so the caller can see which fields moved.
func CheckSchema(name string, stored, current json.RawMessage) error {
	patch, err := jsondiff.CompareJSON(stored, current)
	if err != nil {
		return eris.Wrapf(err, "failed to diff schemas for %q", name)
	}
	if len(patch) != 0 {
		return eris.Wrapf(ErrSchemaMismatch, "type %q changed since export: %s", name, patch.String())
	}
	return nil
}
