package archon

import (
	"slices"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/codec"
	"github.com/quillworld/archon/snapshot"
	"github.com/quillworld/archon/storage"
	"github.com/quillworld/archon/types"
)

// valueCodec serializes one component or resource type for snapshots. Codecs
// are opt-in: types without one are held in memory only and skipped on
// export.
type valueCodec struct {
	name   string
	schema json.RawMessage
	encode func(any) ([]byte, error)
	decode func([]byte) (any, error)
}

func newValueCodec[T any](name string) (*valueCodec, error) {
	schema, err := snapshot.SchemaOf(new(T))
	if err != nil {
		return nil, err
	}
	return &valueCodec{
		name:   name,
		schema: schema,
		encode: codec.Encode,
		decode: func(bz []byte) (any, error) {
			return codec.Decode[T](bz)
		},
	}, nil
}

// RegisterComponentCodec makes T's component values part of snapshots.
// Registering twice is a no-op.
func RegisterComponentCodec[T any](w *World) error {
	cid := RegisterComponent[T](w)
	if _, ok := w.componentCodecs[cid]; ok {
		return nil
	}
	vc, err := newValueCodec[T](w.registry.name(cid))
	if err != nil {
		return err
	}
	w.componentCodecs[cid] = vc
	w.componentCodecByName[vc.name] = vc
	return nil
}

// RegisterResourceCodec makes the T resource singleton part of snapshots.
func RegisterResourceCodec[T any](w *World) error {
	cid := ComponentIDOf[T](w)
	if _, ok := w.resourceCodecs[cid]; ok {
		return nil
	}
	vc, err := newValueCodec[T](w.registry.name(cid))
	if err != nil {
		return err
	}
	w.resourceCodecs[cid] = vc
	w.resourceCodecByName[vc.name] = vc
	return nil
}

// Export serializes the world: the entity allocator, every component value
// with a registered codec, and every resource with a registered codec.
// Components and resources without codecs are skipped silently, so a caller
// controls snapshot scope through codec registration. Export is a structural
// read and is rejected while a query is open.
func (w *World) Export() ([]byte, error) {
	if w.iterationDepth > 0 {
		return nil, eris.Wrap(ErrStructuralChangeWhileIterating, "export")
	}

	payload := &snapshot.Payload{
		WorldID:   w.instanceID.String(),
		Allocator: w.entities.ExportAllocatorState(),
		Schemas:   make(map[string]json.RawMessage),
		Resources: make(map[string]json.RawMessage),
	}
	for _, vc := range w.componentCodecs {
		payload.Schemas[vc.name] = vc.schema
	}
	for _, vc := range w.resourceCodecs {
		payload.Schemas[vc.name] = vc.schema
	}

	var exportErr error
	w.entities.EachAlive(func(e types.Entity, meta types.EntityMeta) {
		if exportErr != nil {
			return
		}
		arch := w.archetypes[meta.Archetype]
		record := snapshot.EntityRecord{
			ID:         e.ID,
			Generation: e.Generation,
			Components: make(map[string]json.RawMessage),
		}
		for _, cid := range arch.Signature() {
			vc, ok := w.componentCodecs[cid]
			if !ok {
				continue
			}
			bz, err := vc.encode(arch.Column(cid).Value(meta.Row))
			if err != nil {
				exportErr = eris.Wrapf(err, "failed to encode component %s of %s", vc.name, e)
				return
			}
			record.Components[vc.name] = bz
		}
		payload.Entities = append(payload.Entities, record)
	})
	if exportErr != nil {
		return nil, exportErr
	}

	for cid, vc := range w.resourceCodecs {
		value, ok := w.resources[cid]
		if !ok {
			continue
		}
		bz, err := vc.encode(value)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to encode resource %s", vc.name)
		}
		payload.Resources[vc.name] = bz
	}

	return snapshot.Marshal(payload)
}

// stagedEntity is a fully decoded entity record, held until every record has
// validated so a failing import leaves the world untouched.
type stagedEntity struct {
	entity types.Entity
	sig    []types.ComponentID
	values map[types.ComponentID]any
}

// Import replaces the world's entity and resource state with the snapshot's.
// The payload is validated in full before anything is touched: format
// version, allocator consistency, record/allocator agreement, codec coverage,
// and schema compatibility. On success all entity tables are rebuilt, pending
// commands and events are discarded, and registered systems are kept.
func (w *World) Import(data []byte) error {
	if w.iterationDepth > 0 {
		return eris.Wrap(ErrStructuralChangeWhileIterating, "import")
	}

	payload, err := snapshot.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := storage.ValidateAllocatorState(payload.Allocator); err != nil {
		return err
	}

	genByID := make(map[types.EntityID]uint32, len(payload.Allocator.Generations))
	for _, entry := range payload.Allocator.Generations {
		genByID[entry.ID] = entry.Generation
	}
	free := make(map[types.EntityID]bool, len(payload.Allocator.Free))
	for _, id := range payload.Allocator.Free {
		free[id] = true
	}

	for name, stored := range payload.Schemas {
		vc, ok := w.componentCodecByName[name]
		if !ok {
			vc, ok = w.resourceCodecByName[name]
		}
		if !ok {
			// Schemas may describe types this world no longer snapshots;
			// they only matter for names we will decode.
			continue
		}
		if err := snapshot.CheckSchema(name, stored, vc.schema); err != nil {
			return err
		}
	}

	staged := make([]stagedEntity, 0, len(payload.Entities))
	seen := make(map[types.EntityID]bool, len(payload.Entities))
	for _, record := range payload.Entities {
		gen, ok := genByID[record.ID]
		if !ok {
			return eris.Wrapf(snapshot.ErrValidation, "entity %d has no allocator entry", record.ID)
		}
		if free[record.ID] {
			return eris.Wrapf(snapshot.ErrValidation, "entity %d is on the free list", record.ID)
		}
		if gen != record.Generation {
			return eris.Wrapf(snapshot.ErrValidation,
				"entity %d generation %d disagrees with allocator generation %d",
				record.ID, record.Generation, gen)
		}
		if seen[record.ID] {
			return eris.Wrapf(snapshot.ErrValidation, "duplicate record for entity %d", record.ID)
		}
		seen[record.ID] = true

		st := stagedEntity{
			entity: types.Entity{ID: record.ID, Generation: record.Generation},
			values: make(map[types.ComponentID]any, len(record.Components)),
		}
		for name, raw := range record.Components {
			vc, ok := w.componentCodecByName[name]
			if !ok {
				return eris.Wrapf(snapshot.ErrValidation,
					"entity %d carries component %q with no registered codec", record.ID, name)
			}
			value, err := vc.decode(raw)
			if err != nil {
				return eris.Wrapf(err, "failed to decode component %q of entity %d", name, record.ID)
			}
			cid, idErr := w.registry.idByName(name)
			if idErr != nil {
				return idErr
			}
			st.sig = append(st.sig, cid)
			st.values[cid] = value
		}
		slices.Sort(st.sig)
		staged = append(staged, st)
	}

	stagedResources := make(map[types.ComponentID]any, len(payload.Resources))
	for name, raw := range payload.Resources {
		vc, ok := w.resourceCodecByName[name]
		if !ok {
			return eris.Wrapf(snapshot.ErrValidation, "resource %q has no registered codec", name)
		}
		value, err := vc.decode(raw)
		if err != nil {
			return eris.Wrapf(err, "failed to decode resource %q", name)
		}
		cid, idErr := w.registry.idByName(name)
		if idErr != nil {
			return idErr
		}
		stagedResources[cid] = value
	}

	// Commit. Nothing below can fail.
	if err := w.entities.ImportAllocatorState(payload.Allocator); err != nil {
		return err
	}
	w.archetypes = w.archetypes[:0]
	w.archetypeByKey = make(map[string]types.ArchetypeID)
	w.archetypeFor(nil)

	for _, st := range staged {
		w.entities.Revive(st.entity.ID)
		arch := w.archetypeFor(st.sig)
		row := arch.AddRow(st.entity)
		for _, cid := range arch.Signature() {
			arch.Column(cid).Push(st.values[cid])
		}
		w.entities.SetLocation(st.entity.ID, arch.ID(), row)
	}

	w.resources = stagedResources
	w.commandQueue.Reset()
	w.eventManager.Reset()
	return nil
}
