// Package archon is an in-process archetype-based entity-component store.
// Entities are grouped by their exact component signature into
// column-oriented tables, giving cache-friendly bulk iteration and constant
// time component access. Structural changes (spawn, despawn, component
// add/remove) move a single row between tables; everything else is an
// in-place cell read or write.
package archon

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/quillworld/archon/commands"
	"github.com/quillworld/archon/events"
	"github.com/quillworld/archon/lifecycle"
	ecslog "github.com/quillworld/archon/log"
	"github.com/quillworld/archon/signature"
	"github.com/quillworld/archon/statsd"
	"github.com/quillworld/archon/storage"
	"github.com/quillworld/archon/types"
)

// Entity is re-exported so most callers only need this package.
type Entity = types.Entity

// ComponentID is re-exported so most callers only need this package.
type ComponentID = types.ComponentID

// World owns all mutable simulation state: the entity allocator, every
// archetype table, the deferred-command queue, resources, and event channels.
// There is exactly one World per simulation context and it is not safe for
// concurrent use; systems run sequentially on one goroutine.
type World struct {
	instanceID uuid.UUID
	config     WorldConfig
	logger     zerolog.Logger

	registry *typeRegistry
	entities *storage.EntityManager

	archetypes     []*storage.Archetype
	archetypeByKey map[string]types.ArchetypeID

	commandQueue *commands.Queue
	eventManager *events.Manager
	resources    map[types.ComponentID]any

	systems *SystemManager
	stage   *lifecycle.Manager
	timings *timingRing

	componentCodecs      map[types.ComponentID]*valueCodec
	componentCodecByName map[string]*valueCodec
	resourceCodecs       map[types.ComponentID]*valueCodec
	resourceCodecByName  map[string]*valueCodec

	// iterationDepth counts currently-open query scans. Structural changes
	// are rejected while it is nonzero. This is a reentrancy guard for
	// single-threaded use, not a lock.
	iterationDepth int
}

// NewWorld builds a world from environment config and the given options.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, err
	}

	w := &World{
		instanceID:           uuid.New(),
		config:               *cfg,
		registry:             newTypeRegistry(),
		entities:             storage.NewEntityManager(),
		archetypeByKey:       make(map[string]types.ArchetypeID),
		commandQueue:         commands.NewQueue(),
		eventManager:         events.NewManager(),
		resources:            make(map[types.ComponentID]any),
		systems:              newSystemManager(),
		stage:                lifecycle.NewManager(),
		componentCodecs:      make(map[types.ComponentID]*valueCodec),
		componentCodecByName: make(map[string]*valueCodec),
		resourceCodecs:       make(map[types.ComponentID]*valueCodec),
		resourceCodecByName:  make(map[string]*valueCodec),
	}

	level, _ := zerolog.ParseLevel(w.config.LogLevel)
	w.logger = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("world_id", w.instanceID.String()).
		Logger()

	for _, opt := range opts {
		opt(w)
	}

	if err := w.config.Validate(); err != nil {
		return nil, err
	}
	w.timings = newTimingRing(w.config.TimingHistorySize)

	if w.config.StatsdAddress != "" {
		if err := statsd.Init(w.config.StatsdAddress, w.config.statsdTagList()); err != nil {
			w.logger.Warn().Err(err).Msg("failed to init statsd client; metrics are disabled")
		}
	}

	// Archetype 0 is the empty-signature table and always exists; it is the
	// home of freshly spawned entities.
	w.archetypeFor(nil)

	return w, nil
}

// InstanceID returns the world's unique identifier, stamped into snapshot
// headers and log lines.
func (w *World) InstanceID() uuid.UUID {
	return w.instanceID
}

// Logger returns the world's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// Commands returns the deferred-command queue. Use it for structural changes
// from inside a query callback or a system; the queue is replayed at the next
// flush.
func (w *World) Commands() *commands.Queue {
	return w.commandQueue
}

// IsAlive reports whether the handle refers to a live entity. Stale handles
// are simply not alive, never an error.
func (w *World) IsAlive(e types.Entity) bool {
	return w.entities.IsAlive(e)
}

// Spawn allocates a new entity and places it in the empty archetype. The only
// failure mode is calling it while a query scan is open; use
// Commands().Spawn for that case.
func (w *World) Spawn() (types.Entity, error) {
	if w.iterationDepth > 0 {
		return types.Entity{}, eris.Wrap(ErrStructuralChangeWhileIterating, "spawn")
	}
	e := w.entities.Create()
	empty := w.archetypes[0]
	row := empty.AddRow(e)
	w.entities.SetLocation(e.ID, 0, row)
	ecslog.Entity(&w.logger, zerolog.DebugLevel, e, 0, nil)
	return e, nil
}

// Despawn removes the entity and frees its slot for reuse. The freed id keeps
// its generation until reuse, so the caller's handle goes permanently stale.
func (w *World) Despawn(e types.Entity) error {
	if err := w.checkStructural("despawn", e); err != nil {
		return err
	}
	meta := w.entities.Meta(e.ID)
	arch := w.archetypes[meta.Archetype]
	row := meta.Row
	moved, ok := arch.RemoveRow(row)
	if ok {
		w.entities.SetRow(moved.ID, row)
	}
	w.entities.Kill(e)
	return nil
}

// addComponent implements Add for an already-resolved component ID. If the
// entity currently carries the component the cell is overwritten in place
// with no archetype move.
func (w *World) addComponent(e types.Entity, cid types.ComponentID, value any) error {
	if err := w.checkStructural("add", e); err != nil {
		return err
	}
	meta := w.entities.Meta(e.ID)
	src := w.archetypes[meta.Archetype]
	if src.Has(cid) {
		src.Column(cid).Set(meta.Row, value)
		return nil
	}
	dstSig := signature.Insert(src.Signature(), cid)
	w.moveEntity(e, dstSig, map[types.ComponentID]any{cid: value})
	return nil
}

// removeComponent implements Remove for an already-resolved component ID.
// Removal is idempotent: an absent component is a no-op.
func (w *World) removeComponent(e types.Entity, cid types.ComponentID) error {
	if err := w.checkStructural("remove", e); err != nil {
		return err
	}
	meta := w.entities.Meta(e.ID)
	src := w.archetypes[meta.Archetype]
	if !src.Has(cid) {
		return nil
	}
	dstSig := signature.Remove(src.Signature(), cid)
	w.moveEntity(e, dstSig, nil)
	return nil
}

// ComponentValue pairs a resolved component ID with a value for the batch
// mutation API.
type ComponentValue struct {
	ID    types.ComponentID
	Value any
}

// AddMany adds (or overwrites) several components with a single archetype
// move. The destination signature is computed once, so adding k components
// costs one row transfer instead of k.
func (w *World) AddMany(e types.Entity, values ...ComponentValue) error {
	if err := w.checkStructural("add", e); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	meta := w.entities.Meta(e.ID)
	src := w.archetypes[meta.Archetype]
	dstSig := src.Signature()
	newValues := make(map[types.ComponentID]any, len(values))
	for _, cv := range values {
		dstSig = signature.Insert(dstSig, cv.ID)
		newValues[cv.ID] = cv.Value
	}
	if len(dstSig) == len(src.Signature()) {
		// Every component was already present; overwrite in place.
		for cid, value := range newValues {
			src.Column(cid).Set(meta.Row, value)
		}
		return nil
	}
	w.moveEntity(e, dstSig, newValues)
	return nil
}

// RemoveMany removes several components with a single archetype move. Absent
// components are skipped.
func (w *World) RemoveMany(e types.Entity, ids ...types.ComponentID) error {
	if err := w.checkStructural("remove", e); err != nil {
		return err
	}
	meta := w.entities.Meta(e.ID)
	src := w.archetypes[meta.Archetype]
	dstSig := src.Signature()
	for _, cid := range ids {
		dstSig = signature.Remove(dstSig, cid)
	}
	if len(dstSig) == len(src.Signature()) {
		return nil
	}
	w.moveEntity(e, dstSig, nil)
	return nil
}

// moveEntity transfers e's row from its current archetype to the one with
// dstSig, which must differ from the source signature. Values for component
// IDs present in newValues are taken from there; everything else is copied
// from the source row. Ordering is load-bearing: the entity's metadata must
// point at the destination before the source swap-remove shifts row indices,
// and the displaced-row fixup must use the entity RemoveRow reports.
func (w *World) moveEntity(e types.Entity, dstSig []types.ComponentID, newValues map[types.ComponentID]any) {
	meta := w.entities.Meta(e.ID)
	src := w.archetypes[meta.Archetype]
	srcRow := meta.Row

	dst := w.archetypeFor(dstSig)
	newRow := dst.AddRow(e)
	for _, cid := range dst.Signature() {
		if value, ok := newValues[cid]; ok {
			dst.Column(cid).Push(value)
		} else {
			dst.Column(cid).Push(src.Column(cid).Value(srcRow))
		}
	}
	w.entities.SetLocation(e.ID, dst.ID(), newRow)

	moved, ok := src.RemoveRow(srcRow)
	if ok {
		w.entities.SetRow(moved.ID, srcRow)
	}
	ecslog.Entity(&w.logger, zerolog.DebugLevel, e, dst.ID(), w.componentNames(dst.Signature()))
}

// archetypeFor returns the archetype for the sorted signature, creating it on
// first use. Created archetypes are never destroyed; their IDs are creation
// ordered.
func (w *World) archetypeFor(sig []types.ComponentID) *storage.Archetype {
	key := signature.Key(sig)
	if id, ok := w.archetypeByKey[key]; ok {
		return w.archetypes[id]
	}
	id := types.ArchetypeID(len(w.archetypes))
	arch := storage.NewArchetype(id, append([]types.ComponentID(nil), sig...))
	w.archetypes = append(w.archetypes, arch)
	w.archetypeByKey[key] = id
	ecslog.Archetype(&w.logger, zerolog.DebugLevel, id, key)
	return arch
}

// checkStructural validates a direct structural mutation: the iteration lock
// must be free and the target entity alive.
func (w *World) checkStructural(op string, e types.Entity) error {
	if w.iterationDepth > 0 {
		return eris.Wrapf(ErrStructuralChangeWhileIterating, "%s targeting %s", op, e)
	}
	if !w.entities.IsAlive(e) {
		return eris.Wrapf(ErrEntityDoesNotExist, "%s targeting %s", op, e)
	}
	return nil
}

func (w *World) componentNames(sig []types.ComponentID) []string {
	out := make([]string, len(sig))
	for i, cid := range sig {
		out[i] = w.registry.name(cid)
	}
	return out
}

// RegisteredComponentNames lists the display names of every component type
// seen so far, in ID order.
func (w *World) RegisteredComponentNames() []string {
	return w.registry.names()
}

// RegisteredSystemNames lists registered systems in registration order.
func (w *World) RegisteredSystemNames() []string {
	return w.systems.SystemNames()
}
