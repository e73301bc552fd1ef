package archon

import (
	"fmt"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/types"
)

// typeRegistry assigns a stable ComponentID to each distinct Go type used as
// a component or resource. IDs are handed out first-use-wins and increase
// monotonically; they are never reclaimed for the lifetime of the world. The
// registry is per-world, so tests get isolation for free.
type typeRegistry struct {
	byType map[reflect.Type]types.ComponentID
	byName map[string]types.ComponentID
	infos  []componentInfo
}

type componentInfo struct {
	name string
	typ  reflect.Type
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		byType: make(map[reflect.Type]types.ComponentID),
		byName: make(map[string]types.ComponentID),
	}
}

// register returns the ID for t, assigning the next one on first use. Two
// distinct types may not share a display name; that is a programmer error
// caught at registration.
func (r *typeRegistry) register(t reflect.Type) types.ComponentID {
	if id, ok := r.byType[t]; ok {
		return id
	}
	name := displayName(t)
	if _, taken := r.byName[name]; taken {
		panic(fmt.Sprintf("component name %q is already registered for a different type", name))
	}
	id := types.ComponentID(len(r.infos))
	r.byType[t] = id
	r.byName[name] = id
	r.infos = append(r.infos, componentInfo{name: name, typ: t})
	return id
}

// lookup returns the ID for t without registering it.
func (r *typeRegistry) lookup(t reflect.Type) (types.ComponentID, bool) {
	id, ok := r.byType[t]
	return id, ok
}

func (r *typeRegistry) idByName(name string) (types.ComponentID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, eris.Errorf("component %q is not registered", name)
	}
	return id, nil
}

// name returns the display name for id. Only valid for assigned IDs.
func (r *typeRegistry) name(id types.ComponentID) string {
	return r.infos[id].name
}

func (r *typeRegistry) count() int {
	return len(r.infos)
}

func (r *typeRegistry) names() []string {
	out := make([]string, len(r.infos))
	for i, info := range r.infos {
		out[i] = info.name
	}
	return out
}

// displayName is the human-readable identifier used in logs, errors, and
// query text. Unnamed types fall back to their full Go spelling.
func displayName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
