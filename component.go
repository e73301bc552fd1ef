package archon

import (
	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/types"
)

// RegisterComponent assigns T a component ID in w, or returns the existing ID
// if T was already seen. IDs are first-use ordered and never recycled. Two
// distinct Go types sharing an unqualified name panic, since snapshot records
// key components by that name.
func RegisterComponent[T any](w *World) types.ComponentID {
	return w.registry.register(typeOf[T]())
}

// ComponentIDOf returns T's component ID, registering it on first use.
func ComponentIDOf[T any](w *World) types.ComponentID {
	return RegisterComponent[T](w)
}

// Add attaches value to e as a T component. If e already carries a T the cell
// is overwritten in place; otherwise the entity moves to the archetype with
// the extended signature. Fails on dead handles and while a query is open.
func Add[T any](w *World, e types.Entity, value T) error {
	return w.addComponent(e, ComponentIDOf[T](w), value)
}

// Remove detaches T from e. Removing a component the entity does not carry is
// a no-op; dead handles and open queries are errors.
func Remove[T any](w *World, e types.Entity) error {
	return w.removeComponent(e, ComponentIDOf[T](w))
}

// Has reports whether e carries a T. A dead handle carries nothing.
func Has[T any](w *World, e types.Entity) bool {
	if !w.entities.IsAlive(e) {
		return false
	}
	meta := w.entities.Meta(e.ID)
	return w.archetypes[meta.Archetype].Has(ComponentIDOf[T](w))
}

// Get returns e's T value. The returned value is a copy; use Set to write it
// back.
func Get[T any](w *World, e types.Entity) (T, error) {
	var zero T
	if !w.entities.IsAlive(e) {
		return zero, eris.Wrapf(ErrEntityDoesNotExist, "get targeting %s", e)
	}
	cid := ComponentIDOf[T](w)
	meta := w.entities.Meta(e.ID)
	arch := w.archetypes[meta.Archetype]
	if !arch.Has(cid) {
		return zero, eris.Wrapf(ErrComponentNotOnEntity, "%s has no %s", e, w.registry.name(cid))
	}
	return arch.Column(cid).Value(meta.Row).(T), nil
}

// Set overwrites e's existing T value in place. Unlike Add it never changes
// the entity's archetype, so it is legal during iteration; the component must
// already be present.
func Set[T any](w *World, e types.Entity, value T) error {
	if !w.entities.IsAlive(e) {
		return eris.Wrapf(ErrEntityDoesNotExist, "set targeting %s", e)
	}
	cid := ComponentIDOf[T](w)
	meta := w.entities.Meta(e.ID)
	arch := w.archetypes[meta.Archetype]
	if !arch.Has(cid) {
		return eris.Wrapf(ErrComponentNotOnEntity, "%s has no %s", e, w.registry.name(cid))
	}
	arch.Column(cid).Set(meta.Row, value)
	return nil
}

// Value wraps v for AddMany, resolving T's component ID.
func Value[T any](w *World, v T) ComponentValue {
	return ComponentValue{ID: ComponentIDOf[T](w), Value: v}
}
