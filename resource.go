package archon

import (
	"github.com/rotisserie/eris"
)

// SetResource stores the world-global singleton of type T, replacing any
// previous value. Resources share the component ID space so snapshot codecs
// can key them by name.
func SetResource[T any](w *World, value T) {
	w.resources[ComponentIDOf[T](w)] = value
}

// GetResource returns the singleton of type T, or ErrResourceNotFound when
// none was set.
func GetResource[T any](w *World) (T, error) {
	var zero T
	cid := ComponentIDOf[T](w)
	value, ok := w.resources[cid]
	if !ok {
		return zero, eris.Wrapf(ErrResourceNotFound, "no resource of type %s", w.registry.name(cid))
	}
	return value.(T), nil
}

// HasResource reports whether a singleton of type T is set.
func HasResource[T any](w *World) bool {
	_, ok := w.resources[ComponentIDOf[T](w)]
	return ok
}

// RemoveResource clears the singleton of type T. Clearing an unset resource
// is a no-op.
func RemoveResource[T any](w *World) {
	delete(w.resources, ComponentIDOf[T](w))
}
