package archon

import "github.com/rotisserie/eris"

var (
	// ErrEntityDoesNotExist is returned when an operation targets a handle
	// whose id was never allocated, has been despawned, or carries an
	// outdated generation. Read-only lookups (Get/Has) degrade to "not
	// found" instead of returning this.
	ErrEntityDoesNotExist = eris.New("entity does not exist")

	// ErrComponentNotOnEntity is returned by Set when the entity does not
	// carry the component. Remove treats the same situation as a no-op.
	ErrComponentNotOnEntity = eris.New("component not on entity")

	// ErrStructuralChangeWhileIterating is returned when a spawn, despawn,
	// component add/remove, or snapshot operation is attempted while any
	// query iteration is still open.
	ErrStructuralChangeWhileIterating = eris.New("structural change while iterating")

	// ErrResourceNotFound is returned by GetResource when no singleton of
	// the requested type has been set.
	ErrResourceNotFound = eris.New("resource not found")

	// ErrLifecycleConflict is returned when both the single-pass Update API
	// and the phase primitives (Flush/SwapEvents) are used against the same
	// world.
	ErrLifecycleConflict = eris.New("single-pass and phased lifecycles cannot be mixed on one world")
)
