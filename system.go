package archon

import (
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	ecslog "github.com/quillworld/archon/log"
	"github.com/quillworld/archon/statsd"
)

// System is one unit of simulation logic, run once per update in
// registration order. Returning an error aborts the remainder of the update;
// deferred commands and event buffers are still processed.
type System func(ctx *Context) error

// Context is handed to each system for the duration of one update.
type Context struct {
	world  *World
	dt     float64
	logger *zerolog.Logger
}

// World returns the world this update runs against.
func (c *Context) World() *World {
	return c.world
}

// DeltaTime returns the caller-supplied time step for this update.
func (c *Context) DeltaTime() float64 {
	return c.dt
}

// Logger returns a logger tagged with the running system's name.
func (c *Context) Logger() *zerolog.Logger {
	return c.logger
}

type systemType struct {
	Name string
	Fn   System
}

// SystemManager keeps registered systems in registration order and times
// their runs.
type SystemManager struct {
	registeredSystems []systemType
	currentSystem     string
}

func newSystemManager() *SystemManager {
	return &SystemManager{currentSystem: "no_system"}
}

// RegisterSystems appends the given systems to the update order. Names are
// derived from the function symbol; registering two systems with the same
// name is an error and nothing is registered.
func (m *SystemManager) RegisterSystems(systems ...System) error {
	// Check every name before appending anything so a batch with a
	// duplicate registers none of its systems.
	names := make([]string, 0, len(systems))
	for _, sys := range systems {
		name := systemName(sys)
		if slices.Contains(names, name) {
			return eris.Errorf("duplicate system %q in batch", name)
		}
		for _, existing := range m.registeredSystems {
			if existing.Name == name {
				return eris.Errorf("system %q is already registered", name)
			}
		}
		names = append(names, name)
	}
	for i, sys := range systems {
		m.registeredSystems = append(m.registeredSystems, systemType{Name: names[i], Fn: sys})
	}
	return nil
}

// SystemNames returns registered system names in run order.
func (m *SystemManager) SystemNames() []string {
	names := make([]string, 0, len(m.registeredSystems))
	for _, sys := range m.registeredSystems {
		names = append(names, sys.Name)
	}
	return names
}

// CurrentSystem names the system running right now, or "no_system" outside
// an update.
func (m *SystemManager) CurrentSystem() string {
	return m.currentSystem
}

// runSystems executes every system in order against a fresh Context. The
// first error stops the run and is returned; per-system wall time is recorded
// into the world's timing ring either way.
func (m *SystemManager) runSystems(w *World, dt float64) error {
	allSystemStart := time.Now()
	for _, sys := range m.registeredSystems {
		m.currentSystem = sys.Name
		ctx := &Context{
			world:  w,
			dt:     dt,
			logger: ecslog.CreateSystemLogger(&w.logger, sys.Name),
		}
		start := time.Now()
		err := sys.Fn(ctx)
		w.timings.record(sys.Name, time.Since(start))
		if err != nil {
			m.currentSystem = "no_system"
			return eris.Wrapf(err, "system %s failed", sys.Name)
		}
	}
	m.currentSystem = "no_system"
	statsd.EmitUpdateStat(allSystemStart, "systems")
	return nil
}

// systemName extracts a stable short name from the system's function symbol,
// e.g. "physics.Gravity" from a package-level func and "server.main.func1"
// from a closure.
func systemName(sys System) string {
	full := runtime.FuncForPC(reflect.ValueOf(sys).Pointer()).Name()
	name := filepath.Base(full)
	return strings.TrimSuffix(name, "-fm")
}

// RegisterSystems registers systems on the world in update order.
func (w *World) RegisterSystems(systems ...System) error {
	if err := w.systems.RegisterSystems(systems...); err != nil {
		return err
	}
	ecslog.World(&w.logger, w, zerolog.DebugLevel)
	return nil
}
