// Package lifecycle tracks which of the two mutually-exclusive driver APIs a
// world instance is being run with: the single-pass Update convenience, or
// the lower-level phase primitives (Flush/SwapEvents) used by an external
// scheduler. Mixing the two on one world is a usage error that must be
// detected, not silently tolerated.
package lifecycle

import (
	"sync/atomic"
)

type Stage string

const (
	Unused      Stage = "Unused"      // No driver API has been used yet
	UsingSimple Stage = "UsingSimple" // The world is driven by Update()
	UsingPhased Stage = "UsingPhased" // The world is driven by Flush()/SwapEvents()
)

type Manager struct {
	current *atomic.Value
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
	}
	m.Store(Unused)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
}
