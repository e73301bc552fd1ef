// Package log holds zerolog helpers for the structured events the world
// emits: entity placement, archetype creation, and system registration.
package log

import (
	"github.com/rs/zerolog"

	"github.com/quillworld/archon/types"
)

// Loggable is implemented by the world so registration summaries can be
// logged without this package importing it.
type Loggable interface {
	RegisteredComponentNames() []string
	RegisteredSystemNames() []string
}

// Entity logs an entity's placement into an archetype.
func Entity(
	logger *zerolog.Logger, level zerolog.Level,
	e types.Entity, archID types.ArchetypeID, componentNames []string,
) {
	event := logger.WithLevel(level)
	arr := zerolog.Arr()
	for _, name := range componentNames {
		arr = arr.Str(name)
	}
	event.
		Uint64("entity_id", uint64(e.ID)).
		Uint32("generation", e.Generation).
		Int("archetype_id", int(archID)).
		Array("components", arr).
		Send()
}

// Archetype logs the creation of a new archetype table.
func Archetype(logger *zerolog.Logger, level zerolog.Level, archID types.ArchetypeID, key string) {
	logger.WithLevel(level).
		Int("archetype_id", int(archID)).
		Str("signature", key).
		Msg("created archetype")
}

// World logs a registration summary: every component and system the target
// knows about.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	components := target.RegisteredComponentNames()
	compArr := zerolog.Arr()
	for _, name := range components {
		compArr = compArr.Str(name)
	}
	systems := target.RegisteredSystemNames()
	sysArr := zerolog.Arr()
	for _, name := range systems {
		sysArr = sysArr.Str(name)
	}
	event.
		Int("total_components", len(components)).
		Array("components", compArr).
		Int("total_systems", len(systems)).
		Array("systems", sysArr).
		Send()
}

// CreateSystemLogger returns a sub-logger tagged with the system name.
func CreateSystemLogger(logger *zerolog.Logger, systemName string) *zerolog.Logger {
	sub := logger.With().Str("system", systemName).Logger()
	return &sub
}
