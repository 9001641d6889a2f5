package model

import (
	"time"

	"github.com/google/uuid"
)

// InstanceID identifies a live entity created by the entity lifecycle.
type InstanceID uint32

// SpawnDefinition is the immutable declarative rule describing one monster
// type, its placement area, quantity and activation trigger on a map.
type SpawnDefinition struct {
	id        int32
	mapID     int32
	monsterID int32
	area      Area
	quantity  int32
	direction Direction
	trigger   Trigger
	eventGate string
	note      string
}

// NewSpawnDefinition creates a spawn definition. Validation is the
// registry's job; the constructor accepts any values.
func NewSpawnDefinition(
	id, mapID, monsterID int32,
	area Area,
	quantity int32,
	direction Direction,
	trigger Trigger,
	eventGate string,
) *SpawnDefinition {
	return &SpawnDefinition{
		id:        id,
		mapID:     mapID,
		monsterID: monsterID,
		area:      area,
		quantity:  quantity,
		direction: direction,
		trigger:   trigger,
		eventGate: eventGate,
	}
}

// WithNote returns a copy carrying an opaque annotation from content data.
func (s *SpawnDefinition) WithNote(note string) *SpawnDefinition {
	c := *s
	c.note = note
	return &c
}

// ID returns the definition id, unique within its map
func (s *SpawnDefinition) ID() int32 {
	return s.id
}

// MapID returns the owning map id
func (s *SpawnDefinition) MapID() int32 {
	return s.mapID
}

// MonsterID returns the referenced monster definition id
func (s *SpawnDefinition) MonsterID() int32 {
	return s.monsterID
}

// Area returns the placement area
func (s *SpawnDefinition) Area() Area {
	return s.area
}

// Quantity returns how many simultaneous instances to maintain
func (s *SpawnDefinition) Quantity() int32 {
	return s.quantity
}

// Direction returns the facing rule
func (s *SpawnDefinition) Direction() Direction {
	return s.direction
}

// Trigger returns the activation trigger
func (s *SpawnDefinition) Trigger() Trigger {
	return s.trigger
}

// EventGate returns the event gate id, empty for ungated triggers
func (s *SpawnDefinition) EventGate() string {
	return s.eventGate
}

// Note returns the opaque content annotation. It is never interpreted.
func (s *SpawnDefinition) Note() string {
	return s.note
}

// LiveInstanceHandle links a live entity to the spawn definition that
// produced it. Runtime only, never persisted.
type LiveInstanceHandle struct {
	InstanceID   InstanceID
	MapID        int32
	DefinitionID int32
	MonsterID    int32
	Location     Location
	CreatedAt    time.Time
	// ActivationID identifies the map activation the instance belongs to.
	ActivationID uuid.UUID
}
