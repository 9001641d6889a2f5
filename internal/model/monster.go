package model

import (
	"fmt"
	"strings"
	"time"
)

// ObjectKind tags what a monster definition represents in the world.
type ObjectKind uint8

const (
	// KindCreature is a regular monster or NPC.
	KindCreature ObjectKind = iota
	// KindTrap is a stationary trap.
	KindTrap
	// KindGate is a gate or obstacle.
	KindGate
)

// String returns the canonical name used in content files and storage.
func (k ObjectKind) String() string {
	switch k {
	case KindCreature:
		return "creature"
	case KindTrap:
		return "trap"
	case KindGate:
		return "gate"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseObjectKind parses a kind name. Empty string means KindCreature.
func ParseObjectKind(s string) (ObjectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "creature":
		return KindCreature, nil
	case "trap":
		return KindTrap, nil
	case "gate":
		return KindGate, nil
	default:
		return 0, fmt.Errorf("unknown object kind %q", s)
	}
}

// Resistances holds numeric resistances of a monster.
type Resistances struct {
	Fire  int32 `yaml:"fire"`
	Water int32 `yaml:"water"`
	Wind  int32 `yaml:"wind"`
	Earth int32 `yaml:"earth"`
	Holy  int32 `yaml:"holy"`
	Dark  int32 `yaml:"dark"`
}

// MonsterStats groups the base combat and timing attributes of a monster.
type MonsterStats struct {
	MoveRange     int32
	AttackRange   int32
	ViewRange     int32
	MoveDelay     time.Duration
	AttackDelay   time.Duration
	RespawnDelay  time.Duration
	AttackSkillID int32 // 0 = no attack skill
	Resistances   Resistances
}

// MonsterDefinition is an immutable catalog entry for a monster or NPC type.
type MonsterDefinition struct {
	id    int32
	name  string
	kind  ObjectKind
	stats MonsterStats
}

// NewMonsterDefinition creates a monster definition.
func NewMonsterDefinition(id int32, name string, kind ObjectKind, stats MonsterStats) *MonsterDefinition {
	return &MonsterDefinition{
		id:    id,
		name:  name,
		kind:  kind,
		stats: stats,
	}
}

// ID returns the monster id
func (m *MonsterDefinition) ID() int32 {
	return m.id
}

// Name returns the display name
func (m *MonsterDefinition) Name() string {
	return m.name
}

// Kind returns the object kind
func (m *MonsterDefinition) Kind() ObjectKind {
	return m.kind
}

// Stats returns a copy of the base attributes
func (m *MonsterDefinition) Stats() MonsterStats {
	return m.stats
}

// RespawnDelay returns the base delay between death and replacement.
func (m *MonsterDefinition) RespawnDelay() time.Duration {
	return m.stats.RespawnDelay
}

// HasAttackSkill reports whether the monster references an attack skill.
func (m *MonsterDefinition) HasAttackSkill() bool {
	return m.stats.AttackSkillID != 0
}
