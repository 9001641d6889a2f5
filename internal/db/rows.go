package db

import (
	"fmt"
	"time"

	"github.com/udisondev/la2spawn/internal/model"
)

// MonsterRow is the storage shape of a monster definition.
type MonsterRow struct {
	MonsterID      int32
	Name           string
	Kind           string
	MoveRange      int32
	AttackRange    int32
	ViewRange      int32
	MoveDelayMs    int64
	AttackDelayMs  int64
	RespawnDelayMs int64
	AttackSkillID  int32
	Resistances    model.Resistances
}

// NewMonsterRow converts a definition for storage.
func NewMonsterRow(m *model.MonsterDefinition) MonsterRow {
	s := m.Stats()
	return MonsterRow{
		MonsterID:      m.ID(),
		Name:           m.Name(),
		Kind:           m.Kind().String(),
		MoveRange:      s.MoveRange,
		AttackRange:    s.AttackRange,
		ViewRange:      s.ViewRange,
		MoveDelayMs:    s.MoveDelay.Milliseconds(),
		AttackDelayMs:  s.AttackDelay.Milliseconds(),
		RespawnDelayMs: s.RespawnDelay.Milliseconds(),
		AttackSkillID:  s.AttackSkillID,
		Resistances:    s.Resistances,
	}
}

// Monster converts the row back to a definition.
func (r MonsterRow) Monster() (*model.MonsterDefinition, error) {
	kind, err := model.ParseObjectKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("monster %d: %w", r.MonsterID, err)
	}
	return model.NewMonsterDefinition(r.MonsterID, r.Name, kind, model.MonsterStats{
		MoveRange:     r.MoveRange,
		AttackRange:   r.AttackRange,
		ViewRange:     r.ViewRange,
		MoveDelay:     time.Duration(r.MoveDelayMs) * time.Millisecond,
		AttackDelay:   time.Duration(r.AttackDelayMs) * time.Millisecond,
		RespawnDelay:  time.Duration(r.RespawnDelayMs) * time.Millisecond,
		AttackSkillID: r.AttackSkillID,
		Resistances:   r.Resistances,
	}), nil
}

// SpawnRow is the storage shape of a spawn definition.
type SpawnRow struct {
	MapID      int32
	SpawnID    int32
	MonsterID  int32
	XMin, XMax int32
	YMin, YMax int32
	Z          int32
	Quantity   int32
	Direction  int32
	Trigger    string
	EventGate  string
	Note       string
}

// NewSpawnRow converts a definition for storage.
func NewSpawnRow(def *model.SpawnDefinition) SpawnRow {
	a := def.Area()
	return SpawnRow{
		MapID:     def.MapID(),
		SpawnID:   def.ID(),
		MonsterID: def.MonsterID(),
		XMin:      a.XMin,
		XMax:      a.XMax,
		YMin:      a.YMin,
		YMax:      a.YMax,
		Z:         a.Z,
		Quantity:  def.Quantity(),
		Direction: int32(def.Direction()),
		Trigger:   def.Trigger().String(),
		EventGate: def.EventGate(),
		Note:      def.Note(),
	}
}

// Spawn converts the row back to a definition. An unknown trigger name is
// a configuration error and is returned as model.ErrUnknownTrigger.
func (r SpawnRow) Spawn() (*model.SpawnDefinition, error) {
	trigger, err := model.ParseTrigger(r.Trigger)
	if err != nil {
		return nil, fmt.Errorf("spawn %d of map %d: %w", r.SpawnID, r.MapID, err)
	}
	direction, err := model.ParseDirection(r.Direction)
	if err != nil {
		return nil, fmt.Errorf("spawn %d of map %d: %w", r.SpawnID, r.MapID, err)
	}

	area := model.RectArea(r.XMin, r.XMax, r.YMin, r.YMax).WithZ(r.Z)
	def := model.NewSpawnDefinition(r.SpawnID, r.MapID, r.MonsterID, area, r.Quantity, direction, trigger, r.EventGate)
	if r.Note != "" {
		def = def.WithNote(r.Note)
	}
	return def, nil
}
