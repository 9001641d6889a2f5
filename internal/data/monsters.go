package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/la2spawn/internal/model"
)

// --- YAML structures (monsters) ---

type yamlMonsterFile struct {
	Monsters []yamlMonster `yaml:"monsters"`
}

type yamlMonster struct {
	ID            int32             `yaml:"id"`
	Name          string            `yaml:"name"`
	Kind          string            `yaml:"kind"`
	MoveRange     int32             `yaml:"move_range"`
	AttackRange   int32             `yaml:"attack_range"`
	ViewRange     int32             `yaml:"view_range"`
	MoveDelay     Duration          `yaml:"move_delay"`
	AttackDelay   Duration          `yaml:"attack_delay"`
	RespawnDelay  Duration          `yaml:"respawn_delay"`
	AttackSkillID int32             `yaml:"attack_skill"`
	Resistances   model.Resistances `yaml:"resistances"`
}

func parseMonsterFile(path string) ([]*model.MonsterDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var file yamlMonsterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	out := make([]*model.MonsterDefinition, 0, len(file.Monsters))
	for i, ym := range file.Monsters {
		def, err := convertMonster(ym)
		if err != nil {
			return nil, fmt.Errorf("monster #%d (id %d): %w", i+1, ym.ID, err)
		}
		out = append(out, def)
	}
	return out, nil
}

func convertMonster(ym yamlMonster) (*model.MonsterDefinition, error) {
	kind, err := model.ParseObjectKind(ym.Kind)
	if err != nil {
		return nil, err
	}
	return model.NewMonsterDefinition(ym.ID, ym.Name, kind, model.MonsterStats{
		MoveRange:     ym.MoveRange,
		AttackRange:   ym.AttackRange,
		ViewRange:     ym.ViewRange,
		MoveDelay:     ym.MoveDelay.Std(),
		AttackDelay:   ym.AttackDelay.Std(),
		RespawnDelay:  ym.RespawnDelay.Std(),
		AttackSkillID: ym.AttackSkillID,
		Resistances:   ym.Resistances,
	}), nil
}
