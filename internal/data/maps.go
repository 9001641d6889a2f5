package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/la2spawn/internal/model"
)

// --- YAML structures (maps) ---

type yamlMapFile struct {
	MapID   int32       `yaml:"map_id"`
	Name    string      `yaml:"name"`
	Blocked [][]int32   `yaml:"blocked"`
	Spawns  []yamlSpawn `yaml:"spawns"`
}

type yamlSpawn struct {
	ID        *int32  `yaml:"id"`
	Monster   int32   `yaml:"monster"`
	At        []int32 `yaml:"at"`
	Rect      []int32 `yaml:"rect"`
	Z         int32   `yaml:"z"`
	Count     *int32  `yaml:"count"`
	Direction *int32  `yaml:"direction"`
	Trigger   string  `yaml:"trigger"`
	Event     string  `yaml:"event"`
	Note      string  `yaml:"note"`
}

// --- Parsed structures (maps) ---

type parsedMap struct {
	id      int32
	name    string
	blocked []model.Area
	spawns  []*model.SpawnDefinition
}

func parseMapFile(path string) (*parsedMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var file yamlMapFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	pm := &parsedMap{id: file.MapID, name: file.Name}

	for i, b := range file.Blocked {
		if len(b) != 4 {
			return nil, fmt.Errorf("blocked #%d: %w: want 4, got %d", i+1, ErrInvalidTuple, len(b))
		}
		pm.blocked = append(pm.blocked, model.RectArea(b[0], b[1], b[2], b[3]))
	}

	spawns, err := convertSpawns(file.MapID, file.Spawns)
	if err != nil {
		return nil, err
	}
	pm.spawns = spawns
	return pm, nil
}

// convertSpawns turns file entries into definitions. Entries without an id
// get one after the highest explicit id, in file order.
func convertSpawns(mapID int32, entries []yamlSpawn) ([]*model.SpawnDefinition, error) {
	var next int32
	for _, e := range entries {
		if e.ID != nil && *e.ID > next {
			next = *e.ID
		}
	}

	out := make([]*model.SpawnDefinition, 0, len(entries))
	for i, e := range entries {
		var id int32
		if e.ID != nil {
			id = *e.ID
		} else {
			next++
			id = next
		}

		def, err := convertSpawn(mapID, id, e)
		if err != nil {
			return nil, fmt.Errorf("spawn #%d (id %d): %w", i+1, id, err)
		}
		out = append(out, def)
	}
	return out, nil
}

func convertSpawn(mapID, id int32, e yamlSpawn) (*model.SpawnDefinition, error) {
	if e.Monster == 0 {
		return nil, ErrMissingMonster
	}

	var area model.Area
	switch {
	case e.At != nil && e.Rect == nil:
		if len(e.At) != 2 {
			return nil, fmt.Errorf("at: %w: want 2, got %d", ErrInvalidTuple, len(e.At))
		}
		area = model.PointArea(e.At[0], e.At[1])
	case e.Rect != nil && e.At == nil:
		if len(e.Rect) != 4 {
			return nil, fmt.Errorf("rect: %w: want 4, got %d", ErrInvalidTuple, len(e.Rect))
		}
		area = model.RectArea(e.Rect[0], e.Rect[1], e.Rect[2], e.Rect[3])
	default:
		return nil, ErrInvalidArea
	}
	area = area.WithZ(e.Z)

	// Zero and negative counts are kept so the registry reports them.
	quantity := int32(1)
	if e.Count != nil {
		quantity = *e.Count
	}

	direction := model.DirectionUndefined
	if e.Direction != nil {
		d, err := model.ParseDirection(*e.Direction)
		if err != nil {
			return nil, err
		}
		direction = d
	}

	trigger, err := model.ParseTrigger(e.Trigger)
	if err != nil {
		return nil, err
	}

	def := model.NewSpawnDefinition(id, mapID, e.Monster, area, quantity, direction, trigger, e.Event)
	if e.Note != "" {
		def = def.WithNote(e.Note)
	}
	return def, nil
}
