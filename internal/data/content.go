// Package data loads declarative spawn content: a monster catalog file and
// one YAML file per map.
package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/udisondev/la2spawn/internal/geo"
	"github.com/udisondev/la2spawn/internal/model"
)

const (
	monstersFile = "monsters.yaml"
	mapsDir      = "maps"
)

// Content is a fully parsed content directory. It serves as monster
// source and spawn definition source.
// Thread-safe: immutable after Load.
type Content struct {
	monsters []*model.MonsterDefinition
	maps     map[int32]*parsedMap
}

// Load parses dir/monsters.yaml and every dir/maps/*.yaml file.
func Load(dir string) (*Content, error) {
	monsters, err := parseMonsterFile(filepath.Join(dir, monstersFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMonstersNotFound, dir)
		}
		return nil, fmt.Errorf("parse %s: %w", monstersFile, err)
	}

	files, err := walkYAMLFiles(filepath.Join(dir, mapsDir))
	if err != nil {
		return nil, fmt.Errorf("walk maps dir: %w", err)
	}

	c := &Content{
		monsters: monsters,
		maps:     make(map[int32]*parsedMap, len(files)),
	}
	spawns := 0
	for _, f := range files {
		pm, err := parseMapFile(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(f), err)
		}
		if prev, dup := c.maps[pm.id]; dup {
			return nil, fmt.Errorf("parse %s: %w: %d already declared by %q", filepath.Base(f), ErrDuplicateMap, pm.id, prev.name)
		}
		c.maps[pm.id] = pm
		spawns += len(pm.spawns)
	}

	slog.Info("content loaded",
		"dir", dir,
		"monsters", len(c.monsters),
		"maps", len(c.maps),
		"spawns", spawns)
	return c, nil
}

func walkYAMLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// LoadMonsters returns every monster of the catalog file.
func (c *Content) LoadMonsters(context.Context) ([]*model.MonsterDefinition, error) {
	return slices.Clone(c.monsters), nil
}

// MapIDs returns declared map ids in ascending order.
func (c *Content) MapIDs(context.Context) ([]int32, error) {
	return slices.Sorted(maps.Keys(c.maps)), nil
}

// LoadSpawns returns the definitions of mapID in file order. Unknown maps
// have no spawns.
func (c *Content) LoadSpawns(_ context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	pm, ok := c.maps[mapID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(pm.spawns), nil
}

// MapName returns the display name of a map.
func (c *Content) MapName(mapID int32) (string, bool) {
	pm, ok := c.maps[mapID]
	if !ok {
		return "", false
	}
	return pm.name, true
}

// Atlas builds map geometry from the blocked rectangles of every map.
func (c *Content) Atlas() *geo.Atlas {
	grids := make(map[int32]*geo.Grid, len(c.maps))
	for id, pm := range c.maps {
		if len(pm.blocked) > 0 {
			grids[id] = geo.NewGrid(pm.blocked...)
		}
	}
	return geo.NewAtlas(grids)
}
