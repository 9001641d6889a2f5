// Package catalog holds the immutable, validated monster catalog that spawn
// definitions resolve their monster references against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/la2spawn/internal/model"
)

// Source loads monster definitions from storage or content files.
type Source interface {
	LoadMonsters(ctx context.Context) ([]*model.MonsterDefinition, error)
}

// Catalog is a read-only index of monster definitions by id.
// Built once at load time; safe for concurrent use without locking.
type Catalog struct {
	monsters map[int32]*model.MonsterDefinition
}

// Load builds a catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	defs, err := src.LoadMonsters(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	c, err := New(defs)
	if err != nil {
		return nil, err
	}
	slog.Info("monster catalog loaded", "count", c.Len())
	return c, nil
}

// New validates defs and builds a catalog. Every problem is reported,
// joined into one error.
func New(defs []*model.MonsterDefinition) (*Catalog, error) {
	c := &Catalog{monsters: make(map[int32]*model.MonsterDefinition, len(defs))}

	var errs []error
	for _, def := range defs {
		if err := validate(def); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.monsters[def.ID()]; dup {
			errs = append(errs, fmt.Errorf("%w: %d", ErrDuplicateMonster, def.ID()))
			continue
		}
		c.monsters[def.ID()] = def
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("building monster catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

func validate(def *model.MonsterDefinition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidMonster)
	}
	if def.Name() == "" {
		return fmt.Errorf("%w: monster %d has empty name", ErrInvalidMonster, def.ID())
	}
	s := def.Stats()
	if s.MoveRange < 0 || s.AttackRange < 0 || s.ViewRange < 0 {
		return fmt.Errorf("%w: monster %d has negative range", ErrInvalidMonster, def.ID())
	}
	if s.MoveDelay < 0 || s.AttackDelay < 0 || s.RespawnDelay < 0 {
		return fmt.Errorf("%w: monster %d has negative delay", ErrInvalidMonster, def.ID())
	}
	return nil
}

// Resolve returns the monster definition for id.
func (c *Catalog) Resolve(id int32) (*model.MonsterDefinition, error) {
	def, ok := c.monsters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMonsterNotFound, id)
	}
	return def, nil
}

// Len returns the number of monsters
func (c *Catalog) Len() int {
	return len(c.monsters)
}

// IDs returns all monster ids in ascending order.
func (c *Catalog) IDs() []int32 {
	ids := make([]int32, 0, len(c.monsters))
	for id := range c.monsters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
