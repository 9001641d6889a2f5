package spawn

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2spawn/internal/catalog"
	"github.com/udisondev/la2spawn/internal/model"
	"github.com/udisondev/la2spawn/internal/world"
)

type memSource struct {
	defs map[int32][]*model.SpawnDefinition
	err  error
}

func (s *memSource) MapIDs(context.Context) ([]int32, error) {
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]int32, 0, len(s.defs))
	for id := range s.defs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memSource) LoadSpawns(_ context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.defs[mapID]), nil
}

// flakyLifecycle fails the next failures creations, then defers to World.
type flakyLifecycle struct {
	*world.World

	mu       sync.Mutex
	failures int
	creates  int
}

func (f *flakyLifecycle) Create(mapID int32, monster *model.MonsterDefinition, loc model.Location) (model.InstanceID, error) {
	f.mu.Lock()
	f.creates++
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return 0, errors.New("world is full")
	}
	f.mu.Unlock()
	return f.World.Create(mapID, monster, loc)
}

func (f *flakyLifecycle) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func monster(id int32, respawn time.Duration) *model.MonsterDefinition {
	return model.NewMonsterDefinition(id, "Monster", model.KindCreature, model.MonsterStats{RespawnDelay: respawn})
}

func testCatalog(t *testing.T, monsters ...*model.MonsterDefinition) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(monsters)
	require.NoError(t, err)
	return c
}

func pointDef(id, monsterID, x, y, quantity int32, trigger model.Trigger, gate string) *model.SpawnDefinition {
	return model.NewSpawnDefinition(id, 1, monsterID, model.PointArea(x, y), quantity, model.DirectionUndefined, trigger, gate)
}

func newTestScheduler(t *testing.T, collab Collaborators, opts Options, defs ...*model.SpawnDefinition) *MapScheduler {
	t.Helper()
	s, err := NewMapScheduler(1, defs, collab, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Deactivate() })
	return s
}

func liveFor(handles []model.LiveInstanceHandle, definitionID int32) []model.LiveInstanceHandle {
	var out []model.LiveInstanceHandle
	for _, h := range handles {
		if h.DefinitionID == definitionID {
			out = append(out, h)
		}
	}
	return out
}
