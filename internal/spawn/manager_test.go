package spawn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2spawn/internal/geo"
	"github.com/udisondev/la2spawn/internal/model"
)

func newTestManager(t *testing.T, f *fixture, defs map[int32][]*model.SpawnDefinition) *Manager {
	t.Helper()
	r := NewRegistry(&memSource{defs: defs}, f.collab.Catalog)
	m := NewManager(r, f.collab, Options{ActivationWorkers: 2, Seed: 42, PlacementRetries: 1000})
	t.Cleanup(func() { m.DeactivateAll(context.Background()) })
	return m
}

func mapDef(id, mapID int32, area model.Area, quantity int32) *model.SpawnDefinition {
	return model.NewSpawnDefinition(id, mapID, 305, area, quantity, model.DirectionUndefined, model.TriggerAutomaticDefault, "")
}

func TestManager_ActivateMap(t *testing.T) {
	f := newFixture(t)
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {mapDef(1, 1, model.PointArea(88, 73), 1)},
		2: {mapDef(1, 2, model.RectArea(0, 10, 0, 10), 3)},
	})

	require.NoError(t, m.ActivateMap(context.Background(), 1))
	require.NoError(t, m.ActivateMap(context.Background(), 1))

	assert.Len(t, m.ListLiveInstances(1), 1)
	assert.Empty(t, m.ListLiveInstances(2), "other maps stay inactive")
	assert.Equal(t, []int32{1}, m.ActiveMaps())

	assert.True(t, m.DeactivateMap(context.Background(), 1))
	assert.False(t, m.DeactivateMap(context.Background(), 1))
	assert.False(t, m.DeactivateMap(context.Background(), 2))
	assert.Empty(t, m.ActiveMaps())
}

func TestManager_InvalidMapCreatesNothing(t *testing.T) {
	f := newFixture(t)
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {
			mapDef(1, 1, model.PointArea(88, 73), 5),
			mapDef(2, 1, model.RectArea(10, 0, 0, 10), 1),
		},
	})

	err := m.ActivateMap(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvertedArea)
	assert.Zero(t, f.world.ObjectCount(), "no partial population")
	assert.Empty(t, m.ActiveMaps())
}

func TestManager_ActivateAll(t *testing.T) {
	f := newFixture(t)
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {mapDef(1, 1, model.PointArea(88, 73), 1)},
		2: {mapDef(1, 2, model.RectArea(0, 10, 0, 10), 3)},
		3: {model.NewSpawnDefinition(1, 3, 999, model.PointArea(0, 0), 1, model.DirectionUndefined, model.TriggerAutomaticDefault, "")},
		4: {mapDef(1, 4, model.PointArea(5, 5), 2)},
	})

	err := m.ActivateAll(context.Background())
	assert.ErrorIs(t, err, ErrUnresolvedMonster)
	assert.Equal(t, []int32{1, 2, 4}, m.ActiveMaps())
	assert.Equal(t, 6, f.world.ObjectCount())

	for _, h := range m.ListLiveInstances(2) {
		assert.Equal(t, int32(2), h.MapID)
		assert.True(t, model.RectArea(0, 10, 0, 10).Contains(h.Location.X, h.Location.Y))
	}

	m.DeactivateAll(context.Background())
	assert.Empty(t, m.ActiveMaps())
	assert.Zero(t, f.world.ObjectCount())
}

func TestManager_ActivateAllSubset(t *testing.T) {
	f := newFixture(t)
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {mapDef(1, 1, model.PointArea(88, 73), 1)},
		2: {mapDef(1, 2, model.PointArea(1, 1), 1)},
	})

	require.NoError(t, m.ActivateAll(context.Background(), 2))
	assert.Equal(t, []int32{2}, m.ActiveMaps())
}

func TestManager_PickPoint(t *testing.T) {
	f := newFixture(t)
	f.collab.Geometry = geo.NewAtlas(map[int32]*geo.Grid{1: geo.NewGrid(model.RectArea(0, 4, 0, 5))})
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {mapDef(1, 1, model.PointArea(88, 73), 1)},
	})

	area := model.RectArea(0, 5, 0, 5)
	for range 50 {
		x, _ := m.PickPoint(1, area)
		assert.Equal(t, int32(5), x)
	}

	require.NoError(t, m.ActivateMap(context.Background(), 1))
	s, ok := m.Scheduler(1)
	require.True(t, ok)
	x, y := s.PickPoint(model.PointArea(3, 3))
	assert.Equal(t, int32(3), x)
	assert.Equal(t, int32(3), y)
}

func TestManager_ContextCancelled(t *testing.T) {
	f := newFixture(t)
	m := newTestManager(t, f, map[int32][]*model.SpawnDefinition{
		1: {mapDef(1, 1, model.PointArea(88, 73), 1)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.ActivateMap(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.world.ObjectCount())
}
