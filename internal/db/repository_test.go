package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2spawn/internal/model"
)

func testMonster(id int32) *model.MonsterDefinition {
	return model.NewMonsterDefinition(id, "Cruma Spider", model.KindTrap, model.MonsterStats{
		MoveRange:     300,
		AttackRange:   40,
		ViewRange:     400,
		MoveDelay:     time.Second,
		AttackDelay:   1500 * time.Millisecond,
		RespawnDelay:  30 * time.Second,
		AttackSkillID: 4001,
		Resistances:   model.Resistances{Fire: 10, Holy: -20},
	})
}

func TestMonsterRepository(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.Monsters().CreateMonster(ctx, testMonster(306)))
	require.NoError(t, d.Monsters().CreateMonster(ctx, testMonster(305)))
	assert.Error(t, d.Monsters().CreateMonster(ctx, testMonster(305)), "duplicate monster id")

	monsters, err := d.LoadMonsters(ctx)
	require.NoError(t, err)
	require.Len(t, monsters, 2)
	assert.Equal(t, int32(305), monsters[0].ID())
	assert.Equal(t, testMonster(305), monsters[0])
}

func TestSpawnRepository(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	point := model.NewSpawnDefinition(7, 1, 305, model.PointArea(88, 73), 1,
		model.DirectionUndefined, model.TriggerAutomaticDefault, "")
	rect := model.NewSpawnDefinition(3, 1, 305, model.RectArea(0, 10, 20, 30).WithZ(-3500), 4,
		model.FixedDirection(16384), model.TriggerOnceAtEventStart, "siege").WithNote("0 2")
	other := model.NewSpawnDefinition(1, 2, 305, model.PointArea(1, 1), 1,
		model.DirectionUndefined, model.TriggerWandering, "")

	for _, def := range []*model.SpawnDefinition{point, rect, other} {
		require.NoError(t, d.Spawns().CreateSpawn(ctx, def))
	}

	ids, err := d.MapIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, ids)

	defs, err := d.LoadSpawns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, point, defs[0], "declaration order is kept")
	assert.Equal(t, rect, defs[1])

	none, err := d.LoadSpawns(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSpawnRepository_DuplicateIDsAreStored(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	def := model.NewSpawnDefinition(1, 1, 305, model.PointArea(0, 0), 1,
		model.DirectionUndefined, model.TriggerAutomaticDefault, "")
	require.NoError(t, d.Spawns().CreateSpawn(ctx, def))
	require.NoError(t, d.Spawns().CreateSpawn(ctx, def))

	defs, err := d.LoadSpawns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestSpawnRepository_UnknownTrigger(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	_, err := d.Pool().Exec(ctx, `
		INSERT INTO spawn_definitions (map_id, spawn_id, ordinal, monster_id, x_min, x_max, y_min, y_max, trigger_kind)
		VALUES (1, 1, 1, 305, 0, 0, 0, 0, 'sometimes')`)
	require.NoError(t, err)

	_, err = d.LoadSpawns(ctx, 1)
	assert.ErrorIs(t, err, model.ErrUnknownTrigger)
}

func TestImport(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	keep := model.NewSpawnDefinition(1, 5, 305, model.PointArea(0, 0), 1,
		model.DirectionUndefined, model.TriggerAutomaticDefault, "")
	require.NoError(t, d.Spawns().CreateSpawn(ctx, keep))
	require.NoError(t, d.Spawns().CreateSpawn(ctx, model.NewSpawnDefinition(9, 1, 305, model.PointArea(0, 0), 1,
		model.DirectionUndefined, model.TriggerAutomaticDefault, "")))

	spawns := map[int32][]*model.SpawnDefinition{
		1: {model.NewSpawnDefinition(1, 1, 305, model.PointArea(88, 73), 1,
			model.DirectionUndefined, model.TriggerAutomaticDefault, "")},
	}
	require.NoError(t, d.Import(ctx, []*model.MonsterDefinition{testMonster(305)}, spawns))

	defs, err := d.LoadSpawns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, int32(1), defs[0].ID(), "map 1 replaced")

	kept, err := d.LoadSpawns(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, kept, 1, "maps outside the import stay")

	monsters, err := d.LoadMonsters(ctx)
	require.NoError(t, err)
	assert.Len(t, monsters, 1)
}

func TestImport_RollsBack(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.Monsters().CreateMonster(ctx, testMonster(1)))

	// Duplicate monster ids violate the primary key mid-import.
	err := d.Import(ctx, []*model.MonsterDefinition{testMonster(305), testMonster(305)}, nil)
	require.Error(t, err)

	monsters, err := d.LoadMonsters(ctx)
	require.NoError(t, err)
	require.Len(t, monsters, 1)
	assert.Equal(t, int32(1), monsters[0].ID())
}
