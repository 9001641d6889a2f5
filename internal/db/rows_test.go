package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2spawn/internal/model"
)

func TestMonsterRow(t *testing.T) {
	m := testMonster(305)
	row := NewMonsterRow(m)
	assert.Equal(t, "trap", row.Kind)
	assert.Equal(t, int64(30000), row.RespawnDelayMs)

	back, err := row.Monster()
	require.NoError(t, err)
	assert.Equal(t, m, back)

	row.Kind = "dragon"
	_, err = row.Monster()
	assert.Error(t, err)
}

func TestSpawnRow(t *testing.T) {
	def := model.NewSpawnDefinition(3, 1, 305, model.RectArea(0, 10, 20, 30).WithZ(-3500), 4,
		model.DirectionUndefined, model.TriggerAutomaticDuringEvent, "night").WithNote("0 2")

	row := NewSpawnRow(def)
	assert.Equal(t, int32(-1), row.Direction)
	assert.Equal(t, "automatic_during_event", row.Trigger)

	back, err := row.Spawn()
	require.NoError(t, err)
	assert.Equal(t, def, back)

	row.Trigger = "sometimes"
	_, err = row.Spawn()
	assert.ErrorIs(t, err, model.ErrUnknownTrigger)

	row.Trigger = ""
	row.Direction = 70000
	_, err = row.Spawn()
	assert.Error(t, err)
}
