package spawn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2spawn/internal/model"
)

func TestRegistry_Load(t *testing.T) {
	src := &memSource{defs: map[int32][]*model.SpawnDefinition{
		1: {
			pointDef(1, 305, 88, 73, 1, model.TriggerAutomaticDefault, ""),
			pointDef(2, 305, 90, 75, 2, model.TriggerOnceAtEventStart, "siege"),
		},
	}}
	r := NewRegistry(src, testCatalog(t, monster(305, 0)))

	defs, err := r.Load(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, int32(1), defs[0].ID())
	assert.Equal(t, int32(2), defs[1].ID())

	def, err := r.Lookup(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "siege", def.EventGate())

	_, err = r.Lookup(1, 99)
	assert.ErrorIs(t, err, ErrDefinitionNotFound)
	_, err = r.Lookup(7, 1)
	assert.ErrorIs(t, err, ErrMapNotLoaded)
}

func TestRegistry_LoadIsCachedAndStable(t *testing.T) {
	src := &memSource{defs: map[int32][]*model.SpawnDefinition{
		1: {pointDef(1, 305, 88, 73, 1, model.TriggerAutomaticDefault, "")},
	}}
	r := NewRegistry(src, testCatalog(t, monster(305, 0)))

	first, err := r.Load(context.Background(), 1)
	require.NoError(t, err)

	// Source changes after the first load are not observed.
	src.defs[1] = append(src.defs[1], pointDef(2, 305, 1, 1, 1, model.TriggerAutomaticDefault, ""))

	second, err := r.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	second[0] = nil
	third, err := r.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, third[0], "callers must not be able to mutate the cache")
}

func TestRegistry_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []*model.SpawnDefinition
		want error
	}{
		{
			name: "unresolved monster",
			defs: []*model.SpawnDefinition{pointDef(1, 999, 0, 0, 1, model.TriggerAutomaticDefault, "")},
			want: ErrUnresolvedMonster,
		},
		{
			name: "duplicate id",
			defs: []*model.SpawnDefinition{
				pointDef(1, 305, 0, 0, 1, model.TriggerAutomaticDefault, ""),
				pointDef(1, 305, 5, 5, 1, model.TriggerAutomaticDefault, ""),
			},
			want: ErrDuplicateDefinition,
		},
		{
			name: "inverted rectangle",
			defs: []*model.SpawnDefinition{
				model.NewSpawnDefinition(1, 1, 305, model.RectArea(10, 0, 0, 10), 1, model.DirectionUndefined, model.TriggerAutomaticDefault, ""),
			},
			want: ErrInvertedArea,
		},
		{
			name: "gated trigger without gate",
			defs: []*model.SpawnDefinition{pointDef(1, 305, 0, 0, 1, model.TriggerAutomaticDuringEvent, "")},
			want: ErrMissingEventGate,
		},
		{
			name: "unknown trigger",
			defs: []*model.SpawnDefinition{pointDef(1, 305, 0, 0, 1, model.Trigger(42), "")},
			want: ErrUnknownTrigger,
		},
		{
			name: "zero quantity",
			defs: []*model.SpawnDefinition{pointDef(1, 305, 0, 0, 0, model.TriggerAutomaticDefault, "")},
			want: ErrInvalidQuantity,
		},
		{
			name: "definition of another map",
			defs: []*model.SpawnDefinition{
				model.NewSpawnDefinition(1, 2, 305, model.PointArea(0, 0), 1, model.DirectionUndefined, model.TriggerAutomaticDefault, ""),
			},
			want: ErrWrongMap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &memSource{defs: map[int32][]*model.SpawnDefinition{1: tt.defs}}
			r := NewRegistry(src, testCatalog(t, monster(305, 0)))

			_, err := r.Load(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, int32(1), cfgErr.MapID)

			_, err = r.Lookup(1, 1)
			assert.ErrorIs(t, err, ErrMapNotLoaded, "failed map must not be cached")
		})
	}
}

func TestRegistry_ReportsEveryProblem(t *testing.T) {
	src := &memSource{defs: map[int32][]*model.SpawnDefinition{1: {
		pointDef(1, 999, 0, 0, 1, model.TriggerAutomaticDefault, ""),
		pointDef(2, 305, 0, 0, 1, model.TriggerOnceAtEventStart, ""),
		pointDef(3, 305, 0, 0, 1, model.TriggerAutomaticDefault, ""),
	}}}
	r := NewRegistry(src, testCatalog(t, monster(305, 0)))

	_, err := r.Load(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedMonster)
	assert.ErrorIs(t, err, ErrMissingEventGate)
}

func TestRegistry_SourceError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(&memSource{err: boom}, testCatalog(t, monster(305, 0)))

	_, err := r.Load(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	_, err = r.LoadAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_LoadAll(t *testing.T) {
	src := &memSource{defs: map[int32][]*model.SpawnDefinition{
		3: {model.NewSpawnDefinition(1, 3, 305, model.PointArea(0, 0), 1, model.DirectionUndefined, model.TriggerAutomaticDefault, "")},
		1: {pointDef(1, 305, 0, 0, 1, model.TriggerAutomaticDefault, "")},
		2: {model.NewSpawnDefinition(1, 2, 999, model.PointArea(0, 0), 1, model.DirectionUndefined, model.TriggerAutomaticDefault, "")},
	}}
	r := NewRegistry(src, testCatalog(t, monster(305, 0)))

	loaded, err := r.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrUnresolvedMonster)
	assert.Equal(t, []int32{1, 3}, loaded)
}
