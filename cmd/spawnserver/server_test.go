package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/udisondev/la2spawn/internal/ai"
	"github.com/udisondev/la2spawn/internal/catalog"
	"github.com/udisondev/la2spawn/internal/config"
	"github.com/udisondev/la2spawn/internal/data"
	"github.com/udisondev/la2spawn/internal/db/sqlite"
	"github.com/udisondev/la2spawn/internal/event"
	"github.com/udisondev/la2spawn/internal/model"
	"github.com/udisondev/la2spawn/internal/spawn"
	"github.com/udisondev/la2spawn/internal/world"
)

const testContentDir = "../../internal/data/testdata/content"

// ServerSuite drives the whole engine against one storage driver, the way
// run wires it.
type ServerSuite struct {
	suite.Suite
	driver string

	ctx      context.Context
	closeFn  func()
	world    *world.World
	bus      *event.Bus
	roamer   *ai.RoamManager
	manager  *spawn.Manager
	validMap []int32
}

func TestServerSuite_YAML(t *testing.T) {
	suite.Run(t, &ServerSuite{driver: config.DriverYAML})
}

func TestServerSuite_SQLite(t *testing.T) {
	suite.Run(t, &ServerSuite{driver: config.DriverSQLite})
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()

	cfg := config.DefaultSpawnServer().Storage
	cfg.Driver = s.driver
	cfg.ContentDir = testContentDir
	if s.driver == config.DriverSQLite {
		cfg.SQLitePath = importSQLite(s.T(), testContentDir)
	}

	store, geometry, closeFn, err := openStorage(s.ctx, cfg)
	s.Require().NoError(err)
	s.Require().NotNil(geometry)
	s.closeFn = closeFn

	monsters, err := catalog.Load(s.ctx, store)
	s.Require().NoError(err)

	registry := spawn.NewRegistry(store, monsters)
	s.validMap, err = validateMaps(s.ctx, registry, nil)
	s.Require().NoError(err)

	s.world = world.New()
	s.bus = event.NewBus()
	s.roamer = ai.NewRoamManager(s.world, 0, 0)
	s.manager = spawn.NewManager(registry, spawn.Collaborators{
		Catalog:   monsters,
		Geometry:  geometry,
		Events:    s.bus,
		Lifecycle: s.world,
		Roamer:    s.roamer,
	}, spawn.Options{Seed: 7})
	s.roamer.SetPicker(s.manager.PickPoint)

	s.Require().NoError(s.manager.ActivateAll(s.ctx, s.validMap...))
}

func (s *ServerSuite) TearDownTest() {
	s.manager.DeactivateAll(s.ctx)
	s.closeFn()
}

func (s *ServerSuite) TestActivatesEveryValidMap() {
	s.Equal([]int32{1, 2}, s.validMap)
	s.Equal([]int32{1, 2}, s.manager.ActiveMaps())

	// Map 1: one spider, three wandering spiders, one trap. The siege gate
	// waits for its event; map 2 is entirely night-gated.
	s.Len(s.manager.ListLiveInstances(1), 5)
	s.Empty(s.manager.ListLiveInstances(2))
	s.Equal(3, s.roamer.Count())
	s.Equal(5, s.world.ObjectCount())
}

func (s *ServerSuite) TestFixedPointSpawn() {
	var found bool
	for _, h := range s.manager.ListLiveInstances(1) {
		if h.MonsterID == 305 && h.Location.X == 88 && h.Location.Y == 73 {
			found = true
		}
	}
	s.True(found, "spider at (88, 73) not spawned")
}

func (s *ServerSuite) TestWanderersStayInsideArea() {
	for _, h := range s.manager.ListLiveInstances(1) {
		if h.DefinitionID != 10 {
			continue
		}
		s.GreaterOrEqual(h.Location.X, int32(20))
		s.LessOrEqual(h.Location.X, int32(40))
		s.GreaterOrEqual(h.Location.Y, int32(50))
		s.LessOrEqual(h.Location.Y, int32(60))
		s.Equal(int32(-3500), h.Location.Z)
		s.Equal(uint16(16384), h.Location.Heading)
	}
}

func (s *ServerSuite) TestNightEventDrivesSwamp() {
	s.bus.Start("night")
	s.Len(s.manager.ListLiveInstances(2), 5)

	s.bus.End("night")
	s.Empty(s.manager.ListLiveInstances(2))
	s.Len(s.manager.ListLiveInstances(1), 5)
}

func (s *ServerSuite) TestKillSchedulesRespawn() {
	live := s.manager.ListLiveInstances(1)
	s.Require().NotEmpty(live)
	s.Require().NoError(s.world.Kill(live[0].InstanceID))

	sched, ok := s.manager.Scheduler(1)
	s.Require().True(ok)
	s.Equal(1, sched.TotalPendingRespawns())
	s.Len(s.manager.ListLiveInstances(1), 4)

	s.True(s.manager.DeactivateMap(s.ctx, 1))
	s.Zero(sched.TotalPendingRespawns())
}

func importSQLite(t *testing.T, contentDir string) string {
	t.Helper()
	ctx := context.Background()

	content, err := data.Load(contentDir)
	require.NoError(t, err)
	monsters, err := content.LoadMonsters(ctx)
	require.NoError(t, err)
	ids, err := content.MapIDs(ctx)
	require.NoError(t, err)
	spawns := make(map[int32][]*model.SpawnDefinition, len(ids))
	for _, id := range ids {
		spawns[id], err = content.LoadSpawns(ctx, id)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "spawn.db")
	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Import(ctx, monsters, spawns))
	require.NoError(t, store.Close())
	return path
}

func TestOpenStorage_YAMLRequiresContent(t *testing.T) {
	cfg := config.DefaultSpawnServer().Storage
	cfg.ContentDir = filepath.Join(t.TempDir(), "missing")

	_, _, _, err := openStorage(context.Background(), cfg)
	require.Error(t, err)
}

func TestOpenStorage_SQLiteWithoutContentIsOpenTerrain(t *testing.T) {
	cfg := config.DefaultSpawnServer().Storage
	cfg.Driver = config.DriverSQLite
	cfg.ContentDir = filepath.Join(t.TempDir(), "missing")
	cfg.SQLitePath = filepath.Join(t.TempDir(), "spawn.db")

	store, geometry, closeFn, err := openStorage(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	require.NotNil(t, store)
	require.Nil(t, geometry)

	ids, err := store.MapIDs(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestValidateMaps_KeepsValidOnes(t *testing.T) {
	ctx := context.Background()
	content, err := data.Load(testContentDir)
	require.NoError(t, err)
	monsters, err := catalog.Load(ctx, content)
	require.NoError(t, err)

	ids, err := validateMaps(ctx, spawn.NewRegistry(content, monsters), []int32{2, 1})
	require.NoError(t, err)
	require.Equal(t, []int32{2, 1}, ids)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}
