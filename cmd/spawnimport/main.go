// Imports YAML spawn content into a SQL store.
//
// Usage:
//
//	go run ./cmd/spawnimport -content content -driver postgres
//	go run ./cmd/spawnimport -content content -driver sqlite -sqlite data/la2spawn.db
//
// Postgres connection settings come from the spawn server config
// (LA2SPAWN_CONFIG, LA2SPAWN_STORAGE_DATABASE_*) unless -dsn is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/la2spawn/internal/config"
	"github.com/udisondev/la2spawn/internal/data"
	"github.com/udisondev/la2spawn/internal/db"
	"github.com/udisondev/la2spawn/internal/db/sqlite"
	"github.com/udisondev/la2spawn/internal/model"
)

type options struct {
	contentDir string
	driver     string
	sqlitePath string
	dsn        string
}

func main() {
	var opts options
	flag.StringVar(&opts.contentDir, "content", "content", "content directory with monsters.yaml and maps/")
	flag.StringVar(&opts.driver, "driver", config.DriverPostgres, "target store: postgres or sqlite")
	flag.StringVar(&opts.sqlitePath, "sqlite", "", "sqlite database path (default from config)")
	flag.StringVar(&opts.dsn, "dsn", "", "postgres DSN (default from config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type importer interface {
	Import(ctx context.Context, monsters []*model.MonsterDefinition, spawns map[int32][]*model.SpawnDefinition) error
}

func run(ctx context.Context, opts options) error {
	content, err := data.Load(opts.contentDir)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	monsters, err := content.LoadMonsters(ctx)
	if err != nil {
		return err
	}
	mapIDs, err := content.MapIDs(ctx)
	if err != nil {
		return err
	}
	spawns := make(map[int32][]*model.SpawnDefinition, len(mapIDs))
	total := 0
	for _, id := range mapIDs {
		defs, err := content.LoadSpawns(ctx, id)
		if err != nil {
			return fmt.Errorf("map %d: %w", id, err)
		}
		spawns[id] = defs
		total += len(defs)
	}

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadSpawnServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var target importer
	switch opts.driver {
	case config.DriverPostgres:
		dsn := opts.dsn
		if dsn == "" {
			dsn = cfg.Storage.Database.DSN()
		}
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		target = database

	case config.DriverSQLite:
		path := opts.sqlitePath
		if path == "" {
			path = cfg.Storage.SQLitePath
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return err
		}
		defer store.Close()
		target = store

	default:
		return fmt.Errorf("unknown driver %q", opts.driver)
	}

	if err := target.Import(ctx, monsters, spawns); err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	slog.Info("content imported",
		"driver", opts.driver,
		"monsters", len(monsters),
		"maps", len(mapIDs),
		"spawns", total)
	return nil
}
