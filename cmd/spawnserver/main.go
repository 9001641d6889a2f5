package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2spawn/internal/ai"
	"github.com/udisondev/la2spawn/internal/catalog"
	"github.com/udisondev/la2spawn/internal/config"
	"github.com/udisondev/la2spawn/internal/data"
	"github.com/udisondev/la2spawn/internal/db"
	"github.com/udisondev/la2spawn/internal/db/sqlite"
	"github.com/udisondev/la2spawn/internal/event"
	"github.com/udisondev/la2spawn/internal/spawn"
	"github.com/udisondev/la2spawn/internal/telemetry"
	"github.com/udisondev/la2spawn/internal/world"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// storage is what the server needs from a backend.
type storage interface {
	catalog.Source
	spawn.DefinitionSource
}

func run(ctx context.Context) error {
	cfgPath, err := config.Path()
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.LoadSpawnServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("la2spawn starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"driver", cfg.Storage.Driver)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()

	store, geometry, closeStore, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	monsters, err := catalog.Load(ctx, store)
	if err != nil {
		return err
	}

	registry := spawn.NewRegistry(store, monsters)
	mapIDs, err := validateMaps(ctx, registry, cfg.Spawn.Maps)
	if err != nil {
		// Invalid maps stay inactive; the rest of the world still runs.
		slog.Warn("spawn configuration has errors", "error", err)
	}

	w := world.New()
	bus := event.NewBus()
	roamer := ai.NewRoamManager(w, cfg.AI.RoamInterval, cfg.AI.RoamChance)

	mgr := spawn.NewManager(registry, spawn.Collaborators{
		Catalog:   monsters,
		Geometry:  geometry,
		Events:    bus,
		Lifecycle: w,
		Roamer:    roamer,
	}, spawn.Options{
		RespawnJitter:     cfg.Spawn.RespawnJitter,
		PlacementRetries:  cfg.Spawn.PlacementRetries,
		ActivationWorkers: cfg.Spawn.ActivationWorkers,
	})
	roamer.SetPicker(mgr.PickPoint)

	if len(mapIDs) > 0 {
		if err := mgr.ActivateAll(ctx, mapIDs...); err != nil {
			slog.Warn("some maps failed to activate", "error", err)
		}
	}
	defer mgr.DeactivateAll(context.Background())

	slog.Info("spawn engine ready",
		"maps", len(mgr.ActiveMaps()),
		"world_objects", w.ObjectCount(),
		"wanderers", roamer.Count())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting roam loop", "interval", cfg.AI.RoamInterval)
		if err := roamer.Start(gctx); err != nil {
			return fmt.Errorf("roam loop: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if len(cfg.Events) == 0 {
			return nil
		}
		slog.Info("starting event cycles", "count", len(cfg.Events))
		if err := event.RunCycles(gctx, bus, cfg.Events); err != nil {
			return fmt.Errorf("event cycles: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openStorage opens the configured backend. Geometry always comes from the
// content directory; SQL backends without one run on open terrain.
func openStorage(ctx context.Context, cfg config.StorageConfig) (storage, spawn.Geometry, func(), error) {
	var geometry spawn.Geometry
	content, err := data.Load(cfg.ContentDir)
	switch {
	case err == nil:
		geometry = content.Atlas()
	case cfg.Driver == config.DriverYAML:
		return nil, nil, nil, fmt.Errorf("loading content: %w", err)
	default:
		slog.Warn("no content directory, placement ignores geometry",
			"dir", cfg.ContentDir, "error", err)
	}

	switch cfg.Driver {
	case config.DriverYAML:
		return content, geometry, func() {}, nil

	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")
		return database, geometry, database.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("sqlite opened", "path", cfg.SQLitePath)
		return store, geometry, func() {
			if err := store.Close(); err != nil {
				slog.Warn("closing sqlite", "error", err)
			}
		}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// validateMaps loads and validates the requested maps, or every known map
// when none are configured, and returns the ones that passed.
func validateMaps(ctx context.Context, registry *spawn.Registry, requested []int32) ([]int32, error) {
	if len(requested) == 0 {
		return registry.LoadAll(ctx)
	}

	var (
		ok   []int32
		errs []error
	)
	for _, id := range requested {
		if _, err := registry.Load(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		ok = append(ok, id)
	}
	return ok, errors.Join(errs...)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
