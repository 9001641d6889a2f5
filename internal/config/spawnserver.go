package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/la2spawn/internal/event"
)

// Storage drivers.
const (
	DriverYAML     = "yaml"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects where monsters and spawn definitions come from.
type StorageConfig struct {
	Driver     string         `yaml:"driver" env:"DRIVER"`
	ContentDir string         `yaml:"content_dir" env:"CONTENT_DIR"`
	SQLitePath string         `yaml:"sqlite_path" env:"SQLITE_PATH"`
	Database   DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
}

// SpawnConfig tunes the spawn engine.
type SpawnConfig struct {
	RespawnJitter     time.Duration `yaml:"respawn_jitter" env:"RESPAWN_JITTER"`
	PlacementRetries  int           `yaml:"placement_retries" env:"PLACEMENT_RETRIES"`
	Maps              []int32       `yaml:"maps" env:"MAPS"` // empty = every known map
	ActivationWorkers int           `yaml:"activation_workers" env:"ACTIVATION_WORKERS"`
}

// AIConfig tunes roaming of wandering instances.
type AIConfig struct {
	RoamInterval time.Duration `yaml:"roam_interval" env:"ROAM_INTERVAL"`
	RoamChance   float64       `yaml:"roam_chance" env:"ROAM_CHANCE"`
}

// TelemetryConfig enables OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// SpawnServer holds all configuration for the spawn server.
// Every section except Events can be overridden from the environment.
type SpawnServer struct {
	LogLevel  string          `yaml:"log_level"`
	Storage   StorageConfig   `yaml:"storage"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	AI        AIConfig        `yaml:"ai"`
	Events    []event.Cycle   `yaml:"events"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefaultSpawnServer returns SpawnServer config with sensible defaults.
func DefaultSpawnServer() SpawnServer {
	return SpawnServer{
		LogLevel: "info",
		Storage: StorageConfig{
			Driver:     DriverYAML,
			ContentDir: "content",
			SQLitePath: "data/la2spawn.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "la2spawn",
				Password: "la2spawn",
				DBName:   "la2spawn",
				SSLMode:  "disable",
			},
		},
		Spawn: SpawnConfig{
			PlacementRetries:  10,
			ActivationWorkers: 4,
		},
		AI: AIConfig{
			RoamInterval: 5 * time.Second,
			RoamChance:   0.3,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "la2spawn",
		},
	}
}

// LoadSpawnServer loads spawn server config from a YAML file and applies
// LA2SPAWN_* environment overrides. If the file doesn't exist, defaults
// are used.
func LoadSpawnServer(path string) (SpawnServer, error) {
	cfg := DefaultSpawnServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *SpawnServer) error {
	top := struct {
		LogLevel string `env:"LOG_LEVEL"`
	}{LogLevel: cfg.LogLevel}

	sections := []struct {
		prefix string
		target any
	}{
		{EnvPrefix, &top},
		{EnvPrefix + "STORAGE_", &cfg.Storage},
		{EnvPrefix + "SPAWN_", &cfg.Spawn},
		{EnvPrefix + "AI_", &cfg.AI},
		{EnvPrefix + "TELEMETRY_", &cfg.Telemetry},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: s.prefix}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	cfg.LogLevel = top.LogLevel
	return nil
}

// Validate reports every invalid field.
func (c SpawnServer) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverYAML:
		if c.Storage.ContentDir == "" {
			errs = append(errs, errors.New("storage.content_dir is required for the yaml driver"))
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	case DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Spawn.RespawnJitter < 0 {
		errs = append(errs, errors.New("spawn.respawn_jitter must not be negative"))
	}
	if c.Spawn.PlacementRetries < 0 {
		errs = append(errs, errors.New("spawn.placement_retries must not be negative"))
	}
	if c.Spawn.ActivationWorkers < 0 {
		errs = append(errs, errors.New("spawn.activation_workers must not be negative"))
	}
	if c.AI.RoamChance < 0 || c.AI.RoamChance > 1 {
		errs = append(errs, fmt.Errorf("ai.roam_chance %v outside [0, 1]", c.AI.RoamChance))
	}
	for _, cycle := range c.Events {
		if err := cycle.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
