package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LA2SPAWN_"

// DefaultPath is used when LA2SPAWN_CONFIG is unset.
const DefaultPath = "config/spawnserver.yaml"

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"DBNAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type pathEnv struct {
	Path string `env:"CONFIG" envDefault:"config/spawnserver.yaml"`
}

// Path returns the config file path from LA2SPAWN_CONFIG.
func Path() (string, error) {
	var p pathEnv
	if err := env.ParseWithOptions(&p, env.Options{Prefix: EnvPrefix}); err != nil {
		return "", fmt.Errorf("parse env: %w", err)
	}
	return p.Path, nil
}
