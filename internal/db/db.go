// Package db stores monsters and spawn definitions in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/la2spawn/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a pgx connection pool and the repositories built on it.
// It serves as both the monster source and the spawn definition source.
type DB struct {
	pool     *pgxpool.Pool
	monsters *MonsterRepository
	spawns   *SpawnRepository
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return NewFromPool(pool), nil
}

// NewFromPool wraps an existing pool. Close closes the pool.
func NewFromPool(pool *pgxpool.Pool) *DB {
	return &DB{
		pool:     pool,
		monsters: NewMonsterRepository(pool),
		spawns:   NewSpawnRepository(pool),
	}
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Monsters returns the monster repository.
func (d *DB) Monsters() *MonsterRepository {
	return d.monsters
}

// Spawns returns the spawn definition repository.
func (d *DB) Spawns() *SpawnRepository {
	return d.spawns
}

// LoadMonsters implements the catalog source.
func (d *DB) LoadMonsters(ctx context.Context) ([]*model.MonsterDefinition, error) {
	return d.monsters.LoadMonsters(ctx)
}

// MapIDs implements the spawn definition source.
func (d *DB) MapIDs(ctx context.Context) ([]int32, error) {
	return d.spawns.MapIDs(ctx)
}

// LoadSpawns implements the spawn definition source.
func (d *DB) LoadSpawns(ctx context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	return d.spawns.LoadSpawns(ctx, mapID)
}
