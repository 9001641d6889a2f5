// Package sqlite provides a SQLite-backed store for monsters and spawn
// definitions with the same contract as the PostgreSQL store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/udisondev/la2spawn/internal/db"
	"github.com/udisondev/la2spawn/internal/model"
)

// Store persists content in a SQLite file.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := db.Migrate(ctx, sqlDB, db.DialectSQLite); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadMonsters loads every monster ordered by id.
func (s *Store) LoadMonsters(ctx context.Context) ([]*model.MonsterDefinition, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT monster_id, name, kind, move_range, attack_range, view_range,
		       move_delay_ms, attack_delay_ms, respawn_delay_ms, attack_skill_id,
		       res_fire, res_water, res_wind, res_earth, res_holy, res_dark
		FROM monsters ORDER BY monster_id`)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	defer rows.Close()

	var monsters []*model.MonsterDefinition
	for rows.Next() {
		var row db.MonsterRow
		res := &row.Resistances
		if err := rows.Scan(
			&row.MonsterID, &row.Name, &row.Kind, &row.MoveRange, &row.AttackRange, &row.ViewRange,
			&row.MoveDelayMs, &row.AttackDelayMs, &row.RespawnDelayMs, &row.AttackSkillID,
			&res.Fire, &res.Water, &res.Wind, &res.Earth, &res.Holy, &res.Dark,
		); err != nil {
			return nil, fmt.Errorf("scanning monster row: %w", err)
		}
		m, err := row.Monster()
		if err != nil {
			return nil, err
		}
		monsters = append(monsters, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monster rows: %w", err)
	}
	return monsters, nil
}

// CreateMonster inserts a monster definition.
func (s *Store) CreateMonster(ctx context.Context, m *model.MonsterDefinition) error {
	return createMonster(ctx, s.sqlDB, m)
}

func createMonster(ctx context.Context, e execer, m *model.MonsterDefinition) error {
	row := db.NewMonsterRow(m)
	res := row.Resistances
	_, err := e.ExecContext(ctx, `
		INSERT INTO monsters (monster_id, name, kind, move_range, attack_range, view_range,
			move_delay_ms, attack_delay_ms, respawn_delay_ms, attack_skill_id,
			res_fire, res_water, res_wind, res_earth, res_holy, res_dark)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.MonsterID, row.Name, row.Kind, row.MoveRange, row.AttackRange, row.ViewRange,
		row.MoveDelayMs, row.AttackDelayMs, row.RespawnDelayMs, row.AttackSkillID,
		res.Fire, res.Water, res.Wind, res.Earth, res.Holy, res.Dark,
	)
	if err != nil {
		return fmt.Errorf("creating monster %d: %w", m.ID(), err)
	}
	return nil
}

// MapIDs returns ids of maps that have at least one spawn definition.
func (s *Store) MapIDs(ctx context.Context) ([]int32, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT map_id FROM spawn_definitions ORDER BY map_id`)
	if err != nil {
		return nil, fmt.Errorf("loading map ids: %w", err)
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning map id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating map ids: %w", err)
	}
	return ids, nil
}

// LoadSpawns loads the definitions of a map in declaration order.
func (s *Store) LoadSpawns(ctx context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT map_id, spawn_id, monster_id, x_min, x_max, y_min, y_max, z,
		       quantity, direction, trigger_kind, event_gate, note
		FROM spawn_definitions
		WHERE map_id = ?
		ORDER BY ordinal, spawn_id`, mapID)
	if err != nil {
		return nil, fmt.Errorf("loading spawns of map %d: %w", mapID, err)
	}
	defer rows.Close()

	var defs []*model.SpawnDefinition
	for rows.Next() {
		var row db.SpawnRow
		if err := rows.Scan(
			&row.MapID, &row.SpawnID, &row.MonsterID,
			&row.XMin, &row.XMax, &row.YMin, &row.YMax, &row.Z,
			&row.Quantity, &row.Direction, &row.Trigger, &row.EventGate, &row.Note,
		); err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		def, err := row.Spawn()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}
	return defs, nil
}

// CreateSpawn appends a definition to the end of its map.
func (s *Store) CreateSpawn(ctx context.Context, def *model.SpawnDefinition) error {
	return createSpawn(ctx, s.sqlDB, def)
}

func createSpawn(ctx context.Context, e execer, def *model.SpawnDefinition) error {
	row := db.NewSpawnRow(def)
	_, err := e.ExecContext(ctx, `
		INSERT INTO spawn_definitions (
			map_id, spawn_id, ordinal, monster_id, x_min, x_max, y_min, y_max, z,
			quantity, direction, trigger_kind, event_gate, note)
		VALUES (?1, ?2,
			(SELECT COALESCE(MAX(ordinal), 0) + 1 FROM spawn_definitions WHERE map_id = ?1),
			?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13)`,
		row.MapID, row.SpawnID, row.MonsterID,
		row.XMin, row.XMax, row.YMin, row.YMax, row.Z,
		row.Quantity, row.Direction, row.Trigger, row.EventGate, row.Note,
	)
	if err != nil {
		return fmt.Errorf("creating spawn %d of map %d: %w", def.ID(), def.MapID(), err)
	}
	return nil
}

// Import replaces the monster catalog and the definitions of every map in
// spawns within a single transaction.
func (s *Store) Import(ctx context.Context, monsters []*model.MonsterDefinition, spawns map[int32][]*model.SpawnDefinition) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monsters`); err != nil {
		return fmt.Errorf("deleting monsters: %w", err)
	}
	for _, m := range monsters {
		if err := createMonster(ctx, tx, m); err != nil {
			return err
		}
	}

	count := 0
	for mapID, defs := range spawns {
		if _, err := tx.ExecContext(ctx, `DELETE FROM spawn_definitions WHERE map_id = ?`, mapID); err != nil {
			return fmt.Errorf("deleting spawns of map %d: %w", mapID, err)
		}
		for _, def := range defs {
			if err := createSpawn(ctx, tx, def); err != nil {
				return err
			}
		}
		count += len(defs)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}

	slog.Info("content imported",
		"monsters", len(monsters),
		"maps", len(spawns),
		"spawns", count)
	return nil
}
