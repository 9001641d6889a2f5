package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/la2spawn/internal/model"
)

// SpawnRepository handles spawn definition storage
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a new spawn repository
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

// MapIDs returns ids of maps that have at least one spawn definition.
func (r *SpawnRepository) MapIDs(ctx context.Context) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT map_id FROM spawn_definitions ORDER BY map_id`)
	if err != nil {
		return nil, fmt.Errorf("loading map ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("scanning map ids: %w", err)
	}
	return ids, nil
}

// LoadSpawns loads the definitions of a map in declaration order.
func (r *SpawnRepository) LoadSpawns(ctx context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	query := `
		SELECT map_id, spawn_id, monster_id, x_min, x_max, y_min, y_max, z,
		       quantity, direction, trigger_kind, event_gate, note
		FROM spawn_definitions
		WHERE map_id = $1
		ORDER BY ordinal, spawn_id
	`

	rows, err := r.pool.Query(ctx, query, mapID)
	if err != nil {
		return nil, fmt.Errorf("loading spawns of map %d: %w", mapID, err)
	}
	defer rows.Close()

	defs := make([]*model.SpawnDefinition, 0, 32)
	for rows.Next() {
		var row SpawnRow
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
func (r *SpawnRepository) CreateSpawn(ctx context.Context, def *model.SpawnDefinition) error {
	return r.createTx(ctx, r.pool, def)
}

// CreateTx appends a definition inside tx.
func (r *SpawnRepository) CreateTx(ctx context.Context, tx pgx.Tx, def *model.SpawnDefinition) error {
	return r.createTx(ctx, tx, def)
}

func (r *SpawnRepository) createTx(ctx context.Context, q querier, def *model.SpawnDefinition) error {
	query := `
		INSERT INTO spawn_definitions (
			map_id, spawn_id, ordinal, monster_id, x_min, x_max, y_min, y_max, z,
			quantity, direction, trigger_kind, event_gate, note)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(ordinal), 0) + 1 FROM spawn_definitions WHERE map_id = $1),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	row := NewSpawnRow(def)
	_, err := q.Exec(ctx, query,
		row.MapID, row.SpawnID, row.MonsterID,
		row.XMin, row.XMax, row.YMin, row.YMax, row.Z,
		row.Quantity, row.Direction, row.Trigger, row.EventGate, row.Note,
	)
	if err != nil {
		return fmt.Errorf("creating spawn %d of map %d: %w", def.ID(), def.MapID(), err)
	}
	return nil
}

// DeleteMapTx removes every definition of a map inside tx.
func (r *SpawnRepository) DeleteMapTx(ctx context.Context, tx pgx.Tx, mapID int32) error {
	if _, err := tx.Exec(ctx, `DELETE FROM spawn_definitions WHERE map_id = $1`, mapID); err != nil {
		return fmt.Errorf("deleting spawns of map %d: %w", mapID, err)
	}
	return nil
}
