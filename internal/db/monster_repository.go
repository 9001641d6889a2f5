package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/la2spawn/internal/model"
)

const monsterColumns = `monster_id, name, kind, move_range, attack_range, view_range,
	move_delay_ms, attack_delay_ms, respawn_delay_ms, attack_skill_id,
	res_fire, res_water, res_wind, res_earth, res_holy, res_dark`

// MonsterRepository handles monster catalog storage
type MonsterRepository struct {
	pool *pgxpool.Pool
}

// NewMonsterRepository creates a new monster repository
func NewMonsterRepository(pool *pgxpool.Pool) *MonsterRepository {
	return &MonsterRepository{pool: pool}
}

// LoadMonsters loads every monster ordered by id.
func (r *MonsterRepository) LoadMonsters(ctx context.Context) ([]*model.MonsterDefinition, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+monsterColumns+` FROM monsters ORDER BY monster_id`)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	defer rows.Close()

	monsters := make([]*model.MonsterDefinition, 0, 64)
	for rows.Next() {
		var row MonsterRow
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
func (r *MonsterRepository) CreateMonster(ctx context.Context, m *model.MonsterDefinition) error {
	return r.createTx(ctx, r.pool, m)
}

func (r *MonsterRepository) createTx(ctx context.Context, q querier, m *model.MonsterDefinition) error {
	row := NewMonsterRow(m)
	res := row.Resistances
	_, err := q.Exec(ctx,
		`INSERT INTO monsters (`+monsterColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		row.MonsterID, row.Name, row.Kind, row.MoveRange, row.AttackRange, row.ViewRange,
		row.MoveDelayMs, row.AttackDelayMs, row.RespawnDelayMs, row.AttackSkillID,
		res.Fire, res.Water, res.Wind, res.Earth, res.Holy, res.Dark,
	)
	if err != nil {
		return fmt.Errorf("creating monster %d: %w", m.ID(), err)
	}
	return nil
}

// DeleteAllTx removes every monster inside tx.
func (r *MonsterRepository) DeleteAllTx(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM monsters`); err != nil {
		return fmt.Errorf("deleting monsters: %w", err)
	}
	return nil
}

// CreateTx inserts a monster inside tx.
func (r *MonsterRepository) CreateTx(ctx context.Context, tx pgx.Tx, m *model.MonsterDefinition) error {
	return r.createTx(ctx, tx, m)
}
