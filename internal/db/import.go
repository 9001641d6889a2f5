package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/la2spawn/internal/model"
)

// Import replaces the monster catalog and the definitions of every map in
// spawns within a single transaction: either all content is stored or none.
// Maps not present in spawns are left untouched.
func (d *DB) Import(ctx context.Context, monsters []*model.MonsterDefinition, spawns map[int32][]*model.SpawnDefinition) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if err := d.monsters.DeleteAllTx(ctx, tx); err != nil {
		return err
	}
	for _, m := range monsters {
		if err := d.monsters.CreateTx(ctx, tx, m); err != nil {
			return err
		}
	}

	count := 0
	for mapID, defs := range spawns {
		if err := d.spawns.DeleteMapTx(ctx, tx, mapID); err != nil {
			return err
		}
		for _, def := range defs {
			if err := d.spawns.CreateTx(ctx, tx, def); err != nil {
				return err
			}
		}
		count += len(defs)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}

	slog.Info("content imported",
		"monsters", len(monsters),
		"maps", len(spawns),
		"spawns", count)
	return nil
}
