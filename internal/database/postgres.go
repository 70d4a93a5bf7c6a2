package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/config"
)

// ErrSchemaMissing means the kv_store table does not exist yet.
var ErrSchemaMissing = errors.New("kv_store table missing, run `migrate up` first")

// applicationName shows up in pg_stat_activity.
const applicationName = "lms-admin-mock"

// NewPostgresPool connects the pool behind PostgresStorage and checks that
// the kv_store migration has been applied.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := checkSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxDBConns).
		Msg("PostgreSQL storage connected")

	return pool, nil
}

// checkSchema doubles as the connectivity ping.
func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT to_regclass('kv_store') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if !exists {
		return ErrSchemaMissing
	}
	return nil
}
