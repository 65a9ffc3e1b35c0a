package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/task-management/internal"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "task-management-analytics"

// BuildPoolConfig builds a pgxpool config whose sessions default to
// read-only transactions.
func BuildPoolConfig(cfg internal.AnalyticsDatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("analytics: parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	poolCfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	return poolCfg, nil
}

// NewPool creates the analytics pool. Connections are opened lazily, so an
// unreachable database surfaces on the first query rather than at startup.
func NewPool(ctx context.Context, cfg internal.AnalyticsDatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("analytics: create pool: %w", err)
	}

	return pool, nil
}
