// Package postgres provides the pgx-based Postgres adapters for every
// outbound repository interface. Each adapter implements the same
// contract as its internal/infrastructure/persistence/memory sibling, so
// application code and its tests never depend on which one is wired.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
)

// ConnectionManager owns the pgx connection pool, sized from
// config.DatabaseConfig, and the household/meal/inventory/event/taste/
// receipt adapters all share it.
type ConnectionManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewConnectionManager opens a pooled connection and pings it once
// before returning, so startup fails fast on a bad DSN rather than on
// the first query.
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("connected to postgres",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)

	return &ConnectionManager{pool: pool, logger: log.Named("postgres")}, nil
}

// NewConnectionManagerFromPool wraps an already-open pool — used by
// tests that build the pool against a testcontainers-managed Postgres
// instance rather than through config.Config.
func NewConnectionManagerFromPool(pool *pgxpool.Pool) *ConnectionManager {
	return &ConnectionManager{pool: pool, logger: zap.NewNop()}
}

// Pool returns the shared pgx pool every adapter queries against.
func (cm *ConnectionManager) Pool() *pgxpool.Pool {
	return cm.pool
}

// Migrate applies the schema, idempotently (every statement is
// CREATE ... IF NOT EXISTS).
func (cm *ConnectionManager) Migrate(ctx context.Context) error {
	if _, err := cm.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping is the liveness probe /healthz calls.
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	return cm.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (cm *ConnectionManager) Close() {
	cm.pool.Close()
}
