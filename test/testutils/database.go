// Package testutils provides shared test infrastructure: a disposable
// Postgres container for repository tests, and fixture factories for
// the domain types.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dinnerarbiter/core/internal/infrastructure/persistence/postgres"
)

// DatabaseConfig holds test database configuration.
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultDatabaseConfig returns the default test database configuration.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "dinner_arbiter_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// TestDatabase wraps a disposable Postgres container and its pool,
// already migrated with the production schema.
type TestDatabase struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DSN       string
	t         *testing.T
}

// SetupTestDatabase starts a Postgres container, applies the schema,
// and registers cleanup on t.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			ExposedPorts: []string{cfg.Port + "/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       cfg.Database,
				"POSTGRES_USER":     cfg.Username,
				"POSTGRES_PASSWORD": cfg.Password,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port(cfg.Port))
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, host, port.Port(), cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err, "failed to parse pgx config")
	poolCfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err, "failed to create pgx pool")

	cm := postgres.NewConnectionManagerFromPool(pool)
	require.NoError(t, cm.Migrate(ctx), "failed to apply schema")

	testDB := &TestDatabase{Container: container, Pool: pool, DSN: dsn, t: t}
	t.Cleanup(testDB.Cleanup)
	return testDB
}

// TruncateAll clears every table between tests without tearing down
// the container.
func (td *TestDatabase) TruncateAll(ctx context.Context) error {
	tables := []string{
		"receipt_line_items", "receipt_imports", "taste_meal_scores",
		"taste_signals", "decision_events", "inventory_items",
		"meal_ingredients", "meals", "households",
	}
	for _, table := range tables {
		if _, err := td.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func (td *TestDatabase) Cleanup() {
	ctx := context.Background()
	if td.Pool != nil {
		td.Pool.Close()
	}
	if td.Container != nil {
		if err := td.Container.Terminate(ctx); err != nil {
			td.t.Logf("failed to terminate postgres container: %v", err)
		}
	}
}
