package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// schema. Returns a cleanup function that must be called after tests
// complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the run and ledger tables. Kept inline so the test
// package does not depend on the migrations package, which imports this
// one.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			run_id          TEXT PRIMARY KEY,
			dataset_id      TEXT NOT NULL,
			preset          TEXT NOT NULL,
			mode            TEXT NOT NULL,
			initial_equity  DOUBLE PRECISION NOT NULL,
			terminal_equity DOUBLE PRECISION NOT NULL,
			max_drawdown    DOUBLE PRECISION NOT NULL,
			trade_count     INTEGER NOT NULL,
			blocked_count   INTEGER NOT NULL,
			survival_score  DOUBLE PRECISION NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	require.NoError(t, err, "create simulation_runs")

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trade_ledger (
			trade_id          TEXT PRIMARY KEY,
			run_id            TEXT NOT NULL REFERENCES simulation_runs(run_id),
			step              INTEGER NOT NULL,
			asset_id          TEXT NOT NULL,
			action            TEXT NOT NULL,
			signal_timestamp  BIGINT NOT NULL,
			signal_confidence DOUBLE PRECISION NOT NULL,
			allowed           BOOLEAN NOT NULL,
			triggered_rules   TEXT[] NOT NULL DEFAULT '{}',
			rule_messages     TEXT[] NOT NULL DEFAULT '{}',
			resulting_equity  DOUBLE PRECISION NOT NULL,
			UNIQUE (run_id, step)
		)
	`)
	require.NoError(t, err, "create trade_ledger")
}
