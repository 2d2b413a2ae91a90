// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package pgtest opens a migrated PostgreSQL pool for integration tests.

Tests using it are skipped unless TEST_DATABASE_URL points at a disposable
database. Every package truncates the same tables, so run them with -p 1:

	TEST_DATABASE_URL=postgres://... go test -p 1 ./...
*/
package pgtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/database/schema"
	"github.com/zlovtnik/iead-sub004/internal/platform/migration"
	"github.com/zlovtnik/iead-sub004/internal/platform/postgres"
)

// EnvDSN names the variable holding the test database DSN.
const EnvDSN = "TEST_DATABASE_URL"

// Open migrates the test database, empties the users tables and returns a
// pool that is closed when the test ends.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	require.NoError(t, migration.RunUp(dsn, migrationsDir(t), logger))

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	truncate := fmt.Sprintf(`TRUNCATE %s, %s RESTART IDENTITY CASCADE`, schema.UserSession.Table, schema.UserAccount.Table)
	_, err = pool.Exec(ctx, truncate)
	require.NoError(t, err)

	return pool
}

// migrationsDir resolves data/migrations from this file's location, so the
// path holds whichever package directory the test runs in.
func migrationsDir(t testing.TB) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "migrations")
}
