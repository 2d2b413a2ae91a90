// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package session

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/postgres/pgtest"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/pkg/uuidv7"
)

func insertAccount(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users.account (username, email, passwordhash) VALUES ($1, $2, 'x') RETURNING id`,
		username, username+"@example.org",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func newPostgresSession(t *testing.T, store *PostgresStore, userID int64, token string, expiresAt time.Time) *Session {
	t.Helper()

	created := &Session{
		ID:        uuidv7.New(),
		UserID:    userID,
		TokenHash: sec.HashToken(token),
		IPAddress: "10.0.0.1",
		CreatedAt: expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
		IsValid:   true,
	}
	require.NoError(t, store.Create(context.Background(), created))
	return created
}

/*
TestPostgresStore_Lifecycle covers create, lookup, duplicate hashes and
single-session invalidation against a real database.
*/
func TestPostgresStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Open(t)
	store := NewPostgresStore(pool)
	userID := insertAccount(t, pool, "ruth")

	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	created := newPostgresSession(t, store, userID, "token-a", expiresAt)

	found, err := store.FindByTokenHash(ctx, created.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, userID, found.UserID)
	assert.True(t, found.IsValid)
	assert.True(t, expiresAt.Equal(found.ExpiresAt))

	duplicate := *created
	duplicate.ID = uuidv7.New()
	assert.ErrorIs(t, store.Create(ctx, &duplicate), ErrDuplicateToken)

	_, err = store.FindByTokenHash(ctx, sec.HashToken("unknown"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Invalidate(ctx, created.TokenHash))
	require.NoError(t, store.Invalidate(ctx, sec.HashToken("unknown")))

	found, err = store.FindByTokenHash(ctx, created.TokenHash)
	require.NoError(t, err)
	assert.False(t, found.IsValid)
}

/*
TestPostgresStore_InvalidateAllForUser leaves other users' sessions alone.
*/
func TestPostgresStore_InvalidateAllForUser(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Open(t)
	store := NewPostgresStore(pool)

	ruth := insertAccount(t, pool, "ruth")
	boaz := insertAccount(t, pool, "boaz")
	expiresAt := time.Now().Add(time.Hour)

	laptop := newPostgresSession(t, store, ruth, "ruth-laptop", expiresAt)
	phone := newPostgresSession(t, store, ruth, "ruth-phone", expiresAt)
	other := newPostgresSession(t, store, boaz, "boaz-laptop", expiresAt)

	require.NoError(t, store.InvalidateAllForUser(ctx, ruth))

	for _, hash := range []string{laptop.TokenHash, phone.TokenHash} {
		found, err := store.FindByTokenHash(ctx, hash)
		require.NoError(t, err)
		assert.False(t, found.IsValid)
	}

	found, err := store.FindByTokenHash(ctx, other.TokenHash)
	require.NoError(t, err)
	assert.True(t, found.IsValid)

	var invalidated int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM users.session WHERE invalidatedat IS NOT NULL`).Scan(&invalidated))
	assert.Equal(t, 2, invalidated)
}

/*
TestPostgresStore_DeleteExpired removes only rows whose expiry has passed.
*/
func TestPostgresStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Open(t)
	store := NewPostgresStore(pool)
	userID := insertAccount(t, pool, "ruth")

	now := time.Now()
	stale := newPostgresSession(t, store, userID, "stale", now.Add(-time.Minute))
	fresh := newPostgresSession(t, store, userID, "fresh", now.Add(time.Hour))

	removed, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.FindByTokenHash(ctx, stale.TokenHash)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByTokenHash(ctx, fresh.TokenHash)
	assert.NoError(t, err)
}

/*
TestPostgresStore_Manager runs the manager over the Postgres store, so
expiry and invalidation behave as with the memory store.
*/
func TestPostgresStore_Manager(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Open(t)
	userID := insertAccount(t, pool, "ruth")

	clock := newFakeClock()
	manager := newTestManager(NewPostgresStore(pool), clock)

	created, err := manager.Create(ctx, userID, Metadata{UserAgent: "test", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	_, err = manager.Validate(ctx, created.Token)
	require.NoError(t, err)

	require.NoError(t, manager.Invalidate(ctx, created.Token))
	_, err = manager.Validate(ctx, created.Token)
	assert.ErrorIs(t, err, ErrInvalid)
}
