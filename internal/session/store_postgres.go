// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zlovtnik/iead-sub004/internal/platform/database/schema"
	"github.com/zlovtnik/iead-sub004/internal/platform/dberr"
)

// PostgresStore keeps sessions in the users.session table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var sessionColumns = strings.Join(schema.UserSession.Columns(), ", ")

/*
Create inserts a session row.

Returns:
  - error: ErrDuplicateToken on a tokenhash unique violation, or database errors
*/
func (store *PostgresStore) Create(ctx context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.UserSession.Table, sessionColumns,
	)

	_, err := store.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.IsValid,
		session.CreatedAt,
		session.ExpiresAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("postgres_session_create_failed: %w", err)
	}

	return nil
}

func (store *PostgresStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		sessionColumns, schema.UserSession.Table, schema.UserSession.TokenHash,
	)

	session := &Session{}
	err := store.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.IsValid,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres_session_find_failed: %w", err)
	}

	return session, nil
}

// invalidateWhere flips every still-valid row matching column = value.
func (store *PostgresStore) invalidateWhere(ctx context.Context, column string, value any) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = FALSE, %s = NOW()
		WHERE %s = $1 AND %s`,
		schema.UserSession.Table,
		schema.UserSession.IsValid, schema.UserSession.InvalidatedAt,
		column, schema.UserSession.IsValid,
	)

	_, err := store.pool.Exec(ctx, query, value)
	return err
}

func (store *PostgresStore) Invalidate(ctx context.Context, tokenHash string) error {
	if err := store.invalidateWhere(ctx, schema.UserSession.TokenHash, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_invalidate_failed: %w", err)
	}
	return nil
}

func (store *PostgresStore) InvalidateAllForUser(ctx context.Context, userID int64) error {
	if err := store.invalidateWhere(ctx, schema.UserSession.UserID, userID); err != nil {
		return fmt.Errorf("postgres_session_invalidate_all_failed: %w", err)
	}
	return nil
}

func (store *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, schema.UserSession.Table, schema.UserSession.ExpiresAt)

	tag, err := store.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_expired_failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
