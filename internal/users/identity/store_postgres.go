// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/database/schema"
	"github.com/zlovtnik/iead-sub004/internal/platform/dberr"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

// PostgresRepository implements [Repository] on the users.account table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var selectUser = fmt.Sprintf(`SELECT %s FROM %s`,
	strings.Join(schema.UserAccount.Columns(), ", "), schema.UserAccount.Table)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.FailedLogins,
		&user.PasswordResetRequired,
		&user.LastLoginAt,
		&user.MemberID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (repository *PostgresRepository) findOne(ctx context.Context, action, where string, arg any) (*User, error) {
	user, err := scanUser(repository.pool.QueryRow(ctx, selectUser+" WHERE "+where, arg))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err)
	}
	return user, nil
}

/*
FindByID retrieves a user by primary key.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return repository.findOne(ctx, "find_by_id", schema.UserAccount.ID+" = $1", id)
}

// FindByUsername matches usernames case-insensitively.
func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findOne(ctx, "find_by_username", fmt.Sprintf("lower(%s) = lower($1)", schema.UserAccount.Username), username)
}

/*
Create persists a new account.

Description: The database assigns the identifier and timestamps; unique
violations on username or email surface as apperr.Conflict.

Returns:
  - error: apperr.Conflict or database errors
*/
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	account := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s`,
		account.Table,
		account.Username, account.Email, account.Password, account.Role,
		account.IsActive, account.PasswordResetRequired, account.MemberID,
		account.ID, account.CreatedAt, account.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.PasswordResetRequired,
		user.MemberID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "User")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// update applies "SET <set>, updatedat = NOW()" to one row.
func (repository *PostgresRepository) update(ctx context.Context, action string, id int64, set string, args ...any) error {
	query := fmt.Sprintf(`UPDATE %s SET %s, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, set, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

func (repository *PostgresRepository) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	set := fmt.Sprintf("%s = 0, %s = $2", schema.UserAccount.FailedLogins, schema.UserAccount.LastLoginAt)
	return repository.update(ctx, "login_success", id, set, at)
}

func (repository *PostgresRepository) RecordLoginFailure(ctx context.Context, id int64) error {
	set := fmt.Sprintf("%[1]s = %[1]s + 1", schema.UserAccount.FailedLogins)
	return repository.update(ctx, "login_failure", id, set)
}

func (repository *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	set := fmt.Sprintf("%s = $2, %s = FALSE", schema.UserAccount.Password, schema.UserAccount.PasswordResetRequired)
	return repository.update(ctx, "update_password", id, set, passwordHash)
}

func (repository *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return repository.update(ctx, "set_active", id, schema.UserAccount.IsActive+" = $2", active)
}

// List pages through accounts by ascending ID.
func (repository *PostgresRepository) List(ctx context.Context, page pagination.Params) ([]*User, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.UserAccount.Table)
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`%s ORDER BY %s ASC LIMIT $1 OFFSET $2`, selectUser, schema.UserAccount.ID)
	rows, err := repository.pool.Query(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, page.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, total, nil
}
