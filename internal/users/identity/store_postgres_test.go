// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/postgres/pgtest"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/users/identity"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

func newPostgresRepository(t *testing.T, usernames ...string) (*identity.PostgresRepository, []*identity.User) {
	t.Helper()

	repository := identity.NewPostgresRepository(pgtest.Open(t))

	users := make([]*identity.User, 0, len(usernames))
	for _, username := range usernames {
		user := &identity.User{
			Username:     username,
			Email:        username + "@example.org",
			PasswordHash: "hash",
			Role:         sec.RoleMember,
			IsActive:     true,
		}
		require.NoError(t, repository.Create(context.Background(), user))
		users = append(users, user)
	}
	return repository, users
}

/*
TestPostgresRepository_CreateAndFind checks generated fields, case-insensitive
lookup and the unique indexes.
*/
func TestPostgresRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repository, users := newPostgresRepository(t, "martha")
	martha := users[0]

	assert.NotZero(t, martha.ID)
	assert.False(t, martha.CreatedAt.IsZero())

	found, err := repository.FindByUsername(ctx, "MARTHA")
	require.NoError(t, err)
	assert.Equal(t, martha.ID, found.ID)
	assert.Nil(t, found.LastLoginAt)

	_, err = repository.FindByID(ctx, martha.ID+100)
	assert.True(t, apperr.IsNotFound(err))

	err = repository.Create(ctx, &identity.User{Username: "Martha", Email: "other@example.org", PasswordHash: "hash", Role: sec.RoleMember})
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

/*
TestPostgresRepository_Updates exercises every single-row update and the
NotFound answer for a missing row.
*/
func TestPostgresRepository_Updates(t *testing.T) {
	ctx := context.Background()
	repository, users := newPostgresRepository(t, "thomas")
	id := users[0].ID

	require.NoError(t, repository.RecordLoginFailure(ctx, id))
	require.NoError(t, repository.RecordLoginFailure(ctx, id))

	found, err := repository.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, found.FailedLogins)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repository.RecordLoginSuccess(ctx, id, at))
	require.NoError(t, repository.UpdatePassword(ctx, id, "new-hash"))
	require.NoError(t, repository.SetActive(ctx, id, false))

	found, err = repository.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, found.FailedLogins)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, at.Equal(*found.LastLoginAt))
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.False(t, found.PasswordResetRequired)
	assert.False(t, found.IsActive)
	assert.False(t, found.UpdatedAt.Before(found.CreatedAt))

	assert.True(t, apperr.IsNotFound(repository.SetActive(ctx, id+100, true)))
}

/*
TestPostgresRepository_List pages through accounts by ascending id and
reports the full count.
*/
func TestPostgresRepository_List(t *testing.T) {
	ctx := context.Background()
	repository, _ := newPostgresRepository(t, "aaron", "barak", "caleb", "dinah", "eli")

	page, total, err := repository.List(ctx, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "caleb", page[0].Username)
	assert.Equal(t, "dinah", page[1].Username)

	page, total, err = repository.List(ctx, pagination.Params{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}
