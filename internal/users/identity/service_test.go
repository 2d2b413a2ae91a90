// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/session"
	"github.com/zlovtnik/iead-sub004/internal/users/identity"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

const strongPassword = "Psalm#23Shepherd"

type harness struct {
	service  *identity.Service
	users    *identity.MemoryRepository
	sessions *session.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := identity.NewMemoryRepository()
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, session.WithLogger(logger))

	return &harness{
		service:  identity.NewService(users, sessions, logger),
		users:    users,
		sessions: sessions,
	}
}

func (h *harness) createUser(t *testing.T, username string, role sec.UserRole) *identity.User {
	t.Helper()

	user, err := h.service.CreateUser(context.Background(), identity.CreateUserInput{
		Username: username,
		Email:    username + "@example.org",
		Password: strongPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func statusOf(err error) int {
	return apperr.From(err).HTTPStatus
}

/*
TestService_Login covers success, wrong password, unknown user and failure counting.
*/
func TestService_Login(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "martha", sec.RoleMember)

	_, err := h.service.Login(ctx, identity.LoginInput{Username: "martha", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	_, unknownErr := h.service.Login(ctx, identity.LoginInput{Username: "nobody", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(unknownErr))
	assert.Equal(t, err.Error(), unknownErr.Error(), "same message for unknown users")

	stored, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLogins)

	result, err := h.service.Login(ctx, identity.LoginInput{Username: "MARTHA", Password: strongPassword, IPAddress: "10.1.1.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	stored, err = h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLogins)
	assert.NotNil(t, stored.LastLoginAt)

	validated, err := h.sessions.Validate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.UserID)
	assert.Equal(t, "10.1.1.1", validated.IPAddress)
}

/*
TestService_DeactivationEndsSessions checks that a disabled account can neither
keep nor open sessions.
*/
func TestService_DeactivationEndsSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "thomas", sec.RoleMember)

	result, err := h.service.Login(ctx, identity.LoginInput{Username: "thomas", Password: strongPassword})
	require.NoError(t, err)

	updated, err := h.service.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = h.sessions.Validate(ctx, result.Token)
	assert.ErrorIs(t, err, session.ErrInvalid)

	_, err = h.service.Login(ctx, identity.LoginInput{Username: "thomas", Password: strongPassword})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	principal, err := h.service.ResolvePrincipal(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, principal.IsActive)
}

/*
TestService_ChangePassword checks that every old session dies and a new one is issued.
*/
func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "peter", sec.RoleMember)

	laptop, err := h.service.Login(ctx, identity.LoginInput{Username: "peter", Password: strongPassword})
	require.NoError(t, err)
	phone, err := h.service.Login(ctx, identity.LoginInput{Username: "peter", Password: strongPassword})
	require.NoError(t, err)

	_, err = h.service.ChangePassword(ctx, user.ID, "wrong", "N3w!Password", session.Metadata{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	result, err := h.service.ChangePassword(ctx, user.ID, strongPassword, "N3w!Password", session.Metadata{})
	require.NoError(t, err)

	for _, token := range []string{laptop.Token, phone.Token} {
		_, err = h.sessions.Validate(ctx, token)
		assert.ErrorIs(t, err, session.ErrInvalid)
	}

	_, err = h.sessions.Validate(ctx, result.Token)
	assert.NoError(t, err)

	_, err = h.service.Login(ctx, identity.LoginInput{Username: "peter", Password: strongPassword})
	assert.Error(t, err)
	_, err = h.service.Login(ctx, identity.LoginInput{Username: "peter", Password: "N3w!Password"})
	assert.NoError(t, err)
}

/*
TestService_PasswordCrossFieldRules rejects a replacement equal to the
current password and passwords that embed the username.
*/
func TestService_PasswordCrossFieldRules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "andrew", sec.RoleMember)

	_, err := h.service.ChangePassword(ctx, user.ID, strongPassword, strongPassword, session.Metadata{})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.service.ChangePassword(ctx, user.ID, strongPassword, "Andrew#2024!", session.Metadata{})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.service.CreateUser(ctx, identity.CreateUserInput{
		Username: "silas",
		Email:    "silas@example.org",
		Password: "xSILAS#99x",
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.service.CreateUser(ctx, identity.CreateUserInput{
		Username: "lydia",
		Email:    "lydia@example.org",
		Password: strongPassword,
		Role:     sec.UserRole("deacon"),
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestService_CreateUserConflict(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "james", sec.RoleMember)

	_, err := h.service.CreateUser(context.Background(), identity.CreateUserInput{
		Username: "James",
		Email:    "other@example.org",
		Password: strongPassword,
	})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = h.service.CreateUser(context.Background(), identity.CreateUserInput{
		Username: "jude",
		Email:    "JAMES@example.org",
		Password: strongPassword,
	})
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	created, err := h.service.Bootstrap(ctx, "admin", "admin@example.org", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = h.service.Bootstrap(ctx, "admin", "admin@example.org", strongPassword)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = h.service.Bootstrap(ctx, "admin", "admin@example.org", strongPassword)
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := h.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)
	assert.True(t, admin.PasswordResetRequired)
}

/*
TestService_List pages through accounts in creation order.
*/
func TestService_List(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"abel", "boaz", "caleb", "dinah", "eli"} {
		h.createUser(t, name, sec.RoleMember)
	}

	users, meta, err := h.service.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "caleb", users[0].Username)
	assert.Equal(t, "dinah", users[1].Username)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, meta)

	users, _, err = h.service.List(context.Background(), pagination.Params{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, users)
}
