// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/platform/validate"
	"github.com/zlovtnik/iead-sub004/internal/session"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

// # Contracts & Types

// Sessions is the part of the session lifecycle the service drives.
type Sessions interface {
	Create(ctx context.Context, userID int64, meta session.Metadata) (*session.Session, error)
	Invalidate(ctx context.Context, token string) error
	InvalidateAllForUser(ctx context.Context, userID int64) error
}

// Service implements the account use cases.
type Service struct {
	users    Repository
	sessions Sessions
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a [Service].
func NewService(users Repository, sessions Sessions, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// errBadCredentials is deliberately identical for unknown users and wrong passwords.
func errBadCredentials() error {
	return apperr.Unauthorized("Invalid login credentials")
}

// # Authentication Flow

// LoginInput carries the credentials of an authentication attempt.
type LoginInput struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult is an established session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Login verifies credentials and opens a session.

Description: Unknown usernames still pay for a bcrypt comparison so that
response timing does not reveal which usernames exist. Failed attempts bump
the account's failure counter. Deactivated accounts never get a session.

Returns:
  - *LoginResult: The session token and the user
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := service.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if apperr.IsNotFound(err) {
			sec.BurnPasswordCheck(input.Password)
			return nil, errBadCredentials()
		}
		return nil, fmt.Errorf("identity_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		if err := service.users.RecordLoginFailure(ctx, user.ID); err != nil {
			service.logger.ErrorContext(ctx, "login_failure_not_recorded", slog.Any("error", err))
		}
		service.logger.WarnContext(ctx, "login_failed",
			slog.Int64("user_id", user.ID),
			slog.Int("failed_logins", user.FailedLogins+1),
		)
		return nil, errBadCredentials()
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is disabled")
	}

	now := service.now()
	if err := service.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("identity_service_login_record_failed: %w", err)
	}
	user.FailedLogins = 0
	user.LastLoginAt = &now

	created, err := service.sessions.Create(ctx, user.ID, session.Metadata{
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("identity_service_login_session_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "login_succeeded", slog.Int64("user_id", user.ID))

	return &LoginResult{Token: created.Token, ExpiresAt: created.ExpiresAt, User: user}, nil
}

// Logout ends the session behind token.
func (service *Service) Logout(ctx context.Context, token string) error {
	if err := service.sessions.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("identity_service_logout_failed: %w", err)
	}
	return nil
}

/*
ChangePassword replaces the password of userID.

Description: The current password must match. Every session of the user
is invalidated, including the caller's, and a fresh session is returned so
the caller stays signed in on this device only.

Returns:
  - *LoginResult: The replacement session
  - error: Unauthorized (wrong current password) or internal failures
*/
func (service *Service) ChangePassword(ctx context.Context, userID int64, current, replacement string, meta session.Metadata) (*LoginResult, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !sec.CheckPasswordHash(current, user.PasswordHash) {
		return nil, apperr.Unauthorized("Current password is incorrect")
	}

	check := &validate.Validator{}
	check.Custom(FieldNewPassword, replacement == current, "Must differ from the current password").
		Custom(FieldNewPassword, containsFold(replacement, user.Username), "Must not contain the username")
	if err := check.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(replacement)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, fmt.Errorf("identity_service_update_password_failed: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordResetRequired = false

	if err := service.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("identity_service_password_sessions_failed: %w", err)
	}

	created, err := service.sessions.Create(ctx, userID, meta)
	if err != nil {
		return nil, fmt.Errorf("identity_service_password_session_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "password_changed", slog.Int64("user_id", userID))

	return &LoginResult{Token: created.Token, ExpiresAt: created.ExpiresAt, User: user}, nil
}

// # Administration

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     sec.UserRole
	MemberID *int64

	// PasswordResetRequired forces a password change on first login.
	PasswordResetRequired bool
}

// CreateUser hashes the password and persists a new active account.
func (service *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if input.Role == "" {
		input.Role = sec.RoleMember
	}

	check := &validate.Validator{}
	check.Custom(FieldRole, !input.Role.Valid(), "Unknown role").
		Custom(FieldPassword, containsFold(input.Password, input.Username), "Must not contain the username")
	if err := check.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	user := &User{
		Username:              input.Username,
		Email:                 input.Email,
		PasswordHash:          hash,
		Role:                  input.Role,
		IsActive:              true,
		PasswordResetRequired: input.PasswordResetRequired,
		MemberID:              input.MemberID,
	}

	if err := service.users.Create(ctx, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("identity_service_create_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "user_created",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// SetActive activates or deactivates an account. Deactivation ends every
// session of the user at once.
func (service *Service) SetActive(ctx context.Context, userID int64, active bool) (*User, error) {
	if err := service.users.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}

	if !active {
		if err := service.sessions.InvalidateAllForUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("identity_service_deactivate_sessions_failed: %w", err)
		}
	}

	service.logger.InfoContext(ctx, "user_active_changed",
		slog.Int64("user_id", userID),
		slog.Bool("active", active),
	)
	return service.users.FindByID(ctx, userID)
}

// Get returns the account of userID.
func (service *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return service.users.FindByID(ctx, userID)
}

// List returns one page of accounts and the pagination metadata.
func (service *Service) List(ctx context.Context, page pagination.Params) ([]*User, pagination.Meta, error) {
	users, total, err := service.users.List(ctx, page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, pagination.NewMeta(page, total), nil
}

// ResolvePrincipal loads the identity carried by an authenticated request.
func (service *Service) ResolvePrincipal(ctx context.Context, userID int64) (*sec.Principal, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

// # Bootstrap

/*
Bootstrap makes sure an administrator exists.

Description: When no account named username exists and a password is
configured, an admin is created that must change its password on first
login. An empty password skips the step.

Returns:
  - bool: Whether an account was created
  - error: Creation failures
*/
func (service *Service) Bootstrap(ctx context.Context, username, email, password string) (bool, error) {
	if password == "" {
		service.logger.WarnContext(ctx, "bootstrap_admin_skipped", slog.String("reason", "no password configured"))
		return false, nil
	}

	if _, err := service.users.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !apperr.IsNotFound(err) {
		return false, fmt.Errorf("identity_service_bootstrap_lookup_failed: %w", err)
	}

	_, err := service.CreateUser(ctx, CreateUserInput{
		Username:              username,
		Email:                 email,
		Password:              password,
		Role:                  sec.RoleAdmin,
		PasswordResetRequired: true,
	})
	if err != nil {
		return false, fmt.Errorf("identity_service_bootstrap_failed: %w", err)
	}

	return true, nil
}

// containsFold reports whether value contains part, ignoring case. An empty
// part never matches.
func containsFold(value, part string) bool {
	return part != "" && strings.Contains(strings.ToLower(value), strings.ToLower(part))
}
