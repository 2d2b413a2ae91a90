// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package identity owns user accounts and the login lifecycle.

It is the collaborator the access-control middleware asks "who is behind
this session?", and it exposes the authentication endpoints that create and
end sessions.

Architecture:

  - User: The account entity. Accounts are deactivated, never deleted.
  - Repository: Abstract persistence with memory and PostgreSQL implementations.
  - Service: Login, logout, password change and administration use cases.
  - Handler: Route registration against the dispatcher's router.
*/
package identity

import (
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
)

// # Domain Entities

// User is a login-capable account.
type User struct {
	ID                    int64        `json:"id"`
	Username              string       `json:"username"`
	Email                 string       `json:"email"`
	PasswordHash          string       `json:"-"`
	Role                  sec.UserRole `json:"role"`
	IsActive              bool         `json:"is_active"`
	FailedLogins          int          `json:"failed_logins"`
	PasswordResetRequired bool         `json:"password_reset_required"`
	LastLoginAt           *time.Time   `json:"last_login_at,omitempty"`
	MemberID              *int64       `json:"member_id,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// Principal projects the user into the identity carried by a request.
func (u *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:                u.ID,
		Username:              u.Username,
		Role:                  u.Role,
		IsActive:              u.IsActive,
		PasswordResetRequired: u.PasswordResetRequired,
		MemberID:              u.MemberID,
	}
}

// # Field Identifiers

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldMemberID        = "member_id"
	FieldActive          = "active"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)
