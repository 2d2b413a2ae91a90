// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package session manages the lifecycle of opaque bearer sessions.

A session binds a high-entropy token to a user id until it expires or is
invalidated. Stores only ever see the SHA-256 of the token.

# Invariants

  - A token is unique across all sessions; a live token is never reused.
  - ExpiresAt is strictly later than CreatedAt.
  - An invalidated or expired session never validates, even while the
    record is still physically present in the store.
*/
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalid is returned by [Manager.Validate] for absent, invalidated,
	// expired or unreadable sessions.
	ErrInvalid = errors.New("session: invalid or expired")

	// ErrNotFound is returned by stores when no record matches.
	ErrNotFound = errors.New("session: not found")

	// ErrDuplicateToken is returned by stores when a token hash is already taken.
	ErrDuplicateToken = errors.New("session: duplicate token")

	// ErrCorrupt is returned by stores when a record exists but cannot be decoded.
	ErrCorrupt = errors.New("session: corrupt record")
)

// Session is one server-held login.
type Session struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`

	// Token is only populated on the value returned by [Manager.Create].
	Token     string `json:"-"`
	TokenHash string `json:"token_hash"`

	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsValid   bool      `json:"is_valid"`
}

// Active reports whether the session may authorize a request at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.IsValid && now.Before(s.ExpiresAt)
}

// Metadata describes the client a session is created for.
type Metadata struct {
	UserAgent string
	IPAddress string
}

// Store persists sessions keyed by token hash.
type Store interface {

	/*
		Create persists a brand-new session.

		Returns:
		  - error: ErrDuplicateToken if the token hash is taken, or persistence failures
	*/
	Create(ctx context.Context, session *Session) error

	/*
		FindByTokenHash returns the session stored under tokenHash, valid or not.

		Returns:
		  - error: ErrNotFound, ErrCorrupt, or retrieval failures
	*/
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Invalidate marks the session as no longer valid. Unknown hashes are not an error.
	Invalidate(ctx context.Context, tokenHash string) error

	// InvalidateAllForUser invalidates every session of userID.
	InvalidateAllForUser(ctx context.Context, userID int64) error

	// DeleteExpired physically removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
