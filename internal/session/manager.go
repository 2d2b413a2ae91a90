// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/pkg/uuidv7"
)

// createAttempts bounds the retries on a token hash collision.
const createAttempts = 3

// Manager implements the session lifecycle on top of a [Store].
//
// It is safe for concurrent use as long as the store is.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a [Manager].
type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager constructs a [Manager] issuing sessions that live for ttl.
func NewManager(store Store, ttl time.Duration, options ...Option) *Manager {
	manager := &Manager{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// TTL returns the lifetime of new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

/*
Create issues a new session for userID.

Description: Generates a 256-bit token, stamps CreatedAt and ExpiresAt, and
persists the record. A hash collision is retried with a fresh token, so a
live token is never handed out twice.

Returns:
  - *Session: The persisted session, with Token populated
  - error: Token generation or persistence failures
*/
func (m *Manager) Create(ctx context.Context, userID int64, meta Metadata) (*Session, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
		if err != nil {
			return nil, fmt.Errorf("session_manager_token_failed: %w", err)
		}

		now := m.now()
		session := &Session{
			ID:        uuidv7.New(),
			UserID:    userID,
			Token:     token,
			TokenHash: sec.HashToken(token),
			UserAgent: meta.UserAgent,
			IPAddress: meta.IPAddress,
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
			IsValid:   true,
		}

		err = m.store.Create(ctx, session)
		if errors.Is(err, ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("session_manager_create_failed: %w", err)
		}

		m.logger.InfoContext(ctx, "session_created",
			slog.String("session_id", session.ID),
			slog.Int64("user_id", userID),
			slog.Time("expires_at", session.ExpiresAt),
		)
		return session, nil
	}

	return nil, fmt.Errorf("session_manager_create_failed: %w", ErrDuplicateToken)
}

/*
Validate resolves token into its session.

Description: Absent, invalidated, expired (now >= ExpiresAt) and unreadable
records all yield ErrInvalid. Expired records are left in the store; the
janitor purges them later.

Returns:
  - *Session: The active session
  - error: ErrInvalid, or a wrapped store failure
*/
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalid
	}

	session, err := m.store.FindByTokenHash(ctx, sec.HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			return nil, ErrInvalid
		}
		return nil, fmt.Errorf("session_manager_lookup_failed: %w", err)
	}

	if !session.Active(m.now()) {
		return nil, ErrInvalid
	}

	return session, nil
}

// Invalidate ends the session of token. Invalidating twice is not an error.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Invalidate(ctx, sec.HashToken(token)); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("session_manager_invalidate_failed: %w", err)
	}
	return nil
}

// InvalidateAllForUser ends every session of userID, forcing re-authentication everywhere.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID int64) error {
	if err := m.store.InvalidateAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("session_manager_invalidate_all_failed: %w", err)
	}

	m.logger.InfoContext(ctx, "sessions_invalidated", slog.Int64("user_id", userID))
	return nil
}

// Sweep purges expired sessions once.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	removed, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("session_manager_sweep_failed: %w", err)
	}
	return removed, nil
}

// RunJanitor calls [Manager.Sweep] every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := m.Sweep(ctx)
			if err != nil {
				m.logger.ErrorContext(ctx, "session_sweep_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				m.logger.DebugContext(ctx, "session_sweep_finished", slog.Int("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
