// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

// Repository persists user accounts.
//
// Lookups of unknown users return apperr.NotFound; duplicate usernames or
// emails return apperr.Conflict.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create assigns the ID and timestamps of user.
	Create(ctx context.Context, user *User) error

	// RecordLoginSuccess resets the failure counter and stamps the login time.
	RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error
	RecordLoginFailure(ctx context.Context, id int64) error

	// UpdatePassword stores a new hash and clears the reset flag.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error

	// List returns one page of accounts ordered by ID, plus the total count.
	List(ctx context.Context, page pagination.Params) ([]*User, int, error)
}

// # In-Memory Repository

// MemoryRepository is a process-local [Repository].
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[int64]*User
	byUsername map[string]int64
	nextID     int64
	now        func() time.Time
}

// NewMemoryRepository returns an empty [MemoryRepository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[int64]*User),
		byUsername: make(map[string]int64),
		nextID:     1,
		now:        time.Now,
	}
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repository *MemoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	id, ok := repository.byUsername[usernameKey(username)]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *repository.users[id]
	return &copied, nil
}

func (repository *MemoryRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, taken := repository.byUsername[usernameKey(user.Username)]; taken {
		return apperr.Conflict("Username is already taken")
	}
	for _, existing := range repository.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("Email is already registered")
		}
	}

	now := repository.now()
	user.ID = repository.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	repository.nextID++

	stored := *user
	repository.users[user.ID] = &stored
	repository.byUsername[usernameKey(user.Username)] = user.ID
	return nil
}

func (repository *MemoryRepository) update(id int64, mutate func(user *User)) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	mutate(user)
	user.UpdatedAt = repository.now()
	return nil
}

func (repository *MemoryRepository) RecordLoginSuccess(_ context.Context, id int64, at time.Time) error {
	return repository.update(id, func(user *User) {
		user.FailedLogins = 0
		user.LastLoginAt = &at
	})
}

func (repository *MemoryRepository) RecordLoginFailure(_ context.Context, id int64) error {
	return repository.update(id, func(user *User) {
		user.FailedLogins++
	})
}

func (repository *MemoryRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return repository.update(id, func(user *User) {
		user.PasswordHash = passwordHash
		user.PasswordResetRequired = false
	})
}

func (repository *MemoryRepository) SetActive(_ context.Context, id int64, active bool) error {
	return repository.update(id, func(user *User) {
		user.IsActive = active
	})
}

func (repository *MemoryRepository) List(_ context.Context, page pagination.Params) ([]*User, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	ids := make([]int64, 0, len(repository.users))
	for id := range repository.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start := min(page.Offset(), len(ids))
	end := min(start+page.Limit, len(ids))

	users := make([]*User, 0, end-start)
	for _, id := range ids[start:end] {
		copied := *repository.users[id]
		users = append(users, &copied)
	}
	return users, len(ids), nil
}
