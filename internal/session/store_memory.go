// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
//
// Restarting the process logs everybody out.
type MemoryStore struct {
	mu     sync.RWMutex
	byHash map[string]*Session
	byUser map[int64]map[string]struct{}
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byHash: make(map[string]*Session),
		byUser: make(map[int64]map[string]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[session.TokenHash]; exists {
		return ErrDuplicateToken
	}

	stored := *session
	stored.Token = ""
	s.byHash[session.TokenHash] = &stored

	hashes, ok := s.byUser[session.UserID]
	if !ok {
		hashes = make(map[string]struct{})
		s.byUser[session.UserID] = hashes
	}
	hashes[session.TokenHash] = struct{}{}
	return nil
}

func (s *MemoryStore) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byHash[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *session
	return &copied, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.byHash[tokenHash]; ok {
		session.IsValid = false
	}
	return nil
}

func (s *MemoryStore) InvalidateAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash := range s.byUser[userID] {
		if session, ok := s.byHash[hash]; ok {
			session.IsValid = false
		}
	}
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for hash, session := range s.byHash {
		if now.Before(session.ExpiresAt) {
			continue
		}
		delete(s.byHash, hash)
		if hashes, ok := s.byUser[session.UserID]; ok {
			delete(hashes, hash)
			if len(hashes) == 0 {
				delete(s.byUser, session.UserID)
			}
		}
		removed++
	}
	return removed, nil
}

// Len returns the number of stored records, valid or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHash)
}
