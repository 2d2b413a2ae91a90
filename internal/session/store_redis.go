// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
)

// RedisStore keeps sessions in Redis as JSON documents that expire with the session.
//
// Every user also owns a set of token hashes so that all of their sessions
// can be invalidated at once.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

func userSessionsKey(userID int64) string {
	return constants.RedisPrefixUserSessions + strconv.FormatInt(userID, 10)
}

/*
Create stores the session with a TTL equal to its lifetime.

Description: SETNX guarantees the token hash is not already taken; the hash
is then added to the per-user index.

Returns:
  - error: ErrDuplicateToken or connectivity errors
*/
func (store *RedisStore) Create(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("redis_session_create_failed: non-positive lifetime %s", ttl)
	}

	created, err := store.client.SetNX(ctx, sessionKey(session.TokenHash), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	if !created {
		return ErrDuplicateToken
	}

	// The index outlives every session it points to.
	indexKey := userSessionsKey(session.UserID)
	pipe := store.client.TxPipeline()
	pipe.SAdd(ctx, indexKey, session.TokenHash)
	pipe.Expire(ctx, indexKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_session_index_failed: %w", err)
	}

	return nil
}

func (store *RedisStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	payload, err := store.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if session.TokenHash != tokenHash {
		return nil, ErrCorrupt
	}

	return session, nil
}

// Invalidate deletes the session document. The stale index entry is
// harmless and goes away with the index TTL.
func (store *RedisStore) Invalidate(ctx context.Context, tokenHash string) error {
	if err := store.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

func (store *RedisStore) InvalidateAllForUser(ctx context.Context, userID int64) error {
	indexKey := userSessionsKey(userID)

	hashes, err := store.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_index_read_failed: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, sessionKey(hash))
	}
	keys = append(keys, indexKey)

	if err := store.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_all_failed: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired documents on its own.
func (store *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
