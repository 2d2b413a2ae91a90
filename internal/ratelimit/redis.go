// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
)

// fixedWindowScript increments the counter and arms its expiry on the first
// hit of a window. It returns {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter is a [Limiter] shared by every instance pointing at the same Redis.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a Redis-backed [Limiter].
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (limiter *RedisLimiter) CheckAndRecord(ctx context.Context, id string, maxAttempts int, window time.Duration) (Decision, error) {
	key := constants.RedisPrefixRateLimit + id

	result, err := fixedWindowScript.Run(ctx, limiter.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis_ratelimit_check_failed: %w", err)
	}
	if len(result) != 2 {
		return Decision{}, fmt.Errorf("redis_ratelimit_check_failed: unexpected reply %v", result)
	}

	return decide(int(result[0]), maxAttempts, time.Duration(result[1])*time.Millisecond), nil
}
