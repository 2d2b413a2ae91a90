// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package middleware

import (
	"log/slog"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/platform/validate"
	"github.com/zlovtnik/iead-sub004/internal/ratelimit"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// # Rate Limiting

// RateRule configures the fixed-window limit of a route.
type RateRule struct {
	// Name namespaces the counters of this rule.
	Name        string
	MaxAttempts int
	Window      time.Duration

	// Key identifies the caller. Defaults to the client IP.
	Key func(request *wire.Request) string
}

// RateLimit counts one attempt per request against rule.
//
// A limiter failure rejects the request rather than letting it through.
func RateLimit(limiter ratelimit.Limiter, rule RateRule) Middleware {
	key := rule.Key
	if key == nil {
		key = (*wire.Request).ClientIP
	}

	return MiddlewareFunc(func(request *wire.Request, next wire.Handler) (*wire.Response, error) {
		ctx := request.Context()

		decision, err := limiter.CheckAndRecord(ctx, rule.Name+":"+key(request), rule.MaxAttempts, rule.Window)
		if err != nil {
			return nil, apperr.Internal(err)
		}

		if !decision.Allowed {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "rate_limit_exceeded",
				slog.String("rule", rule.Name),
				slog.Duration("retry_after", decision.RetryAfter),
			)
			return nil, apperr.RateLimited(decision.RetryAfter)
		}

		return next.Serve(request)
	})
}

// Throttle applies the per-client token bucket.
func Throttle(throttle *ratelimit.Throttle) Middleware {
	return MiddlewareFunc(func(request *wire.Request, next wire.Handler) (*wire.Response, error) {
		if !throttle.Allow(request.ClientIP()) {
			return nil, apperr.RateLimited(time.Second)
		}
		return next.Serve(request)
	})
}

// # Validation

// Validate checks the merged parameters against schema and replaces them
// with the sanitized output.
func Validate(schema validate.Schema) Middleware {
	return MiddlewareFunc(func(request *wire.Request, next wire.Handler) (*wire.Response, error) {
		sanitized, failures := validate.Validate(request.Params, schema)
		if failures != nil {
			return nil, failures.Err()
		}

		cleaned := *request
		cleaned.Params = sanitized
		return next.Serve(&cleaned)
	})
}
