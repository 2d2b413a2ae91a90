// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package middleware

import (
	"github.com/zlovtnik/iead-sub004/internal/platform/validate"
	"github.com/zlovtnik/iead-sub004/internal/ratelimit"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// Endpoint describes a route handler and the guards around it.
// Nil guards are skipped.
type Endpoint struct {
	Handler   wire.Handler
	RateLimit *RateRule
	Schema    validate.Schema
	Policy    *Policy
}

// Composer builds the per-route chain in a fixed order:
// throttle, rate limit, validate, access, handler.
type Composer struct {
	limiter    ratelimit.Limiter
	throttle   *ratelimit.Throttle
	sessions   SessionValidator
	principals PrincipalResolver
}

// NewComposer wires the shared guards. A nil throttle disables flood protection.
func NewComposer(limiter ratelimit.Limiter, throttle *ratelimit.Throttle, sessions SessionValidator, principals PrincipalResolver) *Composer {
	return &Composer{
		limiter:    limiter,
		throttle:   throttle,
		sessions:   sessions,
		principals: principals,
	}
}

// Compose wraps the endpoint handler in its guards.
func (c *Composer) Compose(endpoint Endpoint) wire.Handler {
	var chain []Middleware

	if c.throttle != nil {
		chain = append(chain, Throttle(c.throttle))
	}
	if endpoint.RateLimit != nil {
		chain = append(chain, RateLimit(c.limiter, *endpoint.RateLimit))
	}
	if endpoint.Schema != nil {
		chain = append(chain, Validate(endpoint.Schema))
	}
	if endpoint.Policy != nil {
		chain = append(chain, NewAccess(c.sessions, c.principals, *endpoint.Policy))
	}

	return Chain(endpoint.Handler, chain...)
}
