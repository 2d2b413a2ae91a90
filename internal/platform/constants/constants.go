// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Connection deadlines and shutdown grace.
  - Rate Limiting: Sweep intervals and idle TTLs of in-memory buckets.
  - Security: Session token size and header names.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "iead-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultConnectionTimeout is the read/write deadline of a connection per request.
	DefaultConnectionTimeout = 60 * time.Second

	// DefaultMaxBodyBytes caps the size of a request body.
	DefaultMaxBodyBytes = 1 << 20

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight connections during shutdown.
	ShutdownTimeout = 30 * time.Second

	// AcceptBackoffMin and AcceptBackoffMax bound the retry delay after a temporary accept error.
	AcceptBackoffMin = 5 * time.Millisecond
	AcceptBackoffMax = 1 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often stale buckets are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a throttle entry must be idle before it is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// SessionTokenBytes is the entropy of a session token (256 bits).
	SessionTokenBytes = 32

	// SessionSweepInterval is how often expired sessions are purged.
	SessionSweepInterval = 10 * time.Minute

	// BearerScheme is the Authorization scheme accepted by the access middleware.
	BearerScheme = "Bearer"
)

// # Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAllow         = "Allow"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession      = "auth:session:"
	RedisPrefixUserSessions = "auth:user_sessions:"
	RedisPrefixRateLimit    = "ratelimit:"
)
