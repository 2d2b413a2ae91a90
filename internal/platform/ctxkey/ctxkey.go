// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// It is used to store and retrieve per-request values (principal, session,
// request ID, logger). Using a private, unexported type for keys prevents
// collisions with third-party packages that might also use context storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyPrincipal is the context key for the authenticated [sec.Principal].
	KeyPrincipal key = "principal"

	// KeySessionID is the context key for the id of the session that authenticated the request.
	KeySessionID key = "session_id"

	// KeyToken is the context key for the raw bearer token of the request.
	KeyToken key = "token"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
