// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package middleware provides the per-route processing chain.

Each route is wrapped at registration time in a fixed sequence of typed
[Middleware] values, so that business handlers only ever see requests that
passed every guard.

Standard Stack (outermost first):

  - Throttle: Per-client token bucket flood guard.
  - RateLimit: Fixed-window attempt counter for sensitive routes.
  - Validate: Schema validation and free-text sanitization.
  - Access: Bearer session authentication, role and ownership checks.

A guard that fails returns an [apperr.AppError] instead of calling next;
the dispatcher renders it.
*/
package middleware

import (
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// Middleware intercepts a request before next sees it.
type Middleware interface {
	Handle(request *wire.Request, next wire.Handler) (*wire.Response, error)
}

// MiddlewareFunc adapts an ordinary function to [Middleware].
type MiddlewareFunc func(request *wire.Request, next wire.Handler) (*wire.Response, error)

// Handle calls f(request, next).
func (f MiddlewareFunc) Handle(request *wire.Request, next wire.Handler) (*wire.Response, error) {
	return f(request, next)
}

// Chain wraps handler so that middlewares[0] runs first.
func Chain(handler wire.Handler, middlewares ...Middleware) wire.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = link{middleware: middlewares[i], next: handler}
	}
	return handler
}

type link struct {
	middleware Middleware
	next       wire.Handler
}

func (l link) Serve(request *wire.Request) (*wire.Response, error) {
	return l.middleware.Handle(request, l.next)
}
