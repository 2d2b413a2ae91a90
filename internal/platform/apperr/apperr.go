// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package apperr defines the centralized error handling framework for the
dispatch core.

It provides a rich error type that bridges low-level routing, session and
storage failures with the HTTP status a client finally sees.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and client-safe messages.
  - Taxonomy: One constructor per failure class (401, 403, 404, 405, 429, 400, 500).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves a middleware or handler should be an [AppError] (or
wrap one) so the dispatcher can render a consistent response. Anything else
is treated as an internal failure.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AppError is the canonical error type of the request pipeline.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "FORBIDDEN").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Allowed lists the methods a matched path supports (405 only).
	Allowed []string `json:"-"`
	// RetryAfter is the time until a throttled client may try again (429 only).
	RetryAfter time.Duration `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the parameter name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// Malformed creates a 400 [AppError] for requests that could not be parsed.
// The dispatcher closes the connection after writing it.
func Malformed(cause error) *AppError {
	return &AppError{
		Code:       "MALFORMED_REQUEST",
		Message:    "Malformed request",
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// RouteNotFound creates the 404 [AppError] used when no route matches a path.
func RouteNotFound() *AppError {
	return &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "No route matches the requested path",
		HTTPStatus: http.StatusNotFound,
	}
}

// MethodNotAllowed creates a 405 [AppError] carrying the allowed methods.
func MethodNotAllowed(allowed []string) *AppError {
	return &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
		Allowed:    allowed,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfter time.Duration) *AppError {
	seconds := int((retryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", seconds),
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: time.Duration(seconds) * time.Second,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// From converts any error into an [*AppError], falling back to [Internal].
func From(err error) *AppError {
	if ae := As(err); ae != nil {
		return ae
	}
	return Internal(err)
}

// AllowHeader renders the Allow header value of a 405 error.
func (e *AppError) AllowHeader() string {
	return strings.Join(e.Allowed, ", ")
}

// IsNotFound reports whether err carries a NOT_FOUND [AppError].
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}
