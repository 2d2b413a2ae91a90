// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package requestutil provides utilities for extracting data from parsed requests.

It keeps handlers free of repeated capture parsing and principal lookups,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"strconv"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

/*
PathID parses a numeric route capture.

The router already restricts the capture to digits, so a parse failure
only happens on overflow. It is reported as a missing resource.

Returns:
  - int64: The parsed identifier
  - error: apperr.NotFound(resource) if the capture is not a valid int64
*/
func PathID(request *wire.Request, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(request.PathParam(name), 10, 64)
	if err != nil {
		return 0, apperr.NotFound(resource)
	}
	return id, nil
}

/*
OptionalInt64 parses an optional integer parameter.

Returns:
  - *int64: nil when the parameter is absent
  - error: a validation error naming the field if it is not an integer
*/
func OptionalInt64(request *wire.Request, field string) (*int64, error) {
	raw := request.Param(field)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: field, Message: "Must be an integer"})
	}
	return &value, nil
}

/*
RequiredPrincipal ensures the request is authenticated and returns the principal.

Returns:
  - *sec.Principal: The authenticated identity
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *wire.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return principal, nil
}
