// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package router_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/router"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// named returns a handler whose response status identifies it.
func named(status int) wire.Handler {
	return wire.HandlerFunc(func(*wire.Request) (*wire.Response, error) {
		return wire.NewResponse(status), nil
	})
}

func statusOf(t *testing.T, handler wire.Handler) int {
	t.Helper()
	response, err := handler.Serve(&wire.Request{})
	require.NoError(t, err)
	return response.Status
}

/*
TestMatch_Exact returns the handler registered for each method.
*/
func TestMatch_Exact(t *testing.T) {
	r := router.New()
	require.NoError(t, r.Register("/api/v1/auth/login", router.Methods{
		http.MethodPost: named(201),
	}))
	require.NoError(t, r.Register("/api/v1/events", router.Methods{
		http.MethodGet:  named(200),
		http.MethodPost: named(202),
	}))

	tests := []struct {
		path   string
		method string
		status int
	}{
		{"/api/v1/auth/login", http.MethodPost, 201},
		{"/api/v1/events", http.MethodGet, 200},
		{"/api/v1/events", http.MethodPost, 202},
	}

	for _, tt := range tests {
		t.Run(tt.method+tt.path, func(t *testing.T) {
			result := r.Match(tt.path, tt.method)
			require.Equal(t, router.Found, result.Kind)
			assert.Equal(t, tt.status, statusOf(t, result.Handler))
			assert.Empty(t, result.Captures)
		})
	}
}

/*
TestMatch_MethodNotAllowed lists exactly the registered methods.
*/
func TestMatch_MethodNotAllowed(t *testing.T) {
	r := router.New()
	r.MustRegister("/api/v1/auth/login", router.Methods{http.MethodPost: named(200)})
	r.MustRegister("/api/v1/users/{id:[0-9]+}", router.Methods{
		http.MethodPut:    named(200),
		http.MethodDelete: named(200),
	})

	result := r.Match("/api/v1/auth/login", http.MethodGet)
	assert.Equal(t, router.MethodNotAllowed, result.Kind)
	assert.Equal(t, []string{http.MethodPost}, result.Allowed)

	result = r.Match("/api/v1/users/9", http.MethodPatch)
	assert.Equal(t, router.MethodNotAllowed, result.Kind)
	assert.Equal(t, []string{http.MethodDelete, http.MethodPut}, result.Allowed)

	r.MustRegister("/api/v1/users", router.Methods{
		http.MethodGet:  named(200),
		http.MethodPost: named(201),
	})
	result = r.Match("/api/v1/users", http.MethodDelete)
	assert.Equal(t, router.MethodNotAllowed, result.Kind)
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, result.Allowed)
}

/*
TestMatch_NotFound covers unknown paths and failed captures.
*/
func TestMatch_NotFound(t *testing.T) {
	r := router.New()
	r.MustRegister("/health", router.Methods{http.MethodGet: named(200)})
	r.MustRegister("/api/v1/users/{id:[0-9]+}", router.Methods{http.MethodGet: named(200)})

	for _, path := range []string{"/nope", "/api/v1/users/abc", "/api/v1/users", "/healthz"} {
		assert.Equal(t, router.NotFound, r.Match(path, http.MethodGet).Kind, path)
	}
}

/*
TestMatch_PatternCaptures yields N numeric captures in positional order.
*/
func TestMatch_PatternCaptures(t *testing.T) {
	r := router.New()
	r.MustRegister("/api/v1/events/{eventID:[0-9]+}/attendees/{memberID:[0-9]+}", router.Methods{
		http.MethodGet: named(200),
	})
	r.MustRegister("/api/v1/users/{id:[0-9]+}", router.Methods{http.MethodGet: named(201)})

	result := r.Match("/api/v1/events/12/attendees/345", http.MethodGet)
	require.Equal(t, router.Found, result.Kind)
	require.Len(t, result.Captures, 2)

	eventID, err := strconv.ParseInt(result.Captures[0], 10, 64)
	require.NoError(t, err)
	memberID, err := strconv.ParseInt(result.Captures[1], 10, 64)
	require.NoError(t, err)

	assert.Equal(t, int64(12), eventID)
	assert.Equal(t, int64(345), memberID)
	assert.Equal(t, "12", result.Params["eventID"])
	assert.Equal(t, "345", result.Params["memberID"])

	result = r.Match("/api/v1/users/7", http.MethodGet)
	require.Equal(t, router.Found, result.Kind)
	assert.Equal(t, []string{"7"}, result.Captures)
	assert.Equal(t, 201, statusOf(t, result.Handler))
}

/*
TestMatch_ExactBeatsPattern prefers the static entry for the same path.
*/
func TestMatch_ExactBeatsPattern(t *testing.T) {
	r := router.New()
	r.MustRegister("/api/v1/users/{id}", router.Methods{http.MethodGet: named(200)})
	r.MustRegister("/api/v1/users/me", router.Methods{http.MethodGet: named(299)})

	result := r.Match("/api/v1/users/me", http.MethodGet)
	require.Equal(t, router.Found, result.Kind)
	assert.Equal(t, 299, statusOf(t, result.Handler))
}

/*
TestMatch_HeadFallsBackToGet serves HEAD with the GET handler.
*/
func TestMatch_HeadFallsBackToGet(t *testing.T) {
	r := router.New()
	r.MustRegister("/health", router.Methods{http.MethodGet: named(200)})

	result := r.Match("/health", http.MethodHead)
	require.Equal(t, router.Found, result.Kind)

	result = r.Match("/health", http.MethodPost)
	require.Equal(t, router.MethodNotAllowed, result.Kind)
	assert.Equal(t, []string{http.MethodGet}, result.Allowed)
}

/*
TestRegister_Overwrite replaces entries registered under the same spec.
*/
func TestRegister_Overwrite(t *testing.T) {
	r := router.New()
	r.MustRegister("/exact", router.Methods{http.MethodGet: named(200)})
	r.MustRegister("/exact", router.Methods{http.MethodPost: named(201)})
	r.MustRegister("/items/{id}", router.Methods{http.MethodGet: named(200)})
	r.MustRegister("/items/{id}", router.Methods{http.MethodGet: named(202)})

	assert.Equal(t, router.MethodNotAllowed, r.Match("/exact", http.MethodGet).Kind)
	assert.Equal(t, 202, statusOf(t, r.Match("/items/1", http.MethodGet).Handler))
	assert.Len(t, r.Routes(), 2)
}

/*
TestRegister_Rejects refuses invalid and ambiguous registrations.
*/
func TestRegister_Rejects(t *testing.T) {
	r := router.New()
	r.MustRegister("/items/{id:[0-9]+}", router.Methods{http.MethodGet: named(200)})

	err := r.Register("/items/{itemID:[0-9]+}", router.Methods{http.MethodGet: named(200)})
	assert.ErrorIs(t, err, router.ErrAmbiguousPattern)

	assert.ErrorIs(t, r.Register("items", router.Methods{http.MethodGet: named(200)}), router.ErrInvalidPath)
	assert.ErrorIs(t, r.Register("/empty", router.Methods{}), router.ErrNoMethods)
	assert.Error(t, r.Register("/nil", router.Methods{http.MethodGet: nil}))
}
