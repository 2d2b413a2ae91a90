// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/respond"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(ctx context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(ctx context.Context) error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness wire.Handler) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return wire.HandlerFunc(handler.liveness), wire.HandlerFunc(handler.readiness)
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(*wire.Request) (*wire.Response, error) {
	return respond.OK(map[string]string{constants.FieldStatus: "ok"}), nil
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(request *wire.Request) (*wire.Response, error) {
	ctx := request.Context()
	results := make([]checkResult, 0, 2)
	isSystemReady := true

	check := func(name string, probe func(context.Context) error) {
		if probe == nil {
			return
		}
		result := checkResult{Name: name, IsOK: true}
		if err := probe(ctx); err != nil {
			result.IsOK = false
			result.Error = "unavailable"
			isSystemReady = false
			handler.logger.ErrorContext(ctx, "readiness_check_failed", slog.String("dependency", name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	check("postgres", handler.dependencies.CheckDatabase)
	check("redis", handler.dependencies.CheckCache)

	responseStatus := "ready"
	httpStatus := http.StatusOK
	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return respond.JSON(httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
	}}), nil
}
