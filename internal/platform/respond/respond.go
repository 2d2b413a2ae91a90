// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Package respond provides the response helpers used by every handler.
//
// # Architecture
//
// This package centralizes the presentation of responses. Every response
// (Success or Error) follows a strict, predictable JSON envelope so that
// browser and mobile clients can parse it robustly.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/wire"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data interface{} `json:"data"`
}

// PaginatedEnvelope is the JSON envelope for paginated list responses.
type PaginatedEnvelope struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON builds a JSON response with the given status code.
func JSON(statusCode int, payload interface{}) *wire.Response {
	response := wire.NewResponse(statusCode)
	response.Header.Set(constants.HeaderContentType, "application/json; charset=utf-8")

	body, err := json.Marshal(payload)
	if err != nil {
		// Only reachable with unsupported payload types; never leak the detail.
		response.Status = http.StatusInternalServerError
		body = []byte(`{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`)
	}
	response.Body = append(body, '\n')
	return response
}

// OK builds a 200 OK response with data wrapped in the standard success envelope.
func OK(data interface{}) *wire.Response {
	return JSON(http.StatusOK, SuccessEnvelope{Data: data})
}

// Created builds a 201 Created response with data wrapped in the standard success envelope.
func Created(data interface{}) *wire.Response {
	return JSON(http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated builds a 200 OK response with a page of data and its metadata block.
func Paginated(data interface{}, metadata pagination.Meta) *wire.Response {
	return JSON(http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

// NoContent builds a 204 No Content response.
func NoContent() *wire.Response {
	return wire.NewResponse(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(request *wire.Request, err error) *wire.Response {
	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	return ErrorResponse(appError)
}

// ErrorResponse renders an [apperr.AppError] without logging it.
//
// It is used where no request exists yet (e.g. unparseable input).
func ErrorResponse(appError *apperr.AppError) *wire.Response {
	response := JSON(appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})

	if len(appError.Allowed) > 0 {
		response.Header.Set(constants.HeaderAllow, appError.AllowHeader())
	}
	if appError.RetryAfter > 0 {
		response.Header.Set(constants.HeaderRetryAfter, strconv.Itoa(int(appError.RetryAfter.Seconds())))
	}

	return response
}
