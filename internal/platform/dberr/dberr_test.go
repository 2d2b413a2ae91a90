// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package dberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "User"))

	notFound := apperr.As(Wrap(pgx.ErrNoRows, "User"))
	if assert.NotNil(t, notFound) {
		assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
		assert.Equal(t, "User not found", notFound.Message)
	}

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_username_key"})
	assert.True(t, IsUniqueViolation(unique))
	assert.Equal(t, "account_username_key", ConstraintName(unique))

	conflict := apperr.As(Wrap(unique, "User"))
	if assert.NotNil(t, conflict) {
		assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)
	}

	internal := apperr.As(Wrap(errors.New("connection reset"), "User"))
	if assert.NotNil(t, internal) {
		assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	}
}
