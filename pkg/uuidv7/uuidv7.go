// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Session ids and request ids use it. The leading timestamp keeps ids
// roughly sortable by creation time, which makes log correlation and the
// users.session primary key index friendlier than random UUIDv4.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

