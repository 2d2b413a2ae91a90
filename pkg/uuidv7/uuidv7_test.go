// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package uuidv7_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/pkg/uuidv7"
)

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := uuidv7.New()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNew_Version7(t *testing.T) {
	parsed, err := uuid.Parse(uuidv7.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
