// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

func TestFromValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   pagination.Params
	}{
		{"defaults", nil, pagination.Params{Page: 1, Limit: 20}},
		{"explicit", map[string]string{"page": "3", "limit": "10"}, pagination.Params{Page: 3, Limit: 10}},
		{"garbage", map[string]string{"page": "x", "limit": "y"}, pagination.Params{Page: 1, Limit: 20}},
		{"negative", map[string]string{"page": "-2", "limit": "0"}, pagination.Params{Page: 1, Limit: 20}},
		{"capped", map[string]string{"limit": "5000"}, pagination.Params{Page: 1, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.FromValues(tt.values))
		})
	}
}

func TestOffsetAndMeta(t *testing.T) {
	params := pagination.Params{Page: 3, Limit: 10}
	assert.Equal(t, 20, params.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())

	meta := pagination.NewMeta(params, 21)
	assert.Equal(t, pagination.Meta{Page: 3, Limit: 10, Total: 21, TotalPages: 3}, meta)
	assert.Equal(t, 0, pagination.NewMeta(pagination.Params{Page: 1, Limit: 10}, 0).TotalPages)
}
