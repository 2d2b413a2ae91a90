package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlovtnik/iead-sub004/internal/platform/database/schema"
)

func TestColumns_AreUnique(t *testing.T) {
	for name, columns := range map[string][]string{
		schema.UserAccount.Table: schema.UserAccount.Columns(),
		schema.UserSession.Table: schema.UserSession.Columns(),
	} {
		seen := make(map[string]bool)
		for _, column := range columns {
			assert.False(t, seen[column], "%s repeats column %s", name, column)
			assert.NotEmpty(t, column)
			seen[column] = true
		}
	}
}

func TestSessionColumns_ExcludeInvalidatedAt(t *testing.T) {
	assert.NotContains(t, schema.UserSession.Columns(), schema.UserSession.InvalidatedAt)
	assert.Len(t, schema.UserAccount.Columns(), 12)
}
