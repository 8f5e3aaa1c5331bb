package ioschema

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// TestErrors_Structure verifies error codes, messages and wrapping.
func TestErrors_Structure(t *testing.T) {
	originalErr := errors.New("root cause")

	tests := []struct {
		name string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"GORMConnectionError", GORMConnectionError(originalErr),
			errcode.SchemaGORMConnectionError, 0},
		{"CreateSchemaError", CreateSchemaError(originalErr),
			errcode.SchemaCreateError, 0},
		{"MigrateSchemaError", MigrateSchemaError(originalErr),
			errcode.SchemaMigrateError, 0},
		{"CollationError", CollationError("taxa", "name", originalErr),
			errcode.SchemaCollationError, 2},
		{"SeedError", SeedError("taxon_ranks", originalErr),
			errcode.SchemaSeedError, 1},
		{"DropTableError", DropTableError("taxa", originalErr),
			errcode.SchemaDropError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")
			assert.Equal(t, tt.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			assert.Len(t, gnErr.Vars, tt.vars)
			assert.ErrorIs(t, gnErr.Err, originalErr)
		})
	}
}
