package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/internal/ioschema"
	"github.com/tagezi/mlidb/internal/iotesting"
)

// TestGetCreateCmd verifies the create command definition.
func TestGetCreateCmd(t *testing.T) {
	cmd := getCreateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)
	assert.Contains(t, cmd.Short, "schema")
	assert.Contains(t, cmd.Long, "GORM AutoMigrate")
	assert.Contains(t, cmd.Long, "collation")
	assert.NotNil(t, cmd.RunE)

	forceFlag := cmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag, "--force flag should exist")
	assert.Equal(t, "f", forceFlag.Shorthand)
	assert.Equal(t, "false", forceFlag.DefValue)
}

// TestGetCreateCmd_Examples verifies examples in help.
func TestGetCreateCmd_Examples(t *testing.T) {
	cmd := getCreateCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "mlidb create --force")
	assert.Contains(t, helpText, "mlidb create -f")
}

// TestGetMigrateCmd verifies the migrate command definition.
func TestGetMigrateCmd(t *testing.T) {
	cmd := getMigrateCmd()
	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "schema")
	assert.Contains(t, cmd.Long, "GORM AutoMigrate")
	assert.NotNil(t, cmd.RunE)
}

func TestDropExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()

	t.Run("force", func(t *testing.T) {
		sm := ioschema.NewManager(iotesting.NewStore(t))
		ok, err := dropExisting(ctx, sm, true)
		require.NoError(t, err)
		assert.True(t, ok)

		has, err := sm.HasTables(ctx)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("declined", func(t *testing.T) {
		setStdin(t, "no\n")
		sm := ioschema.NewManager(iotesting.NewStore(t))
		ok, err := dropExisting(ctx, sm, false)
		require.NoError(t, err)
		assert.False(t, ok)

		has, err := sm.HasTables(ctx)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("confirmed", func(t *testing.T) {
		setStdin(t, "y\n")
		sm := ioschema.NewManager(iotesting.NewStore(t))
		ok, err := dropExisting(ctx, sm, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func setStdin(t *testing.T, input string) {
	t.Helper()
	orig := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = orig })
}
