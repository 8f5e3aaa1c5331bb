package iocache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/internal/iocache"
	"github.com/tagezi/mlidb/pkg/errcode"
)

type entry struct {
	Key  int64
	Name string
}

func TestNew(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	dir := filepath.Join(t.TempDir(), "test-cache")
	c, err := iocache.New(dir, false)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestOpenClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	c, err := iocache.New(filepath.Join(t.TempDir(), "test-cache"), false)
	require.NoError(t, err)

	require.NoError(t, c.Open())
	require.NoError(t, c.Open())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestSetGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	dir := filepath.Join(t.TempDir(), "test-cache")
	c, err := iocache.New(dir, false)
	require.NoError(t, err)

	var got entry
	_, err = c.Get("species/1", &got)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CacheNotOpenError, gnErr.Code)

	require.NoError(t, c.Open())
	require.NoError(t, c.Set("species/8422475", entry{8422475, "Cladonia"}))

	found, err := c.Get("species/8422475", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{8422475, "Cladonia"}, got)

	found, err = c.Get("species/0", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// data survives reopening, but not cleaning
	require.NoError(t, c.Close())
	c, err = iocache.New(dir, false)
	require.NoError(t, err)
	require.NoError(t, c.Open())
	found, err = c.Get("species/8422475", &got)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, c.Close())

	c, err = iocache.New(dir, true)
	require.NoError(t, err)
	require.NoError(t, c.Open())
	defer c.Close()
	found, err = c.Get("species/8422475", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
