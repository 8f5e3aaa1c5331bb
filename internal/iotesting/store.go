// Package iotesting provides shared test utilities.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tagezi/mlidb/internal/ioschema"
	"github.com/tagezi/mlidb/internal/iostore"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/store"
)

// TestStoreName is the file name of SQLite databases created for tests.
const TestStoreName = "mlidb_test.sqlite"

// GetTestConfig returns a configuration with a SQLite store inside a
// temporary directory of the test.
func GetTestConfig(t *testing.T) *config.Config {
	t.Helper()

	home := t.TempDir()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptStorePath(filepath.Join(home, TestStoreName)),
		config.OptHomeDir(home),
		config.OptJobsNumber(2),
	})
	return cfg
}

// NewStore opens a fresh SQLite store with created and seeded schema.
// The store is closed when the test finishes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    st := iotesting.NewStore(t)
//	    repo := iorepo.New(st)
//	    // ...
//	}
func NewStore(t *testing.T) store.Store {
	t.Helper()

	ctx := context.Background()
	cfg := GetTestConfig(t)
	st, err := iostore.Open(ctx, cfg.Store)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err = ioschema.NewManager(st).Create(ctx); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}
	return st
}
