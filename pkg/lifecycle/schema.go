package lifecycle

import (
	"context"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate to handle both initial schema creation and migrations.
// Schema management is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the database schema using GORM AutoMigrate and fills
	// vocabulary tables with default values. On PostgreSQL it also sets
	// "C" collation on name columns.
	Create(ctx context.Context) error

	// Migrate updates the database schema to the latest version using
	// GORM AutoMigrate.
	Migrate(ctx context.Context) error

	// Seed adds default ranks, statuses and data sources that are
	// missing.
	Seed(ctx context.Context) error

	// HasTables reports if any table of the schema exists.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops every table of the schema.
	DropAllTables(ctx context.Context) error
}
