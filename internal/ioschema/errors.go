package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// GORMConnectionError creates an error for stores that do not expose a
// GORM connection.
func GORMConnectionError(err error) error {
	msg := `Cannot manage schema of this store

<em>Possible causes:</em>
  - Store was not opened by mlidb
  - Store is already closed`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("no GORM connection: %w", err),
	}
}

// CreateSchemaError creates an error for schema
// creation failures.
func CreateSchemaError(err error) error {
	msg := `Cannot create database schema

<em>Possible causes:</em>
  - Insufficient database permissions
  - Database file is read-only

<em>How to fix:</em>
  1. Check database user has CREATE permissions
  2. Check the store path in config.yaml`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to create schema: %w", err),
	}
}

// MigrateSchemaError creates an error for schema
// migration failures.
func MigrateSchemaError(err error) error {
	msg := "Cannot migrate database schema"

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to migrate schema: %w", err),
	}
}

// CollationError creates an error for failures to set
// collation on a column.
func CollationError(table, column string, err error) error {
	msg := "Cannot set collation for <em>%s.%s</em>"

	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  msg,
		Vars: []any{table, column},
		Err: fmt.Errorf("failed to set collation on %s.%s: %w",
			table, column, err),
	}
}

// SeedError creates an error for failures to fill a vocabulary table.
func SeedError(table string, err error) error {
	msg := "Cannot fill <em>%s</em> with default values"

	return &gn.Error{
		Code: errcode.SchemaSeedError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to seed %s: %w", table, err),
	}
}

// DropTableError creates an error for failures to drop a table.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"

	return &gn.Error{
		Code: errcode.SchemaDropError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to drop %s: %w", table, err),
	}
}
