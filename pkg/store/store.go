// Package store describes the relational storage used by mlidb.
//
// Statements are written with '?' placeholders, values are always bound
// positionally. Every call outside of Transaction commits on its own.
// Failures are returned as *gn.Error values, they are also logged
// together with the statement and its parameters.
package store

import (
	"context"
)

// Store is a generic parameterized CRUD interface over the schema.
type Store interface {
	// Exec runs a statement that does not return rows and returns the
	// number of affected rows.
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)

	// Query runs a statement and scans its rows into dest, which must be
	// a pointer to a struct, a slice of structs, or a scalar.
	Query(ctx context.Context, dest any, stmt string, args ...any) error

	// Insert adds a row and returns its id.
	Insert(ctx context.Context, table string, values ...Assign) (int64, error)

	// Update changes rows matching where and returns the number of
	// affected rows. An empty where is refused.
	Update(ctx context.Context, table string, set []Assign, where Where) (int64, error)

	// Delete removes rows matching where. An empty where removes all rows.
	Delete(ctx context.Context, table string, where Where) (int64, error)

	// Select reads all columns of rows matching where into dest.
	Select(
		ctx context.Context,
		dest any,
		table string,
		where Where,
		orderBy ...string,
	) error

	// SelectAll reads every row of a table into dest.
	SelectAll(ctx context.Context, dest any, table string, orderBy ...string) error

	// GetID returns the smallest id of rows matching where.
	GetID(ctx context.Context, table string, where Where) (int64, bool, error)

	// Count returns the number of rows matching where.
	Count(ctx context.Context, table string, where Where) (int64, error)

	// Clean removes all rows from given tables.
	Clean(ctx context.Context, tables ...string) error

	// Transaction runs fn inside one transaction. If fn returns an error
	// every change made through tx is rolled back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Dialect returns "sqlite" or "postgres".
	Dialect() string

	// Close releases the connection.
	Close() error
}
