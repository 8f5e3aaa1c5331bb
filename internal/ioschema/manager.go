// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tagezi/mlidb/internal/iostore"
	"github.com/tagezi/mlidb/pkg/lifecycle"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"gorm.io/gorm"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	st store.Store
}

// NewManager creates a new SchemaManager.
func NewManager(st store.Store) lifecycle.SchemaManager {
	return &manager{st: st}
}

// Create creates the database schema using GORM AutoMigrate, sets
// collation on PostgreSQL and seeds vocabularies.
func (m *manager) Create(ctx context.Context) error {
	db, err := m.gormDB(ctx)
	if err != nil {
		return err
	}

	if err = schema.Migrate(db); err != nil {
		return CreateSchemaError(err)
	}

	if m.st.Dialect() == "postgres" {
		if err = m.setCollation(ctx); err != nil {
			return err
		}
	}

	return m.Seed(ctx)
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate.
func (m *manager) Migrate(ctx context.Context) error {
	db, err := m.gormDB(ctx)
	if err != nil {
		return err
	}

	if err = schema.Migrate(db); err != nil {
		return MigrateSchemaError(err)
	}
	return nil
}

// Seed inserts default vocabulary rows that are not in the store yet.
// Existing rows are never changed.
func (m *manager) Seed(ctx context.Context) error {
	var added int
	for _, v := range schema.Ranks() {
		ok, err := m.seedRow(ctx, schema.TableRanks, v.ID,
			store.Set("id", v.ID),
			store.Set("name", v.Name),
			store.Set("en_name", v.EnName),
		)
		if err != nil {
			return SeedError(schema.TableRanks, err)
		}
		if ok {
			added++
		}
	}

	for _, v := range schema.Statuses() {
		ok, err := m.seedRow(ctx, schema.TableStatuses, v.ID,
			store.Set("id", v.ID),
			store.Set("name", v.Name),
			store.Set("local_name", v.LocalName),
			store.Set("is_synonym", v.IsSynonym),
		)
		if err != nil {
			return SeedError(schema.TableStatuses, err)
		}
		if ok {
			added++
		}
	}

	for _, v := range schema.Sources() {
		ok, err := m.seedRow(ctx, schema.TableSources, v.ID,
			store.Set("id", v.ID),
			store.Set("name", v.Name),
			store.Set("title", v.Title),
			store.Set("link_template", v.LinkTemplate),
			store.Set("trusted", v.Trusted),
		)
		if err != nil {
			return SeedError(schema.TableSources, err)
		}
		if ok {
			added++
		}
	}

	slog.Info("Vocabularies seeded", "added", added)
	return nil
}

func (m *manager) seedRow(
	ctx context.Context,
	table string,
	id int,
	vals ...store.Assign,
) (bool, error) {
	_, exists, err := m.st.GetID(ctx, table, store.And(store.Eq("id", id)))
	if err != nil || exists {
		return false, err
	}
	if _, err = m.st.Insert(ctx, table, vals...); err != nil {
		return false, err
	}
	return true, nil
}

// HasTables reports if any table of the schema exists.
func (m *manager) HasTables(ctx context.Context) (bool, error) {
	db, err := m.gormDB(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range schema.AllTables() {
		if db.Migrator().HasTable(v) {
			return true, nil
		}
	}
	return false, nil
}

// DropAllTables drops tables of the schema, referencing tables first.
func (m *manager) DropAllTables(ctx context.Context) error {
	db, err := m.gormDB(ctx)
	if err != nil {
		return err
	}
	for _, v := range schema.AllTables() {
		if err = db.Migrator().DropTable(v); err != nil {
			return DropTableError(v, err)
		}
		slog.Info("Dropped table", "table", v)
	}
	return nil
}

func (m *manager) gormDB(ctx context.Context) (*gorm.DB, error) {
	db, ok := iostore.DB(m.st)
	if !ok {
		return nil, GORMConnectionError(
			fmt.Errorf("store %T is not GORM-based", m.st),
		)
	}
	return db.WithContext(ctx), nil
}

// setCollation sets "C" collation on name columns. This is
// critical for correct sorting and comparison of scientific names.
func (m *manager) setCollation(ctx context.Context) error {
	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{schema.TableTaxa, "name", 255},
		{schema.TableSubstrates, "name", 255},
		{schema.TableColors, "name", 100},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := fmt.Sprintf(qStr, col.table, col.column, col.varchar)
		if _, err := m.st.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
