package schema

import (
	"gorm.io/gorm"
)

// Table names used by hand-written statements.
const (
	TableRanks       = "taxon_ranks"
	TableStatuses    = "taxon_statuses"
	TableTaxa        = "taxa"
	TableSources     = "db_sources"
	TableIndexes     = "db_indexes"
	TableSubstrates  = "substrates"
	TableColors      = "colors"
	TableCheckpoints = "reconcile_checkpoints"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&TaxonRank{},
		&TaxonStatus{},
		&Taxon{},
		&DBSource{},
		&DBIndex{},
		&Substrate{},
		&Color{},
		&ReconcileCheckpoint{},
	}
}

// AllTables returns table names in the order they can be dropped:
// referencing tables first.
func AllTables() []string {
	return []string{
		TableCheckpoints,
		TableIndexes,
		TableTaxa,
		TableSubstrates,
		TableColors,
		TableSources,
		TableStatuses,
		TableRanks,
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
