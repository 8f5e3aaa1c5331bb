// Package schema provides database schema models for mlidb.
// Models are plain GORM structs, the same structs are used to scan rows
// returned by the store.
package schema

// TaxonRank is an ordered classification level. The ID is the order key:
// a smaller ID means a higher (less specific) rank.
type TaxonRank struct {
	// ID is a hard-coded identifier that also defines the rank order.
	ID int `gorm:"primaryKey;autoIncrement:false"`

	// Name is the display name of the rank (e.g. "Genus").
	Name string `gorm:"size:50;not null;uniqueIndex"`

	// EnName is the lowercase english name used to map remote ranks
	// (e.g. "genus").
	EnName string `gorm:"size:50;not null;uniqueIndex"`

	// LocalName is the rank name in the curator's language.
	LocalName *string `gorm:"size:50"`
}

// TableName returns the table name of TaxonRank.
func (TaxonRank) TableName() string { return "taxon_ranks" }

// TaxonStatus is a lifecycle category of a name.
type TaxonStatus struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`

	// Name is the internal status label, it matches remote taxonomic
	// statuses (e.g. "ACCEPTED", "HOMOTYPIC_SYNONYM").
	Name string `gorm:"size:50;not null;uniqueIndex"`

	// LocalName is the label displayed to the curator.
	LocalName string `gorm:"size:100"`

	// IsSynonym is true for every status that points to an accepted name.
	IsSynonym bool `gorm:"not null;default:false"`
}

// TableName returns the table name of TaxonStatus.
func (TaxonStatus) TableName() string { return "taxon_statuses" }

// Taxon is a named entity at a rank. ParentID together with StatusID form
// the tree edge: for an accepted taxon the parent is its higher taxon, for
// a synonym the parent is the accepted name it belongs to.
type Taxon struct {
	ID int64 `gorm:"primaryKey"`

	// Name is the canonical name without authorship.
	Name string `gorm:"size:255;not null;index"`

	// Author is NULL for taxa without an author.
	Author *string `gorm:"size:255"`

	// Year of publication.
	Year *int

	PublishedIn *string `gorm:"size:500"`

	// EnName is a vernacular english name.
	EnName *string `gorm:"size:255"`

	// LocalName is a vernacular name in the curator's language.
	LocalName *string `gorm:"size:255"`

	// NameUUID is UUID v5 generated from the name with its author.
	NameUUID string `gorm:"column:name_uuid;size:36;index"`

	RankID   int    `gorm:"not null;index"`
	ParentID *int64 `gorm:"index"`
	StatusID int    `gorm:"not null;index"`
}

// TableName returns the table name of Taxon.
func (Taxon) TableName() string { return "taxa" }

// DBSource is an external nomenclatural database.
type DBSource struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`

	// Name is a short abbreviation of the source.
	Name string `gorm:"size:50;not null;uniqueIndex"`

	Title string `gorm:"size:255"`

	// LinkTemplate is an URL prefix, a cross-reference index appended to
	// it gives a link to the record.
	LinkTemplate string `gorm:"size:255"`

	// Trusted sources win during deduplication.
	Trusted bool `gorm:"not null;default:false"`
}

// TableName returns the table name of DBSource.
func (DBSource) TableName() string { return "db_sources" }

// DBIndex is a cross-reference from a taxon to an external identifier.
// There is at most one cross-reference per (taxon, source).
type DBIndex struct {
	ID       int64  `gorm:"primaryKey"`
	TaxonID  int64  `gorm:"not null;uniqueIndex:idx_db_indexes_taxon_source"`
	SourceID int    `gorm:"not null;uniqueIndex:idx_db_indexes_taxon_source"`
	Index    string `gorm:"column:idx;size:255;not null"`
}

// TableName returns the table name of DBIndex.
func (DBIndex) TableName() string { return "db_indexes" }

// Substrate is a flat vocabulary of substrates lichens grow on.
type Substrate struct {
	ID        int64   `gorm:"primaryKey"`
	Name      string  `gorm:"size:255;not null;uniqueIndex"`
	LocalName *string `gorm:"size:255"`
}

// TableName returns the table name of Substrate.
func (Substrate) TableName() string { return "substrates" }

// Color is a flat vocabulary of colors used in descriptions.
type Color struct {
	ID        int64   `gorm:"primaryKey"`
	Name      string  `gorm:"size:100;not null;uniqueIndex"`
	LocalName *string `gorm:"size:100"`
	HEX       *string `gorm:"column:hex;size:7;uniqueIndex"`
}

// TableName returns the table name of Color.
func (Color) TableName() string { return "colors" }

// ReconcileCheckpoint marks a completed reconciliation pass of a taxon.
type ReconcileCheckpoint struct {
	ID       int64  `gorm:"primaryKey"`
	TaxonID  int64  `gorm:"not null;uniqueIndex:idx_checkpoint"`
	SourceID int    `gorm:"not null;uniqueIndex:idx_checkpoint"`
	Pass     string `gorm:"size:20;not null;uniqueIndex:idx_checkpoint"`

	// CompletedAt is a unix timestamp.
	CompletedAt int64
}

// TableName returns the table name of ReconcileCheckpoint.
func (ReconcileCheckpoint) TableName() string { return "reconcile_checkpoints" }
