// Package taxonomy defines the taxon hierarchy model and the contracts of
// the repository and the consistency engine that keep it coherent.
//
// Values returned by implementations are read copies. They have no link
// back to the store.
package taxonomy

import (
	"context"
)

// Taxon is a named entity at a rank with its tree edge.
type Taxon struct {
	ID          int64
	Name        string
	Author      *string
	Year        *int
	PublishedIn *string
	RankID      int
	ParentID    *int64
	StatusID    int
}

// Rank is a classification level. A smaller ID is a higher rank.
type Rank struct {
	ID     int
	Name   string
	EnName string
}

// Higher reports if r is strictly higher (less specific) than other.
func (r Rank) Higher(other Rank) bool {
	return r.ID < other.ID
}

// Status is a lifecycle category of a name.
type Status struct {
	ID        int
	Name      string
	LocalName string
	IsSynonym bool
}

// NameEntry is a short description of a taxon used in lists.
type NameEntry struct {
	ID     int64
	Rank   string
	Name   string
	Author *string
}

// RankedName is an accepted taxon with its rank, used for pick lists.
type RankedName struct {
	ID     int64
	RankID int
	Rank   string
	Name   string
}

// CrossRef is a link of a taxon to an external database.
type CrossRef struct {
	SourceID     int
	Source       string
	LinkTemplate string
	Index        string
	Trusted      bool
}

// Link returns the URL of the cross-referenced record.
func (c CrossRef) Link() string {
	return c.LinkTemplate + c.Index
}

// NewTaxon contains fields of a taxon to insert.
type NewTaxon struct {
	Name        string
	Author      *string
	Year        *int
	PublishedIn *string
	RankID      int
	ParentID    *int64
	StatusID    int
}

// Repository gives typed access to taxa and their vocabularies.
// Lookups by (name, author) treat a nil author as NULL.
type Repository interface {
	// FindTaxonID returns the id of a taxon with given name, author and
	// status.
	FindTaxonID(
		ctx context.Context,
		name string,
		author *string,
		statusID int,
	) (int64, bool, error)

	// FindByRankName returns taxa of a rank with given name and author.
	FindByRankName(
		ctx context.Context,
		rankID int,
		name string,
		author *string,
	) ([]Taxon, error)

	// Taxon returns a taxon by id.
	Taxon(ctx context.Context, id int64) (Taxon, error)

	// RankOf returns the rank of a taxon.
	RankOf(ctx context.Context, taxonID int64) (Rank, error)

	// StatusOf returns the status of a taxon found by name. Accepted
	// names win over other statuses.
	StatusOf(ctx context.Context, name string) (Status, error)

	// Status returns a status by id.
	Status(ctx context.Context, id int) (Status, error)

	// StatusByName returns a status by its internal name.
	StatusByName(ctx context.Context, name string) (Status, bool, error)

	// Rank returns a rank by id.
	Rank(ctx context.Context, id int) (Rank, error)

	// Ranks returns all ranks in hierarchical order.
	Ranks(ctx context.Context) ([]Rank, error)

	// RankByEnName returns a rank by its english name.
	RankByEnName(ctx context.Context, enName string) (Rank, bool, error)

	// ListChildren returns taxa with a given parent and status, ordered
	// by rank and name.
	ListChildren(ctx context.Context, parentID int64, statusID int) ([]NameEntry, error)

	// ListSynonyms returns all synonyms of an accepted taxon.
	ListSynonyms(ctx context.Context, taxonID int64) ([]NameEntry, error)

	// ListCrossRefs returns cross-references of a taxon.
	ListCrossRefs(ctx context.Context, taxonID int64) ([]CrossRef, error)

	// ListAcceptedTaxa returns accepted taxa ordered by rank and then
	// by name.
	ListAcceptedTaxa(ctx context.Context) ([]RankedName, error)

	// TaxaByRank returns taxa of a rank ordered by name.
	TaxaByRank(ctx context.Context, rankID int, acceptedOnly bool) ([]Taxon, error)

	// InsertTaxon adds a taxon without any consistency checks.
	InsertTaxon(ctx context.Context, t NewTaxon) (int64, error)

	// SetField writes one column of a taxon. A nil pointer writes NULL.
	SetField(ctx context.Context, taxonID int64, column string, value any) error

	// CrossRefIndex returns the index of a taxon in a data source.
	CrossRefIndex(ctx context.Context, taxonID int64, sourceID int) (string, bool, error)

	// AddCrossRef adds a cross-reference unless the taxon already has one
	// for the source. It returns true if a row was added.
	AddCrossRef(ctx context.Context, taxonID int64, sourceID int, index string) (bool, error)

	// HasCheckpoint reports if a reconciliation pass of a taxon is done.
	HasCheckpoint(ctx context.Context, taxonID int64, sourceID int, pass string) (bool, error)

	// Checkpoint records a finished reconciliation pass.
	Checkpoint(ctx context.Context, taxonID int64, sourceID int, pass string) error
}
