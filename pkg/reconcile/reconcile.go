// Package reconcile describes reconciliation of local taxa against a
// GBIF-like nomenclature service: remote record shapes, the client and
// reconciler contracts and the pure rules that decide what may be
// imported and which local fields may be filled.
package reconcile

import (
	"context"
)

// Classification holds higher taxa of a remote record. It is used by the
// lichen whitelist.
type Classification struct {
	Kingdom string `json:"kingdom,omitempty"`
	Phylum  string `json:"phylum,omitempty"`
	Class   string `json:"class,omitempty"`
	Order   string `json:"order,omitempty"`
	Family  string `json:"family,omitempty"`
	Genus   string `json:"genus,omitempty"`
}

// Usage is a name usage as returned by the remote service.
type Usage struct {
	Key             int64  `json:"key"`
	ScientificName  string `json:"scientificName"`
	CanonicalName   string `json:"canonicalName,omitempty"`
	Authorship      string `json:"authorship,omitempty"`
	Rank            string `json:"rank"`
	TaxonomicStatus string `json:"taxonomicStatus,omitempty"`
	Synonym         bool   `json:"synonym"`

	// Parent is the canonical name of the parent of an accepted usage.
	Parent string `json:"parent,omitempty"`

	// Accepted is the scientific name of the accepted usage of a synonym.
	Accepted string `json:"accepted,omitempty"`

	Classification
}

// Page is one page of children or synonyms.
type Page struct {
	Offset       int     `json:"offset"`
	Limit        int     `json:"limit"`
	EndOfRecords bool    `json:"endOfRecords"`
	Results      []Usage `json:"results"`
}

// Record is a remote usage normalized to the shape of a local taxon.
type Record struct {
	Key    int64
	Name   string
	Author *string
	Year   *int

	// Rank is the upper-case remote rank, for example "SPECIES".
	Rank string

	// Status is the remote taxonomic status, for example "ACCEPTED".
	Status  string
	Synonym bool

	// Parent is the canonical name of the accepted name for synonyms and
	// of the parent taxon otherwise.
	Parent string

	Classification
}

// StatusAccepted is the remote status of accepted names.
const StatusAccepted = "ACCEPTED"

// RankUnranked is the remote rank of usages without rank.
const RankUnranked = "UNRANKED"

// Client queries the remote service. Implementations throttle their
// calls.
type Client interface {
	// Suggest returns candidate usages for a name.
	Suggest(ctx context.Context, name string) ([]Usage, error)

	// Species returns a usage by its key.
	Species(ctx context.Context, key int64) (Usage, error)

	// Children returns a page of direct children of a usage.
	Children(ctx context.Context, key int64, offset, limit int) (Page, error)

	// Synonyms returns a page of synonyms of a usage.
	Synonyms(ctx context.Context, key int64, offset, limit int) (Page, error)
}

// Normalizer converts remote usages to records.
type Normalizer interface {
	// Normalize converts one usage.
	Normalize(u Usage) (Record, error)

	// NormalizeAll converts usages of a page keeping their order.
	NormalizeAll(ctx context.Context, us []Usage) ([]Record, error)
}

// Stats summarizes a reconciliation run.
type Stats struct {
	RunID string

	// Taxa is the number of local taxa visited.
	Taxa int

	// Skipped taxa had both passes checkpointed already.
	Skipped int

	// Unmatched taxa had no remote counterpart.
	Unmatched int

	Inserted  int
	Updated   int
	CrossRefs int

	// Rejected remote records were filtered out before any write.
	Rejected int

	// PageFailures counts pages that could not be fetched or decoded.
	PageFailures int
}

// Reconciler walks local taxa of given ranks and merges remote data into
// the local store.
type Reconciler interface {
	Run(ctx context.Context, rankIDs ...int) (Stats, error)
}
