package taxonomy

import (
	"context"
)

// ConflictKind tells how a new or renamed taxon clashes with existing
// records.
type ConflictKind int

const (
	// NoConflict means there is no taxon with the same name.
	NoConflict ConflictKind = iota

	// Duplicate means a taxon with the same name, author and status
	// exists. The write is skipped.
	Duplicate

	// NameCollision means a taxon with the same name but a different
	// author or status exists. The caller decides if the write goes on.
	NameCollision
)

func (k ConflictKind) String() string {
	switch k {
	case Duplicate:
		return "duplicate"
	case NameCollision:
		return "name collision"
	default:
		return "none"
	}
}

// Conflict describes a clash with an existing taxon.
type Conflict struct {
	Kind       ConflictKind
	ExistingID int64
}

// Confirm is asked whether to continue after a NameCollision. A nil
// Confirm continues.
type Confirm func(Conflict) bool

// Outcome is the result of an insert.
type Outcome struct {
	// ID of the inserted taxon, or of the existing one for a Duplicate.
	ID       int64
	Inserted bool
	Conflict Conflict
}

// EditReport lists fields written by Edit.
type EditReport struct {
	Fields []string

	// Reattached is the number of children and synonyms moved to the new
	// accepted name after an accepted taxon became a synonym.
	Reattached int64
}

// DedupOptions configures duplicate cleanup.
type DedupOptions struct {
	// ByAuthor groups taxa by name and author, otherwise by name only.
	ByAuthor bool

	// DryRun only reports what would be removed.
	DryRun bool
}

// DedupGroup is a set of taxa sharing rank and name (and author).
type DedupGroup struct {
	Name       string
	Author     *string
	RankID     int
	SurvivorID int64
	RemovedIDs []int64
}

// DedupReport summarizes duplicate cleanup.
type DedupReport struct {
	Groups           []DedupGroup
	Removed          int64
	CrossRefsRemoved int64
	Reattached       int64
}

// Curator is the consistency and merge engine. Every write that changes
// the hierarchy goes through it.
type Curator interface {
	// Insert adds a taxon after uniqueness and hierarchy checks.
	Insert(ctx context.Context, t NewTaxon, confirm Confirm) (Outcome, error)

	// AddSynonyms pairs names with authors by position and inserts them as
	// synonyms of an accepted taxon. More authors than names is an error
	// and nothing is written.
	AddSynonyms(
		ctx context.Context,
		acceptedID int64,
		names []string,
		authors []string,
	) ([]Outcome, error)

	// AddSynonymText is AddSynonyms for multi-line input with one value
	// per line.
	AddSynonymText(
		ctx context.Context,
		acceptedID int64,
		namesText, authorsText string,
	) ([]Outcome, error)

	// RankChoices returns ranks strictly below the rank of a parent.
	RankChoices(ctx context.Context, parentID int64) ([]Rank, error)

	// Reparent moves a taxon under a new parent.
	Reparent(ctx context.Context, taxonID, parentID int64) error

	// Edit writes fields that differ between snapshot and edited in one
	// transaction.
	Edit(
		ctx context.Context,
		snapshot, edited Taxon,
		confirm Confirm,
	) (EditReport, error)

	// Dedup removes duplicated taxa keeping one survivor per group.
	Dedup(ctx context.Context, opts DedupOptions) (DedupReport, error)
}
