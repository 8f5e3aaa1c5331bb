package iocurate

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/pkg/errcode"
)

// DuplicateError is returned when an edit would make a taxon identical
// to an existing one.
func DuplicateError(name string, existingID int64) error {
	msg := `Taxon <em>%s</em> already exists with id <em>%d</em>

<em>How to fix:</em>
  1. Edit the existing record instead
  2. Run "mlidb dedup" to merge duplicates`

	return &gn.Error{
		Code: errcode.TaxonDuplicateError,
		Msg:  msg,
		Vars: []any{name, existingID},
		Err:  fmt.Errorf("duplicate of taxon %d: %s", existingID, name),
	}
}

// NameCollisionError is returned when a write that collides with another
// taxon of the same name was not confirmed.
func NameCollisionError(name string, existingID int64) error {
	return &gn.Error{
		Code: errcode.TaxonNameCollisionError,
		Msg:  "Name <em>%s</em> is already used by taxon <em>%d</em>, edit cancelled",
		Vars: []any{name, existingID},
		Err:  fmt.Errorf("name collision with taxon %d: %s", existingID, name),
	}
}

// AuthorCountError is returned when more authors than synonym names are
// given.
func AuthorCountError(names, authors int) error {
	msg := `Got <em>%d</em> authors for <em>%d</em> synonyms

<em>How to fix:</em>
  Put one author per line in the same order as the names,
  leave trailing names without authors if they have none`

	return &gn.Error{
		Code: errcode.SynonymAuthorCountError,
		Msg:  msg,
		Vars: []any{authors, names},
		Err:  fmt.Errorf("%d authors for %d synonym names", authors, names),
	}
}

// RankOrderError is returned when a parent is not of a strictly higher
// rank than its child.
func RankOrderError(childRank, parentRank string) error {
	return &gn.Error{
		Code: errcode.RankOrderError,
		Msg:  "Rank <em>%s</em> cannot be placed under rank <em>%s</em>",
		Vars: []any{childRank, parentRank},
		Err: fmt.Errorf("rank %s is not lower than parent rank %s",
			childRank, parentRank),
	}
}

// ParentStatusError is returned when a synonym is used as a parent.
func ParentStatusError(parent, status string) error {
	return &gn.Error{
		Code: errcode.ParentStatusError,
		Msg:  "Taxon <em>%s</em> has status <em>%s</em> and cannot be a parent",
		Vars: []any{parent, status},
		Err:  fmt.Errorf("parent %s has status %s", parent, status),
	}
}

// FieldError is returned for missing or inconsistent taxon fields.
func FieldError(field, reason string) error {
	return &gn.Error{
		Code: errcode.TaxonFieldError,
		Msg:  "Invalid <em>%s</em>: %s",
		Vars: []any{field, reason},
		Err:  fmt.Errorf("invalid %s: %s", field, reason),
	}
}
