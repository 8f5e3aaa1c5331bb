// Package iocurate implements taxonomy.Curator, the engine that keeps
// names, ranks, statuses and parent links consistent. Every write is
// validated before it reaches the store and multi-row changes run inside
// one transaction.
package iocurate

import (
	"context"
	"strings"

	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type curator struct {
	st store.Store
}

// New creates a Curator that writes through st.
func New(st store.Store) taxonomy.Curator {
	return &curator{st: st}
}

// session bundles a store handle with a repository over the same handle,
// usually a transaction.
type session struct {
	st   store.Store
	repo taxonomy.Repository
}

func newSession(st store.Store) *session {
	return &session{st: st, repo: iorepo.New(st)}
}

// run executes fn in a transaction.
func (c *curator) run(ctx context.Context, fn func(s *session) error) error {
	return c.st.Transaction(ctx, func(tx store.Store) error {
		return fn(newSession(tx))
	})
}

// checkUnique looks for taxa with the same name as the candidate. A
// taxon with the same author and status is a Duplicate, any other taxon
// with that name is a NameCollision. selfID is excluded from the search.
func (s *session) checkUnique(
	ctx context.Context,
	name string,
	author *string,
	statusID int,
	selfID int64,
) (taxonomy.Conflict, error) {
	var res taxonomy.Conflict
	var rows []schema.Taxon
	err := s.st.Select(ctx, &rows, schema.TableTaxa, store.And(
		store.Eq("name", name),
		store.Ne("id", selfID),
	), "id")
	if err != nil {
		return res, err
	}

	for _, v := range rows {
		if v.StatusID == statusID && samePtr(v.Author, author) {
			return taxonomy.Conflict{
				Kind:       taxonomy.Duplicate,
				ExistingID: v.ID,
			}, nil
		}
		if res.Kind == taxonomy.NoConflict {
			res = taxonomy.Conflict{
				Kind:       taxonomy.NameCollision,
				ExistingID: v.ID,
			}
		}
	}
	return res, nil
}

// parentOf loads a parent taxon and refuses synonyms as parents.
func (s *session) parentOf(
	ctx context.Context,
	parentID int64,
) (taxonomy.Taxon, error) {
	parent, err := s.repo.Taxon(ctx, parentID)
	if err != nil {
		return parent, err
	}
	st, err := s.repo.Status(ctx, parent.StatusID)
	if err != nil {
		return parent, err
	}
	if st.IsSynonym {
		return parent, ParentStatusError(parent.Name, st.Name)
	}
	return parent, nil
}

// checkRankOrder verifies that the parent rank is strictly higher than
// the rank of the child.
func (s *session) checkRankOrder(
	ctx context.Context,
	childRankID, parentRankID int,
) error {
	child, err := s.repo.Rank(ctx, childRankID)
	if err != nil {
		return err
	}
	parent, err := s.repo.Rank(ctx, parentRankID)
	if err != nil {
		return err
	}
	if !parent.Higher(child) {
		return RankOrderError(child.Name, parent.Name)
	}
	return nil
}

// checkSynonymRank verifies that a synonym is not of a higher rank than
// its accepted name.
func (s *session) checkSynonymRank(
	ctx context.Context,
	synonymRankID, acceptedRankID int,
) error {
	syn, err := s.repo.Rank(ctx, synonymRankID)
	if err != nil {
		return err
	}
	accepted, err := s.repo.Rank(ctx, acceptedRankID)
	if err != nil {
		return err
	}
	if syn.Higher(accepted) {
		return RankOrderError(syn.Name, accepted.Name)
	}
	return nil
}

// reattach moves every child and synonym of fromID to toID.
func (s *session) reattach(ctx context.Context, fromID, toID int64) (int64, error) {
	return s.st.Update(ctx, schema.TableTaxa,
		[]store.Assign{store.Set("parent_id", toID)},
		store.And(store.Eq("parent_id", fromID)),
	)
}

func cleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// optText trims a. Empty text becomes nil.
func optText(a *string) *string {
	if a == nil {
		return nil
	}
	return label.Opt(*a)
}
