package iocurate

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type dupKey struct {
	RankID   int
	StatusID int
	Name     string
	Author   *string
}

// candidate is a member of a duplicate group with its survivor score.
type candidate struct {
	id        int64
	trusted   int
	refs      int
	populated int
}

// Dedup finds taxa that share rank, status and name (and author when
// opts.ByAuthor is set) and keeps one survivor per group. Survivors are
// chosen by trusted cross-references, then by the number of
// cross-references, then by the number of filled optional fields, then
// by the lowest id. Children of removed taxa are moved to the survivor,
// their cross-references and checkpoints are deleted before them.
func (c *curator) Dedup(
	ctx context.Context,
	opts taxonomy.DedupOptions,
) (taxonomy.DedupReport, error) {
	var res taxonomy.DedupReport
	keys, err := c.duplicateKeys(ctx, opts.ByAuthor)
	if err != nil {
		return res, err
	}
	slog.Info("Duplicate groups found",
		"groups", humanize.Comma(int64(len(keys))), "dry_run", opts.DryRun)

	for _, k := range keys {
		var group taxonomy.DedupGroup
		err = c.run(ctx, func(s *session) error {
			var err error
			group, err = s.dedupGroup(ctx, k, opts, &res)
			return err
		})
		if err != nil {
			return res, err
		}
		if len(group.RemovedIDs) > 0 {
			res.Groups = append(res.Groups, group)
		}
	}

	slog.Info("Duplicates removed",
		"taxa", humanize.Comma(res.Removed),
		"cross_refs", humanize.Comma(res.CrossRefsRemoved),
		"reattached", humanize.Comma(res.Reattached),
		"dry_run", opts.DryRun,
	)
	return res, nil
}

func (c *curator) duplicateKeys(
	ctx context.Context,
	byAuthor bool,
) ([]dupKey, error) {
	q := `
SELECT rank_id, status_id, name
FROM taxa
GROUP BY rank_id, status_id, name
HAVING COUNT(*) > 1
ORDER BY rank_id, name`
	if byAuthor {
		q = `
SELECT rank_id, status_id, name, author
FROM taxa
GROUP BY rank_id, status_id, name, author
HAVING COUNT(*) > 1
ORDER BY rank_id, name`
	}

	var res []dupKey
	if err := c.st.Query(ctx, &res, q); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *session) dedupGroup(
	ctx context.Context,
	k dupKey,
	opts taxonomy.DedupOptions,
	report *taxonomy.DedupReport,
) (taxonomy.DedupGroup, error) {
	res := taxonomy.DedupGroup{Name: k.Name, Author: k.Author, RankID: k.RankID}

	conds := []store.Cond{
		store.Eq("rank_id", k.RankID),
		store.Eq("status_id", k.StatusID),
		store.Eq("name", k.Name),
	}
	if opts.ByAuthor {
		conds = append(conds, store.Eq("author", k.Author))
	}
	var rows []schema.Taxon
	err := s.st.Select(ctx, &rows, schema.TableTaxa, store.And(conds...), "id")
	if err != nil || len(rows) < 2 {
		return res, err
	}

	cands := make([]candidate, len(rows))
	for i, v := range rows {
		cands[i], err = s.score(ctx, v)
		if err != nil {
			return res, err
		}
	}
	slices.SortFunc(cands, compareCandidates)

	res.SurvivorID = cands[0].id
	for _, v := range cands[1:] {
		res.RemovedIDs = append(res.RemovedIDs, v.id)
	}

	for _, id := range res.RemovedIDs {
		refs, children, err := s.removeDuplicate(ctx, id, res.SurvivorID, opts.DryRun)
		if err != nil {
			return res, err
		}
		report.CrossRefsRemoved += refs
		report.Reattached += children
		report.Removed++
	}

	slog.Info("Duplicate group resolved",
		"name", k.Name, "survivor", res.SurvivorID, "removed", res.RemovedIDs)
	return res, nil
}

func (s *session) score(ctx context.Context, t schema.Taxon) (candidate, error) {
	res := candidate{id: t.ID}
	refs, err := s.repo.ListCrossRefs(ctx, t.ID)
	if err != nil {
		return res, err
	}
	res.refs = len(refs)
	for _, v := range refs {
		if v.Trusted {
			res.trusted++
		}
	}

	for _, filled := range []bool{
		t.Author != nil,
		t.Year != nil,
		t.PublishedIn != nil,
		t.EnName != nil,
		t.LocalName != nil,
	} {
		if filled {
			res.populated++
		}
	}
	return res, nil
}

func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(b.trusted, a.trusted); c != 0 {
		return c
	}
	if c := cmp.Compare(b.refs, a.refs); c != 0 {
		return c
	}
	if c := cmp.Compare(b.populated, a.populated); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// removeDuplicate moves children of a duplicate to the survivor, deletes
// its cross-references and checkpoints, and deletes the duplicate itself.
// In dry-run mode it only counts.
func (s *session) removeDuplicate(
	ctx context.Context,
	id, survivorID int64,
	dryRun bool,
) (int64, int64, error) {
	byTaxon := store.And(store.Eq("taxon_id", id))
	byParent := store.And(store.Eq("parent_id", id))

	if dryRun {
		refs, err := s.st.Count(ctx, schema.TableIndexes, byTaxon)
		if err != nil {
			return 0, 0, err
		}
		children, err := s.st.Count(ctx, schema.TableTaxa, byParent)
		return refs, children, err
	}

	children, err := s.reattach(ctx, id, survivorID)
	if err != nil {
		return 0, 0, err
	}
	refs, err := s.st.Delete(ctx, schema.TableIndexes, byTaxon)
	if err != nil {
		return 0, 0, err
	}
	if _, err = s.st.Delete(ctx, schema.TableCheckpoints, byTaxon); err != nil {
		return 0, 0, err
	}
	if _, err = s.st.Delete(ctx, schema.TableTaxa,
		store.And(store.Eq("id", id))); err != nil {
		return 0, 0, err
	}
	return refs, children, nil
}
