package iocurate

import (
	"context"
	"log/slog"

	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// Edit writes every field that differs between snapshot and edited. All
// writes share one transaction, a failure on any of them rolls back the
// whole edit.
//
// When an accepted taxon becomes a synonym its children and synonyms are
// moved to the new accepted name. Cross-references stay with the taxon.
func (c *curator) Edit(
	ctx context.Context,
	snapshot, edited taxonomy.Taxon,
	confirm taxonomy.Confirm,
) (taxonomy.EditReport, error) {
	var res taxonomy.EditReport
	if snapshot.ID == 0 || snapshot.ID != edited.ID {
		return res, FieldError("id", "edited record does not match the snapshot")
	}
	edited.Name = cleanName(edited.Name)
	edited.Author = optText(edited.Author)
	edited.PublishedIn = optText(edited.PublishedIn)

	deltas := diff(snapshot, edited)
	if len(deltas) == 0 {
		return res, nil
	}

	err := c.run(ctx, func(s *session) error {
		oldStatus, err := s.repo.Status(ctx, snapshot.StatusID)
		if err != nil {
			return err
		}
		newStatus, err := s.validateEdit(ctx, edited)
		if err != nil {
			return err
		}

		if changed(deltas, "name", "author", "status_id") {
			if err = s.confirmUnique(ctx, edited, confirm); err != nil {
				return err
			}
		}

		for _, d := range deltas {
			if err = s.repo.SetField(ctx, edited.ID, d.Column, d.Value); err != nil {
				return err
			}
			res.Fields = append(res.Fields, d.Column)
		}

		if changed(deltas, "name", "author") {
			uuid := iorepo.NameUUID(edited.Name, edited.Author)
			if err = s.repo.SetField(ctx, edited.ID, "name_uuid", uuid); err != nil {
				return err
			}
		}

		if !oldStatus.IsSynonym && newStatus.IsSynonym {
			res.Reattached, err = s.reattach(ctx, edited.ID, *edited.ParentID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return taxonomy.EditReport{}, err
	}

	slog.Info("Taxon edited",
		"id", edited.ID, "fields", res.Fields, "reattached", res.Reattached)
	return res, nil
}

// validateEdit checks the edited record as a whole and returns its
// status.
func (s *session) validateEdit(
	ctx context.Context,
	t taxonomy.Taxon,
) (taxonomy.Status, error) {
	var status taxonomy.Status
	if t.Name == "" {
		return status, FieldError("name", "name is empty")
	}
	if _, err := s.repo.Rank(ctx, t.RankID); err != nil {
		return status, err
	}
	status, err := s.repo.Status(ctx, t.StatusID)
	if err != nil {
		return status, err
	}

	if t.ParentID == nil {
		if status.IsSynonym {
			return status, FieldError("parent", "a synonym needs an accepted name")
		}
		return status, s.checkChildRanks(ctx, t.ID, t.RankID)
	}
	if *t.ParentID == t.ID {
		return status, FieldError("parent", "a taxon cannot be its own parent")
	}

	parent, err := s.parentOf(ctx, *t.ParentID)
	if err != nil {
		return status, err
	}

	if status.IsSynonym {
		if parent.ParentID != nil && *parent.ParentID == t.ID {
			return status, FieldError("parent",
				"a taxon cannot become a synonym of its own child")
		}
		if err = s.checkSynonymRank(ctx, t.RankID, parent.RankID); err != nil {
			return status, err
		}
		return status, s.checkChildRanks(ctx, t.ID, parent.RankID)
	}

	if err = s.checkRankOrder(ctx, t.RankID, parent.RankID); err != nil {
		return status, err
	}
	return status, s.checkChildRanks(ctx, t.ID, t.RankID)
}

// checkChildRanks verifies that accepted children of a taxon stay below
// rankID.
func (s *session) checkChildRanks(ctx context.Context, taxonID int64, rankID int) error {
	q := `
SELECT DISTINCT t.rank_id
FROM taxa t
JOIN taxon_statuses s ON s.id = t.status_id
WHERE t.parent_id = ? AND s.is_synonym = ?
ORDER BY t.rank_id`
	var ranks []int
	if err := s.st.Query(ctx, &ranks, q, taxonID, false); err != nil {
		return err
	}
	if len(ranks) == 0 || ranks[0] > rankID {
		return nil
	}
	return s.checkRankOrder(ctx, ranks[0], rankID)
}

func (s *session) confirmUnique(
	ctx context.Context,
	t taxonomy.Taxon,
	confirm taxonomy.Confirm,
) error {
	conflict, err := s.checkUnique(ctx, t.Name, t.Author, t.StatusID, t.ID)
	if err != nil {
		return err
	}
	switch conflict.Kind {
	case taxonomy.Duplicate:
		return DuplicateError(t.Name, conflict.ExistingID)
	case taxonomy.NameCollision:
		if confirm != nil && !confirm(conflict) {
			return NameCollisionError(t.Name, conflict.ExistingID)
		}
	}
	return nil
}

// diff lists columns whose values differ between two versions of a taxon.
func diff(a, b taxonomy.Taxon) []store.Assign {
	var res []store.Assign
	if a.Name != b.Name {
		res = append(res, store.Set("name", b.Name))
	}
	if !samePtr(a.Author, b.Author) {
		res = append(res, store.Set("author", b.Author))
	}
	if !samePtr(a.Year, b.Year) {
		res = append(res, store.Set("year", b.Year))
	}
	if !samePtr(a.PublishedIn, b.PublishedIn) {
		res = append(res, store.Set("published_in", b.PublishedIn))
	}
	if a.RankID != b.RankID {
		res = append(res, store.Set("rank_id", b.RankID))
	}
	if !samePtr(a.ParentID, b.ParentID) {
		res = append(res, store.Set("parent_id", b.ParentID))
	}
	if a.StatusID != b.StatusID {
		res = append(res, store.Set("status_id", b.StatusID))
	}
	return res
}

func changed(deltas []store.Assign, cols ...string) bool {
	for _, d := range deltas {
		for _, c := range cols {
			if d.Column == c {
				return true
			}
		}
	}
	return false
}

func samePtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
