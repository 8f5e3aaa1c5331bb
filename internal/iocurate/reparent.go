package iocurate

import (
	"context"
	"log/slog"

	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// RankChoices returns ranks that a child of parentID may have.
func (c *curator) RankChoices(
	ctx context.Context,
	parentID int64,
) ([]taxonomy.Rank, error) {
	s := newSession(c.st)
	parentRank, err := s.repo.RankOf(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ranks, err := s.repo.Ranks(ctx)
	if err != nil {
		return nil, err
	}

	var res []taxonomy.Rank
	for _, v := range ranks {
		if parentRank.Higher(v) {
			res = append(res, v)
		}
	}
	return res, nil
}

// Reparent moves a taxon under a new parent. Nothing is written unless
// the parent is accepted and of a higher rank. A synonym may also share
// the rank of its accepted name.
func (c *curator) Reparent(ctx context.Context, taxonID, parentID int64) error {
	if taxonID == parentID {
		return FieldError("parent", "a taxon cannot be its own parent")
	}

	return c.run(ctx, func(s *session) error {
		t, err := s.repo.Taxon(ctx, taxonID)
		if err != nil {
			return err
		}
		parent, err := s.parentOf(ctx, parentID)
		if err != nil {
			return err
		}
		status, err := s.repo.Status(ctx, t.StatusID)
		if err != nil {
			return err
		}
		if status.IsSynonym {
			err = s.checkSynonymRank(ctx, t.RankID, parent.RankID)
		} else {
			err = s.checkRankOrder(ctx, t.RankID, parent.RankID)
		}
		if err != nil {
			return err
		}

		if err = s.repo.SetField(ctx, taxonID, "parent_id", parentID); err != nil {
			return err
		}
		slog.Info("Taxon reparented", "id", taxonID, "parent_id", parentID)
		return nil
	})
}
