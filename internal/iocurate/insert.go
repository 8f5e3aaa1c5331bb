package iocurate

import (
	"context"
	"log/slog"

	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// Insert adds a taxon. A Duplicate is never inserted, the outcome carries
// the id of the existing taxon instead. A NameCollision is passed to
// confirm.
func (c *curator) Insert(
	ctx context.Context,
	t taxonomy.NewTaxon,
	confirm taxonomy.Confirm,
) (taxonomy.Outcome, error) {
	var res taxonomy.Outcome
	err := c.run(ctx, func(s *session) error {
		var err error
		res, err = s.insert(ctx, t, confirm)
		return err
	})
	if err != nil {
		return taxonomy.Outcome{}, err
	}
	return res, nil
}

func (s *session) insert(
	ctx context.Context,
	t taxonomy.NewTaxon,
	confirm taxonomy.Confirm,
) (taxonomy.Outcome, error) {
	var res taxonomy.Outcome
	t.Name = cleanName(t.Name)
	t.Author = optText(t.Author)
	t.PublishedIn = optText(t.PublishedIn)

	if err := s.validateNew(ctx, t); err != nil {
		return res, err
	}

	conflict, err := s.checkUnique(ctx, t.Name, t.Author, t.StatusID, 0)
	if err != nil {
		return res, err
	}
	res.Conflict = conflict

	switch conflict.Kind {
	case taxonomy.Duplicate:
		slog.Info("Duplicate taxon skipped",
			"name", t.Name, "existing_id", conflict.ExistingID)
		res.ID = conflict.ExistingID
		return res, nil
	case taxonomy.NameCollision:
		if confirm != nil && !confirm(conflict) {
			slog.Info("Name collision declined",
				"name", t.Name, "existing_id", conflict.ExistingID)
			return res, nil
		}
	}

	res.ID, err = s.repo.InsertTaxon(ctx, t)
	if err != nil {
		return taxonomy.Outcome{Conflict: conflict}, err
	}
	res.Inserted = true
	slog.Debug("Taxon inserted", "id", res.ID, "name", t.Name)
	return res, nil
}

// validateNew checks a new taxon against the hierarchy rules: synonyms
// need an accepted parent of the same or a higher rank, other taxa need a
// parent of a higher rank when they have one.
func (s *session) validateNew(ctx context.Context, t taxonomy.NewTaxon) error {
	if t.Name == "" {
		return FieldError("name", "name is empty")
	}
	if _, err := s.repo.Rank(ctx, t.RankID); err != nil {
		return err
	}
	status, err := s.repo.Status(ctx, t.StatusID)
	if err != nil {
		return err
	}

	if t.ParentID == nil {
		if status.IsSynonym {
			return FieldError("parent", "a synonym needs an accepted name")
		}
		return nil
	}

	parent, err := s.parentOf(ctx, *t.ParentID)
	if err != nil {
		return err
	}
	if status.IsSynonym {
		return s.checkSynonymRank(ctx, t.RankID, parent.RankID)
	}
	return s.checkRankOrder(ctx, t.RankID, parent.RankID)
}
