package iocurate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// AddSynonyms inserts names as synonyms of an accepted taxon. Authors are
// paired with names by position, names without a pair get no author.
// All synonyms are inserted in one transaction.
func (c *curator) AddSynonyms(
	ctx context.Context,
	acceptedID int64,
	names []string,
	authors []string,
) ([]taxonomy.Outcome, error) {
	if len(authors) > len(names) {
		return nil, AuthorCountError(len(names), len(authors))
	}

	res := make([]taxonomy.Outcome, 0, len(names))
	err := c.run(ctx, func(s *session) error {
		accepted, err := s.parentOf(ctx, acceptedID)
		if err != nil {
			return err
		}

		for i, name := range names {
			name = cleanName(name)
			if name == "" {
				return FieldError("synonym name",
					fmt.Sprintf("line %d is empty", i+1))
			}
			var author *string
			if i < len(authors) {
				author = label.Opt(authors[i])
			}

			out, err := s.insert(ctx, taxonomy.NewTaxon{
				Name:     name,
				Author:   author,
				RankID:   accepted.RankID,
				ParentID: &acceptedID,
				StatusID: schema.StatusSynonym,
			}, nil)
			if err != nil {
				return err
			}
			res = append(res, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Synonyms added", "accepted_id", acceptedID, "names", len(names))
	return res, nil
}

// AddSynonymText splits multi-line input into names and authors and
// calls AddSynonyms. An empty author line means the name has no author.
func (c *curator) AddSynonymText(
	ctx context.Context,
	acceptedID int64,
	namesText, authorsText string,
) ([]taxonomy.Outcome, error) {
	names := label.SplitLines(namesText)
	authors := label.SplitLines(authorsText)
	return c.AddSynonyms(ctx, acceptedID, names, authors)
}
