/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type addInput struct {
	label       string
	rank        string
	status      string
	parentID    int64
	year        *int
	publishedIn *string
}

// getAddCmd returns the add command.
func getAddCmd() *cobra.Command {
	var in addInput
	var yes bool

	addCmd := &cobra.Command{
		Use:   "add LABEL",
		Short: "Add a taxon to the hierarchy",
		Long: `Add a taxon given by its label.

A label has an optional rank annotation in parentheses, a name and an
optional author after the first comma:

  (Genus) Cladonia, P.Browne
  (Species) Cladonia rangiferina, (L.) F.H.Wigg.

The rank of the new taxon must be lower than the rank of its parent and
the parent must be an accepted name. Without a rank the command lists
ranks allowed under the parent.

A taxon with the same name, author and status is never added twice.
When only the name matches, the command asks for confirmation unless
--yes is given.

Examples:
  mlidb add "(Kingdom) Fungi"
  mlidb add "(Genus) Cladonia, P.Browne" --parent 42 --year 1756
  mlidb add "Cladonia" -p 42 -r genus`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.label = args[0]
			in.year, _ = optInt(cmd, "year")
			in.publishedIn, _ = optString(cmd, "published-in")
			return runAdd(cmd, in, yes)
		},
	}

	addCmd.Flags().Int64VarP(&in.parentID, "parent", "p", 0,
		"id of the parent taxon")
	addCmd.Flags().StringVarP(&in.rank, "rank", "r", "",
		"rank of the taxon, overrides the rank of the label")
	addCmd.Flags().StringVarP(&in.status, "status", "s", "accepted",
		"status of the taxon")
	addCmd.Flags().Int("year", 0, "year of publication")
	addCmd.Flags().String("published-in", "", "place of publication")
	addCmd.Flags().BoolVarP(&yes, "yes", "y", false,
		"add the taxon even if its name is taken")

	return addCmd
}

func runAdd(cmd *cobra.Command, in addInput, yes bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := addTaxon(ctx, st, in, confirmFunc(yes))
	if err != nil {
		gn.PrintErrorMessage(err)
		if in.parentID > 0 && strings.TrimSpace(in.rank) == "" {
			printRankChoices(ctx, st, cmd.OutOrStdout(), in.parentID)
		}
		return err
	}

	switch {
	case out.Inserted:
		gn.Info("Added taxon <em>%d</em>", out.ID)
	case out.Conflict.Kind == taxonomy.Duplicate:
		gn.Warn("The taxon already exists (id <em>%d</em>)", out.ID)
	default:
		gn.Info("Aborted. No changes made.")
	}
	return nil
}

// addTaxon parses a label and inserts the taxon through the curator.
func addTaxon(
	ctx context.Context,
	st store.Store,
	in addInput,
	confirm taxonomy.Confirm,
) (taxonomy.Outcome, error) {
	var res taxonomy.Outcome
	repo := iorepo.New(st)

	l, err := label.Parse(in.label)
	if err != nil {
		return res, err
	}

	rankName := in.rank
	if strings.TrimSpace(rankName) == "" {
		rankName = l.Rank
	}
	rank, err := rankByName(ctx, repo, rankName)
	if err != nil {
		return res, err
	}

	status, err := statusByName(ctx, repo, in.status)
	if err != nil {
		return res, err
	}

	t := taxonomy.NewTaxon{
		Name:        l.Name,
		Author:      l.Author,
		Year:        in.year,
		PublishedIn: in.publishedIn,
		RankID:      rank.ID,
		StatusID:    status.ID,
	}
	if in.parentID > 0 {
		t.ParentID = &in.parentID
	}

	return iocurate.New(st).Insert(ctx, t, confirm)
}

func rankByName(
	ctx context.Context,
	repo taxonomy.Repository,
	name string,
) (taxonomy.Rank, error) {
	if strings.TrimSpace(name) == "" {
		return taxonomy.Rank{}, iocurate.FieldError("rank", "rank is missing")
	}
	rank, ok, err := repo.RankByEnName(ctx, name)
	if err != nil {
		return rank, err
	}
	if !ok {
		return rank, iocurate.FieldError("rank", fmt.Sprintf("unknown rank %q", name))
	}
	return rank, nil
}

func statusByName(
	ctx context.Context,
	repo taxonomy.Repository,
	name string,
) (taxonomy.Status, error) {
	status, ok, err := repo.StatusByName(ctx, name)
	if err != nil {
		return status, err
	}
	if !ok {
		return status, iocurate.FieldError("status", fmt.Sprintf("unknown status %q", name))
	}
	return status, nil
}

func printRankChoices(
	ctx context.Context,
	st store.Store,
	w io.Writer,
	parentID int64,
) {
	ranks, err := iocurate.New(st).RankChoices(ctx, parentID)
	if err != nil || len(ranks) == 0 {
		return
	}
	names := make([]string, len(ranks))
	for i, v := range ranks {
		names[i] = v.EnName
	}
	fmt.Fprintf(w, "Ranks allowed under taxon %d: %s\n",
		parentID, strings.Join(names, ", "))
}
