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
	"strconv"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// editInput keeps the changes requested by the user. A nil field is left
// as it is.
type editInput struct {
	label       *string
	author      *string
	year        *int
	publishedIn *string
	rank        *string
	status      *string
	parentID    *int64

	clearAuthor      bool
	clearYear        bool
	clearPublishedIn bool
}

// getEditCmd returns the edit command.
func getEditCmd() *cobra.Command {
	var yes bool

	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a taxon",
		Long: `Change fields of a taxon. Only the flags given are changed.

All changes are written in one transaction: if one of them breaks the
hierarchy nothing is written. An empty value clears an optional field.

When an accepted taxon becomes a synonym, --parent must point to its
new accepted name. Children and synonyms of the taxon move to that
name, cross-references stay with the taxon.

Examples:
  mlidb edit 42 --label "Cladonia, P.Browne"
  mlidb edit 42 --year 1756 --published-in "Civ. Nat. Hist. Jamaica"
  mlidb edit 42 --status synonym --parent 17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				err = iocurate.FieldError("id", err.Error())
				gn.PrintErrorMessage(err)
				return err
			}
			in := editFlags(cmd)
			return runEdit(id, in, yes)
		},
	}

	editCmd.Flags().StringP("label", "l", "", "new name and author as a label")
	editCmd.Flags().String("author", "", "new author")
	editCmd.Flags().Int("year", 0, "new year of publication")
	editCmd.Flags().String("published-in", "", "new place of publication")
	editCmd.Flags().StringP("rank", "r", "", "new rank")
	editCmd.Flags().StringP("status", "s", "", "new status")
	editCmd.Flags().Int64P("parent", "p", 0, "id of the new parent")
	editCmd.Flags().BoolVarP(&yes, "yes", "y", false,
		"save the taxon even if its name is taken")

	return editCmd
}

func editFlags(cmd *cobra.Command) editInput {
	var res editInput
	var ok bool
	res.label, _ = optString(cmd, "label")
	if res.author, ok = optString(cmd, "author"); ok && res.author == nil {
		res.clearAuthor = true
	}
	if res.year, ok = optInt(cmd, "year"); ok && res.year == nil {
		res.clearYear = true
	}
	if res.publishedIn, ok = optString(cmd, "published-in"); ok && res.publishedIn == nil {
		res.clearPublishedIn = true
	}
	res.rank, _ = optString(cmd, "rank")
	res.status, _ = optString(cmd, "status")
	if cmd.Flags().Changed("parent") {
		id, _ := cmd.Flags().GetInt64("parent")
		res.parentID = &id
	}
	return res
}

func runEdit(id int64, in editInput, yes bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := editTaxon(ctx, st, id, in, confirmFunc(yes))
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if len(rep.Fields) == 0 {
		gn.Info("Nothing to change")
		return nil
	}
	gn.Info("Changed: <em>%s</em>", strings.Join(rep.Fields, ", "))
	if rep.Reattached > 0 {
		gn.Info("Moved <em>%d</em> children and synonyms to the accepted name",
			rep.Reattached)
	}
	return nil
}

// editTaxon applies the changes to a snapshot of the taxon and saves them
// through the curator.
func editTaxon(
	ctx context.Context,
	st store.Store,
	id int64,
	in editInput,
	confirm taxonomy.Confirm,
) (taxonomy.EditReport, error) {
	var res taxonomy.EditReport
	repo := iorepo.New(st)

	snapshot, err := repo.Taxon(ctx, id)
	if err != nil {
		return res, err
	}
	edited := snapshot

	if in.label != nil {
		l, err := label.Parse(*in.label)
		if err != nil {
			return res, err
		}
		edited.Name = l.Name
		edited.Author = l.Author
		if l.Rank != "" && in.rank == nil {
			in.rank = &l.Rank
		}
	}
	switch {
	case in.author != nil:
		edited.Author = in.author
	case in.clearAuthor:
		edited.Author = nil
	}
	switch {
	case in.year != nil:
		edited.Year = in.year
	case in.clearYear:
		edited.Year = nil
	}
	switch {
	case in.publishedIn != nil:
		edited.PublishedIn = in.publishedIn
	case in.clearPublishedIn:
		edited.PublishedIn = nil
	}
	if in.rank != nil {
		rank, err := rankByName(ctx, repo, *in.rank)
		if err != nil {
			return res, err
		}
		edited.RankID = rank.ID
	}
	if in.status != nil {
		status, err := statusByName(ctx, repo, *in.status)
		if err != nil {
			return res, err
		}
		edited.StatusID = status.ID
	}
	if in.parentID != nil {
		edited.ParentID = nil
		if *in.parentID > 0 {
			edited.ParentID = in.parentID
		}
	}

	return iocurate.New(st).Edit(ctx, snapshot, edited, confirm)
}
