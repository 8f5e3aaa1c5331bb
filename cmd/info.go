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
	"strconv"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type nameItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type childGroup struct {
	Status string     `json:"status"`
	Names  []nameItem `json:"names"`
}

type link struct {
	Source  string `json:"source"`
	Index   string `json:"index"`
	URL     string `json:"url"`
	Trusted bool   `json:"trusted,omitempty"`
}

// taxonInfo is a view of a taxon with its neighbours in the hierarchy.
type taxonInfo struct {
	ID          int64        `json:"id"`
	Label       string       `json:"label"`
	Name        string       `json:"name"`
	Author      *string      `json:"author,omitempty"`
	Year        *int         `json:"year,omitempty"`
	PublishedIn *string      `json:"publishedIn,omitempty"`
	Rank        string       `json:"rank"`
	Status      string       `json:"status"`
	Parent      *nameItem    `json:"parent,omitempty"`
	Synonyms    []nameItem   `json:"synonyms,omitempty"`
	Children    []childGroup `json:"children,omitempty"`
	Links       []link       `json:"links,omitempty"`
}

// getInfoCmd returns the info command.
func getInfoCmd() *cobra.Command {
	var asJSON bool

	infoCmd := &cobra.Command{
		Use:   "info ID|NAME",
		Short: "Show a taxon with its synonyms, children and links",
		Long: `Show a taxon with its status, rank, synonyms, children grouped
by status and links to external databases.

The taxon is given by id or by name. When several taxa share the name
the accepted one is shown.

Examples:
  mlidb info 42
  mlidb info Cladonia
  mlidb info 42 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	infoCmd.Flags().BoolVarP(&asJSON, "json", "j", false,
		"print the taxon as JSON")

	return infoCmd
}

func runInfo(w io.Writer, arg string, asJSON bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := getTaxonInfo(ctx, st, arg)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if asJSON {
		enc := gnfmt.GNjson{Pretty: true}
		out, err := enc.Encode(info)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	printInfo(w, info)
	return nil
}

func getTaxonInfo(
	ctx context.Context,
	st store.Store,
	arg string,
) (taxonInfo, error) {
	var res taxonInfo
	repo := iorepo.New(st)

	id, err := taxonIDByArg(ctx, st, arg)
	if err != nil {
		return res, err
	}

	t, err := repo.Taxon(ctx, id)
	if err != nil {
		return res, err
	}
	rank, err := repo.Rank(ctx, t.RankID)
	if err != nil {
		return res, err
	}
	status, err := repo.Status(ctx, t.StatusID)
	if err != nil {
		return res, err
	}

	res = taxonInfo{
		ID:          t.ID,
		Label:       label.Format(rank.Name, t.Name, t.Author),
		Name:        t.Name,
		Author:      t.Author,
		Year:        t.Year,
		PublishedIn: t.PublishedIn,
		Rank:        rank.Name,
		Status:      status.LocalName,
	}

	if t.ParentID != nil {
		p, err := repo.Taxon(ctx, *t.ParentID)
		if err != nil {
			return res, err
		}
		pRank, err := repo.Rank(ctx, p.RankID)
		if err != nil {
			return res, err
		}
		res.Parent = &nameItem{
			ID:    p.ID,
			Label: label.Format(pRank.Name, p.Name, p.Author),
		}
	}

	syns, err := repo.ListSynonyms(ctx, t.ID)
	if err != nil {
		return res, err
	}
	res.Synonyms = nameItems(syns)

	for _, v := range schema.Statuses() {
		if v.IsSynonym {
			continue
		}
		kids, err := repo.ListChildren(ctx, t.ID, v.ID)
		if err != nil {
			return res, err
		}
		if len(kids) > 0 {
			res.Children = append(res.Children, childGroup{
				Status: v.LocalName,
				Names:  nameItems(kids),
			})
		}
	}

	refs, err := repo.ListCrossRefs(ctx, t.ID)
	if err != nil {
		return res, err
	}
	for _, v := range refs {
		res.Links = append(res.Links, link{
			Source:  v.Source,
			Index:   v.Index,
			URL:     v.Link(),
			Trusted: v.Trusted,
		})
	}
	return res, nil
}

// taxonIDByArg reads an id, or finds a taxon by name preferring accepted
// names.
func taxonIDByArg(ctx context.Context, st store.Store, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}

	l, err := label.Parse(arg)
	if err != nil {
		return 0, err
	}
	where := store.And(store.Eq("name", l.Name))
	if l.Author != nil {
		where = store.And(store.Eq("name", l.Name), store.Eq("author", *l.Author))
	}

	var rows []schema.Taxon
	err = st.Select(ctx, &rows, schema.TableTaxa, where, "status_id", "id")
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, iorepo.NotFoundError("taxon", arg)
	}
	return rows[0].ID, nil
}

func nameItems(es []taxonomy.NameEntry) []nameItem {
	res := make([]nameItem, len(es))
	for i, v := range es {
		res[i] = nameItem{ID: v.ID, Label: label.Format(v.Rank, v.Name, v.Author)}
	}
	return res
}

func printInfo(w io.Writer, info taxonInfo) {
	fmt.Fprintf(w, "%s\n", info.Label)
	fmt.Fprintf(w, "  id: %d, status: %s", info.ID, info.Status)
	if info.Year != nil {
		fmt.Fprintf(w, ", year: %d", *info.Year)
	}
	fmt.Fprintln(w)
	if info.PublishedIn != nil {
		fmt.Fprintf(w, "  published in: %s\n", *info.PublishedIn)
	}
	if info.Parent != nil {
		fmt.Fprintf(w, "  parent: %s [%d]\n", info.Parent.Label, info.Parent.ID)
	}

	if len(info.Synonyms) > 0 {
		fmt.Fprintln(w, "\nSynonyms:")
		printItems(w, info.Synonyms)
	}
	for _, g := range info.Children {
		fmt.Fprintf(w, "\nChildren (%s):\n", g.Status)
		printItems(w, g.Names)
	}
	if len(info.Links) > 0 {
		fmt.Fprintln(w, "\nLinks:")
		for _, v := range info.Links {
			fmt.Fprintf(w, "  %s: %s\n", v.Source, v.URL)
		}
	}
}

func printItems(w io.Writer, items []nameItem) {
	for _, v := range items {
		fmt.Fprintf(w, "  %s [%d]\n", v.Label, v.ID)
	}
}
