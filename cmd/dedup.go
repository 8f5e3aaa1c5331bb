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

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// getDedupCmd returns the dedup command.
func getDedupCmd() *cobra.Command {
	var opts taxonomy.DedupOptions
	var force bool

	dedupCmd := &cobra.Command{
		Use:   "dedup",
		Short: "Remove duplicated taxa",
		Long: `Remove taxa that share rank, status and name.

With --by-author taxa must also share the author to be duplicates.
One survivor is kept per group. It is the taxon with a trusted
cross-reference, then with more cross-references, then with more
filled fields, then with the lowest id. Children of removed taxa are
moved to the survivor.

The command shows duplicate groups and asks for confirmation unless
--force is given. --dry-run only shows the groups.

Examples:
  mlidb dedup --dry-run
  mlidb dedup --by-author
  mlidb dedup -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd.OutOrStdout(), opts, force)
		},
	}

	dedupCmd.Flags().BoolVarP(&opts.ByAuthor, "by-author", "a", false,
		"compare authors as well as names")
	dedupCmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false,
		"show duplicates without removing them")
	dedupCmd.Flags().BoolVarP(&force, "force", "f", false,
		"remove duplicates without confirmation")

	return dedupCmd
}

func runDedup(w io.Writer, opts taxonomy.DedupOptions, force bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	cur := iocurate.New(st)

	if !opts.DryRun && !force {
		preview, err := cur.Dedup(ctx, taxonomy.DedupOptions{
			ByAuthor: opts.ByAuthor,
			DryRun:   true,
		})
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		if len(preview.Groups) == 0 {
			gn.Info("No duplicates found")
			return nil
		}
		printDedup(w, preview)
		ok, err := askYes("Remove these duplicates?")
		if err != nil {
			return err
		}
		if !ok {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}

	rep, err := cur.Dedup(ctx, opts)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if opts.DryRun {
		printDedup(w, rep)
		return nil
	}
	gn.Info("Removed <em>%s</em> taxa and <em>%s</em> cross-references, "+
		"moved <em>%s</em> children",
		humanize.Comma(rep.Removed),
		humanize.Comma(rep.CrossRefsRemoved),
		humanize.Comma(rep.Reattached),
	)
	return nil
}

func printDedup(w io.Writer, rep taxonomy.DedupReport) {
	for _, g := range rep.Groups {
		fmt.Fprintf(w, "%s: keep %d, remove %v\n",
			label.Format("", g.Name, g.Author), g.SurvivorID, g.RemovedIDs)
	}
	fmt.Fprintf(w, "\n%s groups, %s taxa to remove\n",
		humanize.Comma(int64(len(rep.Groups))), humanize.Comma(rep.Removed))
}
