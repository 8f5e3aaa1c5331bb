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

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iooptimize"
)

// getOptimizeCmd returns the optimize command.
func getOptimizeCmd() *cobra.Command {
	var withProgress bool

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Refresh derived data and compact the database",
		Long: `Refresh derived data of the database and compact it.

The command:
  1. recomputes name_uuid of taxa whose name or author changed
  2. removes cross-references and checkpoints of deleted taxa
  3. reports taxa whose parent does not exist
  4. runs VACUUM and ANALYZE

It is safe to run optimize any number of times.

Examples:
  mlidb optimize
  mlidb optimize --progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(withProgress)
		},
	}

	optimizeCmd.Flags().BoolVarP(&withProgress, "progress", "p", false,
		"show a progress bar")

	return optimizeCmd
}

func runOptimize(withProgress bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opt := iooptimize.NewOptimizer(st, cfg.JobsNumber, withProgress)
	rep, err := opt.Optimize(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Names updated: <em>%s</em>, removed cross-references: <em>%s</em>, "+
		"removed checkpoints: <em>%s</em>",
		humanize.Comma(rep.NameUUIDs),
		humanize.Comma(rep.CrossRefs),
		humanize.Comma(rep.Checkpoints),
	)
	if len(rep.DanglingParents) > 0 {
		gn.Warn("Taxa with missing parents: <em>%v</em>", rep.DanglingParents)
	}
	return nil
}
