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

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocurate"
)

// getMoveCmd returns the move command.
func getMoveCmd() *cobra.Command {
	moveCmd := &cobra.Command{
		Use:   "move ID PARENT_ID",
		Short: "Attach a taxon to another parent",
		Long: `Attach a taxon to another parent.

The parent must be an accepted taxon. Taxa that are not synonyms need
a parent of a higher rank.

Examples:
  mlidb move 60 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, len(args))
			for i, v := range args {
				id, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					err = iocurate.FieldError("id", err.Error())
					gn.PrintErrorMessage(err)
					return err
				}
				ids[i] = id
			}
			return runMove(ids[0], ids[1])
		},
	}

	return moveCmd
}

func runMove(taxonID, parentID int64) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err = iocurate.New(st).Reparent(ctx, taxonID, parentID); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Taxon <em>%d</em> moved under <em>%d</em>", taxonID, parentID)
	return nil
}
