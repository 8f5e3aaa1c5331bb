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
	"github.com/tagezi/mlidb/internal/ioinat"
)

// getINatCmd returns the inat command.
func getINatCmd() *cobra.Command {
	var withProgress bool

	inatCmd := &cobra.Command{
		Use:   "inat FILE",
		Short: "Import iNaturalist ids from a CSV file",
		Long: `Import iNaturalist taxon ids from a CSV file.

The file needs a header with Name and ID columns. ID can be a number or
a taxon URL like https://www.inaturalist.org/taxa/54134-Cladonia.
The id is added to the accepted taxon with the same name unless the
taxon already has an iNaturalist id.

The field delimiter is set by import.delimiter in the configuration
file (";" by default).

Examples:
  mlidb inat lichens.csv
  mlidb inat lichens.csv --progress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runINat(args[0], withProgress)
		},
	}

	inatCmd.Flags().BoolVarP(&withProgress, "progress", "p", false,
		"show a progress bar")

	return inatCmd
}

func runINat(path string, withProgress bool) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	im := ioinat.New(cfg.Import, st)
	im.WithProgress = withProgress

	rep, err := im.ImportFile(ctx, path)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Rows: <em>%s</em>, added: <em>%s</em>, already linked: <em>%s</em>",
		humanize.Comma(int64(rep.Rows)),
		humanize.Comma(int64(rep.Added)),
		humanize.Comma(int64(rep.Existing)),
	)
	if rep.Missing > 0 {
		gn.Warn("<em>%s</em> names are not in the database",
			humanize.Comma(int64(rep.Missing)))
	}
	if rep.Invalid > 0 {
		gn.Warn("<em>%d</em> rows have no name or id", rep.Invalid)
	}
	return nil
}
