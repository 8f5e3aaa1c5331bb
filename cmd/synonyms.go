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
	"os"
	"strconv"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/internal/iofs"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// getSynonymsCmd returns the synonyms command.
func getSynonymsCmd() *cobra.Command {
	var authors []string
	var namesFile, authorsFile string

	synCmd := &cobra.Command{
		Use:   "synonyms ACCEPTED_ID [NAME...]",
		Short: "Add synonyms to an accepted taxon",
		Long: `Add synonyms to an accepted taxon.

Names are given as arguments or in a file with one name per line.
Authors are paired with names by position: the first author belongs to
the first name and so on. An empty author line leaves the name without
an author. More authors than names is an error and nothing is added.

Synonyms get the rank of the accepted taxon. Duplicates are skipped.

Examples:
  mlidb synonyms 42 Cenomyce --author Ach.
  mlidb synonyms 42 "Cladina rangiferina" Cenomyce -a "(L.) Nyl." -a Ach.
  mlidb synonyms 42 --names-file names.txt --authors-file authors.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				err = iocurate.FieldError("accepted id", err.Error())
				gn.PrintErrorMessage(err)
				return err
			}
			return runSynonyms(id, args[1:], authors, namesFile, authorsFile)
		},
	}

	synCmd.Flags().StringArrayVarP(&authors, "author", "a", nil,
		"author of a synonym, repeat in the order of names")
	synCmd.Flags().StringVar(&namesFile, "names-file", "",
		"file with one synonym name per line")
	synCmd.Flags().StringVar(&authorsFile, "authors-file", "",
		"file with one author per line")

	return synCmd
}

func runSynonyms(
	acceptedID int64,
	names, authors []string,
	namesFile, authorsFile string,
) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	cur := iocurate.New(st)

	var res []taxonomy.Outcome
	if namesFile != "" {
		var namesText, authorsText string
		if namesText, err = readText(namesFile); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		if authorsFile != "" {
			if authorsText, err = readText(authorsFile); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
		}
		res, err = cur.AddSynonymText(ctx, acceptedID, namesText, authorsText)
	} else {
		res, err = cur.AddSynonyms(ctx, acceptedID, names, authors)
	}
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	added, skipped := countOutcomes(res)
	gn.Info("Added <em>%d</em> synonyms, skipped <em>%d</em> duplicates",
		added, skipped)
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", iofs.ReadFileError(path, err)
	}
	return string(data), nil
}

func countOutcomes(outs []taxonomy.Outcome) (added, skipped int) {
	for _, v := range outs {
		if v.Inserted {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped
}
