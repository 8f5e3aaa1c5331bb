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
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iovocab"
	"github.com/tagezi/mlidb/pkg/label"
	"github.com/tagezi/mlidb/pkg/vocab"
)

// getVocabCmd returns the vocab command with its subcommands.
func getVocabCmd() *cobra.Command {
	vocabCmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage substrates and colors",
		Long: `Manage vocabularies used in lichen descriptions.

Substrates are unique by name. Colors are unique by name and by HEX
code, HEX codes have "#RRGGBB" form.

Examples:
  mlidb vocab substrates
  mlidb vocab add-substrate bark --local "кора"
  mlidb vocab rename-substrate 3 "wood" --local "древесина"
  mlidb vocab add-color "olive green" --hex 6B8E23
  mlidb vocab edit-color 5 olive --hex "#808000"`,
	}

	vocabCmd.AddCommand(
		getSubstratesCmd(),
		getAddSubstrateCmd(),
		getRenameSubstrateCmd(),
		getColorsCmd(),
		getAddColorCmd(),
		getEditColorCmd(),
	)
	return vocabCmd
}

func getSubstratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "substrates",
		Short: "List substrates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				ss, err := v.Substrates(ctx)
				if err != nil {
					return err
				}
				printSubstrates(cmd.OutOrStdout(), ss)
				return nil
			})
		},
	}
}

func getAddSubstrateCmd() *cobra.Command {
	var local string
	cmd := &cobra.Command{
		Use:   "add-substrate NAME",
		Short: "Add a substrate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				id, err := v.AddSubstrate(ctx, vocab.Substrate{
					Name:      args[0],
					LocalName: label.Opt(local),
				})
				if err != nil {
					return err
				}
				gn.Info("Added substrate <em>%d</em>", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&local, "local", "l", "", "local name")
	return cmd
}

func getRenameSubstrateCmd() *cobra.Command {
	var local string
	cmd := &cobra.Command{
		Use:   "rename-substrate ID NAME",
		Short: "Rename a substrate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vocabID(args[0])
			if err != nil {
				return err
			}
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				err := v.RenameSubstrate(ctx, vocab.Substrate{
					ID:        id,
					Name:      args[1],
					LocalName: label.Opt(local),
				})
				if err != nil {
					return err
				}
				gn.Info("Renamed substrate <em>%d</em>", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&local, "local", "l", "", "local name")
	return cmd
}

func getColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				cs, err := v.Colors(ctx)
				if err != nil {
					return err
				}
				printColors(cmd.OutOrStdout(), cs)
				return nil
			})
		},
	}
}

func getAddColorCmd() *cobra.Command {
	var local, hex string
	cmd := &cobra.Command{
		Use:   "add-color NAME",
		Short: "Add a color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				id, err := v.AddColor(ctx, vocab.Color{
					Name:      args[0],
					LocalName: label.Opt(local),
					HEX:       label.Opt(hex),
				})
				if err != nil {
					return err
				}
				gn.Info("Added color <em>%d</em>", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&local, "local", "l", "", "local name")
	cmd.Flags().StringVar(&hex, "hex", "", "RGB code like #6B8E23")
	return cmd
}

func getEditColorCmd() *cobra.Command {
	var local, hex string
	cmd := &cobra.Command{
		Use:   "edit-color ID NAME",
		Short: "Change names and HEX code of a color",
		Long: `Change names and HEX code of a color.

The color gets exactly the given values: a missing --local or --hex
clears the field.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vocabID(args[0])
			if err != nil {
				return err
			}
			return withVocab(func(ctx context.Context, v vocab.Vocabulary) error {
				err := v.EditColor(ctx, vocab.Color{
					ID:        id,
					Name:      args[1],
					LocalName: label.Opt(local),
					HEX:       label.Opt(hex),
				})
				if err != nil {
					return err
				}
				gn.Info("Changed color <em>%d</em>", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&local, "local", "l", "", "local name")
	cmd.Flags().StringVar(&hex, "hex", "", "RGB code like #6B8E23")
	return cmd
}

// withVocab opens the store and runs fn with a vocabulary on it.
func withVocab(fn func(context.Context, vocab.Vocabulary) error) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err = fn(ctx, iovocab.New(st)); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}

func vocabID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		err = iovocab.FieldError("id", err.Error())
		gn.PrintErrorMessage(err)
		return 0, err
	}
	return id, nil
}

func printSubstrates(w io.Writer, ss []vocab.Substrate) {
	for _, v := range ss {
		fmt.Fprintf(w, "%4d  %s", v.ID, v.Name)
		if v.LocalName != nil {
			fmt.Fprintf(w, " (%s)", *v.LocalName)
		}
		fmt.Fprintln(w)
	}
}

func printColors(w io.Writer, cs []vocab.Color) {
	for _, v := range cs {
		hex := "       "
		if v.HEX != nil {
			hex = *v.HEX
		}
		fmt.Fprintf(w, "%4d  %s  %s", v.ID, hex, v.Name)
		if v.LocalName != nil {
			fmt.Fprintf(w, " (%s)", *v.LocalName)
		}
		fmt.Fprintln(w)
	}
}
