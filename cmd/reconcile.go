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
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iocache"
	"github.com/tagezi/mlidb/internal/iofs"
	"github.com/tagezi/mlidb/internal/iogbif"
	"github.com/tagezi/mlidb/internal/ioreconcile"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/parserpool"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"github.com/tagezi/mlidb/pkg/store"
)

// getReconcileCmd returns the reconcile command.
func getReconcileCmd() *cobra.Command {
	var ranks []string
	var withProgress, cleanCache bool

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Import children and synonyms from the species API",
		Long: `Reconcile accepted taxa of given ranks with a GBIF-like species API.

For every local taxon the command finds its remote counterpart, fills
empty author and year, and imports remote children and synonyms that
belong to lichens according to the whitelist
(~/.config/mlidb/whitelist.yaml). Populated local fields are never
overwritten.

Finished passes are saved as checkpoints, so an interrupted run goes on
where it stopped. Ranks run from higher to lower: taxa imported as
children of one rank are reconciled when the next rank runs.

Remote answers are cached in ~/.cache/mlidb/reconcile. Use --clean-cache
to drop the cache before the run.

Examples:
  mlidb reconcile --rank genus
  mlidb reconcile -r genus -r species --progress
  mlidb reconcile --rank all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Update([]config.Option{
				config.OptReconcileWithProgress(withProgress),
			})
			return runReconcile(ranks, cleanCache)
		},
	}

	reconcileCmd.Flags().StringArrayVarP(&ranks, "rank", "r",
		[]string{"genus"}, "rank to reconcile, repeat for several or use 'all'")
	reconcileCmd.Flags().BoolVarP(&withProgress, "progress", "p", false,
		"show a progress bar")
	reconcileCmd.Flags().BoolVar(&cleanCache, "clean-cache", false,
		"remove cached API responses before the run")

	return reconcileCmd
}

func runReconcile(rankNames []string, cleanCache bool) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	wl, err := iofs.LoadWhitelist(cfg.HomeDir)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rankIDs, err := reconcileRanks(ctx, st, rankNames)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cache, err := iocache.New(config.ReconcileCacheDir(cfg.HomeDir), cleanCache)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = cache.Open(); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer cache.Close()

	pool := parserpool.NewPool(cfg.JobsNumber)
	defer pool.Close()

	rec := ioreconcile.New(
		cfg.Reconcile,
		st,
		iogbif.NewClient(cfg.Reconcile, cache),
		iogbif.NewNormalizer(pool),
		wl,
	)

	gn.Info("Reconciling with <em>%s</em>", cfg.Reconcile.APIURL)
	stats, err := rec.Run(ctx, rankIDs...)
	printStats(stats)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}

// reconcileRanks converts rank names to ids. "all" selects every rank.
func reconcileRanks(
	ctx context.Context,
	st store.Store,
	names []string,
) ([]int, error) {
	repo := iorepo.New(st)
	var res []int
	for _, v := range names {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return nil, nil
		}
		rank, err := rankByName(ctx, repo, v)
		if err != nil {
			return nil, err
		}
		res = append(res, rank.ID)
	}
	return res, nil
}

func printStats(s reconcile.Stats) {
	gn.Info("Taxa visited: <em>%s</em> (skipped %s, unmatched %s)",
		humanize.Comma(int64(s.Taxa)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Unmatched)),
	)
	gn.Info("Inserted: <em>%s</em>, updated: <em>%s</em>, cross-references: <em>%s</em>",
		humanize.Comma(int64(s.Inserted)),
		humanize.Comma(int64(s.Updated)),
		humanize.Comma(int64(s.CrossRefs)),
	)
	if s.Rejected > 0 {
		gn.Info("Rejected remote records: <em>%s</em>",
			humanize.Comma(int64(s.Rejected)))
	}
	if s.PageFailures > 0 {
		gn.Warn("<em>%d</em> pages failed, run the command again to retry them",
			s.PageFailures)
	}
}
