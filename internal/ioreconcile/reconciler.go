// Package ioreconcile walks local taxa rank by rank, finds their
// counterparts in a GBIF-like service and merges remote children and
// synonyms into the local store.
//
// Every taxon has two passes, children and synonyms. A pass is
// checkpointed only after all its pages were fetched and merged, so an
// interrupted or failed pass runs again from the start on the next run.
// Inserts go through the consistency engine, which makes a repeated pass
// harmless.
package ioreconcile

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/errcode"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type reconciler struct {
	cfg    config.ReconcileConfig
	repo   taxonomy.Repository
	cur    taxonomy.Curator
	client reconcile.Client
	norm   reconcile.Normalizer
	wl     reconcile.Whitelist
	source int
	stats  reconcile.Stats
	log    *slog.Logger
}

// New creates a reconciler that writes into st and reads remote data with
// client. Remote records outside wl are never stored.
func New(
	cfg config.ReconcileConfig,
	st store.Store,
	client reconcile.Client,
	norm reconcile.Normalizer,
	wl reconcile.Whitelist,
) reconcile.Reconciler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &reconciler{
		cfg:    cfg,
		repo:   iorepo.New(st),
		cur:    iocurate.New(st),
		client: client,
		norm:   norm,
		wl:     wl,
		source: cfg.GBIFSourceID,
	}
}

// Run reconciles accepted taxa of the given ranks, higher ranks first.
// Remote failures are logged and leave the affected pass for the next
// run. Store failures and a cancelled context stop the run.
func (r *reconciler) Run(
	ctx context.Context,
	rankIDs ...int,
) (reconcile.Stats, error) {
	r.stats = reconcile.Stats{RunID: uuid.NewString()}
	r.log = slog.With("run_id", r.stats.RunID)
	start := time.Now()

	ranks, err := r.ranks(ctx, rankIDs)
	if err != nil {
		return r.stats, err
	}

	r.log.Info("Reconciliation started",
		"ranks", len(ranks), "source_id", r.source)

	for _, rank := range ranks {
		if err = r.runRank(ctx, rank); err != nil {
			return r.stats, err
		}
	}

	r.log.Info("Reconciliation finished",
		"taxa", humanize.Comma(int64(r.stats.Taxa)),
		"skipped", humanize.Comma(int64(r.stats.Skipped)),
		"unmatched", humanize.Comma(int64(r.stats.Unmatched)),
		"inserted", humanize.Comma(int64(r.stats.Inserted)),
		"updated", humanize.Comma(int64(r.stats.Updated)),
		"cross_refs", humanize.Comma(int64(r.stats.CrossRefs)),
		"rejected", humanize.Comma(int64(r.stats.Rejected)),
		"page_failures", r.stats.PageFailures,
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return r.stats, nil
}

// ranks loads requested ranks ordered from higher to lower. No ranks
// means all of them.
func (r *reconciler) ranks(
	ctx context.Context,
	rankIDs []int,
) ([]taxonomy.Rank, error) {
	all, err := r.repo.Ranks(ctx)
	if err != nil {
		return nil, err
	}
	if len(rankIDs) == 0 {
		return all, nil
	}

	want := make(map[int]bool, len(rankIDs))
	for _, id := range rankIDs {
		want[id] = true
	}

	var res []taxonomy.Rank
	for _, rank := range all {
		if want[rank.ID] {
			res = append(res, rank)
			delete(want, rank.ID)
		}
	}
	for id := range want {
		return nil, UnknownRankError(id)
	}
	return res, nil
}

func (r *reconciler) runRank(ctx context.Context, rank taxonomy.Rank) error {
	taxa, err := r.repo.TaxaByRank(ctx, rank.ID, true)
	if err != nil {
		return err
	}
	if len(taxa) == 0 {
		r.log.Debug("No taxa of rank", "rank", rank.EnName)
		return nil
	}

	r.log.Info("Reconciling rank",
		"rank", rank.EnName, "taxa", humanize.Comma(int64(len(taxa))))

	bar := newProgressBar(r.cfg.WithProgress, len(taxa), rank.Name+": ")
	defer bar.Finish()

	for _, t := range taxa {
		if err = ctx.Err(); err != nil {
			return err
		}
		r.stats.Taxa++
		if err = r.reconcileTaxon(ctx, t, rank); err != nil {
			return err
		}
		bar.Increment()
	}
	return nil
}

// reconcileTaxon runs both passes of a local taxon. Only store failures
// are returned.
func (r *reconciler) reconcileTaxon(
	ctx context.Context,
	t taxonomy.Taxon,
	rank taxonomy.Rank,
) error {
	doneChildren, err := r.repo.HasCheckpoint(ctx, t.ID, r.source, schema.PassChildren)
	if err != nil {
		return err
	}
	doneSynonyms, err := r.repo.HasCheckpoint(ctx, t.ID, r.source, schema.PassSynonyms)
	if err != nil {
		return err
	}
	if doneChildren && doneSynonyms {
		r.stats.Skipped++
		return nil
	}

	log := r.log.With("taxon_id", t.ID, "name", t.Name)

	key, found, err := r.remoteKey(ctx, t, rank)
	if err != nil {
		if isRemote(err) {
			log.Warn("Cannot find remote taxon", "error", err)
			return nil
		}
		return err
	}
	if !found {
		log.Debug("No remote match")
		r.stats.Unmatched++
		return r.checkpoint(ctx, t.ID, !doneChildren, !doneSynonyms)
	}

	if err = r.fillLocal(ctx, t, rank, key); err != nil {
		if isRemote(err) {
			log.Warn("Cannot fetch remote taxon", "key", key, "error", err)
			return nil
		}
		return err
	}

	if !doneChildren {
		ok, err := r.pass(ctx, t, key, schema.PassChildren, r.client.Children)
		if err != nil {
			return err
		}
		if ok {
			if err = r.repo.Checkpoint(ctx, t.ID, r.source, schema.PassChildren); err != nil {
				return err
			}
		}
	}

	if !doneSynonyms {
		ok, err := r.pass(ctx, t, key, schema.PassSynonyms, r.client.Synonyms)
		if err != nil {
			return err
		}
		if ok {
			if err = r.repo.Checkpoint(ctx, t.ID, r.source, schema.PassSynonyms); err != nil {
				return err
			}
		}
	}
	return nil
}

// remoteKey returns the remote key stored in a cross-reference, or asks
// the suggest endpoint and stores the key of the matching usage.
func (r *reconciler) remoteKey(
	ctx context.Context,
	t taxonomy.Taxon,
	rank taxonomy.Rank,
) (int64, bool, error) {
	idx, ok, err := r.repo.CrossRefIndex(ctx, t.ID, r.source)
	if err != nil {
		return 0, false, err
	}
	if ok {
		key, err := strconv.ParseInt(idx, 10, 64)
		if err == nil {
			return key, true, nil
		}
		r.log.Warn("Ignoring malformed remote key",
			"taxon_id", t.ID, "index", idx)
	}

	us, err := r.client.Suggest(ctx, t.Name)
	if err != nil {
		return 0, false, err
	}

	key, ok := reconcile.Match(us, t.Name, rank.EnName, r.wl)
	if !ok {
		return 0, false, nil
	}

	added, err := r.repo.AddCrossRef(ctx, t.ID, r.source, strconv.FormatInt(key, 10))
	if err != nil {
		return 0, false, err
	}
	if added {
		r.stats.CrossRefs++
	}
	return key, true, nil
}

// fillLocal fills empty fields of a local taxon from its remote detail
// record. A record of another rank is ignored.
func (r *reconciler) fillLocal(
	ctx context.Context,
	t taxonomy.Taxon,
	rank taxonomy.Rank,
	key int64,
) error {
	u, err := r.client.Species(ctx, key)
	if err != nil {
		return err
	}
	rec, err := r.norm.Normalize(u)
	if err != nil {
		r.log.Warn("Cannot normalize remote taxon", "key", key, "error", err)
		return nil
	}
	if !strings.EqualFold(rec.Rank, rank.EnName) {
		r.log.Warn("Remote taxon has another rank",
			"taxon_id", t.ID, "key", key, "rank", rec.Rank, "local_rank", rank.EnName)
		return nil
	}
	return r.apply(ctx, t, reconcile.Plan(t, rec))
}

// fetchFunc reads one page of a remote list.
type fetchFunc func(
	ctx context.Context,
	key int64,
	offset, limit int,
) (reconcile.Page, error)

// pass merges all pages of a remote list into the store. It returns false
// if a page could not be fetched, in which case the pass must not be
// checkpointed.
func (r *reconciler) pass(
	ctx context.Context,
	parent taxonomy.Taxon,
	key int64,
	name string,
	fetch fetchFunc,
) (bool, error) {
	limit := r.cfg.PageSize
	for offset := 0; ; offset += limit {
		page, err := fetch(ctx, key, offset, limit)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			r.stats.PageFailures++
			r.log.Warn("Remote page failed, pass will be repeated",
				"taxon_id", parent.ID, "pass", name,
				"offset", offset, "error", err)
			return false, nil
		}

		recs, err := r.norm.NormalizeAll(ctx, page.Results)
		if err != nil {
			return false, err
		}

		for _, rec := range recs {
			if err = r.merge(ctx, parent, rec); err != nil {
				return false, err
			}
		}

		if page.EndOfRecords || len(page.Results) == 0 {
			return true, nil
		}
	}
}

func (r *reconciler) checkpoint(
	ctx context.Context,
	taxonID int64,
	children, synonyms bool,
) error {
	if children {
		if err := r.repo.Checkpoint(ctx, taxonID, r.source, schema.PassChildren); err != nil {
			return err
		}
	}
	if synonyms {
		return r.repo.Checkpoint(ctx, taxonID, r.source, schema.PassSynonyms)
	}
	return nil
}

// isRemote reports if err came from the remote service.
func isRemote(err error) bool {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) {
		return false
	}
	switch gnErr.Code {
	case errcode.RemoteRequestError,
		errcode.RemoteStatusError,
		errcode.RemoteDecodeError:
		return true
	}
	return false
}
