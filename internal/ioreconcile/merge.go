package ioreconcile

import (
	"context"
	"errors"
	"strconv"

	"github.com/gnames/gn"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/errcode"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// merge stores one remote child or synonym of parent. A local taxon with
// the same rank, name and author only gets its empty fields filled and a
// cross-reference; otherwise a new taxon is inserted under parent.
func (r *reconciler) merge(
	ctx context.Context,
	parent taxonomy.Taxon,
	rec reconcile.Record,
) error {
	if err := reconcile.Screen(rec, r.wl); err != nil {
		r.stats.Rejected++
		r.log.Debug("Remote record rejected", "key", rec.Key, "reason", err)
		return nil
	}

	rank, ok, err := r.repo.RankByEnName(ctx, rec.Rank)
	if err != nil {
		return err
	}
	if !ok {
		r.stats.Rejected++
		r.log.Debug("Remote record has unknown rank",
			"key", rec.Key, "rank", rec.Rank)
		return nil
	}

	statusID, err := r.statusID(ctx, rec)
	if err != nil {
		return err
	}

	local, found, err := r.findLocal(ctx, rank.ID, rec)
	if err != nil {
		return err
	}

	var id int64
	if found {
		id = local.ID
		if err = r.apply(ctx, local, reconcile.Plan(local, rec)); err != nil {
			return err
		}
	} else {
		id, err = r.insert(ctx, parent, rank, statusID, rec)
		if err != nil || id == 0 {
			return err
		}
	}

	added, err := r.repo.AddCrossRef(ctx, id, r.source, strconv.FormatInt(rec.Key, 10))
	if err != nil {
		return err
	}
	if added {
		r.stats.CrossRefs++
	}
	return nil
}

// statusID maps the remote status to a local one. Unknown statuses fall
// back to SYNONYM or ACCEPTED by the synonym flag.
func (r *reconciler) statusID(
	ctx context.Context,
	rec reconcile.Record,
) (int, error) {
	if rec.Status != "" {
		st, ok, err := r.repo.StatusByName(ctx, rec.Status)
		if err != nil {
			return 0, err
		}
		if ok {
			return st.ID, nil
		}
	}
	if rec.Synonym {
		return schema.StatusSynonym, nil
	}
	return schema.StatusAccepted, nil
}

// findLocal looks for a taxon of the rank with the same name and author.
// A remote record with an author also matches a local taxon without one.
func (r *reconciler) findLocal(
	ctx context.Context,
	rankID int,
	rec reconcile.Record,
) (taxonomy.Taxon, bool, error) {
	ts, err := r.repo.FindByRankName(ctx, rankID, rec.Name, rec.Author)
	if err != nil {
		return taxonomy.Taxon{}, false, err
	}
	if len(ts) == 0 && rec.Author != nil {
		ts, err = r.repo.FindByRankName(ctx, rankID, rec.Name, nil)
		if err != nil {
			return taxonomy.Taxon{}, false, err
		}
	}
	if len(ts) == 0 {
		return taxonomy.Taxon{}, false, nil
	}
	return ts[0], true, nil
}

// insert adds a remote record under parent through the consistency
// engine. It returns 0 when the hierarchy rules refuse the record.
func (r *reconciler) insert(
	ctx context.Context,
	parent taxonomy.Taxon,
	rank taxonomy.Rank,
	statusID int,
	rec reconcile.Record,
) (int64, error) {
	t := taxonomy.NewTaxon{
		Name:     rec.Name,
		Author:   rec.Author,
		Year:     rec.Year,
		RankID:   rank.ID,
		ParentID: &parent.ID,
		StatusID: statusID,
	}

	out, err := r.cur.Insert(ctx, t, nil)
	if err != nil {
		if isInvalid(err) {
			r.stats.Rejected++
			r.log.Debug("Remote record does not fit the hierarchy",
				"key", rec.Key, "name", rec.Name, "error", err)
			return 0, nil
		}
		return 0, err
	}

	if out.Inserted {
		r.stats.Inserted++
		r.log.Debug("Remote taxon inserted",
			"id", out.ID, "name", rec.Name, "parent_id", parent.ID)
	}
	return out.ID, nil
}

// apply writes planned fields of a local taxon. A new author changes the
// name identifier as well. An author that would make the taxon identical
// to another one is not written.
func (r *reconciler) apply(
	ctx context.Context,
	t taxonomy.Taxon,
	fill reconcile.Fill,
) error {
	if fill.Author != nil {
		id, ok, err := r.repo.FindTaxonID(ctx, t.Name, fill.Author, t.StatusID)
		if err != nil {
			return err
		}
		if ok && id != t.ID {
			r.log.Warn("Remote author would duplicate a local taxon",
				"taxon_id", t.ID, "name", t.Name, "author", *fill.Author,
				"existing_id", id)
			fill.Author = nil
		}
	}
	if fill.IsEmpty() {
		return nil
	}

	if fill.Author != nil {
		if err := r.repo.SetField(ctx, t.ID, "author", fill.Author); err != nil {
			return err
		}
		uuid := iorepo.NameUUID(t.Name, fill.Author)
		if err := r.repo.SetField(ctx, t.ID, "name_uuid", uuid); err != nil {
			return err
		}
	}
	if fill.Year != nil {
		if err := r.repo.SetField(ctx, t.ID, "year", fill.Year); err != nil {
			return err
		}
	}

	r.stats.Updated++
	r.log.Debug("Local taxon filled from remote data", "id", t.ID, "name", t.Name)
	return nil
}

// isInvalid reports if the consistency engine refused a write.
func isInvalid(err error) bool {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) {
		return false
	}
	switch gnErr.Code {
	case errcode.RankOrderError,
		errcode.ParentStatusError,
		errcode.TaxonFieldError:
		return true
	}
	return false
}
