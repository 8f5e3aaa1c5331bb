// Package iorepo implements taxonomy.Repository with typed queries over a
// store.Store.
package iorepo

import (
	"context"
	"strings"
	"time"

	"github.com/gnames/gnuuid"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

type repo struct {
	st store.Store
}

// New creates a repository that reads and writes through st.
func New(st store.Store) taxonomy.Repository {
	return &repo{st: st}
}

// NameUUID returns UUID v5 of a name together with its author.
func NameUUID(name string, author *string) string {
	full := name
	if author != nil && *author != "" {
		full += " " + *author
	}
	return gnuuid.New(full).String()
}

func (r *repo) FindTaxonID(
	ctx context.Context,
	name string,
	author *string,
	statusID int,
) (int64, bool, error) {
	return r.st.GetID(ctx, schema.TableTaxa, store.And(
		store.Eq("name", name),
		store.Eq("author", author),
		store.Eq("status_id", statusID),
	))
}

func (r *repo) FindByRankName(
	ctx context.Context,
	rankID int,
	name string,
	author *string,
) ([]taxonomy.Taxon, error) {
	var rows []schema.Taxon
	err := r.st.Select(ctx, &rows, schema.TableTaxa, store.And(
		store.Eq("rank_id", rankID),
		store.Eq("name", name),
		store.Eq("author", author),
	), "id")
	if err != nil {
		return nil, err
	}
	return toTaxa(rows), nil
}

func (r *repo) Taxon(ctx context.Context, id int64) (taxonomy.Taxon, error) {
	var rows []schema.Taxon
	err := r.st.Select(ctx, &rows, schema.TableTaxa,
		store.And(store.Eq("id", id)))
	if err != nil {
		return taxonomy.Taxon{}, err
	}
	if len(rows) == 0 {
		return taxonomy.Taxon{}, NotFoundError("taxon", id)
	}
	return toTaxon(rows[0]), nil
}

func (r *repo) RankOf(ctx context.Context, taxonID int64) (taxonomy.Rank, error) {
	q := `
SELECT r.id, r.name, r.en_name
FROM taxa t
JOIN taxon_ranks r ON r.id = t.rank_id
WHERE t.id = ?`
	var rows []schema.TaxonRank
	if err := r.st.Query(ctx, &rows, q, taxonID); err != nil {
		return taxonomy.Rank{}, err
	}
	if len(rows) == 0 {
		return taxonomy.Rank{}, NotFoundError("taxon", taxonID)
	}
	return toRank(rows[0]), nil
}

func (r *repo) StatusOf(ctx context.Context, name string) (taxonomy.Status, error) {
	q := `
SELECT s.id, s.name, s.local_name, s.is_synonym
FROM taxa t
JOIN taxon_statuses s ON s.id = t.status_id
WHERE t.name = ?
ORDER BY s.id, t.id
LIMIT 1`
	var rows []schema.TaxonStatus
	if err := r.st.Query(ctx, &rows, q, name); err != nil {
		return taxonomy.Status{}, err
	}
	if len(rows) == 0 {
		return taxonomy.Status{}, NotFoundError("taxon", name)
	}
	return toStatus(rows[0]), nil
}

func (r *repo) Status(ctx context.Context, id int) (taxonomy.Status, error) {
	var rows []schema.TaxonStatus
	err := r.st.Select(ctx, &rows, schema.TableStatuses,
		store.And(store.Eq("id", id)))
	if err != nil {
		return taxonomy.Status{}, err
	}
	if len(rows) == 0 {
		return taxonomy.Status{}, NotFoundError("status", id)
	}
	return toStatus(rows[0]), nil
}

func (r *repo) StatusByName(
	ctx context.Context,
	name string,
) (taxonomy.Status, bool, error) {
	var rows []schema.TaxonStatus
	err := r.st.Select(ctx, &rows, schema.TableStatuses,
		store.And(store.Eq("name", strings.ToUpper(strings.TrimSpace(name)))))
	if err != nil || len(rows) == 0 {
		return taxonomy.Status{}, false, err
	}
	return toStatus(rows[0]), true, nil
}

func (r *repo) Rank(ctx context.Context, id int) (taxonomy.Rank, error) {
	var rows []schema.TaxonRank
	err := r.st.Select(ctx, &rows, schema.TableRanks,
		store.And(store.Eq("id", id)))
	if err != nil {
		return taxonomy.Rank{}, err
	}
	if len(rows) == 0 {
		return taxonomy.Rank{}, NotFoundError("rank", id)
	}
	return toRank(rows[0]), nil
}

func (r *repo) Ranks(ctx context.Context) ([]taxonomy.Rank, error) {
	var rows []schema.TaxonRank
	if err := r.st.SelectAll(ctx, &rows, schema.TableRanks, "id"); err != nil {
		return nil, err
	}
	res := make([]taxonomy.Rank, len(rows))
	for i := range rows {
		res[i] = toRank(rows[i])
	}
	return res, nil
}

func (r *repo) RankByEnName(
	ctx context.Context,
	enName string,
) (taxonomy.Rank, bool, error) {
	var rows []schema.TaxonRank
	err := r.st.Select(ctx, &rows, schema.TableRanks,
		store.And(store.Eq("en_name", strings.ToLower(strings.TrimSpace(enName)))))
	if err != nil || len(rows) == 0 {
		return taxonomy.Rank{}, false, err
	}
	return toRank(rows[0]), true, nil
}

type nameRow struct {
	ID     int64
	Rank   string
	Name   string
	Author *string
}

func (r *repo) ListChildren(
	ctx context.Context,
	parentID int64,
	statusID int,
) ([]taxonomy.NameEntry, error) {
	q := `
SELECT t.id, r.name AS rank, t.name, t.author
FROM taxa t
JOIN taxon_ranks r ON r.id = t.rank_id
WHERE t.parent_id = ? AND t.status_id = ?
ORDER BY t.rank_id, t.name`
	var rows []nameRow
	if err := r.st.Query(ctx, &rows, q, parentID, statusID); err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

func (r *repo) ListSynonyms(
	ctx context.Context,
	taxonID int64,
) ([]taxonomy.NameEntry, error) {
	q := `
SELECT t.id, r.name AS rank, t.name, t.author
FROM taxa t
JOIN taxon_ranks r ON r.id = t.rank_id
JOIN taxon_statuses s ON s.id = t.status_id
WHERE t.parent_id = ? AND s.is_synonym = ?
ORDER BY t.name, t.id`
	var rows []nameRow
	if err := r.st.Query(ctx, &rows, q, taxonID, true); err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

type crossRow struct {
	SourceID     int
	Source       string
	LinkTemplate string
	Idx          string
	Trusted      bool
}

func (r *repo) ListCrossRefs(
	ctx context.Context,
	taxonID int64,
) ([]taxonomy.CrossRef, error) {
	q := `
SELECT d.source_id, s.name AS source, s.link_template, d.idx, s.trusted
FROM db_indexes d
JOIN db_sources s ON s.id = d.source_id
WHERE d.taxon_id = ?
ORDER BY s.id`
	var rows []crossRow
	if err := r.st.Query(ctx, &rows, q, taxonID); err != nil {
		return nil, err
	}
	res := make([]taxonomy.CrossRef, len(rows))
	for i, v := range rows {
		res[i] = taxonomy.CrossRef{
			SourceID:     v.SourceID,
			Source:       v.Source,
			LinkTemplate: v.LinkTemplate,
			Index:        v.Idx,
			Trusted:      v.Trusted,
		}
	}
	return res, nil
}

func (r *repo) ListAcceptedTaxa(ctx context.Context) ([]taxonomy.RankedName, error) {
	q := `
SELECT t.id, t.rank_id, r.name AS rank, t.name
FROM taxa t
JOIN taxon_ranks r ON r.id = t.rank_id
WHERE t.status_id = ?
ORDER BY t.rank_id, t.name`
	var rows []taxonomy.RankedName
	if err := r.st.Query(ctx, &rows, q, schema.StatusAccepted); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) TaxaByRank(
	ctx context.Context,
	rankID int,
	acceptedOnly bool,
) ([]taxonomy.Taxon, error) {
	conds := []store.Cond{store.Eq("rank_id", rankID)}
	if acceptedOnly {
		conds = append(conds, store.Eq("status_id", schema.StatusAccepted))
	}
	var rows []schema.Taxon
	err := r.st.Select(ctx, &rows, schema.TableTaxa, store.And(conds...),
		"name", "id")
	if err != nil {
		return nil, err
	}
	return toTaxa(rows), nil
}

func (r *repo) InsertTaxon(ctx context.Context, t taxonomy.NewTaxon) (int64, error) {
	return r.st.Insert(ctx, schema.TableTaxa,
		store.Set("name", t.Name),
		store.Set("author", t.Author),
		store.Set("year", t.Year),
		store.Set("published_in", t.PublishedIn),
		store.Set("name_uuid", NameUUID(t.Name, t.Author)),
		store.Set("rank_id", t.RankID),
		store.Set("parent_id", t.ParentID),
		store.Set("status_id", t.StatusID),
	)
}

func (r *repo) SetField(
	ctx context.Context,
	taxonID int64,
	column string,
	value any,
) error {
	n, err := r.st.Update(ctx, schema.TableTaxa,
		[]store.Assign{store.Set(column, value)},
		store.And(store.Eq("id", taxonID)),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError("taxon", taxonID)
	}
	return nil
}

func (r *repo) CrossRefIndex(
	ctx context.Context,
	taxonID int64,
	sourceID int,
) (string, bool, error) {
	var rows []schema.DBIndex
	err := r.st.Select(ctx, &rows, schema.TableIndexes, store.And(
		store.Eq("taxon_id", taxonID),
		store.Eq("source_id", sourceID),
	))
	if err != nil || len(rows) == 0 {
		return "", false, err
	}
	return rows[0].Index, true, nil
}

func (r *repo) AddCrossRef(
	ctx context.Context,
	taxonID int64,
	sourceID int,
	index string,
) (bool, error) {
	_, exists, err := r.CrossRefIndex(ctx, taxonID, sourceID)
	if err != nil || exists {
		return false, err
	}
	_, err = r.st.Insert(ctx, schema.TableIndexes,
		store.Set("taxon_id", taxonID),
		store.Set("source_id", sourceID),
		store.Set("idx", index),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) HasCheckpoint(
	ctx context.Context,
	taxonID int64,
	sourceID int,
	pass string,
) (bool, error) {
	_, ok, err := r.st.GetID(ctx, schema.TableCheckpoints, store.And(
		store.Eq("taxon_id", taxonID),
		store.Eq("source_id", sourceID),
		store.Eq("pass", pass),
	))
	return ok, err
}

func (r *repo) Checkpoint(
	ctx context.Context,
	taxonID int64,
	sourceID int,
	pass string,
) error {
	ok, err := r.HasCheckpoint(ctx, taxonID, sourceID, pass)
	if err != nil || ok {
		return err
	}
	_, err = r.st.Insert(ctx, schema.TableCheckpoints,
		store.Set("taxon_id", taxonID),
		store.Set("source_id", sourceID),
		store.Set("pass", pass),
		store.Set("completed_at", time.Now().Unix()),
	)
	return err
}

func toTaxon(t schema.Taxon) taxonomy.Taxon {
	return taxonomy.Taxon{
		ID:          t.ID,
		Name:        t.Name,
		Author:      t.Author,
		Year:        t.Year,
		PublishedIn: t.PublishedIn,
		RankID:      t.RankID,
		ParentID:    t.ParentID,
		StatusID:    t.StatusID,
	}
}

func toTaxa(rows []schema.Taxon) []taxonomy.Taxon {
	res := make([]taxonomy.Taxon, len(rows))
	for i := range rows {
		res[i] = toTaxon(rows[i])
	}
	return res
}

func toRank(r schema.TaxonRank) taxonomy.Rank {
	return taxonomy.Rank{ID: r.ID, Name: r.Name, EnName: r.EnName}
}

func toStatus(s schema.TaxonStatus) taxonomy.Status {
	return taxonomy.Status{
		ID:        s.ID,
		Name:      s.Name,
		LocalName: s.LocalName,
		IsSynonym: s.IsSynonym,
	}
}

func toEntries(rows []nameRow) []taxonomy.NameEntry {
	res := make([]taxonomy.NameEntry, len(rows))
	for i, v := range rows {
		res[i] = taxonomy.NameEntry{
			ID:     v.ID,
			Rank:   v.Rank,
			Name:   v.Name,
			Author: v.Author,
		}
	}
	return res
}
