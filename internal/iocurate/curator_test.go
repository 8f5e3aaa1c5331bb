package iocurate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/internal/iocurate"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/internal/iotesting"
	"github.com/tagezi/mlidb/pkg/errcode"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

func ptr[T any](v T) *T { return &v }

type env struct {
	st    store.Store
	repo  taxonomy.Repository
	cur   taxonomy.Curator
	fungi int64
}

func newEnv(t *testing.T) env {
	t.Helper()
	st := iotesting.NewStore(t)
	e := env{st: st, repo: iorepo.New(st), cur: iocurate.New(st)}

	out, err := e.cur.Insert(context.Background(), taxonomy.NewTaxon{
		Name:     "Fungi",
		RankID:   schema.RankKingdom,
		StatusID: schema.StatusAccepted,
	}, nil)
	require.NoError(t, err)
	require.True(t, out.Inserted)
	e.fungi = out.ID
	return e
}

func (e env) add(t *testing.T, name string, author *string, rank int, parent int64) int64 {
	t.Helper()
	out, err := e.cur.Insert(context.Background(), taxonomy.NewTaxon{
		Name:     name,
		Author:   author,
		RankID:   rank,
		ParentID: &parent,
		StatusID: schema.StatusAccepted,
	}, nil)
	require.NoError(t, err)
	require.True(t, out.Inserted)
	return out.ID
}

func (e env) count(t *testing.T) int64 {
	t.Helper()
	n, err := e.st.Count(context.Background(), schema.TableTaxa, store.Where{})
	require.NoError(t, err)
	return n
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "expected *gn.Error, got %v", err)
	return gnErr.Code
}

func TestInsertCladonia(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	cladonia := taxonomy.NewTaxon{
		Name:     "Cladonia",
		RankID:   schema.RankGenus,
		ParentID: &e.fungi,
		StatusID: schema.StatusAccepted,
	}

	out, err := e.cur.Insert(ctx, cladonia, nil)
	require.NoError(t, err)
	assert.True(t, out.Inserted)
	assert.Greater(t, out.ID, e.fungi)
	assert.Equal(t, taxonomy.NoConflict, out.Conflict.Kind)

	again, err := e.cur.Insert(ctx, cladonia, nil)
	require.NoError(t, err)
	assert.False(t, again.Inserted)
	assert.Equal(t, taxonomy.Duplicate, again.Conflict.Kind)
	assert.Equal(t, out.ID, again.Conflict.ExistingID)
	assert.Equal(t, int64(2), e.count(t))
}

func TestInsertAuthorIdentity(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var asked []taxonomy.Conflict
	confirm := func(c taxonomy.Conflict) bool {
		asked = append(asked, c)
		return true
	}

	a := e.add(t, "Lecanora", ptr("Ach."), schema.RankGenus, e.fungi)

	out, err := e.cur.Insert(ctx, taxonomy.NewTaxon{
		Name:     "Lecanora",
		Author:   ptr("Hue"),
		RankID:   schema.RankGenus,
		ParentID: &e.fungi,
		StatusID: schema.StatusAccepted,
	}, confirm)
	require.NoError(t, err)
	assert.True(t, out.Inserted)
	assert.NotEqual(t, a, out.ID)
	assert.Equal(t, taxonomy.NameCollision, out.Conflict.Kind)
	require.Len(t, asked, 1)
	assert.Equal(t, a, asked[0].ExistingID)

	out, err = e.cur.Insert(ctx, taxonomy.NewTaxon{
		Name:     "Lecanora",
		RankID:   schema.RankGenus,
		ParentID: &e.fungi,
		StatusID: schema.StatusAccepted,
	}, func(taxonomy.Conflict) bool { return false })
	require.NoError(t, err)
	assert.False(t, out.Inserted)
	assert.Equal(t, taxonomy.NameCollision, out.Conflict.Kind)

	out, err = e.cur.Insert(ctx, taxonomy.NewTaxon{
		Name:     " Lecanora ",
		Author:   ptr(" Ach. "),
		RankID:   schema.RankGenus,
		ParentID: &e.fungi,
		StatusID: schema.StatusAccepted,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Duplicate, out.Conflict.Kind)
	assert.Equal(t, a, out.ID)
	assert.Equal(t, int64(3), e.count(t))
}

func TestInsertValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	genus := e.add(t, "Cladonia", nil, schema.RankGenus, e.fungi)
	syn, err := e.cur.Insert(ctx, taxonomy.NewTaxon{
		Name:     "Cenomyce",
		RankID:   schema.RankGenus,
		ParentID: &genus,
		StatusID: schema.StatusSynonym,
	}, nil)
	require.NoError(t, err)
	require.True(t, syn.Inserted)

	tests := []struct {
		msg  string
		tx   taxonomy.NewTaxon
		code gn.ErrorCode
	}{
		{
			"empty name",
			taxonomy.NewTaxon{Name: "  ", RankID: schema.RankGenus,
				StatusID: schema.StatusAccepted},
			errcode.TaxonFieldError,
		},
		{
			"same rank parent",
			taxonomy.NewTaxon{Name: "Cladina", RankID: schema.RankGenus,
				ParentID: &genus, StatusID: schema.StatusAccepted},
			errcode.RankOrderError,
		},
		{
			"higher rank than parent",
			taxonomy.NewTaxon{Name: "Cladoniaceae", RankID: schema.RankFamily,
				ParentID: &genus, StatusID: schema.StatusAccepted},
			errcode.RankOrderError,
		},
		{
			"synonym parent",
			taxonomy.NewTaxon{Name: "Cladonia rangiferina",
				RankID: schema.RankSpecies, ParentID: &syn.ID,
				StatusID: schema.StatusAccepted},
			errcode.ParentStatusError,
		},
		{
			"synonym without accepted name",
			taxonomy.NewTaxon{Name: "Scyphophorus", RankID: schema.RankGenus,
				StatusID: schema.StatusSynonym},
			errcode.TaxonFieldError,
		},
		{
			"synonym of a lower rank name",
			taxonomy.NewTaxon{Name: "Cladoniaceae", RankID: schema.RankFamily,
				ParentID: &genus, StatusID: schema.StatusSynonym},
			errcode.RankOrderError,
		},
		{
			"unknown rank",
			taxonomy.NewTaxon{Name: "X", RankID: 99,
				StatusID: schema.StatusAccepted},
			errcode.StoreNotFoundError,
		},
	}

	before := e.count(t)
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := e.cur.Insert(ctx, tt.tx, nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
	assert.Equal(t, before, e.count(t))
}

func TestAddSynonyms(t *testing.T) {
	ctx := context.Background()

	t.Run("more authors than names", func(t *testing.T) {
		e := newEnv(t)
		sp := e.add(t, "Cladonia rangiferina", ptr("(L.) F.H.Wigg."),
			schema.RankSpecies, e.fungi)
		before := e.count(t)

		_, err := e.cur.AddSynonyms(ctx, sp,
			[]string{"Lichen rangiferinus", "Cenomyce rangiferina", "Cladina rangiferina"},
			[]string{"L.", "(L.) Ach.", "(L.) Nyl.", "Extra"},
		)
		require.Error(t, err)
		assert.Equal(t, errcode.SynonymAuthorCountError, errCode(t, err))
		assert.Equal(t, before, e.count(t))
	})

	t.Run("fewer authors than names", func(t *testing.T) {
		e := newEnv(t)
		sp := e.add(t, "Cladonia rangiferina", ptr("(L.) F.H.Wigg."),
			schema.RankSpecies, e.fungi)

		outs, err := e.cur.AddSynonyms(ctx, sp,
			[]string{"Lichen rangiferinus", "Cenomyce rangiferina", "Cladina rangiferina"},
			[]string{"L."},
		)
		require.NoError(t, err)
		require.Len(t, outs, 3)
		for _, v := range outs {
			assert.True(t, v.Inserted)
		}

		syns, err := e.repo.ListSynonyms(ctx, sp)
		require.NoError(t, err)
		require.Len(t, syns, 3)
		authors := map[string]*string{}
		for _, v := range syns {
			authors[v.Name] = v.Author
			assert.Equal(t, "Species", v.Rank)
		}
		require.NotNil(t, authors["Lichen rangiferinus"])
		assert.Equal(t, "L.", *authors["Lichen rangiferinus"])
		assert.Nil(t, authors["Cenomyce rangiferina"])
		assert.Nil(t, authors["Cladina rangiferina"])
	})

	t.Run("duplicates are skipped", func(t *testing.T) {
		e := newEnv(t)
		sp := e.add(t, "Cladonia rangiferina", nil, schema.RankSpecies, e.fungi)

		_, err := e.cur.AddSynonyms(ctx, sp, []string{"Lichen rangiferinus"}, nil)
		require.NoError(t, err)
		outs, err := e.cur.AddSynonyms(ctx, sp,
			[]string{"Lichen rangiferinus", "Cladina rangiferina"}, nil)
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, taxonomy.Duplicate, outs[0].Conflict.Kind)
		assert.True(t, outs[1].Inserted)
	})

	t.Run("synonym of a synonym", func(t *testing.T) {
		e := newEnv(t)
		sp := e.add(t, "Cladonia rangiferina", nil, schema.RankSpecies, e.fungi)
		outs, err := e.cur.AddSynonyms(ctx, sp, []string{"Lichen rangiferinus"}, nil)
		require.NoError(t, err)

		_, err = e.cur.AddSynonyms(ctx, outs[0].ID, []string{"Cladina"}, nil)
		require.Error(t, err)
		assert.Equal(t, errcode.ParentStatusError, errCode(t, err))
	})
}

func TestAddSynonymText(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	sp := e.add(t, "Xanthoria parietina", ptr("(L.) Th.Fr."),
		schema.RankSpecies, e.fungi)

	outs, err := e.cur.AddSynonymText(ctx, sp,
		"Lichen parietinus\r\nParmelia parietina\n\n",
		"L.\n\n",
	)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	before := e.count(t)
	_, err = e.cur.AddSynonymText(ctx, sp,
		"Physcia parietina\n\nImbricaria parietina", "")
	require.Error(t, err)
	assert.Equal(t, errcode.TaxonFieldError, errCode(t, err))
	assert.Equal(t, before, e.count(t))

	_, err = e.cur.AddSynonymText(ctx, sp, "Physcia parietina", "A\nB")
	require.Error(t, err)
	assert.Equal(t, errcode.SynonymAuthorCountError, errCode(t, err))
}

func TestRankChoices(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	genus := e.add(t, "Cladonia", nil, schema.RankGenus, e.fungi)

	ranks, err := e.cur.RankChoices(ctx, genus)
	require.NoError(t, err)
	require.NotEmpty(t, ranks)
	assert.Equal(t, "Subgenus", ranks[0].Name)
	for _, v := range ranks {
		assert.Greater(t, v.ID, schema.RankGenus)
	}

	ranks, err = e.cur.RankChoices(ctx, e.fungi)
	require.NoError(t, err)
	assert.Len(t, ranks, len(schema.Ranks())-1)
}

func TestReparent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	family := e.add(t, "Cladoniaceae", nil, schema.RankFamily, e.fungi)
	genus := e.add(t, "Cladonia", nil, schema.RankGenus, e.fungi)
	other := e.add(t, "Cladina", nil, schema.RankGenus, family)
	species := e.add(t, "Cladonia fimbriata", nil, schema.RankSpecies, genus)

	tests := []struct {
		msg    string
		taxon  int64
		parent int64
		code   gn.ErrorCode
	}{
		{"same rank", genus, other, errcode.RankOrderError},
		{"descendant", genus, species, errcode.RankOrderError},
		{"itself", genus, genus, errcode.TaxonFieldError},
		{"missing parent", genus, 9999, errcode.StoreNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := e.cur.Reparent(ctx, tt.taxon, tt.parent)
			require.Error(t, err)
			assert.Equal(t, tt.code, errCode(t, err))

			tx, err := e.repo.Taxon(ctx, genus)
			require.NoError(t, err)
			assert.Equal(t, e.fungi, *tx.ParentID)
		})
	}

	require.NoError(t, e.cur.Reparent(ctx, genus, family))
	tx, err := e.repo.Taxon(ctx, genus)
	require.NoError(t, err)
	assert.Equal(t, family, *tx.ParentID)

	t.Run("synonyms", func(t *testing.T) {
		outs, err := e.cur.AddSynonyms(ctx, other, []string{"Cenomyce"}, nil)
		require.NoError(t, err)
		syn := outs[0].ID

		err = e.cur.Reparent(ctx, syn, species)
		require.Error(t, err)
		assert.Equal(t, errcode.RankOrderError, errCode(t, err))
		got, err := e.repo.Taxon(ctx, syn)
		require.NoError(t, err)
		assert.Equal(t, other, *got.ParentID)

		require.NoError(t, e.cur.Reparent(ctx, syn, genus))
		got, err = e.repo.Taxon(ctx, syn)
		require.NoError(t, err)
		assert.Equal(t, genus, *got.ParentID)
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	genus := e.add(t, "Cladonia", nil, schema.RankGenus, e.fungi)
	sp := e.add(t, "Cladonia fimbriata", nil, schema.RankSpecies, genus)

	snap, err := e.repo.Taxon(ctx, sp)
	require.NoError(t, err)

	t.Run("changed fields only", func(t *testing.T) {
		edited := snap
		edited.Author = ptr("(L.) Fr.")
		edited.Year = ptr(1831)

		rep, err := e.cur.Edit(ctx, snap, edited, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"author", "year"}, rep.Fields)

		got, err := e.repo.Taxon(ctx, sp)
		require.NoError(t, err)
		assert.Equal(t, "(L.) Fr.", *got.Author)
		assert.Equal(t, 1831, *got.Year)
		snap = got
	})

	t.Run("no changes", func(t *testing.T) {
		rep, err := e.cur.Edit(ctx, snap, snap, nil)
		require.NoError(t, err)
		assert.Empty(t, rep.Fields)
	})

	t.Run("failed edit is rolled back", func(t *testing.T) {
		edited := snap
		edited.Year = ptr(1900)
		edited.RankID = schema.RankFamily

		_, err := e.cur.Edit(ctx, snap, edited, nil)
		require.Error(t, err)
		assert.Equal(t, errcode.RankOrderError, errCode(t, err))

		got, err := e.repo.Taxon(ctx, sp)
		require.NoError(t, err)
		assert.Equal(t, 1831, *got.Year)
		assert.Equal(t, schema.RankSpecies, got.RankID)
	})

	t.Run("rename into duplicate", func(t *testing.T) {
		other := e.add(t, "Cladonia pyxidata", ptr("(L.) Hoffm."),
			schema.RankSpecies, genus)
		edited := snap
		edited.Name = "Cladonia pyxidata"
		edited.Author = ptr("(L.) Hoffm.")

		_, err := e.cur.Edit(ctx, snap, edited, nil)
		require.Error(t, err)
		assert.Equal(t, errcode.TaxonDuplicateError, errCode(t, err))

		edited.Author = ptr("Hoffm.")
		_, err = e.cur.Edit(ctx, snap, edited,
			func(c taxonomy.Conflict) bool {
				assert.Equal(t, other, c.ExistingID)
				return false
			})
		require.Error(t, err)
		assert.Equal(t, errcode.TaxonNameCollisionError, errCode(t, err))

		got, err := e.repo.Taxon(ctx, sp)
		require.NoError(t, err)
		assert.Equal(t, "Cladonia fimbriata", got.Name)
	})

	t.Run("parent must stay above children", func(t *testing.T) {
		gsnap, err := e.repo.Taxon(ctx, genus)
		require.NoError(t, err)
		edited := gsnap
		edited.RankID = schema.RankSpecies
		_, err = e.cur.Edit(ctx, gsnap, edited, nil)
		require.Error(t, err)
		assert.Equal(t, errcode.RankOrderError, errCode(t, err))
	})
}

func TestEditStatusChange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cladina := e.add(t, "Cladina", nil, schema.RankGenus, e.fungi)
	cladonia := e.add(t, "Cladonia", nil, schema.RankGenus, e.fungi)
	child := e.add(t, "Cladina rangiferina", nil, schema.RankSpecies, cladina)
	_, err := e.cur.AddSynonyms(ctx, cladina, []string{"Cladonia subgen. Cladina"}, nil)
	require.NoError(t, err)
	_, err = e.repo.AddCrossRef(ctx, cladina, 12, "8422475")
	require.NoError(t, err)

	snap, err := e.repo.Taxon(ctx, cladina)
	require.NoError(t, err)
	edited := snap
	edited.StatusID = schema.StatusSynonym
	edited.ParentID = &cladonia

	rep, err := e.cur.Edit(ctx, snap, edited, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.Reattached)
	assert.ElementsMatch(t, []string{"parent_id", "status_id"}, rep.Fields)

	got, err := e.repo.Taxon(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, cladonia, *got.ParentID)

	syns, err := e.repo.ListSynonyms(ctx, cladonia)
	require.NoError(t, err)
	assert.Len(t, syns, 2)

	refs, err := e.repo.ListCrossRefs(ctx, cladina)
	require.NoError(t, err)
	assert.Len(t, refs, 1)

	// a synonym turned back into an accepted name needs a higher parent
	snap, err = e.repo.Taxon(ctx, cladina)
	require.NoError(t, err)
	edited = snap
	edited.StatusID = schema.StatusAccepted
	_, err = e.cur.Edit(ctx, snap, edited, nil)
	require.Error(t, err)
	assert.Equal(t, errcode.RankOrderError, errCode(t, err))

	edited.ParentID = &e.fungi
	_, err = e.cur.Edit(ctx, snap, edited, nil)
	require.NoError(t, err)

	// a genus cannot become a synonym of a species
	snap, err = e.repo.Taxon(ctx, cladina)
	require.NoError(t, err)
	edited = snap
	edited.StatusID = schema.StatusSynonym
	edited.ParentID = &child
	_, err = e.cur.Edit(ctx, snap, edited, nil)
	require.Error(t, err)
	assert.Equal(t, errcode.RankOrderError, errCode(t, err))
	got, err = e.repo.Taxon(ctx, cladina)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusAccepted, got.StatusID)
}

func TestDedup(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (env, int64, int64, int64) {
		e := newEnv(t)
		genus := e.add(t, "Usnea", ptr("Dill. ex Adans."), schema.RankGenus, e.fungi)
		a, err := e.repo.InsertTaxon(ctx, taxonomy.NewTaxon{
			Name: "Usnea florida", Author: ptr("(L.) F.H.Wigg."),
			RankID: schema.RankSpecies, ParentID: &genus,
			StatusID: schema.StatusAccepted,
		})
		require.NoError(t, err)
		b, err := e.repo.InsertTaxon(ctx, taxonomy.NewTaxon{
			Name: "Usnea florida", Author: ptr("(L.) F.H.Wigg."),
			RankID: schema.RankSpecies, ParentID: &genus,
			StatusID: schema.StatusAccepted,
		})
		require.NoError(t, err)
		_, err = e.repo.AddCrossRef(ctx, b, 12, "2607621")
		require.NoError(t, err)
		_, err = e.repo.AddCrossRef(ctx, a, 1, "51234")
		require.NoError(t, err)
		syn, err := e.repo.InsertTaxon(ctx, taxonomy.NewTaxon{
			Name: "Lichen floridus", RankID: schema.RankSpecies,
			ParentID: &a, StatusID: schema.StatusSynonym,
		})
		require.NoError(t, err)
		return e, a, b, syn
	}

	t.Run("dry run", func(t *testing.T) {
		e, a, b, _ := setup(t)
		before := e.count(t)

		rep, err := e.cur.Dedup(ctx, taxonomy.DedupOptions{ByAuthor: true, DryRun: true})
		require.NoError(t, err)
		require.Len(t, rep.Groups, 1)
		assert.Equal(t, b, rep.Groups[0].SurvivorID)
		assert.Equal(t, []int64{a}, rep.Groups[0].RemovedIDs)
		assert.Equal(t, int64(1), rep.Removed)
		assert.Equal(t, int64(1), rep.CrossRefsRemoved)
		assert.Equal(t, before, e.count(t))
	})

	t.Run("cross-reference holder survives", func(t *testing.T) {
		e, a, b, syn := setup(t)
		before := e.count(t)

		rep, err := e.cur.Dedup(ctx, taxonomy.DedupOptions{ByAuthor: true})
		require.NoError(t, err)
		require.Len(t, rep.Groups, 1)
		assert.Equal(t, b, rep.Groups[0].SurvivorID)
		assert.Equal(t, int64(1), rep.Reattached)
		assert.Equal(t, before-1, e.count(t))

		_, err = e.repo.Taxon(ctx, a)
		assert.Equal(t, errcode.StoreNotFoundError, errCode(t, err))

		n, err := e.st.Count(ctx, schema.TableIndexes,
			store.And(store.Eq("taxon_id", a)))
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := e.repo.Taxon(ctx, syn)
		require.NoError(t, err)
		assert.Equal(t, b, *got.ParentID)

		rep, err = e.cur.Dedup(ctx, taxonomy.DedupOptions{ByAuthor: true})
		require.NoError(t, err)
		assert.Empty(t, rep.Groups)
	})

	t.Run("lowest id without cross-references", func(t *testing.T) {
		e := newEnv(t)
		a := e.add(t, "Parmelia", nil, schema.RankGenus, e.fungi)
		b, err := e.repo.InsertTaxon(ctx, taxonomy.NewTaxon{
			Name: "Parmelia", RankID: schema.RankGenus,
			ParentID: &e.fungi, StatusID: schema.StatusAccepted,
		})
		require.NoError(t, err)

		rep, err := e.cur.Dedup(ctx, taxonomy.DedupOptions{})
		require.NoError(t, err)
		require.Len(t, rep.Groups, 1)
		assert.Equal(t, a, rep.Groups[0].SurvivorID)
		assert.Equal(t, []int64{b}, rep.Groups[0].RemovedIDs)
	})

	t.Run("populated fields win", func(t *testing.T) {
		e := newEnv(t)
		a := e.add(t, "Peltigera", nil, schema.RankGenus, e.fungi)
		b, err := e.repo.InsertTaxon(ctx, taxonomy.NewTaxon{
			Name: "Peltigera", Author: ptr("Willd."), Year: ptr(1787),
			RankID: schema.RankGenus, ParentID: &e.fungi,
			StatusID: schema.StatusAccepted,
		})
		require.NoError(t, err)

		rep, err := e.cur.Dedup(ctx, taxonomy.DedupOptions{ByAuthor: false})
		require.NoError(t, err)
		require.Len(t, rep.Groups, 1)
		assert.Equal(t, b, rep.Groups[0].SurvivorID)
		assert.Equal(t, []int64{a}, rep.Groups[0].RemovedIDs)
	})
}
