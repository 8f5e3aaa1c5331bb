package cmd

import (
	"bytes"
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

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "expected *gn.Error, got %v", err)
	return gnErr.Code
}

// lichens fills a store with Fungi > Cladonia > Cladonia rangiferina and
// a synonym of Cladonia.
type lichens struct {
	st          store.Store
	fungi       int64
	cladonia    int64
	rangiferina int64
	cenomyce    int64
}

func newLichens(t *testing.T) lichens {
	t.Helper()
	ctx := context.Background()
	res := lichens{st: iotesting.NewStore(t)}

	out, err := addTaxon(ctx, res.st, addInput{
		label: "(Kingdom) Fungi", status: "accepted",
	}, nil)
	require.NoError(t, err)
	res.fungi = out.ID

	out, err = addTaxon(ctx, res.st, addInput{
		label:    "(Genus) Cladonia, P.Browne",
		status:   "accepted",
		parentID: res.fungi,
		year:     ptr(1756),
	}, nil)
	require.NoError(t, err)
	res.cladonia = out.ID

	out, err = addTaxon(ctx, res.st, addInput{
		label:    "(Species) Cladonia rangiferina, (L.) F.H.Wigg.",
		status:   "accepted",
		parentID: res.cladonia,
	}, nil)
	require.NoError(t, err)
	res.rangiferina = out.ID

	outs, err := iocurate.New(res.st).AddSynonyms(ctx, res.cladonia,
		[]string{"Cenomyce"}, []string{"Ach."})
	require.NoError(t, err)
	res.cenomyce = outs[0].ID
	return res
}

func TestAddTaxon(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	l := newLichens(t)
	repo := iorepo.New(l.st)

	cladonia, err := repo.Taxon(ctx, l.cladonia)
	require.NoError(t, err)
	assert.Equal(t, "Cladonia", cladonia.Name)
	assert.Equal(t, ptr("P.Browne"), cladonia.Author)
	assert.Equal(t, ptr(1756), cladonia.Year)
	assert.Equal(t, schema.RankGenus, cladonia.RankID)
	assert.Equal(t, ptr(l.fungi), cladonia.ParentID)

	t.Run("duplicate", func(t *testing.T) {
		out, err := addTaxon(ctx, l.st, addInput{
			label: "(Genus) Cladonia, P.Browne", status: "accepted",
			parentID: l.fungi,
		}, nil)
		require.NoError(t, err)
		assert.False(t, out.Inserted)
		assert.Equal(t, taxonomy.Duplicate, out.Conflict.Kind)
		assert.Equal(t, l.cladonia, out.ID)
	})

	t.Run("collision declined", func(t *testing.T) {
		var asked bool
		out, err := addTaxon(ctx, l.st, addInput{
			label: "Cladonia", rank: "genus", status: "accepted",
			parentID: l.fungi,
		}, func(c taxonomy.Conflict) bool {
			asked = true
			assert.Equal(t, l.cladonia, c.ExistingID)
			return false
		})
		require.NoError(t, err)
		assert.True(t, asked)
		assert.False(t, out.Inserted)
		assert.Equal(t, taxonomy.NameCollision, out.Conflict.Kind)
	})

	t.Run("rank flag wins", func(t *testing.T) {
		out, err := addTaxon(ctx, l.st, addInput{
			label: "(Genus) Lecanoromycetes", rank: "class", status: "accepted",
			parentID: l.fungi,
		}, nil)
		require.NoError(t, err)
		rank, err := repo.RankOf(ctx, out.ID)
		require.NoError(t, err)
		assert.Equal(t, schema.RankClass, rank.ID)
	})

	errTests := []struct {
		msg  string
		in   addInput
		code gn.ErrorCode
	}{
		{"no rank", addInput{label: "Usnea", status: "accepted", parentID: l.fungi},
			errcode.TaxonFieldError},
		{"unknown rank", addInput{label: "(Clade) Usnea", status: "accepted"},
			errcode.TaxonFieldError},
		{"unknown status", addInput{label: "(Genus) Usnea", status: "bogus"},
			errcode.TaxonFieldError},
		{"bad label", addInput{label: "(Genus Usnea", status: "accepted"},
			errcode.LabelParseError},
		{"rank order", addInput{label: "(Order) Lecanorales", status: "accepted",
			parentID: l.cladonia}, errcode.RankOrderError},
		{"synonym parent", addInput{label: "(Species) Cenomyce rangiferina",
			status: "accepted", parentID: l.cenomyce}, errcode.ParentStatusError},
	}

	for _, tt := range errTests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := addTaxon(ctx, l.st, tt.in, nil)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

func TestEditTaxon(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	l := newLichens(t)
	repo := iorepo.New(l.st)

	t.Run("fields", func(t *testing.T) {
		rep, err := editTaxon(ctx, l.st, l.cladonia, editInput{
			publishedIn: ptr("Civ. Nat. Hist. Jamaica"),
			clearYear:   true,
		}, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"year", "published_in"}, rep.Fields)

		tx, err := repo.Taxon(ctx, l.cladonia)
		require.NoError(t, err)
		assert.Nil(t, tx.Year)
		assert.Equal(t, ptr("Civ. Nat. Hist. Jamaica"), tx.PublishedIn)
		assert.Equal(t, ptr("P.Browne"), tx.Author)
	})

	t.Run("label", func(t *testing.T) {
		rep, err := editTaxon(ctx, l.st, l.cenomyce, editInput{
			label: ptr("Cenomyce, Ach. ex Nyl."),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"author"}, rep.Fields)
	})

	t.Run("nothing to change", func(t *testing.T) {
		rep, err := editTaxon(ctx, l.st, l.cladonia, editInput{}, nil)
		require.NoError(t, err)
		assert.Empty(t, rep.Fields)
	})

	t.Run("accepted becomes synonym", func(t *testing.T) {
		cladina, err := addTaxon(ctx, l.st, addInput{
			label: "(Genus) Cladina, Nyl.", status: "accepted", parentID: l.fungi,
		}, nil)
		require.NoError(t, err)
		_, err = addTaxon(ctx, l.st, addInput{
			label: "(Species) Cladina stellaris", status: "accepted",
			parentID: cladina.ID,
		}, nil)
		require.NoError(t, err)

		rep, err := editTaxon(ctx, l.st, cladina.ID, editInput{
			status:   ptr("synonym"),
			parentID: ptr(l.cladonia),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rep.Reattached)

		kids, err := repo.ListChildren(ctx, l.cladonia, schema.StatusAccepted)
		require.NoError(t, err)
		assert.Len(t, kids, 2)
	})

	t.Run("missing taxon", func(t *testing.T) {
		_, err := editTaxon(ctx, l.st, 999, editInput{year: ptr(1800)}, nil)
		assert.Equal(t, errcode.StoreNotFoundError, errCode(t, err))
	})

	t.Run("rank order", func(t *testing.T) {
		_, err := editTaxon(ctx, l.st, l.rangiferina, editInput{
			rank: ptr("order"),
		}, nil)
		assert.Equal(t, errcode.RankOrderError, errCode(t, err))
	})
}

func TestTaxonInfo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	l := newLichens(t)
	_, err := iorepo.New(l.st).AddCrossRef(ctx, l.cladonia, 12, "8440")
	require.NoError(t, err)

	for _, arg := range []string{"Cladonia", "Cladonia, P.Browne"} {
		id, err := taxonIDByArg(ctx, l.st, arg)
		require.NoError(t, err)
		assert.Equal(t, l.cladonia, id, arg)
	}
	_, err = taxonIDByArg(ctx, l.st, "Usnea")
	assert.Equal(t, errcode.StoreNotFoundError, errCode(t, err))

	info, err := getTaxonInfo(ctx, l.st, "Cladonia")
	require.NoError(t, err)
	assert.Equal(t, "(Genus) Cladonia, P.Browne", info.Label)
	assert.Equal(t, "accepted", info.Status)
	require.NotNil(t, info.Parent)
	assert.Equal(t, l.fungi, info.Parent.ID)
	assert.Equal(t, []nameItem{{ID: l.cenomyce, Label: "(Genus) Cenomyce, Ach."}},
		info.Synonyms)
	require.Len(t, info.Children, 1)
	assert.Equal(t, "accepted", info.Children[0].Status)
	assert.Equal(t, l.rangiferina, info.Children[0].Names[0].ID)
	require.Len(t, info.Links, 1)
	assert.Equal(t, "https://www.gbif.org/species/8440", info.Links[0].URL)

	buf := new(bytes.Buffer)
	printInfo(buf, info)
	out := buf.String()
	assert.Contains(t, out, "(Genus) Cladonia, P.Browne\n")
	assert.Contains(t, out, "year: 1756")
	assert.Contains(t, out, "Synonyms:\n  (Genus) Cenomyce, Ach.")
	assert.Contains(t, out, "Children (accepted):")
	assert.Contains(t, out, "GBIF: https://www.gbif.org/species/8440")
}

func TestReconcileRanks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	st := iotesting.NewStore(t)

	tests := []struct {
		msg   string
		names []string
		ids   []int
		err   bool
	}{
		{"one", []string{"genus"}, []int{schema.RankGenus}, false},
		{"several", []string{"Genus", "species"},
			[]int{schema.RankGenus, schema.RankSpecies}, false},
		{"all", []string{"genus", "all"}, nil, false},
		{"unknown", []string{"clade"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			ids, err := reconcileRanks(ctx, st, tt.names)
			if tt.err {
				assert.Equal(t, errcode.TaxonFieldError, errCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestAskYes(t *testing.T) {
	tests := []struct {
		msg, input string
		ok, err    bool
	}{
		{"yes", "yes\n", true, false},
		{"short yes", "Y\n", true, false},
		{"no", "no\n", false, false},
		{"no newline", "y", true, false},
		{"empty input", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			setStdin(t, tt.input)
			ok, err := askYes("Continue?")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.err, err != nil)
		})
	}

	assert.Nil(t, confirmFunc(true))

	setStdin(t, "n\n")
	confirm := confirmFunc(false)
	require.NotNil(t, confirm)
	assert.False(t, confirm(taxonomy.Conflict{Kind: taxonomy.NameCollision}))
}

func TestCountOutcomes(t *testing.T) {
	added, skipped := countOutcomes([]taxonomy.Outcome{
		{ID: 1, Inserted: true},
		{ID: 2, Conflict: taxonomy.Conflict{Kind: taxonomy.Duplicate}},
		{ID: 3, Inserted: true},
	})
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)
}

func TestPrintDedup(t *testing.T) {
	buf := new(bytes.Buffer)
	printDedup(buf, taxonomy.DedupReport{
		Groups: []taxonomy.DedupGroup{
			{Name: "Cladonia", Author: ptr("P.Browne"), SurvivorID: 2,
				RemovedIDs: []int64{5, 7}},
		},
		Removed: 2,
	})
	out := buf.String()
	assert.Contains(t, out, "Cladonia, P.Browne: keep 2, remove [5 7]")
	assert.Contains(t, out, "1 groups, 2 taxa to remove")
}

func TestCommandsDefinition(t *testing.T) {
	tests := []struct {
		cmd   string
		flags []string
	}{
		{"add", []string{"parent", "rank", "status", "year", "published-in", "yes"}},
		{"synonyms", []string{"author", "names-file", "authors-file"}},
		{"edit", []string{"label", "author", "year", "published-in", "rank",
			"status", "parent", "yes"}},
		{"move", nil},
		{"info", []string{"json"}},
		{"dedup", []string{"by-author", "dry-run", "force"}},
		{"reconcile", []string{"rank", "progress", "clean-cache"}},
		{"inat", []string{"progress"}},
		{"optimize", []string{"progress"}},
	}

	root := getRootCmd()
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.cmd})
			require.NoError(t, err)
			assert.NotEmpty(t, cmd.Short)
			assert.Contains(t, cmd.Long, "mlidb "+tt.cmd)
			assert.NotNil(t, cmd.RunE)
			for _, f := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(f), f)
			}
		})
	}

	vocab, _, err := root.Find([]string{"vocab"})
	require.NoError(t, err)
	assert.Len(t, vocab.Commands(), 6)
}
