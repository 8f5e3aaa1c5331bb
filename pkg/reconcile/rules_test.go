package reconcile_test

import (
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/pkg/errcode"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

func ptr[T any](v T) *T { return &v }

var wl = reconcile.Whitelist{
	Classes:  []string{"Lecanoromycetes", "Arthoniomycetes"},
	Orders:   []string{"Verrucariales"},
	Families: []string{"Strigulaceae"},
	Genera:   []string{"Dictyonema"},
}

func TestWhitelistAllows(t *testing.T) {
	tests := []struct {
		msg  string
		c    reconcile.Classification
		want bool
	}{
		{"class", reconcile.Classification{Class: "Lecanoromycetes"}, true},
		{"order", reconcile.Classification{Class: "Eurotiomycetes",
			Order: "Verrucariales"}, true},
		{"family", reconcile.Classification{Family: "Strigulaceae"}, true},
		{"genus", reconcile.Classification{Class: "Agaricomycetes",
			Genus: "Dictyonema"}, true},
		{"outside", reconcile.Classification{Class: "Agaricomycetes",
			Genus: "Agaricus"}, false},
		{"empty", reconcile.Classification{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, wl.Allows(tt.c))
		})
	}
	assert.False(t, wl.IsEmpty())
	assert.True(t, reconcile.Whitelist{}.IsEmpty())
}

func TestScreen(t *testing.T) {
	lichen := reconcile.Classification{Class: "Lecanoromycetes"}
	tests := []struct {
		msg string
		rec reconcile.Record
		ok  bool
	}{
		{"good", reconcile.Record{Name: "Cladonia rangiferina",
			Rank: "SPECIES", Classification: lichen}, true},
		{"digit", reconcile.Record{Name: "SH1169675.09FU",
			Rank: "SPECIES", Classification: lichen}, false},
		{"unranked", reconcile.Record{Name: "Cladonia",
			Rank: reconcile.RankUnranked, Classification: lichen}, false},
		{"no rank", reconcile.Record{Name: "Cladonia",
			Classification: lichen}, false},
		{"not lichen", reconcile.Record{Name: "Agaricus campestris",
			Rank: "SPECIES"}, false},
		{"no name", reconcile.Record{Rank: "GENUS",
			Classification: lichen}, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := reconcile.Screen(tt.rec, wl)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, errcode.RemoteRecordRejectedError, gnErr.Code)
		})
	}
}

func TestMatch(t *testing.T) {
	us := []reconcile.Usage{
		{Key: 1, CanonicalName: "Cladonia", Rank: "GENUS",
			Classification: reconcile.Classification{Class: "Agaricomycetes"}},
		{Key: 2, CanonicalName: "Cladonia", Rank: "SUBGENUS",
			Classification: reconcile.Classification{Class: "Lecanoromycetes"}},
		{Key: 3, CanonicalName: "Cladonia", Rank: "GENUS",
			Classification: reconcile.Classification{Class: "Lecanoromycetes"}},
	}

	key, ok := reconcile.Match(us, "Cladonia", "genus", wl)
	assert.True(t, ok)
	assert.Equal(t, int64(3), key)

	_, ok = reconcile.Match(us, "Cladina", "genus", wl)
	assert.False(t, ok)

	_, ok = reconcile.Match(nil, "Cladonia", "genus", wl)
	assert.False(t, ok)
}

func TestPlan(t *testing.T) {
	remote := reconcile.Record{
		Name:   "Cladonia fimbriata",
		Author: ptr("(L.) Fr."),
		Year:   ptr(1831),
		Status: reconcile.StatusAccepted,
	}

	tests := []struct {
		msg    string
		local  taxonomy.Taxon
		rec    reconcile.Record
		author *string
		year   *int
	}{
		{"fill both", taxonomy.Taxon{}, remote, ptr("(L.) Fr."), ptr(1831)},
		{"keep populated", taxonomy.Taxon{Author: ptr("Fr."), Year: ptr(1830)},
			remote, nil, nil},
		{"keep author fill year", taxonomy.Taxon{Author: ptr("Fr.")},
			remote, nil, ptr(1831)},
		{"synonym author is ignored", taxonomy.Taxon{},
			reconcile.Record{Author: ptr("L."), Year: ptr(1753),
				Status: "HOMOTYPIC_SYNONYM"}, nil, ptr(1753)},
		{"remote empty", taxonomy.Taxon{},
			reconcile.Record{Status: reconcile.StatusAccepted}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			fill := reconcile.Plan(tt.local, tt.rec)
			assert.Equal(t, tt.author, fill.Author)
			assert.Equal(t, tt.year, fill.Year)
			assert.Equal(t, tt.author == nil && tt.year == nil, fill.IsEmpty())
		})
	}
}
