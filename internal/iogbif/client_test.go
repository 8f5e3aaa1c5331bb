package iogbif_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagezi/mlidb/internal/iocache"
	"github.com/tagezi/mlidb/internal/iogbif"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/errcode"
)

const suggestJSON = `[
  {"key": 8422475, "scientificName": "Cladonia P.Browne",
   "canonicalName": "Cladonia", "rank": "GENUS", "status": "ACCEPTED",
   "synonym": false, "kingdom": "Fungi", "class": "Lecanoromycetes",
   "family": "Cladoniaceae", "genus": "Cladonia"}
]`

const speciesJSON = `{
  "key": 5260765, "scientificName": "Cladonia fimbriata (L.) Fr.",
  "canonicalName": "Cladonia fimbriata", "authorship": "(L.) Fr.",
  "rank": "SPECIES", "taxonomicStatus": "ACCEPTED", "synonym": false,
  "parent": "Cladonia", "class": "Lecanoromycetes", "genus": "Cladonia"
}`

const pageJSON = `{
  "offset": %d, "limit": 2, "endOfRecords": %t,
  "results": [
    {"key": %d, "scientificName": "Lichen fimbriatus L.",
     "rank": "SPECIES", "taxonomicStatus": "SYNONYM", "synonym": true,
     "accepted": "Cladonia fimbriata (L.) Fr."}
  ]
}`

func newServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/species/suggest", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Cladonia", r.URL.Query().Get("q"))
		fmt.Fprint(w, suggestJSON)
	})
	mux.HandleFunc("/species/5260765", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, speciesJSON)
	})
	mux.HandleFunc("/species/5260765/synonyms", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset := r.URL.Query().Get("offset")
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		if offset == "0" {
			fmt.Fprintf(w, pageJSON, 0, false, 1)
			return
		}
		fmt.Fprintf(w, pageJSON, 2, true, 2)
	})
	mux.HandleFunc("/species/5260765/children", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "<html>maintenance</html>")
	})
	mux.HandleFunc("/species/1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) config.ReconcileConfig {
	return config.ReconcileConfig{APIURL: url + "/", TimeoutSec: 5}
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "expected *gn.Error, got %T", err)
	return gnErr.Code
}

func TestSuggest(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	c := iogbif.NewClient(testConfig(srv.URL), nil)

	us, err := c.Suggest(context.Background(), "Cladonia")
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, int64(8422475), us[0].Key)
	assert.Equal(t, "Cladonia", us[0].CanonicalName)
	assert.Equal(t, "GENUS", us[0].Rank)
	assert.Equal(t, "ACCEPTED", us[0].TaxonomicStatus)
	assert.Equal(t, "Lecanoromycetes", us[0].Class)
}

func TestSpecies(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	c := iogbif.NewClient(testConfig(srv.URL), nil)
	ctx := context.Background()

	u, err := c.Species(ctx, 5260765)
	require.NoError(t, err)
	assert.Equal(t, "Cladonia fimbriata (L.) Fr.", u.ScientificName)
	assert.Equal(t, "(L.) Fr.", u.Authorship)
	assert.Equal(t, "Cladonia", u.Parent)

	_, err = c.Species(ctx, 1)
	assert.Equal(t, errcode.RemoteStatusError, errCode(t, err))
}

func TestPages(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	c := iogbif.NewClient(testConfig(srv.URL), nil)
	ctx := context.Background()

	p, err := c.Synonyms(ctx, 5260765, 0, 2)
	require.NoError(t, err)
	assert.False(t, p.EndOfRecords)
	require.Len(t, p.Results, 1)
	assert.True(t, p.Results[0].Synonym)
	assert.Equal(t, "Cladonia fimbriata (L.) Fr.", p.Results[0].Accepted)

	p, err = c.Synonyms(ctx, 5260765, 2, 2)
	require.NoError(t, err)
	assert.True(t, p.EndOfRecords)
	assert.Equal(t, int64(2), p.Results[0].Key)

	_, err = c.Children(ctx, 5260765, 0, 2)
	assert.Equal(t, errcode.RemoteDecodeError, errCode(t, err))
}

func TestRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := iogbif.NewClient(testConfig(url), nil)
	_, err := c.Suggest(context.Background(), "Cladonia")
	assert.Equal(t, errcode.RemoteRequestError, errCode(t, err))
}

func TestDelay(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	cfg := testConfig(srv.URL)
	cfg.DelayMs = 100
	c := iogbif.NewClient(cfg, nil)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		_, err := c.Species(ctx, 5260765)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	var calls atomic.Int32
	srv := newServer(t, &calls)

	cache, err := iocache.New(filepath.Join(t.TempDir(), "cache"), false)
	require.NoError(t, err)
	require.NoError(t, cache.Open())
	defer cache.Close()

	c := iogbif.NewClient(testConfig(srv.URL), cache)
	ctx := context.Background()

	for range 2 {
		us, err := c.Suggest(ctx, "Cladonia")
		require.NoError(t, err)
		require.Len(t, us, 1)
		assert.Equal(t, "ACCEPTED", us[0].TaxonomicStatus)

		u, err := c.Species(ctx, 5260765)
		require.NoError(t, err)
		assert.Equal(t, "Cladonia", u.Parent)

		_, err = c.Synonyms(ctx, 5260765, 0, 2)
		require.NoError(t, err)
	}
	// suggest and detail once, synonym pages twice
	assert.Equal(t, int32(4), calls.Load())
}
