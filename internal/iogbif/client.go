// Package iogbif talks to a GBIF-like species API. It implements
// reconcile.Client over net/http with a fixed delay between requests and
// reconcile.Normalizer over a pool of botanical name parsers.
package iogbif

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/tagezi/mlidb/internal/iocache"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"golang.org/x/time/rate"
)

type client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *iocache.Cache
	enc     gnfmt.GNjson
}

// suggestion is an entry of the suggest endpoint. It reports the status
// under "status" instead of "taxonomicStatus".
type suggestion struct {
	reconcile.Usage
	Status string `json:"status,omitempty"`
}

// NewClient creates a client of the species API described by cfg.
// Responses of suggest and detail calls are kept in cache when it is not
// nil. Paged lists are never cached.
func NewClient(cfg config.ReconcileConfig, cache *iocache.Cache) reconcile.Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// A single token refilled every DelayMs keeps calls at least that far
	// apart.
	limit := rate.Inf
	if cfg.DelayMs > 0 {
		limit = rate.Every(time.Duration(cfg.DelayMs) * time.Millisecond)
	}

	return &client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}
}

func (c *client) Suggest(
	ctx context.Context,
	name string,
) ([]reconcile.Usage, error) {
	q := url.Values{}
	q.Set("q", name)
	u := c.baseURL + "/species/suggest?" + q.Encode()

	var res []reconcile.Usage
	if c.fromCache(u, &res) {
		return res, nil
	}

	var sgs []suggestion
	if err := c.get(ctx, u, &sgs); err != nil {
		return nil, err
	}

	res = make([]reconcile.Usage, len(sgs))
	for i, s := range sgs {
		res[i] = s.Usage
		if res[i].TaxonomicStatus == "" {
			res[i].TaxonomicStatus = s.Status
		}
	}
	c.toCache(u, res)
	return res, nil
}

func (c *client) Species(
	ctx context.Context,
	key int64,
) (reconcile.Usage, error) {
	u := c.baseURL + "/species/" + strconv.FormatInt(key, 10)

	var res reconcile.Usage
	if c.fromCache(u, &res) {
		return res, nil
	}

	if err := c.get(ctx, u, &res); err != nil {
		return res, err
	}
	c.toCache(u, res)
	return res, nil
}

func (c *client) Children(
	ctx context.Context,
	key int64,
	offset, limit int,
) (reconcile.Page, error) {
	return c.page(ctx, key, "children", offset, limit)
}

func (c *client) Synonyms(
	ctx context.Context,
	key int64,
	offset, limit int,
) (reconcile.Page, error) {
	return c.page(ctx, key, "synonyms", offset, limit)
}

func (c *client) page(
	ctx context.Context,
	key int64,
	list string,
	offset, limit int,
) (reconcile.Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u := fmt.Sprintf("%s/species/%d/%s?%s", c.baseURL, key, list, q.Encode())

	var res reconcile.Page
	err := c.get(ctx, u, &res)
	return res, err
}

// get waits for the limiter, performs a GET request and decodes a JSON
// body into dest.
func (c *client) get(ctx context.Context, u string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return RequestError(u, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RequestError(u, err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Remote request", "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Remote request failed", "url", u, "error", err)
		return RequestError(u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Remote service returned an error",
			"url", u, "status", resp.StatusCode)
		return StatusError(u, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RequestError(u, err)
	}

	if err = c.enc.Decode(body, dest); err != nil {
		slog.Error("Cannot decode remote response", "url", u, "error", err)
		return DecodeError(u, err)
	}
	return nil
}

func (c *client) fromCache(key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.Get(key, dest)
	if err != nil {
		slog.Warn("Ignoring response cache", "url", key, "error", err)
		return false
	}
	return ok
}

func (c *client) toCache(key string, val any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, val); err != nil {
		slog.Warn("Cannot cache response", "url", key, "error", err)
	}
}
