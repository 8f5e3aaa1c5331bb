package iogbif

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gnames/gnparser/ent/parsed"
	"github.com/tagezi/mlidb/pkg/parserpool"
	"github.com/tagezi/mlidb/pkg/reconcile"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

var (
	approxYearRx = regexp.MustCompile(`\s*\(\d{4}\??\)`)
	yearRx       = regexp.MustCompile(`,?\s*\d{4}\??`)
)

type normalizer struct {
	pool parserpool.Pool
}

// NewNormalizer creates a reconcile.Normalizer that splits remote
// scientific names into canonical form, authors and year with gnparser.
func NewNormalizer(pool parserpool.Pool) reconcile.Normalizer {
	return &normalizer{pool: pool}
}

func (n *normalizer) Normalize(u reconcile.Usage) (reconcile.Record, error) {
	res := reconcile.Record{
		Key:            u.Key,
		Rank:           strings.ToUpper(strings.TrimSpace(u.Rank)),
		Status:         strings.ToUpper(strings.TrimSpace(u.TaxonomicStatus)),
		Synonym:        u.Synonym,
		Classification: u.Classification,
	}

	p := n.pool.Parse(u.ScientificName)
	switch {
	case p.Parsed && p.Canonical != nil:
		res.Name = p.Canonical.Simple
		res.Author, res.Year = authorYear(p.Authorship)
	case u.CanonicalName != "":
		res.Name = u.CanonicalName
	default:
		return res, NameError(u.Key, u.ScientificName)
	}
	res.Name = norm.NFC.String(res.Name)

	// Placeholder names like "Cladonia sp. 1" keep their digits, so that
	// screening rejects them.
	if bare := bareName(u.ScientificName, p.Authorship); hasDigit(bare) {
		res.Name = bare
	}

	if res.Author == nil {
		res.Author = stripYears(u.Authorship)
	}

	res.Parent = u.Parent
	if u.Synonym && u.Accepted != "" {
		res.Parent = n.canonical(u.Accepted)
	}
	return res, nil
}

// NormalizeAll normalizes a page using all parsers of the pool. A usage
// that cannot be normalized keeps its key with an empty name, so that
// screening rejects it later. Only a cancelled context returns an error.
func (n *normalizer) NormalizeAll(
	ctx context.Context,
	us []reconcile.Usage,
) ([]reconcile.Record, error) {
	res := make([]reconcile.Record, len(us))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(n.pool.Size())
	for i := range us {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rec, err := n.Normalize(us[i])
			if err != nil {
				slog.Warn("Cannot normalize remote usage",
					"key", us[i].Key, "error", err)
				rec.Name = ""
			}
			res[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (n *normalizer) canonical(name string) string {
	p := n.pool.Parse(name)
	if p.Parsed && p.Canonical != nil {
		return norm.NFC.String(p.Canonical.Simple)
	}
	return strings.TrimSpace(name)
}

// bareName removes the verbatim authorship and years from a scientific
// name.
func bareName(name string, au *parsed.Authorship) string {
	if au != nil && au.Verbatim != "" {
		name = strings.Replace(name, au.Verbatim, "", 1)
	}
	name = approxYearRx.ReplaceAllString(name, "")
	name = yearRx.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

// authorYear returns authors without years and the year of the name.
func authorYear(au *parsed.Authorship) (*string, *int) {
	if au == nil {
		return nil, nil
	}

	author := stripYears(au.Normalized)

	var year *int
	ys := strings.Trim(au.Year, "()?")
	if y, err := strconv.Atoi(ys); err == nil {
		year = &y
	}
	return author, year
}

// stripYears removes publication years from an authorship string.
func stripYears(s string) *string {
	s = approxYearRx.ReplaceAllString(s, "")
	s = yearRx.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, " ,")
	if s == "" {
		return nil
	}
	return &s
}
