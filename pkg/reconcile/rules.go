package reconcile

import (
	"slices"
	"strings"
	"unicode"

	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// Whitelist lists higher taxa that contain lichens. A record belongs to
// lichens when any of its class, order, family or genus is listed.
type Whitelist struct {
	Classes  []string `yaml:"classes"`
	Orders   []string `yaml:"orders"`
	Families []string `yaml:"families"`
	Genera   []string `yaml:"genera"`
}

// Allows reports if the classification is inside the whitelist.
func (w Whitelist) Allows(c Classification) bool {
	return listed(w.Classes, c.Class) ||
		listed(w.Orders, c.Order) ||
		listed(w.Families, c.Family) ||
		listed(w.Genera, c.Genus)
}

// IsEmpty is true for a whitelist without entries.
func (w Whitelist) IsEmpty() bool {
	return len(w.Classes)+len(w.Orders)+len(w.Families)+len(w.Genera) == 0
}

func listed(list []string, s string) bool {
	return s != "" && slices.Contains(list, s)
}

// Screen rejects remote records that must never be stored: provisional
// names with digits, unranked usages and taxa outside the whitelist.
func Screen(rec Record, wl Whitelist) error {
	if rec.Name == "" {
		return RejectedError(rec, "name is empty")
	}
	if strings.ContainsFunc(rec.Name, unicode.IsDigit) {
		return RejectedError(rec, "name contains a digit")
	}
	if rec.Rank == "" || rec.Rank == RankUnranked {
		return RejectedError(rec, "rank is missing")
	}
	if !wl.Allows(rec.Classification) {
		return RejectedError(rec, "taxon is outside of the lichen whitelist")
	}
	return nil
}

// Match picks the key of the first suggested usage with the given rank
// and canonical name that passes the whitelist.
func Match(us []Usage, name, rank string, wl Whitelist) (int64, bool) {
	rank = strings.ToUpper(rank)
	for _, u := range us {
		if u.Rank == rank && u.CanonicalName == name && wl.Allows(u.Classification) {
			return u.Key, true
		}
	}
	return 0, false
}

// Fill lists local fields that may be filled from a remote record.
type Fill struct {
	Author *string
	Year   *int
}

// IsEmpty is true when nothing is to be written.
func (f Fill) IsEmpty() bool {
	return f.Author == nil && f.Year == nil
}

// Plan decides which empty local fields take remote values. Populated
// local fields are never overwritten. An author is taken only from an
// accepted remote name.
func Plan(local taxonomy.Taxon, rec Record) Fill {
	var res Fill
	if local.Author == nil && rec.Author != nil && rec.Status == StatusAccepted {
		res.Author = rec.Author
	}
	if local.Year == nil && rec.Year != nil {
		res.Year = rec.Year
	}
	return res
}
