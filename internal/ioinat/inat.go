// Package ioinat imports iNaturalist taxon ids from a CSV export. Each
// row gives a name and an iNaturalist id or taxon URL. The id becomes a
// cross-reference of the accepted taxon with that name.
package ioinat

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/tagezi/mlidb/internal/iorepo"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/schema"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
	"golang.org/x/text/unicode/norm"
)

const (
	nameColumn = "Name"
	idColumn   = "ID"
)

var taxaURLs = []string{
	"https://www.inaturalist.org/taxa/",
	"http://www.inaturalist.org/taxa/",
	"https://inaturalist.org/taxa/",
}

// Report summarizes an import.
type Report struct {
	Rows int

	// Added cross-references.
	Added int

	// Existing rows belong to taxa that already have an iNaturalist id.
	Existing int

	// Missing rows have no accepted taxon with their name.
	Missing int

	// Invalid rows have an empty name or id.
	Invalid int
}

// Importer adds iNaturalist cross-references.
type Importer struct {
	cfg          config.ImportConfig
	st           store.Store
	repo         taxonomy.Repository
	WithProgress bool
}

// New creates an importer writing into st.
func New(cfg config.ImportConfig, st store.Store) *Importer {
	return &Importer{cfg: cfg, st: st, repo: iorepo.New(st)}
}

// ImportFile imports a CSV file.
func (im *Importer) ImportFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Cannot open import file", "path", path, "error", err)
		return Report{}, OpenError(path, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads CSV rows from r. The whole file is checked before the
// first write.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	var res Report
	rows, err := im.read(r)
	if err != nil {
		return res, err
	}
	res.Rows = len(rows)

	var bar *pb.ProgressBar
	if im.WithProgress {
		bar = pb.Full.Start(len(rows))
		bar.Set("prefix", "Importing iNaturalist ids: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	for _, rw := range rows {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		if err = im.importRow(ctx, rw, &res); err != nil {
			return res, err
		}
		if bar != nil {
			bar.Increment()
		}
	}

	slog.Info("iNaturalist import finished",
		"rows", humanize.Comma(int64(res.Rows)),
		"added", humanize.Comma(int64(res.Added)),
		"existing", humanize.Comma(int64(res.Existing)),
		"missing", humanize.Comma(int64(res.Missing)),
		"invalid", res.Invalid,
	)
	return res, nil
}

type row struct {
	line  int
	name  string
	index string
}

func (im *Importer) read(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter(im.cfg.Delimiter)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, ParseError(1, err.Error())
	}

	nameIdx, idIdx := -1, -1
	for i, v := range header {
		switch strings.TrimSpace(strings.TrimPrefix(v, "\ufeff")) {
		case nameColumn:
			nameIdx = i
		case idColumn:
			idIdx = i
		}
	}
	if nameIdx < 0 || idIdx < 0 {
		return nil, ParseError(1, "header needs Name and ID columns")
	}

	var res []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, ParseError(line, err.Error())
		}
		if len(rec) <= max(nameIdx, idIdx) {
			return nil, ParseError(line, "row has too few fields")
		}
		res = append(res, row{
			line:  line,
			name:  norm.NFC.String(strings.TrimSpace(rec[nameIdx])),
			index: TaxonIndex(rec[idIdx]),
		})
	}
}

func (im *Importer) importRow(ctx context.Context, r row, res *Report) error {
	if r.name == "" || r.index == "" {
		res.Invalid++
		slog.Warn("Skipping incomplete row", "line", r.line)
		return nil
	}

	id, ok, err := im.st.GetID(ctx, schema.TableTaxa, store.And(
		store.Eq("name", r.name),
		store.Eq("status_id", schema.StatusAccepted),
	))
	if err != nil {
		return err
	}
	if !ok {
		res.Missing++
		slog.Debug("No accepted taxon for iNaturalist row",
			"line", r.line, "name", r.name)
		return nil
	}

	added, err := im.repo.AddCrossRef(ctx, id, im.cfg.INatSourceID, r.index)
	if err != nil {
		return err
	}
	if added {
		res.Added++
	} else {
		res.Existing++
	}
	return nil
}

// TaxonIndex returns the iNaturalist id of a value that may be an id or a
// taxon URL like https://www.inaturalist.org/taxa/54321-Cladonia.
func TaxonIndex(s string) string {
	s = strings.TrimSpace(s)
	for _, u := range taxaURLs {
		if after, ok := strings.CutPrefix(s, u); ok {
			s = after
			break
		}
	}
	if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }); i > 0 {
		s = s[:i]
	}
	return strings.Trim(s, "/")
}

func delimiter(s string) rune {
	if s == `\t` || s == "tab" {
		return '\t'
	}
	for _, r := range s {
		return r
	}
	return ';'
}
