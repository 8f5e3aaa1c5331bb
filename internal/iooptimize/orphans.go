package iooptimize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tagezi/mlidb/pkg/schema"
)

// removeOrphans deletes cross-references and checkpoints that point to
// taxa that do not exist anymore.
func (o *optimizer) removeOrphans(ctx context.Context) (int64, int64, error) {
	refs, err := o.removeOrphanRows(ctx, schema.TableIndexes)
	if err != nil {
		return 0, 0, err
	}
	cps, err := o.removeOrphanRows(ctx, schema.TableCheckpoints)
	if err != nil {
		return refs, 0, err
	}
	return refs, cps, nil
}

// removeOrphanRows uses the LEFT OUTER JOIN pattern, table is one of the
// schema constants.
func (o *optimizer) removeOrphanRows(ctx context.Context, table string) (int64, error) {
	q := fmt.Sprintf(`
DELETE FROM %[1]s
WHERE id IN (
	SELECT o.id
	FROM %[1]s o
	LEFT OUTER JOIN taxa t
		ON t.id = o.taxon_id
	WHERE t.id IS NULL
)`, table)

	n, err := o.st.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	slog.Info("Removed orphaned rows", "table", table, "count", n)
	return n, nil
}

// danglingParents returns ids of taxa with a parent_id that points
// nowhere. They are only reported.
func (o *optimizer) danglingParents(ctx context.Context) ([]int64, error) {
	q := `
SELECT t.id
FROM taxa t
LEFT OUTER JOIN taxa p
	ON p.id = t.parent_id
WHERE t.parent_id IS NOT NULL AND p.id IS NULL
ORDER BY t.id`
	var res []int64
	if err := o.st.Query(ctx, &res, q); err != nil {
		return nil, err
	}
	if len(res) > 0 {
		slog.Warn("Taxa with missing parents", "count", len(res), "ids", res)
	}
	return res, nil
}
