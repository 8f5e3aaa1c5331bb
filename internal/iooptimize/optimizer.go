// Package iooptimize implements lifecycle.Optimizer. It refreshes stable
// name identifiers, removes rows left from deleted taxa and updates
// statistics of the database.
package iooptimize

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/tagezi/mlidb/pkg/lifecycle"
	"github.com/tagezi/mlidb/pkg/store"
)

const batchSize = 500

type optimizer struct {
	st           store.Store
	jobsNum      int
	withProgress bool
}

// NewOptimizer creates an Optimizer working on st with jobsNum workers.
func NewOptimizer(st store.Store, jobsNum int, withProgress bool) lifecycle.Optimizer {
	if jobsNum <= 0 {
		jobsNum = 1
	}
	return &optimizer{st: st, jobsNum: jobsNum, withProgress: withProgress}
}

// Optimize runs maintenance steps in order:
//  1. Refresh name_uuid of taxa
//  2. Remove cross-references and checkpoints of missing taxa
//  3. Find taxa with missing parents
//  4. Compact the database and update planner statistics
func (o *optimizer) Optimize(ctx context.Context) (lifecycle.OptimizeReport, error) {
	var res lifecycle.OptimizeReport
	var err error
	start := time.Now()
	slog.Info("Starting database optimization")

	slog.Info("Step 1/4: Refreshing name identifiers")
	if res.NameUUIDs, err = o.refreshNameUUIDs(ctx); err != nil {
		return res, err
	}

	slog.Info("Step 2/4: Removing orphaned rows")
	if res.CrossRefs, res.Checkpoints, err = o.removeOrphans(ctx); err != nil {
		return res, err
	}

	slog.Info("Step 3/4: Checking parents")
	if res.DanglingParents, err = o.danglingParents(ctx); err != nil {
		return res, err
	}

	slog.Info("Step 4/4: Updating statistics")
	if err = o.vacuumAnalyze(ctx); err != nil {
		return res, err
	}

	slog.Info("Database optimization completed",
		"name_uuids", humanize.Comma(res.NameUUIDs),
		"cross_refs", humanize.Comma(res.CrossRefs),
		"checkpoints", humanize.Comma(res.Checkpoints),
		"dangling_parents", len(res.DanglingParents),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return res, nil
}
