package iooptimize

import (
	"context"
	"log/slog"
	"time"
)

// vacuumAnalyze reclaims space and updates statistics used by the query
// planner.
//
// Note: This operation cannot run inside a transaction block.
func (o *optimizer) vacuumAnalyze(ctx context.Context) error {
	timeStart := time.Now()

	stmts := []string{"VACUUM", "ANALYZE"}
	if o.st.Dialect() == "postgres" {
		stmts = []string{"VACUUM ANALYZE"}
	}
	for _, v := range stmts {
		if _, err := o.st.Exec(ctx, v); err != nil {
			return err
		}
	}

	slog.Info("VACUUM ANALYZE completed",
		"duration", time.Since(timeStart).String())
	return nil
}
