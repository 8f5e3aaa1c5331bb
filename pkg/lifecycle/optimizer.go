package lifecycle

import (
	"context"
)

// OptimizeReport summarizes maintenance of the store.
type OptimizeReport struct {
	// NameUUIDs is the number of taxa whose name_uuid was refreshed.
	NameUUIDs int64

	// CrossRefs is the number of removed cross-references of missing taxa.
	CrossRefs int64

	// Checkpoints is the number of removed checkpoints of missing taxa.
	Checkpoints int64

	// DanglingParents lists taxa whose parent does not exist.
	DanglingParents []int64
}

// Optimizer keeps derived data of the store in shape: stable name
// identifiers, orphaned rows and planner statistics.
type Optimizer interface {
	// Optimize refreshes derived data and compacts the store. It is
	// safe to run it any number of times.
	Optimize(ctx context.Context) (OptimizeReport, error)
}
