package ioreconcile

import (
	"github.com/cheggaaa/pb/v3"
)

// progress is the part of a progress bar used by the reconciler.
type progress interface {
	Increment() *pb.ProgressBar
	Finish() *pb.ProgressBar
}

// silent is used when progress output is off.
type silent struct{}

func (silent) Increment() *pb.ProgressBar { return nil }
func (silent) Finish() *pb.ProgressBar    { return nil }

// newProgressBar creates a progress bar with consistent settings, or a
// silent one when show is false.
func newProgressBar(show bool, total int, prefix string) progress {
	if !show {
		return silent{}
	}
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
