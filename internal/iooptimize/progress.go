package iooptimize

import (
	"github.com/cheggaaa/pb/v3"
)

const barTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// counter counts processed taxa. A nil counter does nothing, so workers
// do not need to check if progress output is on.
type counter struct {
	bar *pb.ProgressBar
}

func newCounter(show bool, total int64, prefix string) *counter {
	if !show || total == 0 {
		return nil
	}
	bar := barTemplate.Start64(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return &counter{bar: bar}
}

func (c *counter) inc() {
	if c == nil {
		return
	}
	c.bar.Increment()
}

func (c *counter) finish() {
	if c == nil {
		return
	}
	c.bar.Finish()
}
