package translator

import (
	"fmt"
	"sync/atomic"
)

// NameCounter hands out fresh synthetic names (labels, temporaries).
//
// It is a monotonic counter like a logical clock: every Fresh call returns
// a name no earlier call returned since the last Reset.
type NameCounter struct {
	n atomic.Int64
}

// Names is the process-wide counter used by all translators.
var Names = &NameCounter{}

// Fresh returns prefix_N for the next N.
func (c *NameCounter) Fresh(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, c.n.Add(1))
}

// Current returns the last issued number.
func (c *NameCounter) Current() int64 {
	return c.n.Load()
}

// Reset restarts numbering at 1. Call once per top-level translation run.
func (c *NameCounter) Reset() {
	c.n.Store(0)
}
