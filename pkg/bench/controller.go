package bench

import (
	"time"

	"github.com/tvmlabs/opbench/pkg/common"
)

// controller implements the adaptive stopping rule: sample until the hard
// cap, but once the wall-clock budget is spent and the minimum floor is met,
// stop before the next sample. The stopwatch is one coarse monotonic
// reading per loop pass, independent of the per-execution timer.
type controller struct {
	maxSamples int
	minSamples int
	budget     time.Duration
	elapsed    func() time.Duration
}

func newController(opts Options) *controller {
	start := time.Now()
	return &controller{
		maxSamples: opts.MaxSamples,
		minSamples: opts.MinSamples,
		budget:     opts.TimeBudget,
		elapsed:    func() time.Duration { return time.Since(start) },
	}
}

// keepSampling reports whether another sample should be taken, given how
// many were already collected.
func (c *controller) keepSampling(taken int) bool {
	if taken >= c.maxSamples {
		return false
	}
	if taken >= c.minSamples && c.elapsed() > c.budget {
		return false
	}
	return true
}

// Options bound one measurement run. The zero value of a field falls back
// to the corresponding sampling-policy constant; GasLimit zero means an
// unlimited engine budget.
type Options struct {
	MaxSamples int
	MinSamples int
	TimeBudget time.Duration
	GasLimit   int64
}

func (o Options) withDefaults() Options {
	if o.MaxSamples <= 0 {
		o.MaxSamples = common.MaxSamples
	}
	if o.MinSamples <= 0 {
		o.MinSamples = common.MinSamples
	}
	if o.MaxSamples > common.MaxSamples {
		o.MaxSamples = common.MaxSamples
	}
	if o.MinSamples > o.MaxSamples {
		o.MinSamples = o.MaxSamples
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = common.TimeBudget
	}
	return o
}
