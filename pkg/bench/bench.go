// Package bench is the differential sampling core: it times a target
// program against a no-op baseline under matched conditions, so fixed
// per-run overhead cancels out of the reported statistics.
package bench

import (
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/tvmlabs/opbench/pkg/cell"
	"github.com/tvmlabs/opbench/pkg/common"
)

// Cloneable is the execution-context contract: Clone returns a fresh,
// exclusively owned copy ready for exactly one run.
type Cloneable[C any] interface {
	Clone() C
}

// Executor runs one program once against an exclusively owned context.
// The in-process engine provides the production implementation; tests
// supply deterministic fakes.
type Executor[C any] interface {
	Run(code *cell.Cell, ctx C, gasLimit int64) common.RunResult
}

// Measure produces the runtime/gas statistics for one program. Every
// iteration clones the initial context twice — once for the no-op baseline,
// once for the target — and records the paired difference. A nonzero exit
// status is data, not a failure: sampling continues and the status folds
// into the report's error flag.
func Measure[C Cloneable[C]](exec Executor[C], code *cell.Cell, initial C, opts Options) common.RuntimeStats {
	opts = opts.withDefaults()
	return measure(exec, code, initial, opts, newController(opts))
}

func measure[C Cloneable[C]](exec Executor[C], code *cell.Cell, initial C, opts Options, ctl *controller) common.RuntimeStats {
	empty := cell.Empty()
	samples := make([]common.DiffSample, 0, opts.MinSamples)
	var total common.RunningTotal

	for ctl.keepSampling(len(samples)) {
		baseline := exec.Run(empty, initial.Clone(), opts.GasLimit)
		target := exec.Run(code, initial.Clone(), opts.GasLimit)

		sample := common.Diff(target, baseline)
		samples = append(samples, sample)
		total = total.Merge(sample)
	}

	log.Debugf("collected %d differential samples", len(samples))
	return summarize(samples, total)
}

// summarize finalizes the two-pass statistics over the frozen sample set:
// means from the first-pass running sums, population standard deviations
// from a second pass over the stored samples, and the existential error
// flag.
func summarize(samples []common.DiffSample, total common.RunningTotal) common.RuntimeStats {
	n := float64(len(samples))
	if n == 0 {
		return common.RuntimeStats{}
	}

	runtimes := make([]float64, len(samples))
	gas := make([]float64, len(samples))
	errored := false
	for i, s := range samples {
		runtimes[i] = s.Runtime
		gas[i] = float64(s.GasUsage)
		errored = errored || s.Errored()
	}

	return common.RuntimeStats{
		Runtime: common.Stats{
			Mean:   total.Runtime / n,
			Stddev: stat.PopStdDev(runtimes, nil),
		},
		Gas: common.Stats{
			Mean:   float64(total.GasUsage) / n,
			Stddev: stat.PopStdDev(gas, nil),
		},
		Errored: errored,
	}
}
