package common

// RunResult is the outcome of a single VM execution: wall-clock runtime in
// milliseconds (clamped non-negative by the producer), gas charged by the
// engine, and the normalized exit status (0 = clean halt).
type RunResult struct {
	Runtime    float64
	GasUsage   int64
	StatusCode int
}

func (r RunResult) Errored() bool {
	return r.StatusCode != 0
}

// DiffSample is one paired measurement: target minus baseline. The runtime
// delta may be negative when the baseline run happened to be slower; no
// clamping is applied at this stage.
type DiffSample struct {
	Runtime    float64
	GasUsage   int64
	StatusCode int
}

func (s DiffSample) Errored() bool {
	return s.StatusCode != 0
}

// CombineStatus merges two exit statuses: the left operand's nonzero status
// wins, otherwise the right one is taken. Deterministic but not commutative.
func CombineStatus(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// Diff derives the differential sample for one baseline/target pair. The
// status folds in a failure from either run, target first.
func Diff(target, baseline RunResult) DiffSample {
	return DiffSample{
		Runtime:    target.Runtime - baseline.Runtime,
		GasUsage:   target.GasUsage - baseline.GasUsage,
		StatusCode: CombineStatus(target.StatusCode, baseline.StatusCode),
	}
}

// RunningTotal accumulates differential samples during the first pass:
// plain sums for runtime and gas, first-nonzero-wins for the status.
type RunningTotal struct {
	Runtime    float64
	GasUsage   int64
	StatusCode int
}

// Merge folds one sample into the total. Associative over sample order.
func (t RunningTotal) Merge(s DiffSample) RunningTotal {
	return RunningTotal{
		Runtime:    t.Runtime + s.Runtime,
		GasUsage:   t.GasUsage + s.GasUsage,
		StatusCode: CombineStatus(t.StatusCode, s.StatusCode),
	}
}

// Stats is a mean/stddev pair. Stddev is the population standard deviation.
type Stats struct {
	Mean   float64
	Stddev float64
}

// RuntimeStats is the terminal report for one measured program.
type RuntimeStats struct {
	Runtime Stats
	Gas     Stats
	Errored bool
}
