package common

import "time"

const (
	// MaxSamples caps the number of differential samples per measured program.
	MaxSamples = 100_000

	// MinSamples is the floor below which the time budget never terminates
	// sampling, so that even very slow opcodes yield a usable sample size.
	MinSamples = 20

	// TimeBudget is the wall-clock budget for one measurement run. Once
	// exceeded, sampling stops after the current sample (subject to MinSamples).
	TimeBudget = 2 * time.Second
)
