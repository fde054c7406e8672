package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int
		expected int
	}{
		{name: "both_clean", a: 0, b: 0, expected: 0},
		{name: "left_wins", a: 13, b: 2, expected: 13},
		{name: "right_taken_when_left_clean", a: 0, b: 2, expected: 2},
		{name: "left_only", a: 4, b: 0, expected: 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, CombineStatus(test.a, test.b))
		})
	}
}

func TestDiffKeepsNegativeRuntime(t *testing.T) {
	target := RunResult{Runtime: 0.1, GasUsage: 5, StatusCode: 0}
	baseline := RunResult{Runtime: 0.4, GasUsage: 5, StatusCode: 0}

	s := Diff(target, baseline)

	assert.InDelta(t, -0.3, s.Runtime, 1e-12)
	assert.Equal(t, int64(0), s.GasUsage)
	assert.False(t, s.Errored())
}

func TestDiffFoldsBaselineStatus(t *testing.T) {
	s := Diff(RunResult{StatusCode: 0}, RunResult{StatusCode: 7})
	assert.Equal(t, 7, s.StatusCode)

	s = Diff(RunResult{StatusCode: 3}, RunResult{StatusCode: 7})
	assert.Equal(t, 3, s.StatusCode)
}

func TestRunningTotalMerge(t *testing.T) {
	var total RunningTotal

	total = total.Merge(DiffSample{Runtime: 1.5, GasUsage: 10})
	total = total.Merge(DiffSample{Runtime: -0.5, GasUsage: 16, StatusCode: 2})
	total = total.Merge(DiffSample{Runtime: 1.0, GasUsage: 0, StatusCode: 9})

	assert.InDelta(t, 2.0, total.Runtime, 1e-12)
	assert.Equal(t, int64(26), total.GasUsage)
	// the first nonzero status sticks
	assert.Equal(t, 2, total.StatusCode)
}
