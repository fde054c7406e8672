package metric

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvmlabs/opbench/pkg/common"
)

func TestWriteReport(t *testing.T) {
	stats := common.RuntimeStats{
		Runtime: common.Stats{Mean: 0.0066416, Stddev: 0.00233496},
		Gas:     common.Stats{Mean: 26, Stddev: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, NewRecord("A90E", stats)))

	assert.Equal(t,
		"OPCODE,runtime mean,runtime stddev,gas mean,gas stddev,error\n"+
			"A90E,0.006641600,0.002334960,26.000000000,0.000000000,0\n",
		buf.String())
}

func TestWriteReportErrorFlag(t *testing.T) {
	stats := common.RuntimeStats{Errored: true}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, NewRecord("FF", stats)))

	assert.Contains(t, buf.String(), "FF,0.000000000,0.000000000,0.000000000,0.000000000,1\n")
}

func TestFixed9AlwaysNineDecimals(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{value: 0, expected: "0.000000000"},
		{value: 0.8, expected: "0.800000000"},
		{value: -0.25, expected: "-0.250000000"},
		{value: 12345.5, expected: "12345.500000000"},
		{value: 1e-10, expected: "0.000000000"},
	}

	for _, test := range tests {
		s, err := Fixed9(test.value).MarshalCSV()
		require.NoError(t, err)
		assert.Equal(t, test.expected, s)
	}
}
