package metric

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/tvmlabs/opbench/pkg/common"
)

// NewRecord shapes one measurement report into its CSV row, keyed by the
// opcode string exactly as it was given on the command line.
func NewRecord(opcode string, stats common.RuntimeStats) Record {
	errored := 0
	if stats.Errored {
		errored = 1
	}
	return Record{
		Opcode:        opcode,
		RuntimeMean:   Fixed9(stats.Runtime.Mean),
		RuntimeStddev: Fixed9(stats.Runtime.Stddev),
		GasMean:       Fixed9(stats.Gas.Mean),
		GasStddev:     Fixed9(stats.Gas.Stddev),
		Error:         errored,
	}
}

// WriteReport emits the CSV header followed by the given rows.
func WriteReport(w io.Writer, records ...Record) error {
	rows := make([]*Record, len(records))
	for i := range records {
		rows[i] = &records[i]
	}
	return gocsv.Marshal(&rows, w)
}
