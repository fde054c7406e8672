package metric

import "strconv"

// Fixed9 renders with exactly nine digits after the decimal point in CSV
// output, regardless of magnitude.
type Fixed9 float64

func (f Fixed9) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 9, 64), nil
}

// Record is one output row of the audit report. The column names are the
// tool's CSV contract.
type Record struct {
	Opcode        string `csv:"OPCODE"`
	RuntimeMean   Fixed9 `csv:"runtime mean"`
	RuntimeStddev Fixed9 `csv:"runtime stddev"`
	GasMean       Fixed9 `csv:"gas mean"`
	GasStddev     Fixed9 `csv:"gas stddev"`
	Error         int    `csv:"error"`
}
