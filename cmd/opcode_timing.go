package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tvmlabs/opbench/pkg/bench"
	"github.com/tvmlabs/opbench/pkg/cell"
	"github.com/tvmlabs/opbench/pkg/common"
	"github.com/tvmlabs/opbench/pkg/metric"
	"github.com/tvmlabs/opbench/pkg/tvm"
)

var (
	verbosity  = flag.String("verbosity", "error", "Logging verbosity - choose from [error, info, debug, trace]")
	gasLimit   = flag.Int64("gasLimit", 0, "Gas budget per execution (0 = unlimited)")
	maxSamples = flag.Int("maxSamples", common.MaxSamples, "Hard cap on the number of differential samples")
	minSamples = flag.Int("minSamples", common.MinSamples, "Samples to collect before the time budget may stop sampling")
	timeBudget = flag.Duration("timeBudget", common.TimeBudget, "Wall-clock budget for one measurement run")
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	})
	// stdout carries only the CSV report
	log.SetOutput(os.Stderr)
}

func setLogLevel(verbosity string) {
	switch verbosity {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.ErrorLevel)
	}
}

// parseArgs selects the setup and measured bytecode from the positional
// arguments. ok is false when the argument count violates the contract
// of one or two arguments.
func parseArgs(args []string) (setup, code string, ok bool) {
	switch len(args) {
	case 1:
		return "", args[0], true
	case 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

func usage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w,
		"This utility compares the timing of VM execution against the gas used.\n"+
			"It can be used to discover opcodes or opcode sequences that consume an\n"+
			"inordinate amount of computational resources relative to their gas cost.\n"+
			"\n"+
			"The utility expects one or two command line arguments:\n"+
			"the bytecode used to set up the stack and VM state, followed by the bytecode to measure.\n"+
			"For example, to test the DIVMODC opcode:\n"+
			"\t$ %s 80FF801C A90E 2>/dev/null\n"+
			"\tOPCODE,runtime mean,runtime stddev,gas mean,gas stddev,error\n"+
			"\tA90E,0.000664160,0.000233496,26.000000000,0.000000000,0\n"+
			"\n"+
			"Usage: %s [flags] [SETUP_BYTECODE] BYTECODE\n"+
			"\tBYTECODE is either:\n"+
			"\t1. a hex-encoded string (e.g. A90E for DIVMODC)\n"+
			"\t2. boc:<serialized boc in base64> (e.g. boc:te6ccgEBAgEABwABAogBAAJ7)\n\n",
		name, name)
}

func main() {
	flag.Parse()
	setLogLevel(*verbosity)

	setup, code, ok := parseArgs(flag.Args())
	if !ok {
		usage(os.Stderr)
		os.Exit(1)
	}

	stats := timeInstruction(setup, code)

	if err := metric.WriteReport(os.Stdout, metric.NewRecord(code, stats)); err != nil {
		log.Fatal("Failed to write the report: ", err)
	}
}

// timeInstruction prepares the initial VM context from the setup code and
// measures the target code against it. Malformed bytecode and failing
// setup runs are fatal: no report row is produced for them.
func timeInstruction(setup, code string) common.RuntimeStats {
	tvm.Init()

	setupCell := mustDecode(setup)
	codeCell := mustDecode(code)

	initial := tvm.PrepareStack(setupCell, *gasLimit)
	log.Debugf("initial stack depth %d", initial.Depth())

	return bench.Measure(tvm.Runner{}, codeCell, initial, bench.Options{
		MaxSamples: *maxSamples,
		MinSamples: *minSamples,
		TimeBudget: *timeBudget,
		GasLimit:   *gasLimit,
	})
}

func mustDecode(s string) *cell.Cell {
	c, err := cell.FromString(s)
	if err != nil {
		log.Fatalf("Cannot decode bytecode %q: %v", s, err)
	}
	return c
}
