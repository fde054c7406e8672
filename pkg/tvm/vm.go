package tvm

import (
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tvmlabs/opbench/pkg/cell"
	"github.com/tvmlabs/opbench/pkg/common"
)

// Exit statuses used by the engine. Zero is a clean halt; the raw value
// returned by the run loop is the bitwise complement of the exit status.
const (
	excStackUnderflow = 2
	excStackOverflow  = 3
	excIntOverflow    = 4
	excInvalidOpcode  = 6
	excOutOfGas       = 13
)

// Gas pricing: a flat base per decoded instruction plus one unit per opcode
// bit, and a small charge for the implicit RET at the end of the code slice.
const (
	gasPerInstruction = 10
	gasPerBit         = 1
	implicitRetGas    = 5
)

const maxStackDepth = 256

type opHandler func(st *vmState) int

var (
	initOnce    sync.Once
	opcodeTable [256]opHandler
	emptyDict   *cell.Cell
)

// Init performs the process-wide engine setup: the opcode dispatch table
// and the shared empty-dictionary cell. Idempotent and cheap to call again.
func Init() {
	initOnce.Do(func() {
		buildOpcodeTable()
		emptyDict = cell.Empty()
	})
}

// EmptyDictionary returns the shared empty-dictionary singleton.
func EmptyDictionary() *cell.Cell {
	Init()
	return emptyDict
}

type vmState struct {
	cs       *cell.Slice
	stack    *Stack
	gasLimit int64
	gasUsed  int64
}

func (st *vmState) charge(gas int64) int {
	st.gasUsed += gas
	if st.gasUsed > st.gasLimit {
		return excOutOfGas
	}
	return 0
}

// run executes the code slice to completion and returns the raw halt value:
// the bitwise complement of the exit status, so a clean halt yields -1.
func (st *vmState) run() int {
	for {
		if st.cs.BitsRemaining() == 0 {
			if exit := st.charge(implicitRetGas); exit != 0 {
				return ^exit
			}
			return ^0
		}
		if st.cs.BitsRemaining() < 8 {
			return ^excInvalidOpcode
		}

		before := st.cs.Position()
		op := byte(st.cs.LoadUint(8))
		handler := opcodeTable[op]
		if handler == nil {
			return ^excInvalidOpcode
		}

		exit := handler(st)
		bits := st.cs.Position() - before
		if gasExit := st.charge(int64(gasPerInstruction + gasPerBit*bits)); gasExit != 0 {
			return ^gasExit
		}
		if exit != 0 {
			return ^exit
		}
	}
}

// Execute runs one program on an exclusively owned stack and reports its
// runtime in milliseconds, gas charged, and normalized exit status. Only
// the dispatch loop sits inside the timed region; engine setup and status
// normalization happen outside it. A panic escaping the engine is an
// unrecoverable fault and aborts the process.
func Execute(code *cell.Cell, stack *Stack, gasLimit int64) common.RunResult {
	Init()
	stack.claim()

	limit := gasLimit
	if limit <= 0 {
		limit = math.MaxInt64
	}
	st := &vmState{cs: code.BeginParse(), stack: stack, gasLimit: limit}

	defer func() {
		if r := recover(); r != nil {
			log.Fatal("unhandled engine fault: ", r)
		}
	}()

	start := time.Now()
	raw := st.run()
	elapsed := time.Since(start)

	runtime := float64(elapsed.Nanoseconds()) / 1e6
	if runtime < 0 {
		runtime = 0
	}
	return common.RunResult{Runtime: runtime, GasUsage: st.gasUsed, StatusCode: ^raw}
}

// PrepareStack runs the setup program once, un-timed, on a fresh stack and
// returns the resulting stack as the initial context for sampling. The
// returned stack is already claimed; callers clone it for every execution.
// A failing setup run is fatal: there is no meaningful measurement against
// a half-initialized context.
func PrepareStack(setup *cell.Cell, gasLimit int64) *Stack {
	stack := NewStack()
	res := Execute(setup, stack, gasLimit)
	if res.Errored() {
		log.Fatalf("setup code failed with exit status %d", res.StatusCode)
	}
	return stack
}

// Runner is the production executor backed by the in-process engine.
type Runner struct{}

func (Runner) Run(code *cell.Cell, stack *Stack, gasLimit int64) common.RunResult {
	return Execute(code, stack, gasLimit)
}
