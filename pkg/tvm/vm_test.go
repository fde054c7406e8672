package tvm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvmlabs/opbench/pkg/cell"
)

func mustCell(t *testing.T, literal string) *cell.Cell {
	t.Helper()
	c, err := cell.FromString(literal)
	require.NoError(t, err)
	return c
}

func TestInitIdempotent(t *testing.T) {
	Init()
	first := EmptyDictionary()
	Init()
	assert.Same(t, first, EmptyDictionary())
}

func TestExecuteEmptyProgram(t *testing.T) {
	res := Execute(cell.Empty(), NewStack(), 0)

	assert.Equal(t, 0, res.StatusCode)
	assert.Equal(t, int64(implicitRetGas), res.GasUsage)
	assert.GreaterOrEqual(t, res.Runtime, 0.0)
}

func TestExecuteArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		results []int64 // bottom to top
	}{
		{name: "add", code: "7572A0", results: []int64{7}},
		{name: "sub", code: "7572A1", results: []int64{3}},
		{name: "mul", code: "7573A8", results: []int64{15}},
		{name: "negate", code: "75A3", results: []int64{-5}},
		{name: "inc_dec", code: "75A4A4A5", results: []int64{6}},
		{name: "nibble_negative", code: "7B", results: []int64{-5}},
		{name: "pushint8", code: "80FF", results: []int64{-1}},
		{name: "pushint16", code: "81FF9C", results: []int64{-100}},
		{name: "dup_drop", code: "75742030", results: []int64{5, 4}},
		{name: "xchg", code: "757401", results: []int64{4, 5}},
		{name: "pop_s1", code: "75747331", results: []int64{5, 3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stack := NewStack()
			res := Execute(mustCell(t, test.code), stack, 0)

			require.Equal(t, 0, res.StatusCode)
			require.Equal(t, len(test.results), stack.Depth())
			for i, want := range test.results {
				assert.Equal(t, want, stack.At(stack.Depth()-1-i), "stack entry %d", i)
			}
		})
	}
}

func TestExecuteDivmodCeiling(t *testing.T) {
	// the DIVMODC example: setup pushes -1 and 28, A90E divides with ceiling
	initial := PrepareStack(mustCell(t, "80FF801C"), 0)

	stack := initial.Clone()
	res := Execute(mustCell(t, "A90E"), stack, 0)

	require.Equal(t, 0, res.StatusCode)
	// 16 opcode bits plus the implicit RET
	assert.Equal(t, int64(gasPerInstruction+16*gasPerBit+implicitRetGas), res.GasUsage)
	require.Equal(t, 2, stack.Depth())
	assert.Equal(t, int64(-1), stack.At(0)) // remainder
	assert.Equal(t, int64(0), stack.At(1))  // quotient

	// the initial context stays untouched for the next clone
	require.Equal(t, 2, initial.Depth())
	assert.Equal(t, int64(28), initial.At(0))
	assert.Equal(t, int64(-1), initial.At(1))
}

func TestExecuteErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
	}{
		{name: "stack_underflow", code: "A0", status: excStackUnderflow},
		{name: "division_by_zero", code: "7A70A904", status: excIntOverflow},
		{name: "invalid_opcode", code: "FF", status: excInvalidOpcode},
		{name: "truncated_opcode", code: "4_", status: excInvalidOpcode},
		{name: "truncated_immediate", code: "80", status: excInvalidOpcode},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := Execute(mustCell(t, test.code), NewStack(), 0)
			assert.Equal(t, test.status, res.StatusCode)
		})
	}
}

func TestExecuteOutOfGas(t *testing.T) {
	// two 8-bit pushes at 18 gas each against a 20 gas budget
	res := Execute(mustCell(t, "7070A0"), NewStack(), 20)

	assert.Equal(t, excOutOfGas, res.StatusCode)
	assert.Greater(t, res.GasUsage, int64(20))
}

func TestCloneIsIndependent(t *testing.T) {
	stack := NewStack()
	stack.PushInt(42)

	clone := stack.Clone()
	res := Execute(mustCell(t, "30"), clone, 0) // DROP

	require.Equal(t, 0, res.StatusCode)
	assert.Equal(t, 0, clone.Depth())
	assert.Equal(t, 1, stack.Depth())
	assert.Equal(t, int64(42), stack.At(0))
}

func TestDivRound(t *testing.T) {
	tests := []struct {
		name  string
		x, y  int64
		round int
		q, r  int64
	}{
		{name: "floor_positive", x: 7, y: 2, round: roundFloor, q: 3, r: 1},
		{name: "floor_negative", x: -7, y: 2, round: roundFloor, q: -4, r: 1},
		{name: "ceil_positive", x: 7, y: 2, round: roundCeil, q: 4, r: -1},
		{name: "ceil_small_negative", x: -1, y: 28, round: roundCeil, q: 0, r: -1},
		{name: "nearest_tie_up", x: 7, y: 2, round: roundNearest, q: 4, r: -1},
		{name: "nearest_tie_up_negative", x: -7, y: 2, round: roundNearest, q: -3, r: -1},
		{name: "exact", x: 8, y: 2, round: roundCeil, q: 4, r: 0},
		{name: "negative_divisor_floor", x: 7, y: -2, round: roundFloor, q: -4, r: -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q, r := divRound(big.NewInt(test.x), big.NewInt(test.y), test.round)
			assert.Equal(t, test.q, q.Int64())
			assert.Equal(t, test.r, r.Int64())

			// x == q*y + r always holds
			back := new(big.Int).Mul(q, big.NewInt(test.y))
			back.Add(back, r)
			assert.Equal(t, test.x, back.Int64())
		})
	}
}
