package tvm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// A small cp0-flavored opcode set, enough to exercise stack traffic and
// arithmetic under gas metering. Multi-byte instructions decode their
// arguments from the code slice; gas follows from the bits consumed.
func buildOpcodeTable() {
	opcodeTable[0x00] = opNop
	for i := 0x01; i <= 0x0F; i++ {
		opcodeTable[i] = xchg(i)
	}
	for i := 0x20; i <= 0x2F; i++ {
		opcodeTable[i] = pushStack(i - 0x20)
	}
	for i := 0x30; i <= 0x3F; i++ {
		opcodeTable[i] = popStack(i - 0x30)
	}
	for i := 0x70; i <= 0x7F; i++ {
		opcodeTable[i] = pushIntNibble(i - 0x70)
	}
	opcodeTable[0x80] = pushIntBits(8)
	opcodeTable[0x81] = pushIntBits(16)
	opcodeTable[0xA0] = binaryOp(func(x, y, z *uint256.Int) { z.Add(x, y) })
	opcodeTable[0xA1] = binaryOp(func(x, y, z *uint256.Int) { z.Sub(x, y) })
	opcodeTable[0xA3] = unaryOp(func(x, z *uint256.Int) { z.Neg(x) })
	opcodeTable[0xA4] = unaryOp(func(x, z *uint256.Int) { z.AddUint64(x, 1) })
	opcodeTable[0xA5] = unaryOp(func(x, z *uint256.Int) { z.SubUint64(x, 1) })
	opcodeTable[0xA8] = binaryOp(func(x, y, z *uint256.Int) { z.Mul(x, y) })
	opcodeTable[0xA9] = opDivision
}

func opNop(*vmState) int {
	return 0
}

// xchg swaps s0 with s(i).
func xchg(i int) opHandler {
	return func(st *vmState) int {
		if st.stack.Depth() <= i {
			return excStackUnderflow
		}
		st.stack.swap(i)
		return 0
	}
}

// pushStack copies s(i) onto the top; 0x20 is DUP.
func pushStack(i int) opHandler {
	return func(st *vmState) int {
		if st.stack.Depth() <= i {
			return excStackUnderflow
		}
		if st.stack.Depth() >= maxStackDepth {
			return excStackOverflow
		}
		v := *st.stack.at(i)
		st.stack.push(&v)
		return 0
	}
}

// popStack stores s0 into s(i) and drops it; 0x30 is DROP.
func popStack(i int) opHandler {
	return func(st *vmState) int {
		if st.stack.Depth() <= i {
			return excStackUnderflow
		}
		top := st.stack.pop()
		if i > 0 {
			*st.stack.at(i - 1) = top
		}
		return 0
	}
}

// pushIntNibble pushes the constants -5..10 encoded in the low nibble.
func pushIntNibble(n int) opHandler {
	v := int64(n)
	if n > 10 {
		v = int64(n) - 16
	}
	return func(st *vmState) int {
		if st.stack.Depth() >= maxStackDepth {
			return excStackOverflow
		}
		st.stack.push(fromInt64(v))
		return 0
	}
}

// pushIntBits pushes a signed immediate of the given bit width.
func pushIntBits(bits int) opHandler {
	return func(st *vmState) int {
		if st.cs.BitsRemaining() < bits {
			return excInvalidOpcode
		}
		if st.stack.Depth() >= maxStackDepth {
			return excStackOverflow
		}
		st.stack.push(fromInt64(st.cs.LoadInt(bits)))
		return 0
	}
}

func unaryOp(f func(x, z *uint256.Int)) opHandler {
	return func(st *vmState) int {
		if st.stack.Depth() < 1 {
			return excStackUnderflow
		}
		x := st.stack.pop()
		var z uint256.Int
		f(&x, &z)
		st.stack.push(&z)
		return 0
	}
}

func binaryOp(f func(x, y, z *uint256.Int)) opHandler {
	return func(st *vmState) int {
		if st.stack.Depth() < 2 {
			return excStackUnderflow
		}
		y := st.stack.pop()
		x := st.stack.pop()
		var z uint256.Int
		f(&x, &y, &z)
		st.stack.push(&z)
		return 0
	}
}

// Rounding modes of the division family, taken from the low two bits of
// the mode byte.
const (
	roundFloor = iota
	roundNearest
	roundCeil
)

// opDivision decodes the A9 division family from its mode byte: bits 2..3
// select the outputs (1 quotient, 2 remainder, 3 both), bits 0..1 the
// rounding mode. A90E is DIVMODC: both outputs, ceiling rounding.
func opDivision(st *vmState) int {
	if st.cs.BitsRemaining() < 8 {
		return excInvalidOpcode
	}
	mode := byte(st.cs.LoadUint(8))
	out := mode >> 2 & 3
	round := int(mode & 3)
	if out == 0 || round > roundCeil || mode > 0x0F {
		return excInvalidOpcode
	}
	if st.stack.Depth() < 2 {
		return excStackUnderflow
	}

	y := st.stack.pop()
	x := st.stack.pop()
	if y.IsZero() {
		return excIntOverflow
	}

	q, r := divRound(toSigned(&x), toSigned(&y), round)
	if out&1 != 0 {
		st.stack.push(fromSigned(q))
	}
	if out&2 != 0 {
		st.stack.push(fromSigned(r))
	}
	return 0
}

// divRound divides x by y under the requested rounding mode and returns
// quotient and remainder with x == q*y + r.
func divRound(x, y *big.Int, round int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() == 0 {
		return q, r
	}

	one := big.NewInt(1)
	switch round {
	case roundFloor:
		if (r.Sign() < 0) != (y.Sign() < 0) {
			q.Sub(q, one)
			r.Add(r, y)
		}
	case roundCeil:
		if (r.Sign() < 0) == (y.Sign() < 0) {
			q.Add(q, one)
			r.Sub(r, y)
		}
	case roundNearest:
		// floor first, then round up when the remainder is at least half
		if (r.Sign() < 0) != (y.Sign() < 0) {
			q.Sub(q, one)
			r.Add(r, y)
		}
		doubled := new(big.Int).Lsh(new(big.Int).Abs(r), 1)
		if doubled.Cmp(new(big.Int).Abs(y)) >= 0 {
			q.Add(q, one)
			r.Sub(r, y)
		}
	}
	return q, r
}

func toSigned(v *uint256.Int) *big.Int {
	if v.Sign() < 0 {
		neg := new(uint256.Int).Neg(v)
		return new(big.Int).Neg(neg.ToBig())
	}
	return v.ToBig()
}

// fromSigned wraps a signed big integer into a two's complement word.
func fromSigned(b *big.Int) *uint256.Int {
	v, _ := uint256.FromBig(b)
	return v
}
