package tvm

import (
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// Stack is the mutable execution context of one VM run. It must be
// exclusively owned by that run: Execute claims the instance, and a stack
// can never be claimed twice. Callers keep a pristine initial context and
// hand a fresh Clone to every execution.
type Stack struct {
	vals    []uint256.Int
	claimed bool
}

func NewStack() *Stack {
	return &Stack{}
}

// Clone returns a deep, unclaimed copy suitable for one execution.
func (s *Stack) Clone() *Stack {
	c := &Stack{vals: make([]uint256.Int, len(s.vals))}
	copy(c.vals, s.vals)
	return c
}

// claim enforces the single-owner precondition. A stack that was already
// handed to an execution cannot be measured again: hidden sharing would
// charge one run with another's allocations.
func (s *Stack) claim() {
	if s.claimed {
		log.Fatal("execution context is already owned by another run")
	}
	s.claimed = true
}

func (s *Stack) Depth() int {
	return len(s.vals)
}

func (s *Stack) push(v *uint256.Int) {
	s.vals = append(s.vals, *v)
}

func (s *Stack) pop() uint256.Int {
	v := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	return v
}

// at returns the value i entries below the top, 0 being the top itself.
func (s *Stack) at(i int) *uint256.Int {
	return &s.vals[len(s.vals)-1-i]
}

func (s *Stack) swap(i int) {
	top := s.at(0)
	other := s.at(i)
	*top, *other = *other, *top
}

// PushInt appends a signed value, for tests and setup inspection.
func (s *Stack) PushInt(v int64) {
	s.push(fromInt64(v))
}

// At exposes the value i entries below the top as a signed 64-bit integer.
// Values outside the int64 range are truncated; the measurement harness
// only inspects small setup values.
func (s *Stack) At(i int) int64 {
	v := s.at(i)
	if v.Sign() < 0 {
		neg := new(uint256.Int).Neg(v)
		return -int64(neg.Uint64())
	}
	return int64(v.Uint64())
}

func fromInt64(v int64) *uint256.Int {
	if v < 0 {
		return new(uint256.Int).Neg(uint256.NewInt(uint64(-v)))
	}
	return uint256.NewInt(uint64(v))
}
