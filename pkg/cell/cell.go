package cell

import "fmt"

const (
	// MaxDataBits is the data capacity of a single cell.
	MaxDataBits = 1023

	// MaxRefs is the reference capacity of a single cell.
	MaxRefs = 4
)

// Cell is an immutable node of the bag-of-cells tree: up to 1023 data bits
// and up to four references to child cells.
type Cell struct {
	data []byte
	bits int
	refs []*Cell
}

// Empty returns a cell with no data bits and no references, the code handle
// of the no-op baseline program.
func Empty() *Cell {
	return &Cell{}
}

// New builds a cell from raw data bits. The data slice holds the bits
// MSB-first; trailing padding bits in the last byte are ignored.
func New(data []byte, bits int, refs ...*Cell) (*Cell, error) {
	if bits < 0 || bits > MaxDataBits {
		return nil, fmt.Errorf("cell data size %d out of range", bits)
	}
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("cell has %d references, at most %d allowed", len(refs), MaxRefs)
	}
	if need := (bits + 7) / 8; len(data) < need {
		return nil, fmt.Errorf("cell data truncated: %d bits in %d bytes", bits, len(data))
	}

	c := &Cell{
		data: make([]byte, (bits+7)/8),
		bits: bits,
		refs: append([]*Cell(nil), refs...),
	}
	copy(c.data, data)
	if rem := bits % 8; rem != 0 {
		// zero the padding so equal cells compare equal bytewise
		c.data[len(c.data)-1] &= byte(0xFF << (8 - rem))
	}
	return c, nil
}

func (c *Cell) Bits() int {
	return c.bits
}

func (c *Cell) Data() []byte {
	return c.data
}

func (c *Cell) RefCount() int {
	return len(c.refs)
}

func (c *Cell) Ref(i int) *Cell {
	return c.refs[i]
}

// Slice is a sequential bit reader over one cell's data.
type Slice struct {
	cell *Cell
	pos  int
}

func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c}
}

func (s *Slice) BitsRemaining() int {
	return s.cell.bits - s.pos
}

// Position reports how many bits have been consumed so far.
func (s *Slice) Position() int {
	return s.pos
}

// LoadUint reads the next n bits (n <= 64) as a big-endian unsigned integer.
// The caller checks BitsRemaining first; reading past the end panics.
func (s *Slice) LoadUint(n int) uint64 {
	if n < 0 || n > 64 {
		panic(fmt.Sprintf("LoadUint: invalid width %d", n))
	}
	if s.BitsRemaining() < n {
		panic("LoadUint: slice underflow")
	}
	var v uint64
	for i := 0; i < n; i++ {
		bit := s.cell.data[s.pos>>3] >> (7 - uint(s.pos&7)) & 1
		v = v<<1 | uint64(bit)
		s.pos++
	}
	return v
}

// LoadInt reads the next n bits as a big-endian two's complement integer.
func (s *Slice) LoadInt(n int) int64 {
	v := s.LoadUint(n)
	if n > 0 && n < 64 && v&(1<<uint(n-1)) != 0 {
		v |= ^uint64(0) << uint(n)
	}
	return int64(v)
}
