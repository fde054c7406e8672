package cell

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// bocMagic identifies the generic serialized bag-of-cells container.
const bocMagic = 0xB5EE9C72

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

type bocReader struct {
	buf []byte
	pos int
}

func (r *bocReader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *bocReader) bytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("bag of cells truncated at byte %d", r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// uint reads an n-byte big-endian unsigned integer, n <= 8.
func (r *bocReader) uint(n int) (uint64, error) {
	b, err := r.bytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v, nil
}

// DeserializeBOC parses a standard serialized bag of cells and returns its
// single root cell.
func DeserializeBOC(raw []byte) (*Cell, error) {
	r := &bocReader{buf: raw}

	magic, err := r.uint(4)
	if err != nil {
		return nil, err
	}
	if magic != bocMagic {
		return nil, fmt.Errorf("bad bag-of-cells magic %08X", magic)
	}

	flags, err := r.uint(1)
	if err != nil {
		return nil, err
	}
	hasIndex := flags&0x80 != 0
	hasCRC := flags&0x40 != 0
	refSize := int(flags & 0x07)
	if refSize < 1 || refSize > 4 {
		return nil, fmt.Errorf("unsupported reference size %d", refSize)
	}

	offSize64, err := r.uint(1)
	if err != nil {
		return nil, err
	}
	offSize := int(offSize64)
	if offSize < 1 || offSize > 8 {
		return nil, fmt.Errorf("unsupported offset size %d", offSize)
	}

	cellCount, err := r.uint(refSize)
	if err != nil {
		return nil, err
	}
	rootCount, err := r.uint(refSize)
	if err != nil {
		return nil, err
	}
	absentCount, err := r.uint(refSize)
	if err != nil {
		return nil, err
	}
	if rootCount != 1 {
		return nil, fmt.Errorf("expected exactly one root cell, got %d", rootCount)
	}
	if absentCount != 0 {
		return nil, fmt.Errorf("absent cells are not supported")
	}
	if cellCount == 0 || cellCount > 1<<20 {
		return nil, fmt.Errorf("implausible cell count %d", cellCount)
	}

	if _, err = r.uint(offSize); err != nil { // tot_cells_size, unused
		return nil, err
	}

	rootIdx, err := r.uint(refSize)
	if err != nil {
		return nil, err
	}
	if rootIdx >= cellCount {
		return nil, fmt.Errorf("root index %d out of range", rootIdx)
	}

	if hasIndex {
		if _, err = r.bytes(int(cellCount) * offSize); err != nil {
			return nil, err
		}
	}

	type protoCell struct {
		data []byte
		bits int
		refs []uint64
	}
	protos := make([]protoCell, cellCount)
	for i := range protos {
		desc, err := r.bytes(2)
		if err != nil {
			return nil, err
		}
		d1, d2 := desc[0], desc[1]
		if d1&0x08 != 0 {
			return nil, fmt.Errorf("exotic cell %d not supported", i)
		}
		if d1&0x10 != 0 {
			return nil, fmt.Errorf("stored hashes in cell %d not supported", i)
		}
		refCount := int(d1 & 0x07)
		if refCount > MaxRefs {
			return nil, fmt.Errorf("cell %d has %d references", i, refCount)
		}

		dataLen := (int(d2) + 1) / 2
		data, err := r.bytes(dataLen)
		if err != nil {
			return nil, err
		}
		bits := dataLen * 8
		if d2&1 != 0 {
			// incomplete last byte, strip the 10* completion tag
			for bits > 0 && data[(bits-1)>>3]>>(7-uint((bits-1)&7))&1 == 0 {
				bits--
			}
			if bits == 0 {
				return nil, fmt.Errorf("cell %d has a malformed completion tag", i)
			}
			bits--
		}

		refs := make([]uint64, refCount)
		for j := range refs {
			idx, err := r.uint(refSize)
			if err != nil {
				return nil, err
			}
			if idx <= uint64(i) || idx >= cellCount {
				return nil, fmt.Errorf("cell %d has a non-topological reference %d", i, idx)
			}
			refs[j] = idx
		}
		protos[i] = protoCell{data: data, bits: bits, refs: refs}
	}

	if hasCRC {
		sum, err := r.bytes(4)
		if err != nil {
			return nil, err
		}
		want := binary.LittleEndian.Uint32(sum)
		if got := crc32.Checksum(raw[:len(raw)-r.remaining()-4], crc32cTable); got != want {
			return nil, fmt.Errorf("bag-of-cells checksum mismatch: %08X != %08X", got, want)
		}
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after bag of cells", r.remaining())
	}

	// children always follow their parents, build back to front
	cells := make([]*Cell, cellCount)
	for i := int(cellCount) - 1; i >= 0; i-- {
		refs := make([]*Cell, len(protos[i].refs))
		for j, idx := range protos[i].refs {
			refs[j] = cells[idx]
		}
		c, err := New(protos[i].data, protos[i].bits, refs...)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = c
	}
	return cells[rootIdx], nil
}
