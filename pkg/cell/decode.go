package cell

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const bocPrefix = "boc:"

// FromString decodes a textual program representation into its code cell.
// Two encodings are accepted: "boc:<base64>" wrapping a serialized bag of
// cells, and a raw hex bitstring literal (possibly with a trailing `_`
// completion tag). An empty string yields the empty cell.
func FromString(s string) (*Cell, error) {
	if strings.HasPrefix(s, bocPrefix) {
		raw, err := base64.StdEncoding.DecodeString(s[len(bocPrefix):])
		if err != nil {
			return nil, fmt.Errorf("invalid base64 in boc literal: %w", err)
		}
		return DeserializeBOC(raw)
	}
	return fromHexLiteral(s)
}

// fromHexLiteral parses a TVM-style hex bitstring literal. Each hex digit
// contributes four bits; a trailing `_` marks a completion tag: the
// rightmost 1 bit and everything after it are padding to be dropped.
func fromHexLiteral(s string) (*Cell, error) {
	complete := false
	if strings.HasSuffix(s, "_") {
		complete = true
		s = s[:len(s)-1]
	}

	data := make([]byte, (len(s)+1)/2)
	bits := 0
	for _, r := range s {
		var nibble byte
		switch {
		case r >= '0' && r <= '9':
			nibble = byte(r - '0')
		case r >= 'a' && r <= 'f':
			nibble = byte(r-'a') + 10
		case r >= 'A' && r <= 'F':
			nibble = byte(r-'A') + 10
		default:
			return nil, fmt.Errorf("invalid character %q in hex bitstring literal", r)
		}
		if bits%8 == 0 {
			data[bits/8] = nibble << 4
		} else {
			data[bits/8] |= nibble
		}
		bits += 4
	}

	if complete {
		if bits == 0 {
			return nil, fmt.Errorf("completion tag on an empty bitstring")
		}
		// drop trailing zero bits, then the tag bit itself
		for bits > 0 && data[(bits-1)>>3]>>(7-uint((bits-1)&7))&1 == 0 {
			bits--
		}
		if bits == 0 {
			return nil, fmt.Errorf("completion tag bit not found")
		}
		bits--
	}

	return New(data, bits)
}
