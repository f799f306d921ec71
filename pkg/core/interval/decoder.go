// Package interval decodes the wide-character buffers the driver under test
// uses on the wire for INTERVAL values, and hosts the connection-scoped
// registry of output converters keyed by numeric type-tag id.
package interval

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Wire-level type-tag ids. The interval band is a fixed contiguous range;
// tag 0 is the NULL sentinel, which still arrives as a non-empty
// wide-character buffer that must be suppressed.
const (
	NullTypeTag = 0

	IntervalTagMin = 101
	IntervalTagMax = 113
)

// IsIntervalTag reports whether id falls in the interval type band.
func IsIntervalTag(id int) bool {
	return IntervalTagMin <= id && id <= IntervalTagMax
}

// DecodeError - malformed interval byte buffer
type DecodeError struct {
	Length int
	Unit   int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %d-byte buffer with %d-byte code units: %s",
		e.Length, e.Unit, e.Reason)
}

// Decoder turns a wide-character-encoded buffer into its textual literal.
// The code-unit width depends on the platform wide-character size: 2 bytes
// on most targets, 4 where wchar_t is 32-bit.
type Decoder struct {
	unit int
}

// NewDecoder creates a decoder for the given code-unit width (2 or 4).
func NewDecoder(unit int) (*Decoder, error) {
	if unit != 2 && unit != 4 {
		return nil, fmt.Errorf("unsupported wide character size %d", unit)
	}
	return &Decoder{unit: unit}, nil
}

// Unit returns the configured code-unit width in bytes.
func (d *Decoder) Unit() int {
	return d.unit
}

// Decode decodes each little-endian code unit as a Unicode scalar and
// concatenates the result. The buffer length must be a multiple of the
// unit width.
func (d *Decoder) Decode(raw []byte) (string, error) {
	if len(raw)%d.unit != 0 {
		return "", &DecodeError{Length: len(raw), Unit: d.unit,
			Reason: "length is not a multiple of the code unit width"}
	}

	var b strings.Builder
	b.Grow(len(raw) / d.unit)
	for i := 0; i < len(raw); i += d.unit {
		var code uint32
		if d.unit == 2 {
			code = uint32(binary.LittleEndian.Uint16(raw[i:]))
		} else {
			code = binary.LittleEndian.Uint32(raw[i:])
		}
		b.WriteRune(rune(code))
	}
	return b.String(), nil
}
