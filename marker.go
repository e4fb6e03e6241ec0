// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

// Marker identifies the kind of value encoded by a header byte.
//
// Detection is total over all 256 byte values (see DetectMarker) and
// injective into the nine kinds below; no byte maps to more than one
// marker, and no marker goes undetected.
type Marker uint8

const (
	MarkerInt Marker = iota
	MarkerString
	MarkerSeq
	MarkerMap
	MarkerFloat
	MarkerBytes
	MarkerBool
	MarkerUnit
	MarkerNull
)

func (m Marker) String() string {
	switch m {
	case MarkerInt:
		return "int"
	case MarkerString:
		return "string"
	case MarkerSeq:
		return "seq"
	case MarkerMap:
		return "map"
	case MarkerFloat:
		return "float"
	case MarkerBytes:
		return "bytes"
	case MarkerBool:
		return "bool"
	case MarkerUnit:
		return "unit"
	case MarkerNull:
		return "null"
	default:
		return "invalid"
	}
}

// Header byte families, selected by bits 6-4 once bit 7 is set. A set bit 7
// with family 0 is the extended form of Int; a clear bit 7 is always the
// compact form of Int.
const (
	familyIntExtended byte = 0b000
	familyString      byte = 0b001
	familySeq         byte = 0b010
	familyMap         byte = 0b011
	familyFloat       byte = 0b100
	familyBytes       byte = 0b101
	familyBool        byte = 0b110
	familyUnitOrNull  byte = 0b111
)

const (
	compactIntBit  byte = 0b1000_0000
	familyBits     byte = 0b0111_0000
	familyShift    uint = 4
	unitOrNullBit  byte = 0b0000_0001
)

// DetectMarker returns the Marker encoded by the high bits of b. It is total:
// every one of the 256 byte values resolves to exactly one Marker.
func DetectMarker(b byte) Marker {
	if b&compactIntBit == 0 {
		return MarkerInt
	}
	switch (b & familyBits) >> familyShift {
	case familyIntExtended:
		return MarkerInt
	case familyString:
		return MarkerString
	case familySeq:
		return MarkerSeq
	case familyMap:
		return MarkerMap
	case familyFloat:
		return MarkerFloat
	case familyBytes:
		return MarkerBytes
	case familyBool:
		return MarkerBool
	default: // familyUnitOrNull
		if b&unitOrNullBit != 0 {
			return MarkerNull
		}
		return MarkerUnit
	}
}

// Validate reports whether b's marker matches the expected marker m. On
// mismatch it returns an *Error with Code CodeInvalidType carrying both
// marker names; pos is recorded as the position of b in the stream.
func (m Marker) Validate(b byte, pos int64) error {
	got := DetectMarker(b)
	if got != m {
		return errInvalidType(pos, m, got)
	}
	return nil
}
