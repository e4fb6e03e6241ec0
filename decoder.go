// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import (
	"math"
	"unicode/utf8"
)

// Decoder reads markers, headers and bodies from a Reader, tracking the
// total number of bytes consumed since construction.
//
// A Decoder is not safe to share across goroutines; distinct Decoders over
// distinct Readers may run concurrently.
type Decoder struct {
	r       Reader
	cfg     *DecoderConfig
	pos     int64
	scratch []byte
}

// NewDecoder wraps r for decoding with the default DecoderConfig.
func NewDecoder(r Reader) *Decoder {
	return &Decoder{r: r, cfg: &DecoderConfig{}}
}

// NewDecoderWithConfig wraps r for decoding under cfg.
func NewDecoderWithConfig(r Reader, cfg *DecoderConfig) *Decoder {
	return &Decoder{r: r, cfg: cfg}
}

// Pos returns the number of bytes consumed since construction.
func (d *Decoder) Pos() int64 { return d.pos }

// PeekMarker returns the Marker of the next value without advancing.
func (d *Decoder) PeekMarker() (Marker, error) {
	b, err := d.r.PeekOne()
	if err != nil {
		return 0, err
	}
	return DetectMarker(b), nil
}

// DecodeHeader consumes the header bytes of the next value and returns the
// concrete Header variant. It advances Pos by the header's length (1 to 9
// bytes).
func (d *Decoder) DecodeHeader() (Header, error) {
	start := d.pos
	b, err := d.r.ReadOne()
	if err != nil {
		return nil, err
	}
	d.pos++
	switch DetectMarker(b) {
	case MarkerInt:
		h, err := parseIntHeaderByte(b, start)
		if err != nil {
			return nil, err
		}
		if !h.Compact {
			mag, err := d.readExtendedLength(int(h.Width))
			if err != nil {
				return nil, err
			}
			h.Magnitude = mag
		}
		return h, nil
	case MarkerString:
		h, err := parseStringHeaderByte(b, start)
		if err != nil {
			return nil, err
		}
		if !h.Compact {
			n, err := d.readExtendedLength(int(h.Width))
			if err != nil {
				return nil, err
			}
			h.Len = n
		}
		return h, nil
	case MarkerBytes:
		h, err := parseBytesHeaderByte(b, start)
		if err != nil {
			return nil, err
		}
		if !h.Compact {
			n, err := d.readExtendedLength(int(h.Width))
			if err != nil {
				return nil, err
			}
			h.Len = n
		}
		return h, nil
	case MarkerSeq:
		h, err := parseSeqHeaderByte(b, start)
		if err != nil {
			return nil, err
		}
		if !h.Compact {
			n, err := d.readExtendedLength(int(h.Width))
			if err != nil {
				return nil, err
			}
			h.Len = n
		}
		return h, nil
	case MarkerMap:
		h, err := parseMapHeaderByte(b, start)
		if err != nil {
			return nil, err
		}
		if !h.Compact {
			n, err := d.readExtendedLength(int(h.Width))
			if err != nil {
				return nil, err
			}
			h.Len = n
		}
		return h, nil
	case MarkerFloat:
		return parseFloatHeaderByte(b, start)
	case MarkerBool:
		return parseBoolHeaderByte(b, start)
	case MarkerUnit:
		return parseUnitHeaderByte(b, start)
	case MarkerNull:
		return parseNullHeaderByte(b, start)
	default:
		return nil, errInvalidHeader(start)
	}
}

// readExtendedLength reads width bytes big-endian into a zero-padded 8-byte
// buffer (left-padded so the wire bytes are the low-order bytes) and
// interprets the result as a uint64, per spec §4.5 and §9's left-zero-
// padding design note.
func (d *Decoder) readExtendedLength(width int) (uint64, error) {
	var buf [8]byte
	if err := d.r.ReadInto(buf[8-width:]); err != nil {
		return 0, err
	}
	d.pos += int64(width)
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// DecodeStringRefOf consumes the body described by h and returns it as a
// Reference rather than an owned StringValue, for callers on the zero-copy
// path of spec §4.6: a SliceReader yields a Reference borrowed directly from
// its input slice, a StreamReader yields a copy living in the Decoder's own
// scratch buffer. The returned Reference is only valid until the next call
// into the Decoder.
func (d *Decoder) DecodeStringRefOf(h StringHeader) (Reference, error) {
	start := d.pos
	n, err := indexLen(h.Len, start)
	if err != nil {
		return Reference{}, err
	}
	ref, err := d.r.Read(n, &d.scratch)
	if err != nil {
		return Reference{}, err
	}
	if !utf8.Valid(ref.Bytes()) {
		return Reference{}, errInvalidUTF8(start)
	}
	d.pos += int64(n)
	return ref, nil
}

// DecodeBytesRefOf consumes the body described by h and returns it as a
// Reference rather than an owned BytesValue. See DecodeStringRefOf for the
// borrow/copy contract.
func (d *Decoder) DecodeBytesRefOf(h BytesHeader) (Reference, error) {
	start := d.pos
	n, err := indexLen(h.Len, start)
	if err != nil {
		return Reference{}, err
	}
	ref, err := d.r.Read(n, &d.scratch)
	if err != nil {
		return Reference{}, err
	}
	d.pos += int64(n)
	return ref, nil
}

// DecodeValueOf consumes the body described by header and returns the
// decoded Value.
func (d *Decoder) DecodeValueOf(header Header) (Value, error) {
	start := d.pos
	switch h := header.(type) {
	case IntHeader:
		// DecodeHeader already consumed the magnitude bytes of an extended
		// IntHeader as part of the header (byteLen accounts for them), so
		// h.Magnitude is always populated here; there is no separate body
		// to read.
		return intValueFromHeader(h.Sign, h.Magnitude, start)
	case StringHeader:
		ref, err := d.DecodeStringRefOf(h)
		if err != nil {
			return nil, err
		}
		b := ref.Bytes()
		owned := make([]byte, len(b))
		copy(owned, b)
		return NewString(string(owned)), nil
	case BytesHeader:
		ref, err := d.DecodeBytesRefOf(h)
		if err != nil {
			return nil, err
		}
		owned := make([]byte, len(ref.Bytes()))
		copy(owned, ref.Bytes())
		return NewBytes(owned), nil
	case SeqHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return nil, err
		}
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			v, err := d.DecodeValue()
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return NewSeq(items), nil
	case MapHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return nil, err
		}
		entries := make([]MapEntry, 0, n)
		for i := 0; i < n; i++ {
			k, err := d.DecodeValue()
			if err != nil {
				return nil, err
			}
			v, err := d.DecodeValue()
			if err != nil {
				return nil, err
			}
			entries = appendMapEntry(entries, MapEntry{Key: k, Value: v})
		}
		return NewMap(entries), nil
	case FloatHeader:
		n := h.bodyLen()
		var buf [8]byte
		if err := d.r.ReadInto(buf[:n]); err != nil {
			return nil, err
		}
		d.pos += int64(n)
		var bits uint64
		for _, b := range buf[:n] {
			bits = bits<<8 | uint64(b)
		}
		if h.Double {
			return NewFloat64Bits(bits), nil
		}
		return NewFloat32Bits(uint32(bits)), nil
	case BoolHeader:
		return NewBool(h.Value), nil
	case UnitHeader:
		return UnitValue{}, nil
	case NullHeader:
		return NullValue{}, nil
	default:
		return nil, errInvalidHeader(start)
	}
}

// appendMapEntry appends entry, overwriting an existing entry with an equal
// key in place (last occurrence wins) rather than appending a duplicate, per
// spec §3's map duplicate-key policy. Decode order among the surviving
// entries is otherwise preserved verbatim.
func appendMapEntry(entries []MapEntry, entry MapEntry) []MapEntry {
	for i := range entries {
		if entries[i].Key.Equal(entry.Key) {
			entries[i].Value = entry.Value
			return entries
		}
	}
	return append(entries, entry)
}

// indexLen converts a decoded length to an int, failing with
// CodeNumberOutOfRange before any allocation would occur, per spec
// invariant 6.
func indexLen(n uint64, pos int64) (int, error) {
	if n > uint64(int(^uint(0)>>1)) {
		return 0, errNumberOutOfRange(pos)
	}
	return int(n), nil
}

const minInt64Magnitude = uint64(1) << 63

func intValueFromHeader(negative bool, magnitude uint64, pos int64) (Value, error) {
	if !negative {
		return NewUnsignedInt(magnitude), nil
	}
	if magnitude > minInt64Magnitude {
		return nil, errNumberOutOfRange(pos)
	}
	if magnitude == minInt64Magnitude {
		return NewSignedInt(math.MinInt64), nil
	}
	return NewSignedInt(-int64(magnitude)), nil
}

// DecodeValue decodes the next header and its body, equivalent to
// DecodeHeader followed by DecodeValueOf.
func (d *Decoder) DecodeValue() (Value, error) {
	h, err := d.DecodeHeader()
	if err != nil {
		return nil, err
	}
	return d.DecodeValueOf(h)
}

// SkipValueOf advances past the body described by header without
// materializing it. For Seq and Map it recurses into each child value via
// SkipValue.
func (d *Decoder) SkipValueOf(header Header) error {
	start := d.pos
	switch h := header.(type) {
	case IntHeader:
		// The magnitude of an extended IntHeader was already consumed by
		// DecodeHeader as part of the header itself; there is no body left
		// to skip.
		return nil
	case StringHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return err
		}
		if err := d.r.Skip(n); err != nil {
			return err
		}
		d.pos += int64(n)
		return nil
	case BytesHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return err
		}
		if err := d.r.Skip(n); err != nil {
			return err
		}
		d.pos += int64(n)
		return nil
	case SeqHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.SkipValue(); err != nil {
				return err
			}
		}
		return nil
	case MapHeader:
		n, err := indexLen(h.Len, start)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.SkipValue(); err != nil {
				return err
			}
			if err := d.SkipValue(); err != nil {
				return err
			}
		}
		return nil
	case FloatHeader:
		n := h.bodyLen()
		if err := d.r.Skip(n); err != nil {
			return err
		}
		d.pos += int64(n)
		return nil
	case BoolHeader, UnitHeader, NullHeader:
		return nil
	default:
		return errInvalidHeader(start)
	}
}

// SkipValue decodes the next header and skips its body, equivalent to
// DecodeHeader followed by SkipValueOf.
func (d *Decoder) SkipValue() error {
	h, err := d.DecodeHeader()
	if err != nil {
		return err
	}
	return d.SkipValueOf(h)
}
