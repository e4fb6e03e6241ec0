// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import (
	"bytes"

	"golang.org/x/exp/slices"
)

// Encoder writes headers and bodies to a Writer according to an
// EncoderConfig.
type Encoder struct {
	w   Writer
	cfg *EncoderConfig
}

// NewEncoder wraps w for encoding, applying the default EncoderConfig.
func NewEncoder(w Writer) *Encoder {
	cfg, _ := NewEncoderConfig()
	return &Encoder{w: w, cfg: cfg}
}

// NewEncoderWithConfig wraps w for encoding using an already-built
// EncoderConfig, e.g. shared across many Encoders.
func NewEncoderWithConfig(w Writer, cfg *EncoderConfig) *Encoder {
	return &Encoder{w: w, cfg: cfg}
}

// EncodeValue writes header and body for v, dispatching dynamically on its
// kind.
func (e *Encoder) EncodeValue(v Value) error {
	switch val := v.(type) {
	case IntValue:
		return e.EncodeInt(val)
	case StringValue:
		return e.EncodeString(val)
	case BytesValue:
		return e.EncodeBytes(val)
	case SeqValue:
		return e.EncodeSeq(val)
	case MapValue:
		return e.EncodeMap(val)
	case FloatValue:
		return e.EncodeFloat(val)
	case BoolValue:
		return e.EncodeBool(val)
	case UnitValue:
		return e.EncodeUnit()
	case NullValue:
		return e.EncodeNull()
	default:
		return errInvalidHeader(-1)
	}
}

// canonicalizeInt narrows v to its sign and unsigned magnitude, per spec
// §4.4 step 1 and §4.7.
func canonicalizeInt(v IntValue) (negative bool, magnitude uint64) {
	return v.negative(), v.magnitude()
}

// EncodeInt writes v's header byte and, for the extended form, the Width
// big-endian magnitude bytes that follow it (which DecodeHeader reads back
// as part of the IntHeader).
func (e *Encoder) EncodeInt(v IntValue) error {
	negative, magnitude := canonicalizeInt(v)
	h := NewIntHeader(negative, magnitude, e.cfg.forceExtendedLengths)
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	if h.Compact {
		return nil
	}
	return e.w.WriteAll(bigEndianBytes(magnitude, int(h.Width)))
}

// EncodeString writes v's length header followed by its UTF-8 bytes.
func (e *Encoder) EncodeString(v StringValue) error {
	b := []byte(v.String())
	h := NewStringHeader(uint64(len(b)), e.cfg.forceExtendedLengths)
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	return e.EncodeStringBodyOf(h, b)
}

// EncodeStringBodyOf writes only the body bytes for a StringHeader already
// written by the caller, for split emission (spec §4.4).
func (e *Encoder) EncodeStringBodyOf(h StringHeader, body []byte) error {
	return e.w.WriteAll(body)
}

// EncodeBytes writes v's length header followed by its raw bytes.
func (e *Encoder) EncodeBytes(v BytesValue) error {
	h := NewBytesHeader(uint64(len(v.Bytes())), e.cfg.forceExtendedLengths)
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	return e.EncodeBytesBodyOf(h, v.Bytes())
}

// EncodeBytesBodyOf writes only the body bytes for a BytesHeader already
// written by the caller.
func (e *Encoder) EncodeBytesBodyOf(h BytesHeader, body []byte) error {
	return e.w.WriteAll(body)
}

// EncodeSeq writes v's length header followed by each child value in order.
func (e *Encoder) EncodeSeq(v SeqValue) error {
	h := NewSeqHeader(uint64(v.Len()), e.cfg.forceExtendedLengths)
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	for _, item := range v.Items() {
		if err := e.EncodeValue(item); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMap writes v's length header followed by key₁, value₁, key₂,
// value₂, … Ordering is controlled by EncoderConfig.mapKeyOrder.
func (e *Encoder) EncodeMap(v MapValue) error {
	entries := v.Entries()
	if e.cfg.mapKeyOrder == MapKeyOrderSortByEncodedBytes {
		sorted, err := e.sortedByEncodedKey(entries)
		if err != nil {
			return err
		}
		entries = sorted
	}
	h := NewMapHeader(uint64(len(entries)), e.cfg.forceExtendedLengths)
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := e.EncodeValue(entry.Key); err != nil {
			return err
		}
		if err := e.EncodeValue(entry.Value); err != nil {
			return err
		}
	}
	return nil
}

// sortedByEncodedKey returns entries reordered by the lexicographic order of
// each key's canonical encoding, per spec §4.4's order_map_keys option.
func (e *Encoder) sortedByEncodedKey(entries []MapEntry) ([]MapEntry, error) {
	type keyed struct {
		entry   MapEntry
		encoded []byte
	}
	keys := make([]keyed, len(entries))
	for i, entry := range entries {
		bw := NewBufferWriter(8)
		sub := NewEncoderWithConfig(bw, e.cfg)
		if err := sub.EncodeValue(entry.Key); err != nil {
			return nil, err
		}
		encoded := make([]byte, len(bw.Bytes()))
		copy(encoded, bw.Bytes())
		keys[i] = keyed{entry: entry, encoded: encoded}
	}
	slices.SortFunc(keys, func(a, b keyed) bool {
		return bytes.Compare(a.encoded, b.encoded) < 0
	})
	out := make([]MapEntry, len(keys))
	for i, k := range keys {
		out[i] = k.entry
	}
	return out, nil
}

// EncodeFloat writes v's header followed by its bit pattern, big-endian,
// after applying the configured FloatPrecisionPolicy.
func (e *Encoder) EncodeFloat(v FloatValue) error {
	v = e.applyFloatPolicy(v)
	h := FloatHeader{Double: v.Precision() == FloatDouble}
	if err := e.EncodeHeader(h); err != nil {
		return err
	}
	if h.Double {
		return e.w.WriteAll(bigEndianBytes(v.Bits64(), 8))
	}
	return e.w.WriteAll(bigEndianBytes(uint64(v.Bits32()), 4))
}

// applyFloatPolicy returns v transformed per cfg.floatPrecisionPolicy. No
// NaN normalization or sign-of-zero collapsing ever occurs (spec §9, "Float
// bit-exactness").
func (e *Encoder) applyFloatPolicy(v FloatValue) FloatValue {
	switch e.cfg.floatPrecisionPolicy {
	case FloatPromoteToDouble:
		if v.Precision() == FloatSingle {
			return NewFloat64(float64(v.Float32()))
		}
		return v
	case FloatDemoteWhenExact:
		if v.Precision() == FloatDouble {
			f64 := v.Float64()
			f32 := float32(f64)
			if float64(f32) == f64 {
				return NewFloat32(f32)
			}
		}
		return v
	default:
		return v
	}
}

// EncodeBool writes v as a single header byte with no body.
func (e *Encoder) EncodeBool(v BoolValue) error {
	return e.EncodeHeader(BoolHeader{Value: v.Bool()})
}

// EncodeUnit writes the single fixed Unit header byte.
func (e *Encoder) EncodeUnit() error { return e.EncodeHeader(UnitHeader{}) }

// EncodeNull writes the single fixed Null header byte.
func (e *Encoder) EncodeNull() error { return e.EncodeHeader(NullHeader{}) }

// EncodeHeader writes h's header byte (and, for extended variable-length
// forms, its big-endian length bytes) without writing any body. Used by
// the per-kind Encode<Kind> methods and available directly to callers that
// generate headers programmatically (spec §4.4's split-emission contract).
//
// For an extended IntHeader only the single header byte is written: the
// Width magnitude bytes, which DecodeHeader reads as part of the header,
// are not, because NewIntHeader does not record the magnitude. EncodeInt
// writes them itself.
func (e *Encoder) EncodeHeader(h Header) error {
	switch hdr := h.(type) {
	case IntHeader:
		return e.w.WriteOne(hdr.headerByte())
	case StringHeader:
		return e.writeLengthHeader(hdr.headerByte(), hdr.Compact, hdr.Len, hdr.Width)
	case BytesHeader:
		return e.writeLengthHeader(hdr.headerByte(), hdr.Compact, hdr.Len, hdr.Width)
	case SeqHeader:
		return e.writeLengthHeader(hdr.headerByte(), hdr.Compact, hdr.Len, hdr.Width)
	case MapHeader:
		return e.writeLengthHeader(hdr.headerByte(), hdr.Compact, hdr.Len, hdr.Width)
	case FloatHeader:
		return e.w.WriteOne(hdr.headerByte())
	case BoolHeader:
		return e.w.WriteOne(hdr.headerByte())
	case UnitHeader:
		return e.w.WriteOne(hdr.headerByte())
	case NullHeader:
		return e.w.WriteOne(hdr.headerByte())
	default:
		return errInvalidHeader(-1)
	}
}

func (e *Encoder) writeLengthHeader(marker byte, compact bool, length uint64, width uint8) error {
	if err := e.w.WriteOne(marker); err != nil {
		return err
	}
	if compact {
		return nil
	}
	return e.w.WriteAll(bigEndianBytes(length, int(width)))
}

// bigEndianBytes returns v's low-order width bytes, big-endian.
func bigEndianBytes(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
