// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import (
	"bytes"
	"testing"
)

func encodeValue(t *testing.T, v Value, opts ...EncoderOption) []byte {
	t.Helper()
	cfg, err := NewEncoderConfig(opts...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	w := NewBufferWriter(0)
	e := NewEncoderWithConfig(w, cfg)
	if err := e.EncodeValue(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return w.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []Value{
		NewUnsignedInt(0),
		NewUnsignedInt(63),
		NewUnsignedInt(64),
		NewUnsignedInt(1 << 40),
		NewSignedInt(-1),
		NewSignedInt(-64),
		NewSignedInt(-65),
		NewBool(true),
		NewBool(false),
		UnitValue{},
		NullValue{},
		NewString(""),
		NewString("hello, lilliput"),
		NewBytes([]byte{0x2A, 0x0D, 0x25}),
		NewFloat32(3.5),
		NewFloat64(-2.25),
		NewSeq(nil),
		NewSeq([]Value{NewBool(true), NewBool(false)}),
		NewMap([]MapEntry{{Key: NewUnsignedInt(1), Value: NewSeq([]Value{NewBool(true), NewBool(false)})}}),
	}
	for _, v := range values {
		encoded := encodeValue(t, v)
		dec := NewDecoder(NewSliceReader(encoded))
		got, err := dec.DecodeValue()
		if err != nil {
			t.Fatalf("decode %+v: %v", v, err)
		}
		if !got.Equal(v) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
		}
		if dec.Pos() != int64(len(encoded)) {
			t.Errorf("pos after decode = %d, want %d", dec.Pos(), len(encoded))
		}
	}
}

func TestScenarioBoolTrue(t *testing.T) {
	encoded := encodeValue(t, NewBool(true))
	if len(encoded) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(encoded))
	}
	want := BoolHeader{Value: true}.headerByte()
	if encoded[0] != want {
		t.Fatalf("got %#02x, want %#02x", encoded[0], want)
	}
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Equal(NewBool(true)) {
		t.Fatalf("got %+v", v)
	}
}

func TestScenarioSmallUnsigned(t *testing.T) {
	encoded := encodeValue(t, NewUnsignedInt(42))
	if len(encoded) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(encoded))
	}
	h, err := parseIntHeaderByte(encoded[0], 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !h.Compact || h.Sign || h.Magnitude != 42 {
		t.Fatalf("unexpected header: %+v", h)
	}
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Equal(NewUnsignedInt(42)) {
		t.Fatalf("got %+v", v)
	}
}

func TestScenarioNegativeInt(t *testing.T) {
	encoded := encodeValue(t, NewSignedInt(-1))
	if len(encoded) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(encoded))
	}
	h, err := parseIntHeaderByte(encoded[0], 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !h.Compact || !h.Sign || h.Magnitude != 1 {
		t.Fatalf("unexpected header: %+v", h)
	}
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	iv := v.(IntValue)
	if iv.Compare(NewUnsignedInt(0)) >= 0 {
		t.Fatalf("decoded negative value must compare Less than any unsigned value")
	}
}

func TestScenarioBytesLen3(t *testing.T) {
	raw := []byte{0x2A, 0x0D, 0x25}
	encoded := encodeValue(t, NewBytes(raw))
	if len(encoded) != 1+1+3 {
		t.Fatalf("expected 5 bytes, got %d", len(encoded))
	}
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Equal(NewBytes(raw)) {
		t.Fatalf("got %+v", v)
	}
}

func TestScenarioEmptySeq(t *testing.T) {
	encoded := encodeValue(t, NewSeq(nil))
	if len(encoded) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(encoded))
	}
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	seq := v.(SeqValue)
	if seq.Len() != 0 {
		t.Fatalf("expected empty sequence, got len %d", seq.Len())
	}
}

func TestScenarioNestedMapSkip(t *testing.T) {
	v := NewMap([]MapEntry{{
		Key:   NewUnsignedInt(1),
		Value: NewSeq([]Value{NewBool(true), NewBool(false)}),
	}})
	encoded := encodeValue(t, v)
	dec := NewDecoder(NewSliceReader(encoded))
	if err := dec.SkipValue(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if dec.Pos() != int64(len(encoded)) {
		t.Fatalf("pos after skip = %d, want %d", dec.Pos(), len(encoded))
	}
}

func TestForceExtendedLengths(t *testing.T) {
	encoded := encodeValue(t, NewUnsignedInt(1), WithForceExtendedLengths(true))
	h, err := parseIntHeaderByte(encoded[0], 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if h.Compact {
		t.Fatal("expected extended form when forced")
	}
	if len(encoded) <= 1 {
		t.Fatal("extended form must carry a body")
	}
}

func TestMapKeyOrderSortByEncodedBytes(t *testing.T) {
	entries := []MapEntry{
		{Key: NewUnsignedInt(200), Value: NewString("b")},
		{Key: NewUnsignedInt(1), Value: NewString("a")},
	}
	m := NewMap(entries)
	encoded := encodeValue(t, m, WithMapKeyOrder(MapKeyOrderSortByEncodedBytes))
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := v.(MapValue)
	if got.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", got.Len())
	}
	// key 1 (compact form, smaller header byte) sorts before key 200
	// (extended form), so it must appear first on the wire.
	if !got.Entries()[0].Key.Equal(NewUnsignedInt(1)) {
		t.Fatalf("expected key 1 first, got %+v", got.Entries()[0].Key)
	}
}

func TestFloatPrecisionPromote(t *testing.T) {
	encoded := encodeValue(t, NewFloat32(1.5), WithFloatPrecisionPolicy(FloatPromoteToDouble))
	dec := NewDecoder(NewSliceReader(encoded))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fv := v.(FloatValue)
	if fv.Precision() != FloatDouble {
		t.Fatalf("expected promotion to double precision")
	}
	if fv.Float64() != 1.5 {
		t.Fatalf("unexpected value: %v", fv.Float64())
	}
}

func TestFloatPrecisionDemoteWhenExact(t *testing.T) {
	exact := encodeValue(t, NewFloat64(2.0), WithFloatPrecisionPolicy(FloatDemoteWhenExact))
	dec := NewDecoder(NewSliceReader(exact))
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(FloatValue).Precision() != FloatSingle {
		t.Fatal("exact value should be demoted to single precision")
	}

	inexact := encodeValue(t, NewFloat64(0.1), WithFloatPrecisionPolicy(FloatDemoteWhenExact))
	dec2 := NewDecoder(NewSliceReader(inexact))
	v2, err := dec2.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v2.(FloatValue).Precision() != FloatDouble {
		t.Fatal("inexact value must not be demoted")
	}
}

func TestEncodeHeaderSplitEmission(t *testing.T) {
	w := NewBufferWriter(0)
	e := NewEncoder(w)
	h := NewBytesHeader(3, false)
	if err := e.EncodeHeader(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.EncodeBytesBodyOf(h, []byte{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]byte{h.headerByte()}, 1, 2, 3)
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got %v, want %v", w.Bytes(), want)
	}
}
