// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import (
	"encoding/binary"
	"math"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

// Value is the tagged union over the nine in-memory value kinds that mirror
// Header's kinds. Concrete implementations are IntValue, StringValue,
// SeqValue, MapValue, FloatValue, BytesValue, BoolValue, UnitValue and
// NullValue.
type Value interface {
	// Marker returns the value's kind.
	Marker() Marker
	// Equal reports whether v and other are equal under the rules of §4.7
	// (width-independent for integers, bit-exact for floats).
	Equal(other Value) bool
	// Hash returns a hash consistent with Equal: equal values hash equal.
	Hash() uint64
}

// hashKey0, hashKey1 are the fixed siphash keys used to hash canonical value
// byte forms. A fixed key is appropriate here because Hash is a structural
// hash consistent with Equal, not a DoS-resistant hash table seed.
const hashKey0, hashKey1 = 0, 0

func hashBytes(b []byte) uint64 { return siphash.Hash(hashKey0, hashKey1, b) }

// ---- Int ----

// IntValue represents an integer number as either a signed or unsigned
// 64-bit magnitude. Equality, ordering and hashing are canonicalized per
// §4.7: a Signed value that is non-negative compares and hashes equal to
// the Unsigned value of the same magnitude.
type IntValue struct {
	signed bool
	s      int64
	u      uint64
}

// NewSignedInt builds an IntValue from a signed magnitude of any width.
func NewSignedInt(v int64) IntValue { return IntValue{signed: true, s: v} }

// NewUnsignedInt builds an IntValue from an unsigned magnitude of any width.
func NewUnsignedInt(v uint64) IntValue { return IntValue{signed: false, u: v} }

// IsSigned reports whether the value was constructed as Signed. This does
// not affect equality, ordering, or hashing, only which accessor is
// meaningful: Signed() for a signed value, Unsigned() for an unsigned one.
func (v IntValue) IsSigned() bool { return v.signed }

// Signed returns the value's signed magnitude. Only meaningful when
// IsSigned() is true.
func (v IntValue) Signed() int64 { return v.s }

// Unsigned returns the value's unsigned magnitude. Only meaningful when
// IsSigned() is false.
func (v IntValue) Unsigned() uint64 { return v.u }

func (IntValue) Marker() Marker { return MarkerInt }

// negative reports whether the canonical mathematical value is negative.
func (v IntValue) negative() bool { return v.signed && v.s < 0 }

// magnitude returns |v| as a uint64. Valid for every IntValue: the only
// magnitude that cannot be negated into a uint64 directly is math.MinInt64,
// handled explicitly below.
func (v IntValue) magnitude() uint64 {
	if !v.signed {
		return v.u
	}
	if v.s >= 0 {
		return uint64(v.s)
	}
	if v.s == math.MinInt64 {
		return uint64(math.MaxInt64) + 1
	}
	return uint64(-v.s)
}

func (v IntValue) Equal(other Value) bool {
	o, ok := other.(IntValue)
	if !ok {
		return false
	}
	return v.compare(o) == 0
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// o, per the canonicalization rules of §4.7: a negative Signed value is
// Less than any Unsigned value.
func (v IntValue) Compare(o IntValue) int { return v.compare(o) }

func (v IntValue) compare(o IntValue) int {
	vNeg, oNeg := v.negative(), o.negative()
	switch {
	case vNeg && !oNeg:
		return -1
	case !vNeg && oNeg:
		return 1
	case vNeg && oNeg:
		// Both negative: compare as signed magnitudes (more negative is
		// less).
		vs, os := v.s, o.s
		switch {
		case vs < os:
			return -1
		case vs > os:
			return 1
		default:
			return 0
		}
	default:
		// Both non-negative: compare magnitudes as unsigned.
		vm, om := v.magnitude(), o.magnitude()
		switch {
		case vm < om:
			return -1
		case vm > om:
			return 1
		default:
			return 0
		}
	}
}

// Hash implements the rules of §4.7: Unsigned(n) hashes n's bytes; a
// non-negative Signed(s) hashes as-if-unsigned; a negative Signed(s) hashes
// its own two's-complement bytes. All three cases are hashed over a
// fixed-width 8-byte little-endian buffer so that equal IntValues of
// different constructed widths always hash equal.
func (v IntValue) Hash() uint64 {
	var buf [8]byte
	if v.negative() {
		binary.LittleEndian.PutUint64(buf[:], uint64(v.s))
	} else {
		binary.LittleEndian.PutUint64(buf[:], v.magnitude())
	}
	return hashBytes(buf[:])
}

// ---- Float ----

// FloatPrecision selects the IEEE-754 width of a FloatValue.
type FloatPrecision uint8

const (
	FloatSingle FloatPrecision = iota
	FloatDouble
)

// FloatValue carries a bit-exact IEEE-754 value; NaN payloads are preserved
// and floats are never silently promoted or demoted by the codec core.
type FloatValue struct {
	precision FloatPrecision
	bits64    uint64
}

// NewFloat32Bits builds a single-precision FloatValue from its bit pattern.
func NewFloat32Bits(bits uint32) FloatValue {
	return FloatValue{precision: FloatSingle, bits64: uint64(bits)}
}

// NewFloat64Bits builds a double-precision FloatValue from its bit pattern.
func NewFloat64Bits(bits uint64) FloatValue {
	return FloatValue{precision: FloatDouble, bits64: bits}
}

// NewFloat32 builds a single-precision FloatValue from a float32.
func NewFloat32(f float32) FloatValue { return NewFloat32Bits(math.Float32bits(f)) }

// NewFloat64 builds a double-precision FloatValue from a float64.
func NewFloat64(f float64) FloatValue { return NewFloat64Bits(math.Float64bits(f)) }

func (FloatValue) Marker() Marker { return MarkerFloat }

// Precision reports whether the value is single or double precision.
func (v FloatValue) Precision() FloatPrecision { return v.precision }

// Bits32 returns the single-precision bit pattern. Only meaningful when
// Precision() == FloatSingle.
func (v FloatValue) Bits32() uint32 { return uint32(v.bits64) }

// Bits64 returns the double-precision bit pattern. Only meaningful when
// Precision() == FloatDouble.
func (v FloatValue) Bits64() uint64 { return v.bits64 }

// Float32 returns the single-precision value as a float32.
func (v FloatValue) Float32() float32 { return math.Float32frombits(v.Bits32()) }

// Float64 returns the double-precision value as a float64.
func (v FloatValue) Float64() float64 { return math.Float64frombits(v.bits64) }

func (v FloatValue) Equal(other Value) bool {
	o, ok := other.(FloatValue)
	if !ok {
		return false
	}
	return v.precision == o.precision && v.bits64 == o.bits64
}

func (v FloatValue) Hash() uint64 {
	var buf [9]byte
	buf[0] = byte(v.precision)
	binary.LittleEndian.PutUint64(buf[1:], v.bits64)
	return hashBytes(buf[:])
}

// ---- String ----

// StringValue owns a UTF-8 byte sequence.
type StringValue struct {
	s string
}

// NewString builds a StringValue from s, which must already be valid UTF-8;
// decoding enforces this, but construction from Go code trusts the caller
// the same way the standard library's string type does.
func NewString(s string) StringValue { return StringValue{s: s} }

func (StringValue) Marker() Marker { return MarkerString }

// String returns the value's contents.
func (v StringValue) String() string { return v.s }

func (v StringValue) Equal(other Value) bool {
	o, ok := other.(StringValue)
	return ok && v.s == o.s
}

func (v StringValue) Hash() uint64 { return hashBytes([]byte(v.s)) }

// ---- Bytes ----

// BytesValue owns an opaque byte sequence.
type BytesValue struct {
	b []byte
}

// NewBytes builds a BytesValue that takes ownership of b.
func NewBytes(b []byte) BytesValue { return BytesValue{b: b} }

func (BytesValue) Marker() Marker { return MarkerBytes }

// Bytes returns the value's contents.
func (v BytesValue) Bytes() []byte { return v.b }

func (v BytesValue) Equal(other Value) bool {
	o, ok := other.(BytesValue)
	return ok && slices.Equal(v.b, o.b)
}

func (v BytesValue) Hash() uint64 { return hashBytes(v.b) }

// Clone returns a BytesValue holding an independent copy of v's bytes, for
// callers that must outlive a borrowed Reference.
func (v BytesValue) Clone() BytesValue { return BytesValue{b: slices.Clone(v.b)} }

// ---- Seq ----

// SeqValue is an ordered sequence of Values.
type SeqValue struct {
	items []Value
}

// NewSeq builds a SeqValue from items, taking ownership of the slice.
func NewSeq(items []Value) SeqValue { return SeqValue{items: items} }

func (SeqValue) Marker() Marker { return MarkerSeq }

// Items returns the sequence's elements in wire order.
func (v SeqValue) Items() []Value { return v.items }

// Len returns the number of elements.
func (v SeqValue) Len() int { return len(v.items) }

func (v SeqValue) Equal(other Value) bool {
	o, ok := other.(SeqValue)
	if !ok || len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (v SeqValue) Hash() uint64 {
	h := hashBytes([]byte{byte(MarkerSeq)})
	for _, item := range v.items {
		h = combineHash(h, item.Hash())
	}
	return h
}

// ---- Map ----

// MapEntry is a single key/value pair of a MapValue, in wire order.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue is a sequence of (Value, Value) pairs that preserves insertion
// order at the wire level. Duplicate-key policy on decode is "last
// occurrence wins": the decoder keeps one entry per distinct key, at the
// position where the key first appeared, holding the key's last value. It
// never reorders entries. NewMap itself does not deduplicate.
type MapValue struct {
	entries []MapEntry
}

// NewMap builds a MapValue from entries, taking ownership of the slice and
// preserving its order verbatim.
func NewMap(entries []MapEntry) MapValue { return MapValue{entries: entries} }

func (MapValue) Marker() Marker { return MarkerMap }

// Entries returns the map's key/value pairs in wire order.
func (v MapValue) Entries() []MapEntry { return v.entries }

// Len returns the number of entries.
func (v MapValue) Len() int { return len(v.entries) }

// Get performs a linear scan for key, returning the value of the last
// matching entry (matching the decoder's last-write-wins duplicate policy)
// and whether any entry matched.
func (v MapValue) Get(key Value) (Value, bool) {
	var found Value
	ok := false
	for _, e := range v.entries {
		if e.Key.Equal(key) {
			found = e.Value
			ok = true
		}
	}
	return found, ok
}

func (v MapValue) Equal(other Value) bool {
	o, ok := other.(MapValue)
	if !ok || len(v.entries) != len(o.entries) {
		return false
	}
	for i := range v.entries {
		if !v.entries[i].Key.Equal(o.entries[i].Key) || !v.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

func (v MapValue) Hash() uint64 {
	h := hashBytes([]byte{byte(MarkerMap)})
	for _, e := range v.entries {
		h = combineHash(h, e.Key.Hash())
		h = combineHash(h, e.Value.Hash())
	}
	return h
}

func combineHash(h, next uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], h)
	binary.LittleEndian.PutUint64(buf[8:], next)
	return hashBytes(buf[:])
}

// ---- Bool / Unit / Null ----

// BoolValue is a boolean scalar.
type BoolValue struct {
	b bool
}

// NewBool builds a BoolValue.
func NewBool(b bool) BoolValue { return BoolValue{b: b} }

func (BoolValue) Marker() Marker { return MarkerBool }

// Bool returns the value's contents.
func (v BoolValue) Bool() bool { return v.b }

func (v BoolValue) Equal(other Value) bool {
	o, ok := other.(BoolValue)
	return ok && v.b == o.b
}

func (v BoolValue) Hash() uint64 {
	if v.b {
		return hashBytes([]byte{1})
	}
	return hashBytes([]byte{0})
}

// UnitValue is the zero-sized unit value.
type UnitValue struct{}

func (UnitValue) Marker() Marker            { return MarkerUnit }
func (UnitValue) Equal(other Value) bool    { _, ok := other.(UnitValue); return ok }
func (UnitValue) Hash() uint64              { return hashBytes([]byte{byte(MarkerUnit)}) }

// NullValue is the zero-sized null value.
type NullValue struct{}

func (NullValue) Marker() Marker         { return MarkerNull }
func (NullValue) Equal(other Value) bool { _, ok := other.(NullValue); return ok }
func (NullValue) Hash() uint64           { return hashBytes([]byte{byte(MarkerNull)}) }
