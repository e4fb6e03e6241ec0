// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import "github.com/regexident/lilliput/internal/options"

// FloatPrecisionPolicy controls how an Encoder treats the precision of a
// FloatValue before emission. It never inspects the bits of a value other
// than to measure exactness; it never rounds.
type FloatPrecisionPolicy uint8

const (
	// FloatPreserve emits the value's own precision unchanged.
	FloatPreserve FloatPrecisionPolicy = iota
	// FloatPromoteToDouble widens every single-precision value to double
	// before emission.
	FloatPromoteToDouble
	// FloatDemoteWhenExact narrows a double-precision value to single
	// precision when doing so loses no bits (i.e. float64(float32(f)) == f),
	// and preserves it otherwise.
	FloatDemoteWhenExact
)

// MapKeyOrder controls how an Encoder orders a MapValue's entries on the
// wire.
type MapKeyOrder uint8

const (
	// MapKeyOrderPreserve emits entries in their in-memory order verbatim.
	MapKeyOrderPreserve MapKeyOrder = iota
	// MapKeyOrderSortByEncodedBytes re-orders entries by the lexicographic
	// order of each key's canonical encoding before emission, for callers
	// that need stable wire bytes independent of insertion order.
	MapKeyOrderSortByEncodedBytes
)

// EncoderConfig holds the options of spec §4.4: whether compact headers are
// suppressed, how float precision is treated, and how map keys are ordered.
type EncoderConfig struct {
	forceExtendedLengths bool
	floatPrecisionPolicy FloatPrecisionPolicy
	mapKeyOrder          MapKeyOrder
}

// EncoderOption configures an EncoderConfig, following the generic
// functional-options idiom of internal/options.
type EncoderOption = options.Option[*EncoderConfig]

// NewEncoderConfig builds the default EncoderConfig (compact forms allowed,
// float precision preserved, map keys preserved in insertion order) and
// applies opts over it in order.
func NewEncoderConfig(opts ...EncoderOption) (*EncoderConfig, error) {
	cfg := &EncoderConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithForceExtendedLengths suppresses compact header forms, always emitting
// the extended form for variable-length kinds and integers. Useful for
// format testing and reproducing a known wire layout.
func WithForceExtendedLengths(force bool) EncoderOption {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.forceExtendedLengths = force
	})
}

// WithFloatPrecisionPolicy sets how float precision is treated on encode.
func WithFloatPrecisionPolicy(policy FloatPrecisionPolicy) EncoderOption {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.floatPrecisionPolicy = policy
	})
}

// WithMapKeyOrder sets how map entries are ordered on encode.
func WithMapKeyOrder(order MapKeyOrder) EncoderOption {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.mapKeyOrder = order
	})
}
