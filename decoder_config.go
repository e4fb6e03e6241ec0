// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import "github.com/regexident/lilliput/internal/options"

// DecoderConfig is the decode-side counterpart to EncoderConfig. The wire
// format is fully self-describing, so nothing about how a value was written
// needs to be told to the Decoder; DecoderConfig exists to keep the two
// halves of the API symmetric and to give future decode-time knobs (e.g. a
// pluggable scratch allocator) a home without breaking NewDecoderWithConfig
// callers.
type DecoderConfig struct{}

// DecoderOption configures a DecoderConfig, following the same
// functional-options idiom as EncoderOption.
type DecoderOption = options.Option[*DecoderConfig]

// NewDecoderConfig builds the default DecoderConfig and applies opts over it
// in order.
func NewDecoderConfig(opts ...DecoderOption) (*DecoderConfig, error) {
	cfg := &DecoderConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
