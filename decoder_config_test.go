// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import "testing"

func TestDecoderWithConfigMatchesDefault(t *testing.T) {
	encoded := encodeValue(t, NewUnsignedInt(7))
	cfg, err := NewDecoderConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	dec := NewDecoderWithConfig(NewSliceReader(encoded), cfg)
	v, err := dec.DecodeValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Equal(NewUnsignedInt(7)) {
		t.Fatalf("got %+v", v)
	}
}
