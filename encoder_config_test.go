// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import "testing"

func TestDefaultEncoderConfig(t *testing.T) {
	cfg, err := NewEncoderConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.forceExtendedLengths {
		t.Error("default must not force extended lengths")
	}
	if cfg.floatPrecisionPolicy != FloatPreserve {
		t.Error("default float precision policy must be preserve")
	}
	if cfg.mapKeyOrder != MapKeyOrderPreserve {
		t.Error("default map key order must be preserve")
	}
}

func TestEncoderOptionsCompose(t *testing.T) {
	cfg, err := NewEncoderConfig(
		WithForceExtendedLengths(true),
		WithFloatPrecisionPolicy(FloatPromoteToDouble),
		WithMapKeyOrder(MapKeyOrderSortByEncodedBytes),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.forceExtendedLengths || cfg.floatPrecisionPolicy != FloatPromoteToDouble || cfg.mapKeyOrder != MapKeyOrderSortByEncodedBytes {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
