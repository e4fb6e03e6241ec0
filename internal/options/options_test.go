// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package options

import (
	"errors"
	"testing"
)

type config struct {
	value int
}

func TestApplyInOrder(t *testing.T) {
	cfg := &config{}
	double := New(func(c *config) error { c.value *= 2; return nil })
	addOne := NoError(func(c *config) { c.value++ })
	if err := Apply(cfg, addOne, double); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.value != 2 {
		t.Fatalf("got %d, want 2", cfg.value)
	}
}

func TestApplyStopsOnError(t *testing.T) {
	cfg := &config{}
	boom := errors.New("boom")
	failing := New(func(c *config) error { return boom })
	never := NoError(func(c *config) { c.value = 99 })
	if err := Apply(cfg, failing, never); err != boom {
		t.Fatalf("got %v, want %v", err, boom)
	}
	if cfg.value != 0 {
		t.Fatal("options after a failing option must not run")
	}
}
