// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import (
	"bytes"
	"testing"
)

func TestBufferWriterAccumulates(t *testing.T) {
	w := NewBufferWriter(0)
	if err := w.WriteOne(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteAll([]byte{2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(w.Bytes(), []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected bytes: %v", w.Bytes())
	}
}

func TestBufferWriterGrowsBeyondThreshold(t *testing.T) {
	w := NewBufferWriter(0)
	big := make([]byte, largeBufferThreshold+1)
	for i := range big {
		big[i] = byte(i)
	}
	if err := w.WriteAll(big); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteAll([]byte{0xFF}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(w.Bytes(), append(big, 0xFF)) {
		t.Fatal("bytes mismatch after growth past the large-buffer threshold")
	}
}

func TestBufferWriterReset(t *testing.T) {
	w := NewBufferWriter(4)
	_ = w.WriteAll([]byte{1, 2, 3})
	w.Reset()
	if len(w.Bytes()) != 0 {
		t.Fatal("Reset must empty the buffer")
	}
	_ = w.WriteOne(9)
	if !bytes.Equal(w.Bytes(), []byte{9}) {
		t.Fatal("buffer must be writable after Reset")
	}
}

func TestStreamWriterForwardsImmediately(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	if err := w.WriteAll([]byte{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Fatalf("unexpected bytes: %v", buf.Bytes())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestStreamWriterWrapsSinkErrors(t *testing.T) {
	w := NewStreamWriter(failingWriter{})
	err := w.WriteOne(1)
	lerr, ok := err.(*Error)
	if !ok || lerr.Code != CodeIOError {
		t.Fatalf("expected CodeIOError, got %v", err)
	}
}
