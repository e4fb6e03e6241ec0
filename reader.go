// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

package lilliput

import "io"

// Reference is the result of Reader.Read: either a slice borrowed directly
// from the reader's backing storage, or a slice copied into the caller's
// scratch buffer. Callers must not assume which arm they receive; a
// SliceReader always borrows, a StreamReader always copies.
//
// This mirrors the teacher's zero-copy discipline (ion.Contents returning a
// subslice of its input) generalized to the two-reader-kind split this
// format requires.
type Reference struct {
	data     []byte
	borrowed bool
}

// Bytes returns the referenced bytes, regardless of which arm produced them.
func (r Reference) Bytes() []byte { return r.data }

// Borrowed reports whether the bytes are a direct view into the reader's
// input (true) or a copy living in caller-supplied scratch (false).
func (r Reference) Borrowed() bool { return r.borrowed }

// Reader produces bytes from an underlying source, optionally yielding
// zero-copy borrows of its own backing storage.
//
// Implementations must fail fast on short reads: PeekOne, ReadOne, ReadInto
// and Read all return an *Error with Code CodeUnexpectedEndOfFile rather
// than a partial result.
type Reader interface {
	// PeekOne returns the next byte without advancing.
	PeekOne() (byte, error)
	// ReadOne returns the next byte and advances by 1.
	ReadOne() (byte, error)
	// ReadInto fills buf exactly or fails; on failure the reader's consumed
	// state is unspecified.
	ReadInto(buf []byte) error
	// Read returns the next n bytes, either borrowed from the reader's own
	// storage or copied into *scratch (which Read may grow). The returned
	// Reference is only valid until the next call into the reader.
	Read(n int, scratch *[]byte) (Reference, error)
	// Skip advances by n bytes without materializing them.
	Skip(n int) error
}

// SliceReader reads from an in-memory byte slice. Read always borrows
// directly from the input slice, never from scratch.
type SliceReader struct {
	buf []byte
	pos int
}

// NewSliceReader wraps buf for reading. The returned reader borrows from buf
// for the lifetime of every Reference it produces.
func NewSliceReader(buf []byte) *SliceReader {
	return &SliceReader{buf: buf}
}

func (r *SliceReader) PeekOne() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errUnexpectedEOF(int64(r.pos))
	}
	return r.buf[r.pos], nil
}

func (r *SliceReader) ReadOne() (byte, error) {
	b, err := r.PeekOne()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

func (r *SliceReader) ReadInto(buf []byte) error {
	if len(r.buf)-r.pos < len(buf) {
		return errUnexpectedEOF(int64(r.pos))
	}
	copy(buf, r.buf[r.pos:r.pos+len(buf)])
	r.pos += len(buf)
	return nil
}

func (r *SliceReader) Read(n int, _ *[]byte) (Reference, error) {
	if len(r.buf)-r.pos < n {
		return Reference{}, errUnexpectedEOF(int64(r.pos))
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return Reference{data: out, borrowed: true}, nil
}

func (r *SliceReader) Skip(n int) error {
	if len(r.buf)-r.pos < n {
		return errUnexpectedEOF(int64(r.pos))
	}
	r.pos += n
	return nil
}

// StreamReader reads from an arbitrary io.Reader. Because the source cannot
// be retained as a borrow, Read always copies into the caller's scratch
// buffer.
type StreamReader struct {
	r        io.Reader
	pos      int64
	peeked   bool
	peekByte byte
}

// NewStreamReader wraps r for reading. Every Reference it produces is a copy
// living in the caller's scratch buffer.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

func (r *StreamReader) PeekOne() (byte, error) {
	// The wire format never requires peeking more than the marker byte, and
	// every header byte is immediately consumed by the caller that peeked
	// it, so a one-byte pushback buffer is sufficient and keeps StreamReader
	// free of an internal bufio.Reader dependency.
	if r.peeked {
		return r.peekByte, nil
	}
	var buf [1]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, classifyReadErr(r.pos, err)
	}
	r.peeked = true
	r.peekByte = buf[0]
	return buf[0], nil
}

func (r *StreamReader) ReadOne() (byte, error) {
	if r.peeked {
		r.peeked = false
		r.pos++
		return r.peekByte, nil
	}
	var buf [1]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, classifyReadErr(r.pos, err)
	}
	r.pos++
	return buf[0], nil
}

func (r *StreamReader) ReadInto(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n := 0
	if r.peeked {
		buf[0] = r.peekByte
		r.peeked = false
		n = 1
	}
	if n < len(buf) {
		if _, err := io.ReadFull(r.r, buf[n:]); err != nil {
			return classifyReadErr(r.pos, err)
		}
	}
	r.pos += int64(len(buf))
	return nil
}

func (r *StreamReader) Read(n int, scratch *[]byte) (Reference, error) {
	*scratch = growScratch(*scratch, n)
	if err := r.ReadInto((*scratch)[:n]); err != nil {
		return Reference{}, err
	}
	return Reference{data: (*scratch)[:n], borrowed: false}, nil
}

func (r *StreamReader) Skip(n int) error {
	// StreamReader has no seek capability; discard by reading into a
	// throwaway buffer, matching the teacher's bufferedReader.Discard
	// fallback path for sources without their own Discard.
	const chunk = 4096
	var buf [chunk]byte
	remaining := n
	for remaining > 0 {
		want := remaining
		if want > chunk {
			want = chunk
		}
		if err := r.ReadInto(buf[:want]); err != nil {
			return err
		}
		remaining -= want
	}
	return nil
}

func growScratch(scratch []byte, n int) []byte {
	if cap(scratch) >= n {
		return scratch[:n]
	}
	return make([]byte, n)
}

func classifyReadErr(pos int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errUnexpectedEOF(pos)
	}
	return errIO(pos, err)
}
