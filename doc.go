// Copyright (c) 2024 The lilliput authors.
// Use of this source code is governed by an MIT license that can be found
// in the LICENSE file.

// Package lilliput implements a compact, self-describing binary
// serialization format for schema-less data: integers, floats, booleans,
// null/unit, byte arrays, strings, sequences and maps.
//
// A value is encoded as a header byte (plus, for extended forms, a handful
// of big-endian length bytes) followed by a body. Encoding and decoding are
// streaming and single-pass; decoders can cheaply skip a value's body
// without materializing it.
package lilliput
